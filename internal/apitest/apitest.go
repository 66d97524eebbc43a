// ABOUTME: In-process development backend for client-side tests
// ABOUTME: Starts the REST server on httptest over a temporary SQLite store

// Package apitest runs the development backend inside a test process so the
// client packages can be exercised against real routes.
package apitest

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/2389/antecedentes/internal/api"
	"github.com/2389/antecedentes/internal/config"
	"github.com/2389/antecedentes/internal/model"
	"github.com/2389/antecedentes/internal/server"
	"github.com/2389/antecedentes/internal/store"
)

const (
	// AdminUsername is the bootstrap ADMIN account.
	AdminUsername = "admin"
	// Password is shared by every account the backend creates.
	Password = "correct-horse"
)

// Backend is a running development server.
type Backend struct {
	URL      string
	Store    *store.SQLiteStore
	FilesDir string
}

// NewBackend starts a server with a bootstrapped admin. It is shut down when
// the test ends.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	dir := t.TempDir()

	st, err := store.NewSQLiteStore(filepath.Join(dir, "backend.db"))
	require.NoError(t, err)

	cfg := &config.Server{}
	cfg.Server.HTTPAddr = "127.0.0.1:0"
	cfg.Files.Dir = filepath.Join(dir, "files")
	cfg.Auth.JWTSecret = strings.Repeat("k", config.MinJWTSecretLength)
	cfg.Auth.TokenTTL = time.Hour
	cfg.Bootstrap.AdminUsername = AdminUsername
	cfg.Bootstrap.AdminPassword = Password

	srv, err := server.New(cfg, st, nil)
	require.NoError(t, err)
	require.NoError(t, srv.Bootstrap(context.Background()))

	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		hs.Close()
		st.Close()
	})

	return &Backend{URL: hs.URL, Store: st, FilesDir: cfg.Files.Dir}
}

// AddUser creates an account with the given role id.
func (b *Backend) AddUser(t testing.TB, username string, roleID int64) *model.User {
	t.Helper()
	u, err := b.Store.CreateUser(context.Background(), model.UserInput{
		Names:    strings.ToUpper(username[:1]) + username[1:],
		Lastname: "Test",
		Username: username,
		Password: Password,
		RoleID:   roleID,
	})
	require.NoError(t, err)
	return u
}

// Login returns a fresh access token for username.
func (b *Backend) Login(t testing.TB, username string) string {
	t.Helper()
	res, err := api.NewClient(b.URL, nil).Auth.Login(context.Background(), username, Password)
	require.NoError(t, err)
	return res.AccessToken
}

// Client returns a client authenticated as username with a fixed token.
func (b *Backend) Client(t testing.TB, username string, opts ...api.Option) *api.Client {
	t.Helper()
	token := b.Login(t, username)
	return api.NewClient(b.URL, api.TokenFunc(func() string { return token }), opts...)
}

// AdminClient returns a client authenticated as the bootstrap admin.
func (b *Backend) AdminClient(t testing.TB, opts ...api.Option) *api.Client {
	t.Helper()
	return b.Client(t, AdminUsername, opts...)
}

// Person creates a CEDULA person directly in the store.
func (b *Backend) Person(t testing.TB, identification, names string) *model.Person {
	t.Helper()
	p, err := b.Store.CreatePerson(context.Background(), model.PersonInput{
		Identification:     identification,
		IdentificationType: model.IdentificationCedula,
		Names:              names,
		Lastnames:          "Test",
	})
	require.NoError(t, err)
	return p
}

// Record creates a ROBO record.
func (b *Backend) Record(t testing.TB, title string) *model.Record {
	t.Helper()
	r, err := b.Store.CreateRecord(context.Background(), model.RecordInput{
		Title:      title,
		TypeRecord: string(model.RecordTypeTheft),
		Date:       "2024-01-15",
	})
	require.NoError(t, err)
	return r
}

// ABOUTME: Tests for the development API server routes
// ABOUTME: Exercises handlers over httptest against a temporary SQLite store

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/antecedentes/internal/config"
	"github.com/2389/antecedentes/internal/model"
	"github.com/2389/antecedentes/internal/store"
)

const testPassword = "correct-horse"

type testEnv struct {
	srv    *Server
	store  *store.SQLiteStore
	admin  string
	viewer string
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	st, err := store.NewSQLiteStore(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := &config.Server{}
	cfg.Server.HTTPAddr = "127.0.0.1:0"
	cfg.Files.Dir = filepath.Join(dir, "files")
	cfg.Auth.JWTSecret = strings.Repeat("s", config.MinJWTSecretLength)
	cfg.Auth.TokenTTL = time.Hour
	cfg.Bootstrap.AdminUsername = "admin"
	cfg.Bootstrap.AdminPassword = testPassword

	srv, err := New(cfg, st, nil)
	require.NoError(t, err)
	require.NoError(t, srv.Bootstrap(context.Background()))

	_, err = st.CreateUser(context.Background(), model.UserInput{
		Names: "Vera", Lastname: "Viewer", Username: "viewer", Password: testPassword, RoleID: model.RoleIDView,
	})
	require.NoError(t, err)

	env := &testEnv{srv: srv, store: st}
	env.admin = login(t, srv, "admin")
	env.viewer = login(t, srv, "viewer")
	return env
}

func login(t *testing.T, srv *Server, username string) string {
	t.Helper()
	form := url.Values{"username": {username}, "password": {testPassword}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		AccessToken string     `json:"access_token"`
		TokenType   string     `json:"token_type"`
		User        model.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, username, resp.User.Username)
	return resp.AccessToken
}

func (e *testEnv) do(t *testing.T, token, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	} else {
		r = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(w, req)
	return w
}

func detail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Detail
}

func personInput(identification, names string) model.PersonInput {
	return model.PersonInput{
		Identification:     identification,
		IdentificationType: model.IdentificationCedula,
		Names:              names,
		Lastnames:          "Test",
	}
}

func createPerson(t *testing.T, e *testEnv, identification, names string) model.Person {
	t.Helper()
	w := e.do(t, e.admin, http.MethodPost, "/persons", personInput(identification, names))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var p model.Person
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	return p
}

func createRecord(t *testing.T, e *testEnv, title string) model.Record {
	t.Helper()
	w := e.do(t, e.admin, http.MethodPost, "/records", model.RecordInput{
		Title: title, TypeRecord: string(model.RecordTypeTheft), Date: "2024-03-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var r model.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
	return r
}

func TestHealth(t *testing.T) {
	e := setupTestServer(t)

	w := e.do(t, "", http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","version":"`+Version+`"}`, w.Body.String())
}

func TestLogin_InvalidCredentials(t *testing.T) {
	e := setupTestServer(t)

	form := url.Values{"username": {"admin"}, "password": {"wrong-password"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, store.ErrInvalidCredentials.Error(), detail(t, w))
}

func TestAuthRequired(t *testing.T) {
	e := setupTestServer(t)

	w := e.do(t, "", http.MethodGet, "/persons", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(t, "not-a-token", http.MethodGet, "/persons", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestViewerIsReadOnly(t *testing.T) {
	e := setupTestServer(t)

	w := e.do(t, e.viewer, http.MethodGet, "/persons", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, e.viewer, http.MethodPost, "/persons", personInput("0102030405", "Ana"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, e.viewer, http.MethodGet, "/users", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPersonCRUD(t *testing.T) {
	e := setupTestServer(t)
	p := createPerson(t, e, "0102030405", "Ana")
	assert.NotZero(t, p.ID)

	w := e.do(t, e.admin, http.MethodGet, "/persons/"+itoa(p.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	in := personInput("0102030405", "Ana María")
	w = e.do(t, e.admin, http.MethodPatch, "/persons/"+itoa(p.ID), in)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated model.Person
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Ana María", updated.Names)

	w = e.do(t, e.admin, http.MethodDelete, "/persons/"+itoa(p.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = e.do(t, e.admin, http.MethodGet, "/persons/"+itoa(p.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreatePerson_Rejections(t *testing.T) {
	e := setupTestServer(t)
	createPerson(t, e, "0102030405", "Ana")

	tests := []struct {
		name string
		in   model.PersonInput
	}{
		{"duplicate identification", personInput("0102030405", "Otra")},
		{"short cedula", personInput("123", "Ana")},
		{"missing names", personInput("0999999999", "")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(t, e.admin, http.MethodPost, "/persons", tt.in)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
			assert.NotEmpty(t, detail(t, w))
		})
	}

	w := e.do(t, e.admin, http.MethodGet, "/persons", nil)
	var persons []model.Person
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &persons))
	assert.Len(t, persons, 1)
}

func TestSearchPersons(t *testing.T) {
	e := setupTestServer(t)
	createPerson(t, e, "0102030405", "Ana")
	createPerson(t, e, "0102030406", "Bruno")

	w := e.do(t, e.admin, http.MethodGet, "/persons/search/person/?names=bru", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var found []model.Person
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &found))
	require.Len(t, found, 1)
	assert.Equal(t, "Bruno", found[0].Names)

	w = e.do(t, e.admin, http.MethodGet, "/persons/search/person/?names=zzz", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, e.admin, http.MethodGet, "/persons/search/person/", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordCRUDAndSearch(t *testing.T) {
	e := setupTestServer(t)
	r := createRecord(t, e, "Robo en el mercado")

	w := e.do(t, e.admin, http.MethodPut, "/records/"+itoa(r.ID), model.RecordInput{
		Title: "Robo en el mercado central", TypeRecord: "Secuestro", Date: "2024-03-02",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(t, e.admin, http.MethodGet, "/records/search?title=central", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var found []model.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &found))
	require.Len(t, found, 1)
	assert.Equal(t, "Secuestro", found[0].TypeRecord)

	w = e.do(t, e.admin, http.MethodGet, "/records/search?title=nada", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, e.admin, http.MethodGet, "/records/stats/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats model.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalRecords)

	w = e.do(t, e.admin, http.MethodDelete, "/records/"+itoa(r.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCreateRecord_OtherRequiresLabel(t *testing.T) {
	e := setupTestServer(t)

	w := e.do(t, e.admin, http.MethodPost, "/records", model.RecordInput{
		Title: "Sin etiqueta", TypeRecord: string(model.RecordTypeOther),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestLinking(t *testing.T) {
	e := setupTestServer(t)
	a := createPerson(t, e, "0102030405", "Ana")
	b := createPerson(t, e, "0102030406", "Bruno")
	r := createRecord(t, e, "Estafa telefónica")

	w := e.do(t, e.admin, http.MethodPost, "/persons/"+itoa(a.ID)+"/record/"+itoa(r.ID)+"?type_relationship=DENUNCIADO", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(t, e.admin, http.MethodPost, "/persons/"+itoa(a.ID)+"/record/"+itoa(r.ID)+"?type_relationship=TESTIGO", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "relinking is a duplicate")

	w = e.do(t, e.admin, http.MethodPost, "/persons/"+itoa(a.ID)+"/record/"+itoa(r.ID)+"?type_relationship=NOPE", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, e.admin, http.MethodPost, "/persons/linked-person/"+itoa(a.ID)+"/"+itoa(b.ID)+"?connection_type=AMIGO", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(t, e.admin, http.MethodPost, "/persons/linked-person/"+itoa(a.ID)+"/"+itoa(a.ID)+"?connection_type=AMIGO", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, e.admin, http.MethodGet, "/persons/"+itoa(a.ID)+"/linked", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var linked struct {
		PersonID    int64                            `json:"person_id"`
		Records     []model.PersonRecordRelationship `json:"records"`
		Connections []model.PersonConnection         `json:"connections"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &linked))
	assert.Equal(t, a.ID, linked.PersonID)
	require.Len(t, linked.Records, 1)
	assert.Equal(t, model.RelationshipAccused, linked.Records[0].TypeRelationship)
	require.Len(t, linked.Connections, 1)
	assert.Equal(t, b.ID, linked.Connections[0].ConnectedPersonID)

	w = e.do(t, e.admin, http.MethodDelete, "/persons/"+itoa(a.ID)+"/record/"+itoa(r.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = e.do(t, e.admin, http.MethodDelete, "/persons/"+itoa(b.ID)+"/connection/"+itoa(a.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = e.do(t, e.admin, http.MethodDelete, "/persons/"+itoa(b.ID)+"/connection/"+itoa(a.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFiles_UploadDownloadDelete(t *testing.T) {
	e := setupTestServer(t)
	p := createPerson(t, e, "0102030405", "Ana")

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("person_id", itoa(p.ID)))
	require.NoError(t, mw.WriteField("description", "cédula escaneada"))
	part, err := mw.CreateFormFile("file", "scan.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("hello file"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/files/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+e.admin)
	w := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var f model.File
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &f))
	assert.Equal(t, "scan.txt", f.OriginalFilename)
	assert.Equal(t, int64(len("hello file")), f.FileSize)
	assert.True(t, strings.HasPrefix(f.MimeType, "text/plain"), f.MimeType)

	w = e.do(t, e.admin, http.MethodGet, "/files/"+itoa(f.ID)+"/download", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello file", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "scan.txt")

	entries, err := os.ReadDir(e.srv.cfg.Files.Dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	w = e.do(t, e.admin, http.MethodDelete, "/files/"+itoa(f.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	entries, err = os.ReadDir(e.srv.cfg.Files.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUsers(t *testing.T) {
	e := setupTestServer(t)

	w := e.do(t, e.admin, http.MethodPost, "/users", model.UserInput{
		Names: "Omar", Lastname: "Ops", Username: "omar", Password: testPassword, RoleID: model.RoleIDUser,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var u model.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	assert.Equal(t, "omar", u.Username)

	w = e.do(t, e.admin, http.MethodPost, "/users", model.UserInput{
		Names: "Omar", Lastname: "Ops", Username: "omar", Password: testPassword, RoleID: model.RoleIDUser,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = e.do(t, e.admin, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var users []model.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	assert.Len(t, users, 3)

	w = e.do(t, e.admin, http.MethodGet, "/roles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var roles []model.Role
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &roles))
	assert.Len(t, roles, 4)

	w = e.do(t, e.admin, http.MethodDelete, "/users/"+itoa(u.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestDeleteOwnAccount(t *testing.T) {
	e := setupTestServer(t)

	w := e.do(t, e.admin, http.MethodGet, "/users", nil)
	var users []model.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	var adminID int64
	for _, u := range users {
		if u.Username == "admin" {
			adminID = u.ID
		}
	}
	require.NotZero(t, adminID)

	w = e.do(t, e.admin, http.MethodDelete, "/users/"+itoa(adminID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvalidPathID(t *testing.T) {
	e := setupTestServer(t)

	w := e.do(t, e.admin, http.MethodGet, "/persons/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

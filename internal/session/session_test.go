// ABOUTME: Tests for local storage, the session provider and the gate
// ABOUTME: Uses a temporary SQLite file per test

package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/antecedentes/internal/auth"
	"github.com/2389/antecedentes/internal/model"
)

func setupTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := OpenLocalStorage(filepath.Join(t.TempDir(), "nested", "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLocalStorage_GetSetRemove(t *testing.T) {
	s := setupTestStorage(t)

	_, ok, err := s.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("k", "v1"))
	require.NoError(t, s.Set("k", "v2"))

	v, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)

	require.NoError(t, s.Remove("k"))
	require.NoError(t, s.Remove("k"))
	_, ok, err = s.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalStorage_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	s, err := OpenLocalStorage(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(KeyToken, "abc"))
	require.NoError(t, s.Close())

	s, err = OpenLocalStorage(path)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get(KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)
}

func TestProvider_SaveAndClear(t *testing.T) {
	p := NewProvider(setupTestStorage(t), nil)

	assert.Empty(t, p.Token())
	u, err := p.User()
	require.NoError(t, err)
	assert.Nil(t, u)

	user := &model.User{ID: 7, Username: "ana", RoleID: model.RoleIDUser, RoleName: model.RoleUser}
	require.NoError(t, p.Save("tok-1", user))

	assert.Equal(t, "tok-1", p.Token())
	got, err := p.User()
	require.NoError(t, err)
	assert.Equal(t, user.Username, got.Username)
	assert.Equal(t, int64(7), got.ID)

	require.NoError(t, p.Clear())
	require.NoError(t, p.Clear(), "clear must be idempotent")
	assert.Empty(t, p.Token())
}

func TestProvider_SaveRejectsEmptyToken(t *testing.T) {
	p := NewProvider(setupTestStorage(t), nil)
	assert.Error(t, p.Save("", &model.User{}))
}

func TestProvider_TokenReadFresh(t *testing.T) {
	storage := setupTestStorage(t)
	p := NewProvider(storage, nil)
	require.NoError(t, p.Save("tok-1", &model.User{ID: 1}))

	// Another process replaces the token behind the provider's back.
	require.NoError(t, storage.Set(KeyToken, "tok-2"))
	assert.Equal(t, "tok-2", p.Token())

	require.NoError(t, storage.Remove(KeyToken))
	assert.Empty(t, p.Token())
}

func TestProvider_ExpireFiresOncePerSession(t *testing.T) {
	p := NewProvider(setupTestStorage(t), nil)
	require.NoError(t, p.Save("tok", &model.User{ID: 1}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a := p.Subscribe(ctx)
	b := p.Subscribe(ctx)

	assert.True(t, p.Expire("401 from /persons"))
	assert.False(t, p.Expire("401 from /records"), "second expiry of the same session must be suppressed")

	for _, ch := range []<-chan Event{a, b} {
		select {
		case ev := <-ch:
			assert.Equal(t, EventSessionError, ev.Kind)
			assert.Equal(t, "401 from /persons", ev.Reason)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive expiry event")
		}
	}

	// Saving a new login re-arms the notifier.
	require.NoError(t, p.Save("tok-2", &model.User{ID: 1}))
	assert.True(t, p.Expire("again"))
}

func TestProvider_ExpireWithoutSession(t *testing.T) {
	p := NewProvider(setupTestStorage(t), nil)
	assert.False(t, p.Expire("no session"))
}

func TestProvider_ArmedFromStoredToken(t *testing.T) {
	storage := setupTestStorage(t)
	require.NoError(t, storage.Set(KeyToken, "existing"))

	p := NewProvider(storage, nil)
	assert.True(t, p.Expire("stale token"))
}

func TestProvider_SubscriptionClosesOnCancel(t *testing.T) {
	p := NewProvider(setupTestStorage(t), nil)

	ctx, cancel := context.WithCancel(context.Background())
	ch := p.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription channel was not closed")
	}
}

func TestGate_Require(t *testing.T) {
	p := NewProvider(setupTestStorage(t), nil)
	gate := NewGate(p)

	_, err := gate.Require(context.Background())
	assert.True(t, errors.Is(err, ErrNoSession))

	require.NoError(t, p.Save("tok", &model.User{ID: 3, Username: "viewer", RoleID: model.RoleIDView}))
	sess, err := gate.Require(context.Background())
	require.NoError(t, err)
	assert.Equal(t, auth.RoleKindView, sess.Role)
	assert.Equal(t, LayoutReadOnly, sess.Layout())
	assert.False(t, sess.CanWrite())

	require.NoError(t, p.Save("tok", &model.User{ID: 1, Role: &model.Role{ID: 1, Name: "ADMIN"}}))
	sess, err = gate.Require(context.Background())
	require.NoError(t, err)
	assert.Equal(t, LayoutFull, sess.Layout())
	assert.True(t, sess.IsAdmin())
}

func TestGate_TokenWithoutUser(t *testing.T) {
	storage := setupTestStorage(t)
	require.NoError(t, storage.Set(KeyToken, "planted"))
	gate := NewGate(NewProvider(storage, nil))

	sess, err := gate.Require(context.Background())
	assert.Nil(t, sess)
	assert.ErrorIs(t, err, ErrNoSession)
}

// failingUserStorage fails every write of the user key.
type failingUserStorage struct {
	Storage
}

func (s failingUserStorage) Set(key, value string) error {
	if key == KeyUser {
		return errors.New("disk full")
	}
	return s.Storage.Set(key, value)
}

func TestProvider_SaveRollsBackTokenWhenUserFails(t *testing.T) {
	storage := setupTestStorage(t)
	p := NewProvider(failingUserStorage{Storage: storage}, nil)

	err := p.Save("tok", &model.User{ID: 1, Username: "ana"})
	require.Error(t, err)

	_, ok, err := storage.Get(KeyToken)
	require.NoError(t, err)
	assert.False(t, ok, "token must not outlive a failed save")
	assert.Empty(t, p.Token())

	_, err = NewGate(p).Require(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestProvider_SaveRejectsNilUser(t *testing.T) {
	p := NewProvider(setupTestStorage(t), nil)
	assert.Error(t, p.Save("tok", nil))
	assert.Empty(t, p.Token())
}

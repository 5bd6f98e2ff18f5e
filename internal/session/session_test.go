package session

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dan9191/auth-service/internal/common"
	"github.com/Dan9191/auth-service/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	users map[int64]*models.User
	err   error
	calls int
}

func (f *fakeLoader) UserByID(_ context.Context, id int64) (*models.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrNoSuchUser
	}
	return u, nil
}

func testOptions() Options {
	return Options{
		HashKey: []byte("0123456789abcdef0123456789abcdef"),
		MaxAge:  time.Hour,
	}
}

func newTestManager(t *testing.T, loader UserLoader) *Manager {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewManager(NewCookieStore(testOptions()), "session", loader, log)
}

func loginCookie(t *testing.T, m *Manager, user *models.User) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	require.NoError(t, m.Login(w, r, user))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestManager_LoginThenCurrentUser(t *testing.T) {
	michael := &models.User{ID: 5, Username: "michael", PasswordHash: "hash"}
	loader := &fakeLoader{users: map[int64]*models.User{5: michael}}
	m := newTestManager(t, loader)

	c := loginCookie(t, m, michael)
	assert.Equal(t, "session", c.Name)
	assert.True(t, c.HttpOnly)
	assert.NotContains(t, c.Value, "hash")

	r := httptest.NewRequest(http.MethodGet, "/user", nil)
	r.AddCookie(c)
	assert.Equal(t, michael, m.CurrentUser(r))
	assert.Equal(t, 1, loader.calls)
}

func TestManager_CurrentUser_Anonymous(t *testing.T) {
	loader := &fakeLoader{}
	m := newTestManager(t, loader)

	r := httptest.NewRequest(http.MethodGet, "/user", nil)
	assert.Nil(t, m.CurrentUser(r))
	assert.Zero(t, loader.calls)
}

func TestManager_CurrentUser_TamperedCookie(t *testing.T) {
	m := newTestManager(t, &fakeLoader{})

	r := httptest.NewRequest(http.MethodGet, "/user", nil)
	r.AddCookie(&http.Cookie{Name: "session", Value: "garbage"})
	assert.Nil(t, m.CurrentUser(r))
}

func TestManager_CurrentUser_DeletedUser(t *testing.T) {
	michael := &models.User{ID: 5, Username: "michael"}
	loader := &fakeLoader{users: map[int64]*models.User{5: michael}}
	m := newTestManager(t, loader)
	c := loginCookie(t, m, michael)

	delete(loader.users, 5)

	r := httptest.NewRequest(http.MethodGet, "/user", nil)
	r.AddCookie(c)
	assert.Nil(t, m.CurrentUser(r))
}

func TestManager_CurrentUser_StoreError(t *testing.T) {
	michael := &models.User{ID: 5, Username: "michael"}
	loader := &fakeLoader{users: map[int64]*models.User{5: michael}}
	m := newTestManager(t, loader)
	c := loginCookie(t, m, michael)

	loader.err = &common.StoreError{Op: "find user by id", Err: errors.New("db down")}

	r := httptest.NewRequest(http.MethodGet, "/user", nil)
	r.AddCookie(c)
	assert.Nil(t, m.CurrentUser(r))
}

func TestManager_Logout(t *testing.T) {
	michael := &models.User{ID: 5, Username: "michael"}
	m := newTestManager(t, &fakeLoader{users: map[int64]*models.User{5: michael}})
	c := loginCookie(t, m, michael)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/auth/logout", nil)
	r.AddCookie(c)
	require.NoError(t, m.Logout(w, r))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestNewCookieStore_Options(t *testing.T) {
	opts := testOptions()
	opts.Secure = true
	opts.BlockKey = []byte("0123456789abcdef")

	store := NewCookieStore(opts)
	assert.Equal(t, 3600, store.Options.MaxAge)
	assert.True(t, store.Options.Secure)
	assert.True(t, store.Options.HttpOnly)
	assert.Equal(t, "/", store.Options.Path)
	assert.Len(t, store.Codecs, 1)
}

// Package session maps authenticated users to sessions and back.
//
// Only the user identifier is written into the session. Every request
// re-reads the full user record through a UserLoader, so admin changes and
// deletions take effect immediately.
package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Dan9191/auth-service/internal/common"
	"github.com/Dan9191/auth-service/internal/models"
	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"
)

const userIDKey = "user_id"

// UserLoader fetches the current record for a user identifier
type UserLoader interface {
	UserByID(ctx context.Context, id int64) (*models.User, error)
}

// Options configure the session cookie and its signing keys
type Options struct {
	HashKey  []byte
	BlockKey []byte // optional, enables encryption
	MaxAge   time.Duration
	Secure   bool
}

func (o Options) cookieOptions() *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   int(o.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (o Options) keyPairs() [][]byte {
	if len(o.BlockKey) > 0 {
		return [][]byte{o.HashKey, o.BlockKey}
	}
	return [][]byte{o.HashKey}
}

// NewCookieStore returns a store that keeps session values in a signed cookie
func NewCookieStore(opts Options) *sessions.CookieStore {
	store := sessions.NewCookieStore(opts.keyPairs()...)
	store.Options = opts.cookieOptions()
	store.MaxAge(store.Options.MaxAge)
	return store
}

// Manager serializes users into sessions and deserializes them back
type Manager struct {
	store sessions.Store
	name  string
	users UserLoader
	log   *logrus.Logger
}

// NewManager initializes a session manager over any gorilla sessions store
func NewManager(store sessions.Store, name string, users UserLoader, log *logrus.Logger) *Manager {
	return &Manager{store: store, name: name, users: users, log: log}
}

// Login records user's identifier in the session and writes the cookie
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, user *models.User) error {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		// an undecodable cookie still yields a fresh session
		m.log.Debugf("Discarding unreadable session: %v", err)
	}
	if sess == nil {
		return err
	}
	sess.Values[userIDKey] = user.ID
	return sess.Save(r, w)
}

// Logout expires the session
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	sess, err := m.store.Get(r, m.name)
	if sess == nil {
		return err
	}
	delete(sess.Values, userIDKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// CurrentUser resolves the request's user, or nil when the request is anonymous.
// Any failure to resolve the session degrades to anonymous.
func (m *Manager) CurrentUser(r *http.Request) *models.User {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		m.log.Debugf("Ignoring unreadable session: %v", err)
		return nil
	}

	raw, ok := sess.Values[userIDKey]
	if !ok {
		return nil
	}
	id, ok := raw.(int64)
	if !ok {
		m.log.Warnf("Unexpected session user id type %T", raw)
		return nil
	}

	user, err := m.users.UserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNoSuchUser) {
			m.log.Debugf("Session refers to missing user %d", id)
		} else {
			m.log.Errorf("Failed to load session user %d: %v", id, err)
		}
		return nil
	}
	return user
}

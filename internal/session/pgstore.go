package session

import (
	"context"
	"database/sql"
	"encoding/base32"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

// PGStore keeps session values in the http_sessions table.
// The cookie only carries the signed session ID.
type PGStore struct {
	db         *sql.DB
	Codecs     []securecookie.Codec
	Options    *sessions.Options
	serializer securecookie.GobEncoder
}

var _ sessions.Store = (*PGStore)(nil)

// NewPGStore returns a PostgreSQL backed session store
func NewPGStore(db *sql.DB, opts Options) *PGStore {
	s := &PGStore{
		db:      db,
		Codecs:  securecookie.CodecsFromPairs(opts.keyPairs()...),
		Options: opts.cookieOptions(),
	}
	for _, c := range s.Codecs {
		if sc, ok := c.(*securecookie.SecureCookie); ok {
			sc.MaxAge(s.Options.MaxAge)
		}
	}
	return s
}

// Get returns the session cached for the request, creating it if needed
func (s *PGStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New loads the session named by the request cookie, or starts a new one
func (s *PGStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	if err := securecookie.DecodeMulti(name, c.Value, &session.ID, s.Codecs...); err != nil {
		return session, err
	}

	found, err := s.load(r.Context(), session)
	if err != nil {
		return session, err
	}
	if !found {
		session.ID = ""
		return session, nil
	}
	session.IsNew = false
	return session, nil
}

// Save persists the session and writes the cookie. A negative MaxAge deletes it.
func (s *PGStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.delete(r.Context(), session.ID); err != nil {
				return err
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = strings.TrimRight(
			base32.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)), "=")
	}
	if err := s.save(r.Context(), session); err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.Codecs...)
	if err != nil {
		return fmt.Errorf("failed to encode session cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

// DeleteExpired removes sessions past their expiry and reports how many were removed
func (s *PGStore) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM http_sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return n, nil
}

func (s *PGStore) load(ctx context.Context, session *sessions.Session) (bool, error) {
	query := `
		SELECT data FROM http_sessions
		WHERE id = $1 AND expires_at > now()`
	var data []byte
	err := s.db.QueryRowContext(ctx, query, session.ID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load session: %w", err)
	}
	if err := s.serializer.Deserialize(data, &session.Values); err != nil {
		return false, fmt.Errorf("failed to decode session: %w", err)
	}
	return true, nil
}

func (s *PGStore) save(ctx context.Context, session *sessions.Session) error {
	data, err := s.serializer.Serialize(session.Values)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	expiresAt := time.Now().Add(time.Duration(session.Options.MaxAge) * time.Second)

	query := `
		INSERT INTO http_sessions (id, data, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, expires_at = EXCLUDED.expires_at`
	if _, err := s.db.ExecContext(ctx, query, session.ID, data, expiresAt); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *PGStore) delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM http_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Dan9191/auth-service/internal/models"
	"github.com/sirupsen/logrus"
)

// Responses written by the guards
const (
	MsgAlreadyLoggedIn = "You are already logged in"
	MsgPleaseLogIn     = "Please log in"
	MsgNotAuthorized   = "You are not authorized"
	MsgSomethingBad    = "Something bad happened"
)

type contextKey struct{}

var userKey contextKey

// UserResolver resolves the user behind a request, nil for anonymous
type UserResolver interface {
	CurrentUser(r *http.Request) *models.User
}

// AdminChecker re-reads the admin flag of a user
type AdminChecker interface {
	IsAdmin(ctx context.Context, username string) (bool, error)
}

// WithUser returns a copy of ctx carrying user
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the user resolved for the request, or nil
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

// LoadUser resolves the session user once per request and stores it in the context
func LoadUser(resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user := resolver.CurrentUser(r); user != nil {
				r = r.WithContext(WithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnonymous rejects requests that already carry a logged in user
func RequireAnonymous(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) != nil {
			WriteStatus(w, http.StatusUnauthorized, MsgAlreadyLoggedIn)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuthenticated rejects anonymous requests
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			WriteStatus(w, http.StatusUnauthorized, MsgPleaseLogIn)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects anonymous requests first, then users without the admin flag.
// The flag is re-read from the store on every call.
func RequireAdmin(checker AdminChecker, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				WriteStatus(w, http.StatusUnauthorized, MsgPleaseLogIn)
				return
			}

			admin, err := checker.IsAdmin(r.Context(), user.Username)
			if err != nil {
				log.Errorf("Admin check for %s failed: %v", user.Username, err)
				WriteStatus(w, http.StatusInternalServerError, MsgSomethingBad)
				return
			}
			if !admin {
				WriteStatus(w, http.StatusUnauthorized, MsgNotAuthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteStatus writes a {"status": msg} JSON body with the given code
func WriteStatus(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": msg})
}

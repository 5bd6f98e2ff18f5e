package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dan9191/auth-service/internal/common"
	"github.com/Dan9191/auth-service/internal/middleware"
	"github.com/Dan9191/auth-service/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	msgSuccess        = "success"
	msgError          = "error"
	msgUserNotFound   = "User not found"
	msgInvalidRequest = "Invalid request body"
)

// Accounts is the user service the handlers depend on
type Accounts interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Verify(ctx context.Context, username, password string) (*models.User, error)
}

// Sessions establishes and destroys login sessions
type Sessions interface {
	Login(w http.ResponseWriter, r *http.Request, user *models.User) error
	Logout(w http.ResponseWriter, r *http.Request) error
}

// Pinger reports whether the database is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Handler struct {
	accounts Accounts
	sessions Sessions
	db       Pinger
	log      *logrus.Logger
}

func NewHandler(accounts Accounts, sessions Sessions, db Pinger, log *logrus.Logger) *Handler {
	return &Handler{accounts: accounts, sessions: sessions, db: db, log: log}
}

// Register handles user registration and logs the new user in
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteStatus(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	user, err := h.accounts.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		var ve *common.ValidationError
		if errors.As(err, &ve) {
			middleware.WriteStatus(w, http.StatusBadRequest, ve.Message)
			return
		}
		h.log.Errorf("Registration of %s failed: %v", req.Username, err)
		middleware.WriteStatus(w, http.StatusInternalServerError, msgError)
		return
	}

	if err := h.sessions.Login(w, r, user); err != nil {
		h.log.Errorf("Failed to start session for %s: %v", user.Username, err)
		middleware.WriteStatus(w, http.StatusInternalServerError, msgError)
		return
	}
	middleware.WriteStatus(w, http.StatusOK, msgSuccess)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteStatus(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	user, err := h.accounts.Verify(r.Context(), req.Username, req.Password)
	if err != nil {
		// unknown user and wrong password look the same to the client
		if common.IsAuthenticationFailure(err) {
			middleware.WriteStatus(w, http.StatusNotFound, msgUserNotFound)
			return
		}
		h.log.Errorf("Login of %s failed: %v", req.Username, err)
		middleware.WriteStatus(w, http.StatusInternalServerError, msgError)
		return
	}

	if err := h.sessions.Login(w, r, user); err != nil {
		h.log.Errorf("Failed to start session for %s: %v", user.Username, err)
		middleware.WriteStatus(w, http.StatusInternalServerError, msgError)
		return
	}
	middleware.WriteStatus(w, http.StatusOK, msgSuccess)
}

// Logout destroys the current session
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		h.log.Errorf("Failed to end session: %v", err)
		middleware.WriteStatus(w, http.StatusInternalServerError, msgError)
		return
	}
	middleware.WriteStatus(w, http.StatusOK, msgSuccess)
}

// UserInfo is reachable by any logged in user
func (h *Handler) UserInfo(w http.ResponseWriter, r *http.Request) {
	middleware.WriteStatus(w, http.StatusOK, msgSuccess)
}

// AdminInfo is reachable by admins only
func (h *Handler) AdminInfo(w http.ResponseWriter, r *http.Request) {
	middleware.WriteStatus(w, http.StatusOK, msgSuccess)
}

// Health reports database reachability
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.log.Warnf("Health check failed: %v", err)
		middleware.WriteStatus(w, http.StatusServiceUnavailable, "unavailable")
		return
	}
	middleware.WriteStatus(w, http.StatusOK, "ok")
}

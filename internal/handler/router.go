package handler

import (
	"net/http"

	"github.com/Dan9191/auth-service/internal/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

// RouterDeps are the collaborators the guards need
type RouterDeps struct {
	Users          middleware.UserResolver
	Admins         middleware.AdminChecker
	AllowedOrigins []string
	Log            *logrus.Logger
}

// NewRouter wires routes, guards and the global middleware chain
func NewRouter(h *Handler, deps RouterDeps) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Recover(deps.Log), middleware.Logging(deps.Log))

	r.HandleFunc("/healthz", h.Health).Methods("GET")

	// Session-aware routes
	app := r.PathPrefix("/").Subrouter()
	app.Use(middleware.LoadUser(deps.Users))

	app.Handle("/auth/register", middleware.RequireAnonymous(http.HandlerFunc(h.Register))).Methods("POST")
	app.Handle("/auth/login", middleware.RequireAnonymous(http.HandlerFunc(h.Login))).Methods("POST")
	app.Handle("/auth/logout", middleware.RequireAuthenticated(http.HandlerFunc(h.Logout))).Methods("GET")
	app.Handle("/user", middleware.RequireAuthenticated(http.HandlerFunc(h.UserInfo))).Methods("GET")
	app.Handle("/admin", middleware.RequireAdmin(deps.Admins, deps.Log)(http.HandlerFunc(h.AdminInfo))).Methods("GET")

	if len(deps.AllowedOrigins) == 0 {
		return r
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Aviat-at/mapleCMS/internal/auth"
	"github.com/Aviat-at/mapleCMS/internal/content"
	"github.com/Aviat-at/mapleCMS/internal/obs"
	"github.com/Aviat-at/mapleCMS/internal/stream"
)

// ReadyProbe checks readiness (ping the DB when one is configured).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer over the identity and lifecycle core.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	sessions *auth.Sessions
	issuer   *auth.TokenIssuer
	engine   *content.Engine
	events   *stream.Stream
}

// Options carries the collaborators the API exposes.
type Options struct {
	Ready    ReadyProbe
	Version  string
	Sessions *auth.Sessions
	Issuer   *auth.TokenIssuer
	Engine   *content.Engine
	Events   *stream.Stream
}

// New wires the routes.
func New(opts Options) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: opts.Ready,
		version:    opts.Version,
		sessions:   opts.Sessions,
		issuer:     opts.Issuer,
		engine:     opts.Engine,
		events:     opts.Events,
	}

	a.mux.HandleFunc("GET /healthz", a.Healthz)
	a.mux.HandleFunc("GET /readyz", a.Ready)
	a.mux.Handle("GET /metrics", obs.Handler())

	a.mux.HandleFunc("POST /v1/auth/register", a.handleRegister)
	a.mux.HandleFunc("POST /v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("POST /v1/auth/refresh", a.handleRefresh)
	a.mux.HandleFunc("POST /v1/auth/logout", a.handleLogout)

	a.mux.HandleFunc("GET /v1/users/me", a.handleMe)
	a.mux.HandleFunc("GET /v1/users", a.handleListUsers)
	a.mux.HandleFunc("PUT /v1/users/{id}/status", a.handleUserStatus)

	a.mux.HandleFunc("POST /v1/articles", a.handleCreateArticle)
	a.mux.HandleFunc("GET /v1/articles", a.handleListArticles)
	a.mux.HandleFunc("GET /v1/articles/events", a.handleArticleEvents)
	a.mux.HandleFunc("GET /v1/articles/{id}", a.handleGetArticle)
	a.mux.HandleFunc("POST /v1/articles/{id}/status", a.handleTransition)

	return a
}

// Handler returns the full handler chain for the server.
func (a *API) Handler() http.Handler {
	return obs.Instrument(a.withAuth(a.mux))
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "maplecms-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// unauthorized is the single response body for every authentication failure:
// no detail leaks about which check failed.
func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "unauthorized")
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeContentError maps lifecycle errors onto status codes. Unlike auth
// failures these carry no secrets, so the detail is surfaced.
func writeContentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, content.ErrNotFound):
		writeError(w, http.StatusNotFound, "article not found")
	case errors.Is(err, content.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, content.ErrConflict):
		writeError(w, http.StatusConflict, "version conflict")
	case errors.Is(err, content.ErrInvalidTransition):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, content.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid input")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

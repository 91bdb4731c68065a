// Package triageapi exposes the triage engine over HTTP.
package triageapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/careflow/internal/classify"
	"github.com/linnemanlabs/careflow/internal/triage"
)

// Engine defines the business operations triageapi needs.
type Engine interface {
	StartSession(ctx context.Context, userID string, now time.Time) (*triage.Session, error)
	Triage(ctx context.Context, req *triage.Request) (*triage.Outcome, error)
	GetSession(ctx context.Context, id string) (*triage.Session, []triage.Assessment, error)
	GetUser(ctx context.Context, id string) (*triage.User, error)
	ResetOTC(ctx context.Context, userID string) error
	Unsuspend(ctx context.Context, userID string) error
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger     log.Logger
	svc        Engine
	classifier classify.Classifier
	adminMW    func(http.Handler) http.Handler
}

// New creates a new API handler. adminMW guards the admin route group; pass
// nil to mount admin routes unguarded (tests only).
func New(logger log.Logger, svc Engine, classifier classify.Classifier, adminMW func(http.Handler) http.Handler) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("triage engine is required"))
	}
	if classifier == nil {
		classifier = classify.NewRules()
	}
	return &API{
		logger:     logger,
		svc:        svc,
		classifier: classifier,
		adminMW:    adminMW,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", a.handleStartSession)
		r.Get("/sessions/{id}", a.handleGetSession)
		r.Post("/triage", a.handleTriage)

		r.Route("/admin", func(r chi.Router) {
			if a.adminMW != nil {
				r.Use(a.adminMW)
			}
			r.Get("/users/{id}", a.handleGetUser)
			r.Post("/users/{id}/otc-reset", a.handleResetOTC)
			r.Post("/users/{id}/unsuspend", a.handleUnsuspend)
		})
	})
}

func (a *API) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// respondErr maps engine sentinels onto HTTP statuses.
func (a *API) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, triage.ErrInvalidInput):
		a.respond(w, http.StatusBadRequest, errBody(err))
	case errors.Is(err, triage.ErrNotFound):
		a.respond(w, http.StatusNotFound, errBody(err))
	case errors.Is(err, triage.ErrSessionClosed):
		a.respond(w, http.StatusConflict, errBody(err))
	case errors.Is(err, triage.ErrSuspended):
		a.respond(w, http.StatusForbidden, errBody(err))
	case errors.Is(err, triage.ErrRateLimited):
		a.respond(w, http.StatusTooManyRequests, errBody(err))
	default:
		a.logger.Error(r.Context(), err, "request failed",
			"method", r.Method, "path", r.URL.Path)
		a.respond(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func errBody(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}

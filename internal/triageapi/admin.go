package triageapi

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"
)

func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("careflow.user.id", id))

	user, err := a.svc.GetUser(r.Context(), id)
	if err != nil {
		a.respondErr(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, user)
}

func (a *API) handleResetOTC(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("careflow.user.id", id))

	if err := a.svc.ResetOTC(r.Context(), id); err != nil {
		a.respondErr(w, r, err)
		return
	}
	a.logger.Info(r.Context(), "admin otc reset", "user_id", id)
	a.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleUnsuspend(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("careflow.user.id", id))

	if err := a.svc.Unsuspend(r.Context(), id); err != nil {
		a.respondErr(w, r, err)
		return
	}
	a.logger.Info(r.Context(), "admin unsuspend", "user_id", id)
	a.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

package triageapi

import (
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"
)

type startSessionRequest struct {
	UserID string `json:"user_id"`
}

func (a *API) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respond(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("careflow.user.id", req.UserID))

	sess, err := a.svc.StartSession(r.Context(), req.UserID, time.Now())
	if err != nil {
		a.respondErr(w, r, err)
		return
	}

	span.SetAttributes(attribute.String("careflow.session.id", sess.ID))
	a.respond(w, http.StatusCreated, sess)
}

func (a *API) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("careflow.session.id", id))

	sess, history, err := a.svc.GetSession(r.Context(), id)
	if err != nil {
		a.respondErr(w, r, err)
		return
	}

	a.respond(w, http.StatusOK, map[string]any{
		"session":     sess,
		"assessments": history,
	})
}

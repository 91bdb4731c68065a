package triageapi

import (
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/careflow/internal/triage"
)

type triageRequest struct {
	UserID    string   `json:"user_id"`
	SessionID string   `json:"session_id"`
	Symptoms  []string `json:"symptoms"`

	// Severity overrides the classifier when a trusted upstream already
	// scored the message.
	Severity *triage.SeverityInput `json:"severity,omitempty"`

	OTCEligible bool                `json:"otc_eligible"`
	Need        triage.SpecialtyNeed `json:"specialty_need,omitempty"`

	// LocalTime is the caller's wall clock for time-of-day provider rules,
	// RFC 3339. Empty means server time.
	LocalTime string `json:"local_time,omitempty"`
}

func (a *API) handleTriage(w http.ResponseWriter, r *http.Request) {
	var req triageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respond(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("careflow.user.id", req.UserID),
		attribute.String("careflow.session.id", req.SessionID),
	)

	severity, err := a.severityFor(r, &req)
	if err != nil {
		a.respondErr(w, r, err)
		return
	}

	var local time.Time
	if req.LocalTime != "" {
		local, err = time.Parse(time.RFC3339, req.LocalTime)
		if err != nil {
			a.respond(w, http.StatusBadRequest, map[string]string{"error": "invalid local_time, want RFC 3339"})
			return
		}
	}

	out, err := a.svc.Triage(r.Context(), &triage.Request{
		UserID:      req.UserID,
		SessionID:   req.SessionID,
		Severity:    *severity,
		OTCEligible: req.OTCEligible,
		Need:        req.Need,
		Now:         time.Now(),
		LocalTime:   local,
	})
	if err != nil {
		a.respondErr(w, r, err)
		return
	}

	span.SetAttributes(attribute.String("careflow.triage.decision", string(out.Decision)))
	a.respond(w, http.StatusOK, out)
}

// severityFor uses the caller-supplied severity when present, otherwise runs
// the classifier over the raw symptoms.
func (a *API) severityFor(r *http.Request, req *triageRequest) (*triage.SeverityInput, error) {
	if req.Severity != nil {
		if len(req.Severity.SymptomTerms) == 0 {
			req.Severity.SymptomTerms = req.Symptoms
		}
		return req.Severity, nil
	}

	res, err := a.classifier.Classify(r.Context(), req.Symptoms)
	if err != nil {
		return nil, err
	}
	return &triage.SeverityInput{
		MedicalLevel: res.MedicalLevel,
		PsychLevel:   res.PsychLevel,
		SymptomTerms: req.Symptoms,
		MedicalScope: res.MedicalScope,
	}, nil
}

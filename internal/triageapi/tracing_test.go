package triageapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestHandlers_AnnotateSpans(t *testing.T) {
	// Not parallel: swaps the global OTel tracer provider.

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	r, _ := newTestRouter(t)
	h := otelhttp.NewHandler(r, "http.server")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader(`{"user_id":"u1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	spans := exporter.GetSpans()
	if len(spans) == 0 {
		t.Fatal("no spans exported")
	}

	var sawUser, sawSession bool
	for _, s := range spans {
		for _, attr := range s.Attributes {
			switch attr.Key {
			case attribute.Key("careflow.user.id"):
				if attr.Value.AsString() == "u1" {
					sawUser = true
				}
			case attribute.Key("careflow.session.id"):
				if attr.Value.AsString() != "" {
					sawSession = true
				}
			}
		}
	}
	if !sawUser {
		t.Error("span missing careflow.user.id attribute")
	}
	if !sawSession {
		t.Error("span missing careflow.session.id attribute")
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gitrello/github-integration/internal/logger"
)

func TestRequestIDGenerated(t *testing.T) {
	var ctxID string
	handler := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ctxID = logger.RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if ctxID == "" {
		t.Fatal("expected a generated request id in context")
	}
	if got := rec.Header().Get("X-Request-ID"); got != ctxID {
		t.Fatalf("response header %q does not match context id %q", got, ctxID)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	var ctxID string
	handler := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ctxID = logger.RequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if ctxID != "upstream-id" {
		t.Fatalf("expected upstream id preserved, got %q", ctxID)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "upstream-id" {
		t.Fatalf("unexpected response header: %q", got)
	}
}

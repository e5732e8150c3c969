package docs

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestSpecIsServedFromBinary(t *testing.T) {
	r := chi.NewRouter()
	RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/docs/swagger.yaml", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "openapi:") {
		t.Error("embedded spec content missing from response")
	}
	if got := rec.Header().Get("Content-Type"); got != "application/yaml" {
		t.Errorf("content type = %q, want application/yaml", got)
	}
}

func TestDocsRedirect(t *testing.T) {
	r := chi.NewRouter()
	RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/docs", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/docs/index.html" {
		t.Errorf("redirect location = %q, want /docs/index.html", loc)
	}
}

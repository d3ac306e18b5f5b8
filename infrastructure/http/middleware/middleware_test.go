package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"chat-relay/auth"
	"chat-relay/domain"
	"chat-relay/observability"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestLoggingMiddleware(t *testing.T) {
	req := require.New(t)

	// Given a router logging into a buffer and recording into a fresh registry
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	registry := prometheus.NewRegistry()
	collector := observability.NewCollector(registry)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := auth.WithPrincipal(r.Context(), domain.Identity{ID: 42, Username: "alice"})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	r.Use(NewLoggingMiddleware(logger, collector))
	r.Get("/users/{name}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	// When a request goes through
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/bob", nil))

	// Then the line carries status and user id, and the metric uses the route pattern
	req.Equal(http.StatusTeapot, w.Code)
	req.Contains(buf.String(), `"status":418`)
	req.Contains(buf.String(), `"user_id":42`)
	req.Contains(buf.String(), `"level":"WARN"`)
	count, err := testutil.GatherAndCount(registry, "chat_http_requests_total")
	req.NoError(err)
	req.Equal(1, count)
	families, err := registry.Gather()
	req.NoError(err)
	var routes []string
	for _, family := range families {
		if family.GetName() != "chat_http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "route" {
					routes = append(routes, label.GetValue())
				}
			}
		}
	}
	req.Equal([]string{"/users/{name}"}, routes)
}

func TestStatusRecorder_DefaultsToOK(t *testing.T) {
	req := require.New(t)
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}

	_, err := rec.Write([]byte("ok"))
	rec.WriteHeader(http.StatusInternalServerError)

	req.NoError(err)
	req.Equal(http.StatusOK, rec.statusCode)
}

func TestStatusRecorder_HijackUnsupported(t *testing.T) {
	req := require.New(t)
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}

	_, _, err := rec.Hijack()

	req.Error(err)
}

func TestRecoveryMiddleware(t *testing.T) {
	req := require.New(t)
	h := NewRecoveryMiddleware(slog.Default())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	req.Equal(http.StatusInternalServerError, w.Code)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/studyace/internal/api/shared"
	"github.com/phrazzld/studyace/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceMiddleware(t *testing.T) {
	t.Parallel()
	log, buf := logger.NewTestLogger()

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("handled")
	})

	w := httptest.NewRecorder()
	NewTraceMiddleware(log)(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Len(t, seen, 32)
	assert.Equal(t, seen, w.Header().Get(TraceIDHeader))

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, seen, e["trace_id"])
	}
	assert.Equal(t, "request started", entries[0]["msg"])
	assert.Equal(t, "/health", entries[0]["path"])
}

package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, perMinute int) (*Limiter, *time.Time) {
	t.Helper()
	rl := NewLimiter(Config{RequestsPerMinute: perMinute, CleanupInterval: time.Hour})
	t.Cleanup(rl.Stop)
	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }
	return rl, &clock
}

func TestAllowWindow(t *testing.T) {
	rl, clock := newTestLimiter(t, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.1"), "request %d", i+1)
	}
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "other clients have their own window")

	// Steady traffic must not keep extending the window.
	*clock = clock.Add(30 * time.Second)
	assert.False(t, rl.Allow("10.0.0.1"))
	*clock = clock.Add(31 * time.Second)
	assert.True(t, rl.Allow("10.0.0.1"))

	m := rl.GetMetrics()
	assert.EqualValues(t, 2, m.TotalHits)
	assert.EqualValues(t, 2, m.ClientCount)
}

func TestCleanupStaleEntries(t *testing.T) {
	rl, clock := newTestLimiter(t, 10)
	rl.Allow("a")
	*clock = clock.Add(9 * time.Minute)
	rl.Allow("b")
	*clock = clock.Add(2 * time.Minute)

	assert.Equal(t, 1, rl.cleanupStaleEntries())
	assert.Equal(t, 1, rl.ActiveClients())
}

func TestStopTwice(t *testing.T) {
	rl := NewLimiter(Config{})
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
	assert.Equal(t, 60, rl.requestsPerMinute)
}

func TestMiddlewareOnlyCountsListedMethods(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)
	ip := func(*http.Request) string { return "1.2.3.4" }
	h := rl.Middleware(ip, nil, http.MethodPost)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(method string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(method, "/periods", nil))
		return rr
	}

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusNoContent, do(http.MethodGet).Code)
	}
	assert.Equal(t, http.StatusNoContent, do(http.MethodPost).Code)
	rr := do(http.MethodPost)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
}

func TestMiddlewareCustomHandler(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)
	onLimit := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}
	h := rl.Middleware(func(*http.Request) string { return "x" }, onLimit)(http.NotFoundHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeCache implements cache.Cache with a scriptable counter.
type fakeCache struct {
	count   int64
	incrErr error
	lastKey string
}

func (f *fakeCache) Ping(context.Context) error { return nil }

func (f *fakeCache) SetJobStatus(context.Context, string, string, time.Duration) error { return nil }

func (f *fakeCache) GetJobStatus(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (f *fakeCache) IncrWithExpiry(_ context.Context, key string, _ time.Duration) (int64, error) {
	if f.incrErr != nil {
		return 0, f.incrErr
	}
	f.lastKey = key
	f.count++
	return f.count, nil
}

func (f *fakeCache) Close() error { return nil }

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit_AllowsUnderLimit(t *testing.T) {
	rl := NewRateLimit(&fakeCache{}, 5)
	h := rl.Limit(okHandler())

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis", nil)
		req.RemoteAddr = "10.0.0.1:54321"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimit_BlocksOverLimit(t *testing.T) {
	fc := &fakeCache{count: 5} // next increment is the 6th request
	rl := NewRateLimit(fc, 5)
	h := rl.Limit(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis", nil)
	req.RemoteAddr = "10.0.0.1:54321"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimit_KeyedByClientIP(t *testing.T) {
	fc := &fakeCache{}
	rl := NewRateLimit(fc, 5)
	h := rl.Limit(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis", nil)
	req.RemoteAddr = "192.168.1.7:40000"
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "oncopilot:ratelimit:192.168.1.7", fc.lastKey)
}

func TestRateLimit_FailsOpenOnCacheError(t *testing.T) {
	rl := NewRateLimit(&fakeCache{incrErr: errors.New("redis down")}, 5)
	h := rl.Limit(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis", nil)
	req.RemoteAddr = "10.0.0.1:54321"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecovery_ConvertsPanicTo500(t *testing.T) {
	h := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}

func TestRecovery_PassesThroughNormally(t *testing.T) {
	h := Recovery(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogger_PreservesStatus(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}

package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 5 * time.Millisecond
	return cfg
}

func countingServer(t *testing.T, status func(n int32) int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		w.WriteHeader(status(n))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestGet_SendsHeaders(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	resp, err := New(fastConfig()).Get(context.Background(), srv.URL, http.Header{"Authorization": {"Bearer t"}})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Bearer t", got)
}

func TestDo_RetriesIdempotent5xx(t *testing.T) {
	srv, calls := countingServer(t, func(n int32) int {
		if n < 3 {
			return http.StatusBadGateway
		}
		return http.StatusOK
	})

	resp, err := New(fastConfig()).Get(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDo_ReturnsLast5xxWhenRetriesExhausted(t *testing.T) {
	srv, calls := countingServer(t, func(int32) int { return http.StatusServiceUnavailable })

	resp, err := New(fastConfig()).Get(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDo_NoRetryCases(t *testing.T) {
	tests := []struct {
		name   string
		method string
		status int
	}{
		{"501", http.MethodGet, http.StatusNotImplemented},
		{"4xx", http.MethodGet, http.StatusUnauthorized},
		{"non-idempotent", http.MethodPost, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := countingServer(t, func(int32) int { return tt.status })

			req, err := http.NewRequest(tt.method, srv.URL, http.NoBody)
			require.NoError(t, err)
			resp, err := New(fastConfig()).Do(context.Background(), req)
			require.NoError(t, err)
			resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestDo_ContextCanceled(t *testing.T) {
	srv, _ := countingServer(t, func(int32) int { return http.StatusOK })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(fastConfig()).Get(ctx, srv.URL, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGet_InvalidURL(t *testing.T) {
	_, err := New(fastConfig()).Get(context.Background(), "://bad", nil)
	assert.Error(t, err)
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, isRetryableError(nil))
	assert.False(t, isRetryableError(context.Canceled))
	assert.False(t, isRetryableError(context.DeadlineExceeded))
	assert.True(t, isRetryableError(&timeoutErr{}))
}

type timeoutErr struct{}

func (*timeoutErr) Error() string   { return "i/o timeout" }
func (*timeoutErr) Timeout() bool   { return true }
func (*timeoutErr) Temporary() bool { return true }

func TestAddJitter(t *testing.T) {
	assert.Zero(t, addJitter(0))
	base := 100 * time.Millisecond
	for i := 0; i < 50; i++ {
		d := addJitter(base)
		assert.GreaterOrEqual(t, d, 80*time.Millisecond)
		assert.LessOrEqual(t, d, 120*time.Millisecond)
	}
}

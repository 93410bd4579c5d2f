package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohauMushi/FluxStore-App/pkg/logger"
)

func breakerConfig(name string) CircuitBreakerConfig {
	cfg := DefaultCircuitBreakerConfig(name)
	cfg.MinRequests = 3
	cfg.Timeout = 50 * time.Millisecond
	return cfg
}

func noRetryClient() *Client {
	cfg := fastConfig()
	cfg.MaxRetries = 0
	return New(cfg)
}

func get(t *testing.T, c *CircuitBreakerClient, url string) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, http.NoBody)
	require.NoError(t, err)
	return c.Do(context.Background(), req)
}

func TestCircuitBreaker_TripsAndRecovers(t *testing.T) {
	var healthy atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if healthy.Load() {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cb := NewCircuitBreakerClient(noRetryClient(), breakerConfig("trip-test"), logger.Discard())

	for i := 0; i < 3; i++ {
		_, err := get(t, cb, srv.URL)
		require.Error(t, err)
		assert.False(t, IsBreakerOpen(err))
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := get(t, cb, srv.URL)
	assert.True(t, IsBreakerOpen(err))

	healthy.Store(true)
	time.Sleep(60 * time.Millisecond)

	resp, err := get(t, cb, srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	cb := NewCircuitBreakerClient(noRetryClient(), breakerConfig("4xx-test"), logger.Discard())
	for i := 0; i < 5; i++ {
		resp, err := get(t, cb, srv.URL)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestDefaultCircuitBreakerConfig(t *testing.T) {
	cfg := DefaultCircuitBreakerConfig("identity")
	assert.Equal(t, "identity", cfg.Name)
	assert.Equal(t, uint32(5), cfg.MinRequests)
	assert.Equal(t, 0.5, cfg.FailureRatio)
}

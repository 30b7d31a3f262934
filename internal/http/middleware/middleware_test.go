package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error {
		rid, _ := c.Locals(RequestIDLocalKey).(string)
		assert.NotEmpty(t, rid)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
}

func TestRequestID_PropagatesIncoming(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}

type fakeProvider struct {
	userID uuid.UUID
	err    error
	token  string
}

func (f *fakeProvider) Resolve(_ context.Context, token string) (uuid.UUID, error) {
	f.token = token
	return f.userID, f.err
}

func TestAuth_ResolvesUser(t *testing.T) {
	userID := uuid.New()
	provider := &fakeProvider{userID: userID}

	app := fiber.New()
	app.Use(Auth(provider, "X-Session-Token"))
	app.Get("/", func(c *fiber.Ctx) error {
		got, ok := UserIDFromCtx(c)
		require.True(t, ok)
		assert.Equal(t, userID, got)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Session-Token", "session-token")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "session-token", provider.token)
}

func TestAuth_MissingToken(t *testing.T) {
	app := fiber.New()
	app.Use(Auth(&fakeProvider{}, "X-Session-Token"))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_InvalidToken(t *testing.T) {
	app := fiber.New()
	app.Use(Auth(&fakeProvider{err: ErrUnauthenticated}, "X-Session-Token"))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Session-Token", "bad")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_ProviderUnavailable(t *testing.T) {
	app := fiber.New()
	app.Use(Auth(&fakeProvider{err: errors.New("timeout")}, "X-Session-Token"))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Session-Token", "tok")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	limiter := NewRateLimiter(1, 2)

	app := fiber.New()
	app.Use(limiter.Handler())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestRateLimiter_PurgeDropsIdleClients(t *testing.T) {
	limiter := NewRateLimiter(1, 2)

	clock := time.Now()
	limiter.now = func() time.Time { return clock }

	limiter.limiterFor("stale-client")
	clock = clock.Add(limiterIdleAfter + time.Minute)
	limiter.limiterFor("active-client")

	assert.Equal(t, 1, limiter.Purge())

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.NotContains(t, limiter.limiters, "stale-client")
	assert.Contains(t, limiter.limiters, "active-client")
}

func TestRateLimiter_RequestRefreshesIdleWindow(t *testing.T) {
	limiter := NewRateLimiter(1, 2)

	clock := time.Now()
	limiter.now = func() time.Time { return clock }

	limiter.limiterFor("client")
	clock = clock.Add(limiterIdleAfter - time.Minute)
	limiter.limiterFor("client")
	clock = clock.Add(2 * time.Minute)

	assert.Equal(t, 0, limiter.Purge())
}

func TestPrometheusMiddleware_CountsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	pm, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(pm.Handler())
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	_, err = app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range families {
		if mf.GetName() == "http_requests_total" {
			found = true
			require.Len(t, mf.GetMetric(), 1)
			assert.Equal(t, float64(1), mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found, "http_requests_total should be registered")
}

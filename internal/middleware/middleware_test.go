package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/codemission/internal/api"
	"github.com/noah-isme/codemission/internal/middleware"
)

func perform(t *testing.T, app *fiber.App, header http.Header) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestCorrelationIDForwardsIncomingHeader(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error {
		require.Equal(t, "abc-123", middleware.GetCorrelationID(c))
		require.Equal(t, "abc-123", api.CorrelationIDFromContext(c.UserContext()))
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp := perform(t, app, http.Header{"X-Request-Id": []string{"abc-123"}})
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	require.Equal(t, "abc-123", resp.Header.Get(api.CorrelationHeader))
}

func TestCorrelationIDGeneratesIdentifier(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp := perform(t, app, nil)
	require.Len(t, resp.Header.Get(api.CorrelationHeader), 36)
}

func TestRegisterRecoversPanics(t *testing.T) {
	app := fiber.New()
	logger := zerolog.Nop()
	middleware.Register(app, middleware.Config{Logger: &logger})
	app.Get("/", func(*fiber.Ctx) error {
		panic("boom")
	})

	resp := perform(t, app, nil)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestRegisterRateLimit(t *testing.T) {
	app := fiber.New()
	middleware.Register(app, middleware.Config{RateLimit: 2, RateWindow: time.Minute})
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	require.Equal(t, fiber.StatusOK, perform(t, app, nil).StatusCode)
	require.Equal(t, fiber.StatusOK, perform(t, app, nil).StatusCode)
	require.Equal(t, fiber.StatusTooManyRequests, perform(t, app, nil).StatusCode)
}

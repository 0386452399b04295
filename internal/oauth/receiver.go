// Package oauth receives the Google sign-in redirect on a local listener and turns the token it
// carries into a stored session.
package oauth

import (
	"context"
	"fmt"
	"html"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codemission/internal/api"
	"github.com/noah-isme/codemission/internal/middleware"
	"github.com/noah-isme/codemission/internal/models"
	"github.com/noah-isme/codemission/internal/utils"
)

const (
	// CallbackPath is where the backend redirects after Google sign-in.
	CallbackPath = "/auth/callback"

	messageProviderFailed = "Google sign-in failed."
	messageVerifyFailed   = "Could not verify your user."
)

// Completer exchanges a redirect token for the signed-in user.
type Completer interface {
	CompleteOAuth(ctx context.Context, token string) (models.User, error)
}

// Result is the outcome of one callback.
type Result struct {
	User models.User
	Err  error
}

// Receiver serves the callback page and reports the first outcome on Results.
type Receiver struct {
	app     *fiber.App
	auth    Completer
	logger  zerolog.Logger
	results chan Result
	once    sync.Once
}

// NewReceiver builds the fiber app for the callback.
func NewReceiver(auth Completer, logger zerolog.Logger) *Receiver {
	r := &Receiver{
		auth:    auth,
		logger:  logger.With().Str("component", "oauth_receiver").Logger(),
		results: make(chan Result, 1),
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
	})
	middleware.Register(app, middleware.Config{Logger: &r.logger, RateLimit: 20, RateWindow: time.Minute})
	app.Get(CallbackPath, r.callback)
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, "waiting for sign-in", nil)
	})

	r.app = app
	return r
}

// App exposes the fiber app, mainly for tests.
func (r *Receiver) App() *fiber.App {
	return r.app
}

// Results delivers the outcome of the first callback. Later callbacks are answered but not reported.
func (r *Receiver) Results() <-chan Result {
	return r.results
}

// Listen serves on addr until ctx is done.
func (r *Receiver) Listen(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- r.app.Listen(addr)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.app.ShutdownWithContext(shutdownCtx); err != nil {
			r.logger.Warn().Err(err).Msg("callback listener shutdown failed")
		}
		return nil
	case err := <-errCh:
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
}

// Wait blocks until a callback arrives or ctx is done.
func (r *Receiver) Wait(ctx context.Context) (models.User, error) {
	select {
	case result := <-r.results:
		return result.User, result.Err
	case <-ctx.Done():
		return models.User{}, &api.Error{Kind: api.KindTimeout, Message: "Timed out waiting for Google sign-in.", Err: ctx.Err()}
	}
}

func (r *Receiver) callback(c *fiber.Ctx) error {
	if providerErr := c.Query("error"); providerErr != "" {
		r.logger.Warn().Str("error", providerErr).Msg("provider reported a failed sign-in")
		r.deliver(Result{Err: api.NewValidationError(messageProviderFailed)})
		return page(c, fiber.StatusBadRequest, messageProviderFailed)
	}

	user, err := r.auth.CompleteOAuth(c.UserContext(), c.Query("token"))
	if err != nil {
		message := api.AsError(err).Message
		status := fiber.StatusBadRequest
		if api.KindOf(err) != api.KindValidation {
			message = messageVerifyFailed
			status = fiber.StatusBadGateway
		}
		r.logger.Warn().Err(err).Str("correlation_id", middleware.GetCorrelationID(c)).Msg("oauth callback rejected")
		r.deliver(Result{Err: err})
		return page(c, status, message)
	}

	r.deliver(Result{User: user})
	return page(c, fiber.StatusOK, fmt.Sprintf("Signed in as %s. You can close this window.", user.Email))
}

func (r *Receiver) deliver(result Result) {
	r.once.Do(func() {
		r.results <- result
	})
}

func page(c *fiber.Ctx, status int, message string) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).SendString(fmt.Sprintf(
		"<!doctype html><html><head><title>CodeMission</title></head><body><p>%s</p></body></html>",
		html.EscapeString(message),
	))
}

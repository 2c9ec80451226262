package jwtware_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gunung/portal-auth/middleware/jwtware"
)

var errDenied = errors.New("denied")

type grant struct {
	subject string
}

type ctxKey struct{}

// authorizeStatic accepts the header "Bearer good" only
func authorizeStatic(_ context.Context, header string) (any, error) {
	if header != "Bearer good" {
		return nil, errDenied
	}
	return &grant{subject: "12345"}, nil
}

func newApp(cfg jwtware.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if errors.Is(err, errDenied) {
				return c.Status(http.StatusUnauthorized).SendString(err.Error())
			}
			return c.Status(http.StatusInternalServerError).SendString(err.Error())
		},
	})
	app.Use(jwtware.New(cfg))
	app.Get("/", func(c *fiber.Ctx) error {
		g, _ := c.Locals("user").(*grant)
		if g == nil {
			return c.SendString("anonymous")
		}
		return c.SendString(g.subject)
	})
	return app
}

func send(t *testing.T, app *fiber.App, header map[string]string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(body)
}

func TestJWTWare_BasicHeaderExtraction(t *testing.T) {
	app := newApp(jwtware.Config{Authorize: authorizeStatic})

	status, body := send(t, app, map[string]string{"Authorization": "Bearer good"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "12345", body)

	status, body = send(t, app, map[string]string{"Authorization": "Bearer bad"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "denied", body)

	status, _ = send(t, app, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestJWTWare_CustomTokenLookupAndContextKey(t *testing.T) {
	app := fiber.New()
	app.Use(jwtware.New(jwtware.Config{
		Authorize:   authorizeStatic,
		TokenLookup: "X-Session",
		ContextKey:  "session",
	}))
	app.Get("/", func(c *fiber.Ctx) error {
		g := c.Locals("session").(*grant)
		return c.SendString(g.subject)
	})

	status, body := send(t, app, map[string]string{"X-Session": "Bearer good"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "12345", body)

	status, _ = send(t, app, map[string]string{"Authorization": "Bearer good"})
	assert.NotEqual(t, http.StatusOK, status)
}

func TestJWTWare_Filter(t *testing.T) {
	app := newApp(jwtware.Config{
		Authorize: authorizeStatic,
		Filter: func(c *fiber.Ctx) bool {
			return c.Get("X-Public") != ""
		},
	})

	status, body := send(t, app, map[string]string{"X-Public": "1"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "anonymous", body)
}

func TestJWTWare_ErrorHandler(t *testing.T) {
	app := newApp(jwtware.Config{
		Authorize: authorizeStatic,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(http.StatusTeapot).SendString("custom: " + err.Error())
		},
	})

	status, body := send(t, app, map[string]string{"Authorization": "Bearer bad"})
	assert.Equal(t, http.StatusTeapot, status)
	assert.Equal(t, "custom: denied", body)
}

func TestJWTWare_ContextEnricher(t *testing.T) {
	app := fiber.New()
	app.Use(jwtware.New(jwtware.Config{
		Authorize: authorizeStatic,
		ContextEnricher: func(ctx context.Context, g any) context.Context {
			return context.WithValue(ctx, ctxKey{}, g.(*grant).subject)
		},
	}))
	app.Get("/", func(c *fiber.Ctx) error {
		subject, _ := c.UserContext().Value(ctxKey{}).(string)
		return c.SendString(subject)
	})

	_, body := send(t, app, map[string]string{"Authorization": "Bearer good"})
	assert.Equal(t, "12345", body)
}

func TestJWTWare_ValidationListeners(t *testing.T) {
	var calls []string

	app := newApp(jwtware.Config{
		Authorize: authorizeStatic,
		ValidationListeners: []jwtware.ValidationListener{
			func(c *fiber.Ctx, g any) error {
				calls = append(calls, "first:"+g.(*grant).subject)
				return nil
			},
			nil,
			func(c *fiber.Ctx, g any) error {
				calls = append(calls, "second")
				if strings.Contains(c.Get("X-Reject"), "yes") {
					return errDenied
				}
				return nil
			},
		},
	})

	status, _ := send(t, app, map[string]string{"Authorization": "Bearer good"})
	assert.Equal(t, http.StatusOK, status)

	status, _ = send(t, app, map[string]string{"Authorization": "Bearer good", "X-Reject": "yes"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = send(t, app, map[string]string{"Authorization": "Bearer bad"})
	assert.Equal(t, http.StatusUnauthorized, status)

	assert.Equal(t, []string{"first:12345", "second", "first:12345", "second"}, calls)
}

func TestGetDefaultConfig(t *testing.T) {
	assert.PanicsWithValue(t, jwtware.ErrMissingAuthorizer.Error(), func() {
		jwtware.GetDefaultConfig()
	})

	cfg := jwtware.GetDefaultConfig(jwtware.Config{Authorize: authorizeStatic})
	assert.Equal(t, "user", cfg.ContextKey)
	assert.Equal(t, fiber.HeaderAuthorization, cfg.TokenLookup)
	assert.NotNil(t, cfg.ErrorHandler)
}

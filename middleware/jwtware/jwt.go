package jwtware

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
)

var (
	// ErrMissingAuthorizer is returned when Config.Authorize is not set
	ErrMissingAuthorizer = errors.New("jwtware: Authorize is required")
)

// AuthorizeFunc verifies the raw header value and returns the grant that is
// stored for downstream handlers.
type AuthorizeFunc func(ctx context.Context, header string) (any, error)

// ContextEnricher propagates the grant to the request's user context
type ContextEnricher func(ctx context.Context, grant any) context.Context

// ValidationListener is invoked after authorization succeeds and before the
// next handler runs.
type ValidationListener func(c *fiber.Ctx, grant any) error

type Config struct {
	// Filter skips the middleware when it returns true
	Filter func(*fiber.Ctx) bool
	// Authorize is required
	Authorize    AuthorizeFunc
	ErrorHandler fiber.ErrorHandler
	// ContextKey is the Locals key the grant is stored under
	ContextKey string
	// TokenLookup is the request header carrying the token
	TokenLookup         string
	ContextEnricher     ContextEnricher
	ValidationListeners []ValidationListener
}

// New returns a fiber handler that runs cfg.Authorize for every request
func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		grant, err := cfg.Authorize(c.UserContext(), c.Get(cfg.TokenLookup))
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		for _, listener := range cfg.ValidationListeners {
			if listener == nil {
				continue
			}
			if err := listener(c, grant); err != nil {
				return cfg.ErrorHandler(c, err)
			}
		}

		c.Locals(cfg.ContextKey, grant)

		if cfg.ContextEnricher != nil {
			c.SetUserContext(cfg.ContextEnricher(c.UserContext(), grant))
		}

		return c.Next()
	}
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Authorize == nil {
		panic(ErrMissingAuthorizer.Error())
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			return err
		}
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = fiber.HeaderAuthorization
	}

	return cfg
}

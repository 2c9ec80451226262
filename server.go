package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// AppConfig holds the HTTP surface options
type AppConfig struct {
	// Prefix is mounted in front of every route, e.g. "/api"
	Prefix string
	// AllowOrigins is passed to the CORS middleware, "*" when empty
	AllowOrigins string
	Debug        bool
	Logger       Logger
}

// NewApp builds the fiber application serving the controller routes
func NewApp(auther *Auther, cfg AppConfig) *fiber.App {
	logger := resolveLogger(cfg.Logger)

	app := fiber.New(fiber.Config{
		AppName:               "portal-auth",
		DisableStartupMessage: true,
		ErrorHandler:          NewErrorHandler(logger),
	})

	allowOrigins := cfg.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "*"
	}

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
	}))

	controller := NewAuthController(auther,
		WithControllerLogger(logger),
		WithControllerDebug(cfg.Debug),
	)

	var router fiber.Router = app
	if cfg.Prefix != "" && cfg.Prefix != "/" {
		router = app.Group(cfg.Prefix)
	}

	RegisterAuthRoutes(router, controller)

	return app
}

package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gunung/portal-auth/middleware/jwtware"
)

const (
	msgRegistered  = "Registrasi berhasil"
	msgLoggedIn    = "Login berhasil"
	msgAdminLogin  = "Login admin berhasil"
	msgUserDeleted = "User berhasil dihapus"
	msgHealthy     = "Server berjalan dengan baik"
)

// GrantLocalsKey is where the gate middleware stores the grant
const GrantLocalsKey = "grant"

type AuthControllerRoutes struct {
	Register    string
	Login       string
	Verify      string
	AdminLogin  string
	AdminVerify string
	AdminUsers  string
	Health      string
}

// AuthController exposes Auther over HTTP
type AuthController struct {
	Debug  bool
	Logger Logger
	Auther *Auther
	Routes *AuthControllerRoutes
	// Listeners run after the gate accepts a request on a protected route
	Listeners []ValidationListener
}

type AuthControllerOption func(*AuthController) *AuthController

// WithControllerLogger sets the controller logger
func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = resolveLogger(logger)
		return c
	}
}

// WithControllerDebug logs decoded payloads, secrets excluded
func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

// WithControllerListeners adds listeners to every protected route
func WithControllerListeners(listeners ...ValidationListener) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Listeners = append(c.Listeners, listeners...)
		return c
	}
}

func NewAuthController(auther *Auther, opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Auther: auther,
		Routes: &AuthControllerRoutes{
			Register:    "/auth/register",
			Login:       "/auth/login",
			Verify:      "/auth/verify",
			AdminLogin:  "/admin/login",
			AdminVerify: "/admin/verify",
			AdminUsers:  "/admin/users",
			Health:      "/health",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Auther in auth controller...")
	}

	return c
}

// RegisterAuthRoutes mounts the controller on router
func RegisterAuthRoutes(router fiber.Router, controller *AuthController) {
	gate := controller.Auther.Gate()

	requireUser := controller.protect(gate.Check(RequireUser))
	requireAdmin := controller.protect(gate.Check(RequireAdmin))

	router.Get(controller.Routes.Health, controller.Health)

	router.Post(controller.Routes.Register, controller.Register)
	router.Post(controller.Routes.Login, controller.Login)
	router.Get(controller.Routes.Verify, requireUser, controller.Verify)

	router.Post(controller.Routes.AdminLogin, controller.AdminLogin)
	router.Get(controller.Routes.AdminVerify, controller.protect(controller.Auther.adminVerifyCheck()), controller.AdminVerify)
	router.Get(controller.Routes.AdminUsers, requireAdmin, controller.ListUsers)
	router.Delete(controller.Routes.AdminUsers+"/:id", requireAdmin, controller.DeleteUser)
}

func (a *AuthController) protect(check jwtware.AuthorizeFunc) fiber.Handler {
	cfg := jwtware.Config{
		Authorize:       check,
		ContextKey:      GrantLocalsKey,
		ContextEnricher: GrantContextEnricher,
	}
	RegisterValidationListeners(&cfg, a.Listeners...)
	return jwtware.New(cfg)
}

func (a *AuthController) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": msgHealthy})
}

func (a *AuthController) Register(c *fiber.Ctx) error {
	payload := new(RegisterUserMessage)
	if err := a.bind(c, payload); err != nil {
		return err
	}

	a.debugPayload(payload.Type(), fiber.Map{"fullName": payload.FullName, "email": payload.Email})

	result, err := a.Auther.Register(c.UserContext(), *payload)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": msgRegistered,
		"token":   result.Token,
		"user":    result.User,
	})
}

func (a *AuthController) Login(c *fiber.Ctx) error {
	payload := new(LoginRequest)
	if err := a.bind(c, payload); err != nil {
		return err
	}

	a.debugPayload(payload.Type(), fiber.Map{"email": payload.Email})

	result, err := a.Auther.Login(c.UserContext(), *payload)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": msgLoggedIn,
		"token":   result.Token,
		"user":    result.User,
	})
}

func (a *AuthController) Verify(c *fiber.Ctx) error {
	user, ok := FromContext(c.UserContext())
	if !ok {
		return ErrIdentityNotFound
	}
	return c.JSON(fiber.Map{"user": user.Public()})
}

func (a *AuthController) AdminLogin(c *fiber.Ctx) error {
	payload := new(AdminLoginRequest)
	if err := a.bind(c, payload); err != nil {
		return err
	}

	a.debugPayload(payload.Type(), fiber.Map{"email": payload.Email})

	result, err := a.Auther.AdminLogin(c.UserContext(), *payload)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": msgAdminLogin,
		"token":   result.Token,
		"user":    result.User,
	})
}

func (a *AuthController) AdminVerify(c *fiber.Ctx) error {
	grant, ok := GrantFromContext(c.UserContext())
	if !ok {
		return ErrMissingToken
	}
	return c.JSON(fiber.Map{"user": AdminProfileFromGrant(grant)})
}

func (a *AuthController) ListUsers(c *fiber.Ctx) error {
	list, err := a.Auther.listUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (a *AuthController) DeleteUser(c *fiber.Ctx) error {
	grant, ok := GrantFromContext(c.UserContext())
	if !ok {
		return ErrMissingToken
	}

	removed, err := a.Auther.deleteUser(c.UserContext(), grant, c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": msgUserDeleted,
		"user":    removed,
	})
}

func (a *AuthController) bind(c *fiber.Ctx, payload any) error {
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Debug("request body rejected", "path", c.Path(), "error", err)
		return ErrBadRequest.WithReason("", err)
	}
	return nil
}

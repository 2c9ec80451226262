package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
)

// NewErrorHandler returns the fiber error handler that renders *Error values.
// Only the public message leaves the process.
func NewErrorHandler(logger Logger) fiber.ErrorHandler {
	logger = resolveLogger(logger)

	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
		}

		richErr := AsError(err)

		if richErr.Code >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				"method", c.Method(),
				"path", c.Path(),
				"error", err,
			)
		} else {
			logger.Debug("request rejected",
				"method", c.Method(),
				"path", c.Path(),
				"text_code", richErr.TextCode,
				"reason", string(richErr.Reason),
			)
		}

		if richErr.TextCode == TextCodeValidation && len(richErr.Fields) > 0 {
			return c.Status(richErr.Code).JSON(fiber.Map{"errors": richErr.Fields})
		}

		return c.Status(richErr.Code).JSON(fiber.Map{"message": richErr.Message})
	}
}

func (a *AuthController) debugPayload(kind string, fields fiber.Map) {
	if !a.Debug {
		return
	}
	a.Logger.Debug("decoded payload", "type", kind, "payload", print.MaybePrettyJSON(fields))
}

package middleware

import (
	"net/http"

	"github.com/cafecanastra/conteudo/internal/logger"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidationFields validates a request struct and returns the per-field
// failure tags, or nil when the struct is valid.
func ValidationFields(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	fields := make(map[string]string)
	for _, ve := range err.(validator.ValidationErrors) {
		fields[ve.Field()] = ve.Tag()
	}
	return fields
}

// ErrorHandler converts any error escaping a handler into a structured JSON
// response. Nothing is fatal to the serving process.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	logger.Get().Error().
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", code).
		Msg("HTTP error")

	return c.Status(code).JSON(fiber.Map{
		"error": http.StatusText(code),
	})
}

package handlers

import (
	"errors"
	"fmt"

	"storefront/internal/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Guards are the route middlewares handlers attach to their routes.
type Guards struct {
	// Optional attaches a principal when a token is sent.
	Optional fiber.Handler
	// Required rejects anonymous requests.
	Required fiber.Handler
	// Admin rejects non-admin principals; it runs after Required.
	Admin fiber.Handler
	// CartKey resolves the request's cart; it runs after Optional.
	CartKey fiber.Handler
}

var statusByKind = map[apperr.Kind]int{
	apperr.KindInvalidArgument:    fiber.StatusBadRequest,
	apperr.KindUnavailable:        fiber.StatusBadRequest,
	apperr.KindInsufficientStock:  fiber.StatusBadRequest,
	apperr.KindEmptyCart:          fiber.StatusBadRequest,
	apperr.KindProductUnavailable: fiber.StatusBadRequest,
	apperr.KindNotFound:           fiber.StatusNotFound,
	apperr.KindConflict:           fiber.StatusConflict,
	apperr.KindUnauthorized:       fiber.StatusUnauthorized,
	apperr.KindForbidden:          fiber.StatusForbidden,
}

// respondError writes err as {"error", "kind", "productId"?} with the
// status of its kind. Validation failures also list the failing fields.
func respondError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return validationFailed(c, validationErrors)
	}

	kind := apperr.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = fiber.StatusInternalServerError
	}

	message := "internal server error"
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	if status == fiber.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	} else {
		log.Debugf("%s %s: %v", c.Method(), c.Path(), err)
	}

	body := fiber.Map{
		"error": message,
		"kind":  kind,
	}
	if id := apperr.ProductIDOf(err); id != "" {
		body["productId"] = id
	}
	return c.Status(status).JSON(body)
}

func validationFailed(c *fiber.Ctx, validationErrors validator.ValidationErrors) error {
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "Validation failed",
		"kind":   apperr.KindInvalidArgument,
		"errors": errorMessages,
	})
}

// bind parses the JSON body into req and runs its validate tags.
func bind(c *fiber.Ctx, v *validator.Validate, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		log.Debugf("error parsing request body: %v", err)
		return apperr.InvalidArgument("Invalid request body")
	}
	return v.Struct(req)
}

func badRequest(c *fiber.Ctx, message string) error {
	return respondError(c, apperr.InvalidArgument("%s", message))
}

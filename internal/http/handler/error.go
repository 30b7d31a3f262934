// Package handler holds the shared HTTP surface: the error envelope, the
// global error handler, and route registration.
package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/FACorreiaa/fintrack-api/internal/http/middleware"
)

// errorPayload is the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RequestIDFromCtx extracts the request id stored by middleware.RequestID.
func RequestIDFromCtx(c *fiber.Ctx) string {
	if s, ok := c.Locals(middleware.RequestIDLocalKey).(string); ok {
		return s
	}
	return ""
}

// WriteError writes a standardized JSON error response. code is a
// machine-readable short code; message must be safe to show to users.
func WriteError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: RequestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	})
}

// ErrorHandler standardizes responses for errors that escape the handlers,
// including fiber.NewError raised by middleware.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "internal server error"
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
			message = e.Message
		}

		switch status {
		case fiber.StatusBadRequest:
			return WriteError(c, status, "BAD_REQUEST", message)
		case fiber.StatusUnauthorized:
			return WriteError(c, status, "UNAUTHORIZED", message)
		case fiber.StatusNotFound:
			return WriteError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return WriteError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return WriteError(c, status, "PAYLOAD_TOO_LARGE", "uploaded file is too large")
		case fiber.StatusTooManyRequests:
			return WriteError(c, status, "RATE_LIMITED", message)
		case fiber.StatusBadGateway:
			return WriteError(c, status, "UPSTREAM_ERROR", message)
		default:
			return WriteError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}

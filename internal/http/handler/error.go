package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"meetapi/internal/http/middleware"
	"meetapi/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_INPUT", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// statusForReason maps a service reason to its HTTP status.
func statusForReason(reason service.Reason) int {
	switch reason {
	case service.ReasonInvalidInput, service.ReasonDurationExceeded:
		return fiber.StatusBadRequest
	case service.ReasonNotFound:
		return fiber.StatusNotFound
	case service.ReasonInvalidStateTransition:
		return fiber.StatusConflict
	case service.ReasonNotEntitled:
		return fiber.StatusPaymentRequired
	case service.ReasonEmptyTranscript:
		return fiber.StatusUnprocessableEntity
	case service.ReasonEngineFailure:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// writeServiceError translates a service error into the standard envelope.
// The reason code is exposed verbatim; service messages are written to be
// safe for clients, wrapped causes are not leaked.
func writeServiceError(c *fiber.Ctx, err error) error {
	reason, ok := service.ReasonOf(err)
	if !ok {
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}

	message := "request failed"
	var svcErr *service.Error
	if errors.As(err, &svcErr) && svcErr.Message != "" {
		message = svcErr.Message
	}
	return writeError(c, statusForReason(reason), string(reason), message)
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "INVALID_INPUT", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHENTICATED", "account identity is missing")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}

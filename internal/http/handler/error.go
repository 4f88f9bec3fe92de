package handler

import (
	"github.com/gofiber/fiber/v2"

	"certdocs/internal/apperror"
	"certdocs/internal/http/middleware"
	"certdocs/internal/logging"
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
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
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

type kindResponse struct {
	status int
	code   string
}

var kindResponses = map[apperror.Kind]kindResponse{
	apperror.KindValidation:        {fiber.StatusBadRequest, "VALIDATION_ERROR"},
	apperror.KindConversion:        {fiber.StatusUnprocessableEntity, "CONVERSION_FAILED"},
	apperror.KindMalformedDocument: {fiber.StatusUnprocessableEntity, "MALFORMED_DOCUMENT"},
	apperror.KindPageNotFound:      {fiber.StatusUnprocessableEntity, "PAGE_NOT_FOUND"},
	apperror.KindRemoteService:     {fiber.StatusBadGateway, "REMOTE_SERVICE_ERROR"},
	apperror.KindNotFound:          {fiber.StatusNotFound, "NOT_FOUND"},
	apperror.KindInvalidToken:      {fiber.StatusUnauthorized, "UNAUTHORIZED"},
	apperror.KindForbidden:         {fiber.StatusForbidden, "FORBIDDEN"},
	apperror.KindConflict:          {fiber.StatusConflict, "CONFLICT"},
}

// statusFor maps an error's kind to its HTTP status and code.
func statusFor(err error) (int, string) {
	if r, ok := kindResponses[apperror.KindOf(err)]; ok {
		return r.status, r.code
	}
	return fiber.StatusInternalServerError, "INTERNAL_ERROR"
}

// respondError writes err using its kind. Only the client-safe message of a
// classified error reaches the body; the full chain is logged for 5xx.
func respondError(c *fiber.Ctx, log logging.Logger, err error) error {
	status, code := statusFor(err)
	msg := apperror.MessageOf(err)
	if status >= fiber.StatusInternalServerError {
		log.Error(c.UserContext(), "request failed", "path", c.Path(), "err", err)
		if status == fiber.StatusInternalServerError {
			msg = ""
		}
	}
	if msg == "" {
		msg = defaultMessage(status)
	}
	return writeError(c, status, code, msg)
}

func defaultMessage(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "bad request"
	case fiber.StatusNotFound:
		return "resource not found"
	case fiber.StatusMethodNotAllowed:
		return "method not allowed"
	default:
		return "internal server error"
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error
// responses. Classified errors from middleware (auth) and handlers are
// rendered by kind; other errors fall back to their fiber status.
func ErrorHandler(log logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if apperror.KindOf(err) != apperror.KindInternal {
			return respondError(c, log, err)
		}

		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			log.Error(c.UserContext(), "unhandled error", "path", c.Path(), "err", err)
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}

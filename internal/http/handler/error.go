package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"legalchat/internal/http/middleware"
	"legalchat/internal/service"
)

// GenerationApology is the only text a client sees when no answer could be generated.
const GenerationApology = "I apologize, but I'm currently unable to answer. Please try again later."

// errorPayload defines the standardized error response body.
type errorPayload struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// errorMapping translates service errors into HTTP responses. Order matters:
// the first target matched by errors.Is wins.
var errorMapping = []struct {
	target  error
	status  int
	code    string
	message string
}{
	{service.ErrInvalidInput, fiber.StatusBadRequest, "INVALID_INPUT", "invalid input"},
	{service.ErrTooLarge, fiber.StatusRequestEntityTooLarge, "TOO_LARGE", "file exceeds the upload size limit"},
	{service.ErrUnsupportedType, fiber.StatusUnsupportedMediaType, "UNSUPPORTED_TYPE", "only plain text, markdown, PDF and DOCX files are supported"},
	{service.ErrEmptyContent, fiber.StatusUnprocessableEntity, "EMPTY_CONTENT", "the document contains no readable text"},
	{service.ErrExtractionFailed, fiber.StatusUnprocessableEntity, "EXTRACTION_FAILED", "the document text could not be extracted"},
	{service.ErrDocumentNotFound, fiber.StatusNotFound, "DOCUMENT_NOT_FOUND", "document not found"},
	{service.ErrGenerationFailed, fiber.StatusBadGateway, "GENERATION_FAILED", GenerationApology},
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
// - code: machine-readable short error code (e.g., "INVALID_ID", "DOCUMENT_NOT_FOUND")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		Error:     code,
		Message:   message,
		RequestID: requestIDFromCtx(c),
	})
}

// writeServiceError classifies err through errorMapping; anything unknown is a 500.
func writeServiceError(c *fiber.Ctx, err error) error {
	for _, m := range errorMapping {
		if errors.Is(err, m.target) {
			return writeError(c, m.status, m.code, m.message)
		}
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "TOO_LARGE", "request body exceeds the size limit")
		default:
			if status < fiber.StatusInternalServerError {
				return writeError(c, status, "REQUEST_ERROR", "request could not be processed")
			}
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}

// Package response renders the public wire format. Informational and
// client-error bodies are {"message": "..."}; server failures are always the
// opaque {"error": "Internal server error"}.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// MessageBody is the envelope for informational and client-error responses.
type MessageBody struct {
	Message string `json:"message"`
}

// ErrorBody is the envelope for server-side failures. The message never
// carries internal details.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON writes data as-is. Collection and entity responses use the raw shape.
func JSON(c echo.Context, statusCode int, data any) error {
	return c.JSON(statusCode, data)
}

// Message writes a {"message": ...} body with the given status.
func Message(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, MessageBody{Message: message})
}

// InternalServerError writes the opaque 500 body.
func InternalServerError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, ErrorBody{Error: "Internal server error"})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/medibook/medibook-api/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError maps an application error to its HTTP status. Internal
// details never leak: unrecognized errors turn into a plain 500.
func RespondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch apperrors.CodeOf(err) {
	case apperrors.ErrNotFound:
		status = http.StatusNotFound
		message = err.Error()
	case apperrors.ErrBadRequest:
		status = http.StatusBadRequest
		message = err.Error()
	case apperrors.ErrUnauthorized:
		status = http.StatusUnauthorized
		message = "unauthorized"
	case apperrors.ErrForbidden:
		status = http.StatusForbidden
		message = err.Error()
	case apperrors.ErrConflict:
		status = http.StatusConflict
		message = err.Error()
	}

	c.JSON(status, NewErrorResponse(message))
}

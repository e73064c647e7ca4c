package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roomhive/service-reservation/internal/common/domain"
)

// Envelope is the standard response body.
type Envelope struct {
	Data  interface{} `json:"data,omitempty"`
	Error *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody carries the error code and message for failed requests.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OK writes a 200 with the payload.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Data: data})
}

// Created writes a 201 with the payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Data: data})
}

// Paginated writes a 200 with a paginated payload.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, Envelope{Data: gin.H{
		"items": items,
		"total": total,
		"page":  page,
		"limit": limit,
	}})
}

// BadRequest writes a 400 with a validation error body.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Envelope{Error: &ErrorBody{
		Code:    string(domain.CodeValidation),
		Message: msg,
	}})
}

// Error maps a domain error to its HTTP status. Unclassified errors become
// opaque 500s.
func Error(c *gin.Context, err error) {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		c.JSON(http.StatusInternalServerError, Envelope{Error: &ErrorBody{
			Code:    "INTERNAL",
			Message: "internal server error",
		}})
		return
	}

	status := http.StatusInternalServerError
	switch de.Code {
	case domain.CodeValidation:
		status = http.StatusBadRequest
	case domain.CodeNotFound:
		status = http.StatusNotFound
	case domain.CodeConflict:
		status = http.StatusConflict
	case domain.CodeInvalidState, domain.CodeNotCancellable, domain.CodeNotModifiable:
		status = http.StatusUnprocessableEntity
	case domain.CodeTransient:
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, Envelope{Error: &ErrorBody{
		Code:    string(de.Code),
		Message: de.Message,
	}})
}

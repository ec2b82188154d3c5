package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/langflix/internal/apierr"
	"github.com/example/langflix/internal/catalog"
	"github.com/example/langflix/internal/progress"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

var errorMappings = []apierr.Mapping{
	{Target: catalog.ErrNotFound, Status: http.StatusNotFound, Code: "not_found"},
	{Target: progress.ErrMalformedInput, Status: http.StatusBadRequest, Code: "malformed_input"},
	{Target: progress.ErrPersistenceWrite, Status: http.StatusInternalServerError, Code: "persistence_write_failed"},
	{Target: progress.ErrPersistenceRead, Status: http.StatusInternalServerError, Code: "persistence_read_failed"},
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondErr maps a domain error to its HTTP status and code
func RespondErr(c *gin.Context, err error) {
	e := apierr.From(err, errorMappings...)
	_ = c.Error(err)
	RespondError(c, e.Status, e.Code, e.Err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

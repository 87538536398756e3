package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Conflict(c *gin.Context, code, message string) {
	Write(c, http.StatusConflict, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

// FromBusiness maps an engine error onto the HTTP surface. Unknown
// errors are reported as persistence failures.
func FromBusiness(c *gin.Context, err error) {
	switch Code(err) {
	case CodeValidation:
		BadRequest(c, CodeValidation, err.Error())
	case CodeResourceConflict:
		Conflict(c, CodeResourceConflict, err.Error())
	case CodeCapacityExhausted:
		Conflict(c, CodeCapacityExhausted, "no table can hold this party at the requested slot")
	default:
		Internal(c, CodePersistence, "store write failed")
	}
}

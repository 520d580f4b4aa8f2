package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	errs "github.com/techagentng/scamwatch/errors"
)

// JSON writes the standard response envelope. The error, when present,
// decides the status code and message the caller sees.
func JSON(c *gin.Context, message string, status int, data interface{}, err error) {
	if err != nil {
		var apiErr *errs.Error
		if e, ok := err.(*errs.Error); ok {
			apiErr = e
		} else {
			apiErr = errs.New(err.Error(), status)
		}
		if message == "" {
			message = apiErr.Message
		}
		if apiErr.Status != 0 {
			status = apiErr.Status
		}
		c.JSON(status, gin.H{
			"message": message,
			"status":  http.StatusText(status),
			"kind":    apiErr.Kind,
			"errors":  apiErr.Message,
		})
		return
	}

	c.JSON(status, gin.H{
		"message": message,
		"status":  http.StatusText(status),
		"data":    data,
	})
}

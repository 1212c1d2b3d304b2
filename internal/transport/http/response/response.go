package response

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
)

const MsgInvalidJSON = "Invalid JSON"

func JSON(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}

func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// BindJSON decodes the body into dst and answers 400 "Invalid JSON" when it
// cannot. Callers return when it reports false.
func BindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		Error(c, 400, MsgInvalidJSON)
		return false
	}
	return true
}

// BindOptionalJSON is BindJSON for endpoints whose body may be empty.
func BindOptionalJSON(c *gin.Context, dst any) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		Error(c, 400, MsgInvalidJSON)
		return false
	}
	return true
}

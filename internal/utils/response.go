package utils

import "github.com/gin-gonic/gin"

// Response is the uniform envelope every endpoint returns.
type Response struct {
	Success    bool        `json:"success"`
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
}

// Respond sends a success envelope.
func Respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Success:    true,
		StatusCode: status,
		Message:    message,
		Data:       data,
	})
}

// RespondError sends a failure envelope.
func RespondError(c *gin.Context, status int, message string) {
	c.JSON(status, Response{
		Success:    false,
		StatusCode: status,
		Message:    message,
	})
}

// AbortError sends a failure envelope and aborts the middleware chain.
func AbortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{
		Success:    false,
		StatusCode: status,
		Message:    message,
	})
}

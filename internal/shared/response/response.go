package response

import (
	"github.com/gin-gonic/gin"
)

// Envelope is the uniform JSON shape of every API response. RequestID
// echoes the request-id middleware so a chat turn can be traced through
// the logs.
type Envelope struct {
	Ok        bool   `json:"ok"`
	Data      any    `json:"data,omitempty"`
	Error     any    `json:"error,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func Success(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{
		Ok:        true,
		Data:      data,
		RequestID: c.GetString("request_id"),
	})
}

func Error(c *gin.Context, status int, errorCode string, message string, details any) {
	c.JSON(status, Envelope{
		Ok: false,
		Error: map[string]any{
			"code":    errorCode,
			"message": message,
			"details": details,
		},
		RequestID: c.GetString("request_id"),
	})
}

package chat

import (
	"go-leavechat/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	chats := r.Group("")
	{
		chats.POST("/chat",
			middleware.RateLimitByEmployee(2, 5),
			handler.Chat,
		)
		chats.POST("/session",
			middleware.RateLimitByIP(1, 3),
			handler.Session,
		)
	}
}

package chats

import (
	"lmchat/controllers"
	"lmchat/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Register registers chat storage routes. The GETs require the session scope
// header; the POSTs carry the session token in their JSON bodies.
func Register(r *gin.Engine, db *gorm.DB, logger *zap.Logger) {
	r.POST("/chats", controllers.CreateChat(db, logger))
	r.GET("/chats/:chat_id", middleware.RequireSessionHeader(), controllers.GetChatByID(db, logger))
	r.GET("/chats/username/:username", middleware.RequireSessionHeader(), controllers.GetChatByUsername(db, logger))
	r.POST("/chats/:chat_id/message", controllers.CreateChatMessage(db, logger))
}

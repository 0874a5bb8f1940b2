package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	chatRoutes "lmchat/routes/chats"
)

// RegisterRoutes wires the persistence API surface onto the engine.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, logger *zap.Logger) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "chat db api running"})
	})

	chatRoutes.Register(r, db, logger)
}

package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"lmchat/middleware"
	"lmchat/pkg/config"
	"lmchat/pkg/services"
	"lmchat/ui"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()

	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	chatStore := services.NewChatStore(cfg.DBAPIURL, logger)
	lm := services.NewCompletionClient(cfg, logger)
	handler := ui.NewHandler(cfg, chatStore, lm, logger)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))
	r.LoadHTMLGlob("web/templates/*.html")
	r.Static("/static", "web/static")

	handler.Register(r, middleware.BrowserSession(store))

	logger.Info("starting chat ui", zap.String("port", cfg.ChatUIPort))
	if err := r.Run(":" + cfg.ChatUIPort); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/talvik/deskchat/internal/httpapi/handlers"
	"github.com/talvik/deskchat/internal/httpapi/middleware"
)

func NewRouter(h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": 40400, "message": "route not found", "data": nil})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"code": 40500, "message": "method not allowed", "data": nil})
	})

	r.GET("/ping", h.Ping)

	api := r.Group("/api")
	api.GET("/chats", h.ListChats)
	api.POST("/chats/id", h.NewChatID)
	api.GET("/chats/:id/history", h.GetHistory)
	api.GET("/chats/:id/name", h.GetName)
	api.POST("/chats/:id/messages", h.SendMessage)
	api.PUT("/chats/:id", h.SaveChat)
	api.DELETE("/chats/:id", h.DeleteChat)
	api.POST("/render/markdown", h.RenderMarkdown)
	api.POST("/render/sanitize", h.SanitizeHTML)

	return r
}

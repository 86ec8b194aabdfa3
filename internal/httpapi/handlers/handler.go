package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/talvik/deskchat/internal/chat"
	"github.com/talvik/deskchat/internal/render"
)

// Handler exposes the boundary surface to the UI shell: one route per
// operation the shell previously reached over IPC. The shell keeps its own
// active-chat state and passes history with each send, so the handlers
// themselves are stateless.
type Handler struct {
	Store     *chat.Store
	Exchanges *chat.Service
	Renderer  *render.Renderer
	Logger    *slog.Logger
}

func NewHandler(store *chat.Store, exchanges *chat.Service, renderer *render.Renderer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Store: store, Exchanges: exchanges, Renderer: renderer, Logger: logger}
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "ok",
		"data":    data,
	})
}

func fail(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
		"data":    nil,
	})
}

func (h *Handler) Ping(c *gin.Context) {
	ok(c, gin.H{"status": "up"})
}

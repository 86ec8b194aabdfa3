package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/talvik/deskchat/internal/chat"
)

const maxMessageLength = 32 * 1024

func storeFail(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, chat.ErrCorrupt):
		fail(c, http.StatusInternalServerError, 50010, "stored chat history is corrupt")
	case errors.Is(err, chat.ErrUnavailable):
		fail(c, http.StatusServiceUnavailable, 50301, "chat store unavailable")
	default:
		fail(c, http.StatusInternalServerError, 50001, "failed to "+op)
	}
}

// NewChatID mints a speculative id; nothing is persisted until the first
// successful exchange.
func (h *Handler) NewChatID(c *gin.Context) {
	ok(c, gin.H{"id": chat.NewChatID()})
}

func (h *Handler) ListChats(c *gin.Context) {
	chats, err := h.Store.ListChats(c.Request.Context())
	if err != nil {
		storeFail(c, err, "list chats")
		return
	}
	ok(c, gin.H{"chats": chats})
}

func (h *Handler) GetHistory(c *gin.Context) {
	id := c.Param("id")
	turns, err := h.Store.GetHistory(c.Request.Context(), id)
	if err != nil {
		storeFail(c, err, "load history")
		return
	}
	ok(c, gin.H{"history": turns})
}

func (h *Handler) GetName(c *gin.Context) {
	id := c.Param("id")
	name, err := h.Store.GetName(c.Request.Context(), id)
	if err != nil {
		storeFail(c, err, "load name")
		return
	}
	ok(c, gin.H{"name": name})
}

type sendMessageReq struct {
	Message string      `json:"message"`
	History []chat.Turn `json:"history"`
}

func (r sendMessageReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Message,
			validation.Required,
			validation.Length(1, maxMessageLength),
		),
	)
}

func (h *Handler) SendMessage(c *gin.Context) {
	id := c.Param("id")

	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if err := req.Validate(); err != nil {
		fail(c, http.StatusBadRequest, 10002, err.Error())
		return
	}

	res, err := h.Exchanges.SendTurn(c.Request.Context(), id, req.Message, req.History)
	if err != nil {
		h.Logger.Error("exchange failed", "chat_id", id, "error", err)
		fail(c, http.StatusBadGateway, 40201, "completion request failed: "+err.Error())
		return
	}

	// A reply that could not be saved is still a reply; the shell gets it
	// along with the durability flag.
	out := gin.H{"text": res.Reply, "persisted": res.PersistErr == nil}
	if res.PersistErr != nil {
		out["persist_error"] = res.PersistErr.Error()
	}
	ok(c, out)
}

type saveChatReq struct {
	Name    *string     `json:"name"`
	History []chat.Turn `json:"history"`
}

func (r saveChatReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.History, validation.NotNil),
	)
}

// SaveChat upserts a chat wholesale; the shell uses it for explicit saves
// outside the exchange path (renames, imports).
func (h *Handler) SaveChat(c *gin.Context) {
	id := c.Param("id")

	var req saveChatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if err := req.Validate(); err != nil {
		fail(c, http.StatusBadRequest, 10002, err.Error())
		return
	}

	if err := h.Store.UpsertChat(c.Request.Context(), id, req.Name, req.History); err != nil {
		storeFail(c, err, "save chat")
		return
	}
	ok(c, gin.H{"id": id})
}

func (h *Handler) DeleteChat(c *gin.Context) {
	id := c.Param("id")
	n, err := h.Store.DeleteChat(c.Request.Context(), id)
	if err != nil {
		storeFail(c, err, "delete chat")
		return
	}
	ok(c, gin.H{"deleted_count": n})
}

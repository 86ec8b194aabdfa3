package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type renderMarkdownReq struct {
	Markdown string `json:"markdown"`
}

func (r renderMarkdownReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Markdown, validation.Required),
	)
}

// RenderMarkdown converts markdown to sanitized HTML for display.
func (h *Handler) RenderMarkdown(c *gin.Context) {
	var req renderMarkdownReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if err := req.Validate(); err != nil {
		fail(c, http.StatusBadRequest, 10002, err.Error())
		return
	}

	html, err := h.Renderer.Safe(req.Markdown)
	if err != nil {
		fail(c, http.StatusInternalServerError, 50020, "markdown rendering failed")
		return
	}
	ok(c, gin.H{"html": html})
}

type sanitizeReq struct {
	HTML string `json:"html"`
}

func (r sanitizeReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.HTML, validation.Required),
	)
}

// SanitizeHTML strips executable content from HTML the shell already has.
func (h *Handler) SanitizeHTML(c *gin.Context) {
	var req sanitizeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if err := req.Validate(); err != nil {
		fail(c, http.StatusBadRequest, 10002, err.Error())
		return
	}

	ok(c, gin.H{"html": h.Renderer.Sanitize(req.HTML)})
}

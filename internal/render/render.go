// Package render converts model replies from markdown to HTML the UI can
// inject, with sanitization between the two so nothing executable survives.
package render

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// RemovedNotice replaces output the sanitizer emptied out entirely, so the
// UI shows an explicit notice instead of a blank message.
const RemovedNotice = "<p>Content removed by sanitizer.</p>"

type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func New() *Renderer {
	return &Renderer{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: bluemonday.UGCPolicy(),
	}
}

// Markdown converts markdown to (unsanitized) HTML.
func (r *Renderer) Markdown(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Sanitize strips executable content from HTML. When sanitization empties
// non-empty input it returns RemovedNotice rather than an empty string.
func (r *Renderer) Sanitize(dirty string) string {
	clean := r.policy.Sanitize(dirty)
	if strings.TrimSpace(clean) == "" && strings.TrimSpace(dirty) != "" {
		return RemovedNotice
	}
	return clean
}

// Safe renders markdown and sanitizes the result in one step.
func (r *Renderer) Safe(markdown string) (string, error) {
	html, err := r.Markdown(markdown)
	if err != nil {
		return "", err
	}
	return r.Sanitize(html), nil
}

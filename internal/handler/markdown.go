package handler

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Markdown renders user-written markdown to HTML. Raw HTML in the source is
// dropped by goldmark's default renderer, so the output is safe to embed.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown returns a renderer with GitHub Flavored Markdown enabled.
func NewMarkdown() *Markdown {
	return &Markdown{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Render converts src to HTML.
func (m *Markdown) Render(src string) (string, error) {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Package tui provides terminal user interface components for gantry.
package tui

import (
	"github.com/charmbracelet/glamour"
)

// markdownWordWrap is the rendering width for terminal Markdown output.
const markdownWordWrap = 100

// RenderMarkdown renders Markdown for terminal display using the auto-detected
// light/dark style. On any rendering failure the raw Markdown is returned so
// callers can print it unchanged.
func RenderMarkdown(md string) string {
	if !HasColorSupport() {
		return md
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(markdownWordWrap),
	)
	if err != nil {
		return md
	}

	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

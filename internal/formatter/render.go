package formatter

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

const minRenderWidth = 20

// RenderMarkdown renders a Markdown listing for display in a terminal.
//
// A fixed standard style is used instead of auto-detection, which can block on terminal queries.
// Use [styles.NoTTYStyle] when the output is not a terminal.
func RenderMarkdown(md []byte, width int, style string) ([]byte, error) {
	if width < minRenderWidth {
		width = minRenderWidth
	}
	if style == "" {
		style = styles.DarkStyle
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	out, err := r.RenderBytes(md)
	if err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

package tui

import (
	"fmt"
	"strings"

	"charm.land/glamour/v2"
)

// renderMarkdown renders markdown content with glamour. Falls back to plain
// text wrapping if rendering fails.
func renderMarkdown(content string, width int) string {
	// Cap width to 120 for readability
	if width > 120 {
		width = 120
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return wrapText(content, width)
	}

	rendered, err := r.Render(content)
	if err != nil {
		return wrapText(content, width)
	}

	// Remove trailing newline that glamour adds
	return strings.TrimSuffix(rendered, "\n")
}

// renderServerMessage turns a server message plus its optional structured
// link into markdown. The link arrives as separate fields, never as markup
// inside the text.
func renderServerMessage(text, linkURL, linkLabel string, width int) string {
	md := text
	if linkURL != "" {
		label := linkLabel
		if label == "" {
			label = linkURL
		}
		md = fmt.Sprintf("%s\n\n[%s](%s)", text, label, linkURL)
	}
	return renderMarkdown(md, width)
}

// wrapText wraps text to the given width, breaking on spaces.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		if i > 0 {
			result.WriteString("\n")
		}

		for len(line) > width {
			breakPoint := width
			for j := width; j > 0; j-- {
				if line[j] == ' ' {
					breakPoint = j
					break
				}
			}
			result.WriteString(line[:breakPoint])
			result.WriteString("\n")
			line = strings.TrimLeft(line[breakPoint:], " ")
		}
		result.WriteString(line)
	}

	return result.String()
}

// ABOUTME: Markdown rendering for assistant chat messages shown in the chat panel.
// ABOUTME: Uses goldmark; raw HTML in the input is stripped to prevent XSS.

package editor

import (
	"bytes"
	"html"

	"github.com/yuin/goldmark"
)

// MarkdownToHTML converts a markdown string to HTML using goldmark. On a
// conversion error the input is returned escaped rather than dropped.
func MarkdownToHTML(input string) string {
	var buf bytes.Buffer
	md := goldmark.New()
	if err := md.Convert([]byte(input), &buf); err != nil {
		return html.EscapeString(input)
	}
	return buf.String()
}

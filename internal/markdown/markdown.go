package markdown

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

var (
	rendererMu sync.Mutex
	renderers  = map[int]*glamour.TermRenderer{}
)

// Render formats a markdown task description for terminal output. Blank
// input renders as "".
func Render(width, indent int, input string) string {
	value := normalizeNewlines(input)
	value = strings.TrimRight(value, "\n")
	if strings.TrimSpace(value) == "" {
		return ""
	}

	renderWidth := width - max(indent, 0)
	if renderWidth < 1 {
		renderWidth = 1
	}

	rendered := value
	if renderer := markdownRenderer(renderWidth); renderer != nil {
		if formatted, err := renderer.Render(value); err == nil {
			rendered = formatted
		}
	}
	rendered = strings.Trim(rendered, "\n")
	if strings.TrimSpace(rendered) == "" {
		return ""
	}
	return indentBlock(rendered, indent)
}

// Wrap word-wraps plain text to width, keeping paragraph breaks
func Wrap(value string, width int) string {
	if width < 1 {
		width = 1
	}
	return wordwrap.String(normalizeNewlines(value), width)
}

// Truncate shortens a single line to width cells with an ellipsis
func Truncate(value string, width int) string {
	if width < 1 {
		return ""
	}
	line, _, _ := strings.Cut(normalizeNewlines(value), "\n")
	return truncate.StringWithTail(line, uint(width), "…")
}

func markdownRenderer(width int) *glamour.TermRenderer {
	rendererMu.Lock()
	defer rendererMu.Unlock()
	if cached, ok := renderers[width]; ok {
		return cached
	}
	style := styles.ASCIIStyleConfig
	style.Item.BlockPrefix = "- "
	created, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	renderers[width] = created
	return created
}

func normalizeNewlines(value string) string {
	value = strings.ReplaceAll(value, "\r\n", "\n")
	return strings.ReplaceAll(value, "\r", "\n")
}

func indentBlock(value string, spaces int) string {
	if spaces <= 0 {
		return value
	}
	prefix := strings.Repeat(" ", spaces)
	lines := strings.Split(value, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# tally

Keep several counters and flip between them.

## Mouse

- Click **‹** / **›**, a dot under the card, or a row in the list to switch counters.
- Drag the card sideways to swipe to the neighbouring counter. The drag must
  cover more than the swipe threshold (50 columns by default), so narrower
  windows cannot swipe.
- Click **-**, **Reset** or **+** to change the value.
- Click the title, type, then **Save**. Blank titles are ignored.
- Click a colour name to restyle the card, **×** in the list to delete.

## Keys

| key | action |
|-----|--------|
| ← → | previous / next |
| g G | first / last |
| + - | add / subtract one |
| r | reset to zero |
| 1-5 | style |
| n | new counter |
| e | edit title (enter saves, esc cancels) |
| d | delete counter |
| y | copy "title: value" |
| ? | close this help |
| q | quit |
`

// helpOverlay renders the help page with glamour and caches it per width.
type helpOverlay struct {
	style string
	width int
	out   string
}

func newHelpOverlay(style string) *helpOverlay {
	return &helpOverlay{style: style}
}

func (h *helpOverlay) setStyle(style string) {
	if style != h.style {
		h.style = style
		h.out = ""
	}
}

func (h *helpOverlay) render(width int) string {
	width = max(width, 20)
	if h.out != "" && h.width == width {
		return h.out
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(h.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	h.width = width
	h.out = strings.TrimSpace(out)
	return h.out
}

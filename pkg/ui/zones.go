package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Action identifies what an interactive zone does when pressed.
type Action int

const (
	ActionNone Action = iota
	ActionSurface     // carousel background; starts swipe gestures
	ActionPrev
	ActionNext
	ActionNew
	ActionIncrement
	ActionDecrement
	ActionReset
	ActionEditTitle
	ActionSaveTitle
	ActionStyle
	ActionIndicator
	ActionSelectRow
	ActionDelete
)

// IsControl reports whether a press on the zone should activate it rather
// than start a swipe.
func (a Action) IsControl() bool {
	return a != ActionNone && a != ActionSurface
}

func (a Action) String() string {
	switch a {
	case ActionSurface:
		return "surface"
	case ActionPrev:
		return "prev"
	case ActionNext:
		return "next"
	case ActionNew:
		return "new"
	case ActionIncrement:
		return "increment"
	case ActionDecrement:
		return "decrement"
	case ActionReset:
		return "reset"
	case ActionEditTitle:
		return "edit-title"
	case ActionSaveTitle:
		return "save-title"
	case ActionStyle:
		return "style"
	case ActionIndicator:
		return "indicator"
	case ActionSelectRow:
		return "select-row"
	case ActionDelete:
		return "delete"
	default:
		return "none"
	}
}

// Rect is a screen rectangle in cells.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Zone is a registered interactive region. CounterID is the stable identity
// of the counter the zone acts on; it is resolved to an index only when the
// zone is dispatched.
type Zone struct {
	Rect
	Action    Action
	CounterID string
	Arg       string
	Disabled  bool
}

// ZoneTable is the set of zones registered by the last frame. Later
// registrations sit on top of earlier ones.
type ZoneTable struct {
	zones []Zone
}

// Reset drops every registration.
func (t *ZoneTable) Reset() { t.zones = t.zones[:0] }

// Register adds zones on top of the existing ones.
func (t *ZoneTable) Register(zs ...Zone) { t.zones = append(t.zones, zs...) }

// Hit returns the topmost zone containing (x, y).
func (t *ZoneTable) Hit(x, y int) (Zone, bool) {
	for i := len(t.zones) - 1; i >= 0; i-- {
		if t.zones[i].Contains(x, y) {
			return t.zones[i], true
		}
	}
	return Zone{}, false
}

// Find returns the first zone with the given action, counter and argument.
// Empty id or arg match anything.
func (t *ZoneTable) Find(action Action, id, arg string) (Zone, bool) {
	for _, z := range t.zones {
		if z.Action != action {
			continue
		}
		if id != "" && z.CounterID != id {
			continue
		}
		if arg != "" && z.Arg != arg {
			continue
		}
		return z, true
	}
	return Zone{}, false
}

// Len returns the number of registered zones.
func (t *ZoneTable) Len() int { return len(t.zones) }

// block is a rendered fragment together with its zones, relative to the
// fragment's top-left corner.
type block struct {
	view  string
	zones []Zone
}

func textBlock(s string) block { return block{view: s} }

func (b block) width() int  { return lipgloss.Width(b.view) }
func (b block) height() int { return lipgloss.Height(b.view) }

// zoned returns a block whose whole area is one zone.
func zoned(view string, z Zone) block {
	b := block{view: view}
	z.Rect = Rect{0, 0, b.width(), b.height()}
	b.zones = []Zone{z}
	return b
}

func (b block) shifted(dx, dy int) []Zone {
	out := make([]Zone, len(b.zones))
	for i, z := range b.zones {
		z.X += dx
		z.Y += dy
		out[i] = z
	}
	return out
}

// row lays blocks out left to right separated by gap spaces.
func row(gap int, bs ...block) block {
	var views []string
	var zones []Zone
	x := 0
	for i, b := range bs {
		if i > 0 && gap > 0 {
			views = append(views, strings.Repeat(" ", gap))
			x += gap
		}
		views = append(views, b.view)
		zones = append(zones, b.shifted(x, 0)...)
		x += b.width()
	}
	return block{view: lipgloss.JoinHorizontal(lipgloss.Top, views...), zones: zones}
}

// column stacks blocks top to bottom, left aligned.
func column(bs ...block) block {
	var views []string
	var zones []Zone
	y := 0
	for _, b := range bs {
		views = append(views, b.view)
		zones = append(zones, b.shifted(0, y)...)
		y += b.height()
	}
	return block{view: lipgloss.JoinVertical(lipgloss.Left, views...), zones: zones}
}

// indent prefixes every line of b with n spaces.
func indent(b block, n int) block {
	if n <= 0 {
		return b
	}
	pad := strings.Repeat(" ", n)
	lines := strings.Split(b.view, "\n")
	for i := range lines {
		lines[i] = pad + lines[i]
	}
	return block{view: strings.Join(lines, "\n"), zones: b.shifted(n, 0)}
}

// center indents b so it sits in the middle of width columns.
func center(b block, width int) block {
	return indent(b, (width-b.width())/2)
}

// framed renders b inside st (border, padding, margin) and moves its zones
// by the frame's top-left inset.
func framed(b block, st lipgloss.Style) block {
	dx := st.GetMarginLeft() + st.GetBorderLeftSize() + st.GetPaddingLeft()
	dy := st.GetMarginTop() + st.GetBorderTopSize() + st.GetPaddingTop()
	return block{view: st.Render(b.view), zones: b.shifted(dx, dy)}
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/smantzavinos/tally/pkg/model"
	"github.com/smantzavinos/tally/pkg/nav"
)

const (
	minCardWidth = 26
	maxCardWidth = 56
	sparkWidth   = 8
)

// Renderer projects a counter snapshot onto the terminal and owns the zone
// table used to route mouse input.
//
// Rebuild is the structural path: it takes a fresh snapshot and rebuilds the
// per-counter rows. RefreshActive is the light path used for pure navigation:
// it only moves the active markers, updates the prev/next affordances and
// scrolls the active list row into view. Zones are re-registered on every
// frame from the snapshot, each carrying the counter id it acts on.
type Renderer struct {
	theme  Theme
	width  int
	height int

	counters []model.Counter
	summary  model.Summary
	current  int
	aff      nav.Affordances

	rows []string // list row bodies, without active marker
	list viewport.Model

	pulsing   map[string]bool
	saved     map[string]bool
	editingID string
	editor    string

	zones ZoneTable

	rebuilds  int
	refreshes int
}

// NewRenderer returns a renderer with an 80x24 default geometry.
func NewRenderer(theme Theme) *Renderer {
	r := &Renderer{
		theme:   theme,
		pulsing: make(map[string]bool),
		saved:   make(map[string]bool),
		list:    viewport.New(78, 5),
	}
	r.Resize(80, 24)
	return r
}

// SetTheme swaps the theme and re-renders the list rows.
func (r *Renderer) SetTheme(theme Theme) {
	r.theme = theme
	r.refreshList()
}

// Resize recalculates geometry. It never touches counter state.
func (r *Renderer) Resize(width, height int) {
	r.width, r.height = width, height
	r.list.Width = max(width-2, 10)
	r.list.Height = r.listHeight()
	r.renderRows()
	r.refreshList()
}

// Rebuild replaces the snapshot and rebuilds all per-counter structure.
func (r *Renderer) Rebuild(counters []model.Counter, current int, aff nav.Affordances) {
	r.counters = append(r.counters[:0], counters...)
	r.summary = model.Summarize(r.counters)
	r.rebuilds++

	// Drop transient flags for counters that no longer exist.
	live := make(map[string]bool, len(r.counters))
	for _, c := range r.counters {
		live[c.ID] = true
	}
	for id := range r.pulsing {
		if !live[id] {
			delete(r.pulsing, id)
		}
	}
	for id := range r.saved {
		if !live[id] {
			delete(r.saved, id)
		}
	}
	if !live[r.editingID] {
		r.editingID, r.editor = "", ""
	}

	r.list.Height = r.listHeight()
	r.renderRows()
	r.RefreshActive(current, aff)
}

// RefreshActive implements nav.View.
func (r *Renderer) RefreshActive(index int, aff nav.Affordances) {
	if len(r.counters) > 0 {
		index = min(max(index, 0), len(r.counters)-1)
	}
	r.current = index
	r.aff = aff
	r.refreshes++
	r.refreshList()
	r.scrollIntoView()
}

// SetPulse toggles the value highlight of a counter.
func (r *Renderer) SetPulse(id string, on bool) {
	if on {
		r.pulsing[id] = true
	} else {
		delete(r.pulsing, id)
	}
}

// SetSaved toggles the "Saved!" confirmation on a counter's save button.
func (r *Renderer) SetSaved(id string, on bool) {
	if on {
		r.saved[id] = true
	} else {
		delete(r.saved, id)
	}
}

// SetEditor shows editorView in place of the title of counter id. An empty
// id hides the editor.
func (r *Renderer) SetEditor(id, editorView string) {
	r.editingID, r.editor = id, editorView
}

// Zones returns the zones registered by the last View call.
func (r *Renderer) Zones() *ZoneTable { return &r.zones }

// ClearZones drops all zones, e.g. while a modal overlay owns the screen.
func (r *Renderer) ClearZones() { r.zones.Reset() }

// ListOffset is the first visible row of the summary list.
func (r *Renderer) ListOffset() int { return r.list.YOffset }

// ScrollList scrolls the summary list by delta rows.
func (r *Renderer) ScrollList(delta int) {
	r.list.SetYOffset(r.list.YOffset + delta)
}

// CarouselRect returns the swipe surface registered by the last frame.
func (r *Renderer) CarouselRect() (Rect, bool) {
	z, ok := r.zones.Find(ActionSurface, "", "")
	return z.Rect, ok
}

// View renders the full screen and registers its zones.
func (r *Renderer) View(status, help string) string {
	r.zones.Reset()
	if len(r.counters) == 0 {
		return ""
	}

	header := r.header()
	carousel := r.carousel()
	indicators := center(r.indicators(), r.width)
	newBtn := indent(zoned(r.theme.Button.Render("+ New counter"), Zone{Action: ActionNew}), 1)
	listTitle := textBlock(r.theme.Status.Render(fmt.Sprintf(" Counters (%d)", len(r.counters))))
	list := r.listBlock()
	summary := textBlock(r.theme.Status.Render(fmt.Sprintf(" Total %s · mean %.1f · max %s",
		FormatValue(r.summary.Total), r.summary.Mean, FormatValue(r.summary.Max))))
	footer := textBlock(" " + status)
	if help != "" {
		footer = column(footer, textBlock(" "+help))
	}

	screen := column(
		header,
		textBlock(""),
		carousel,
		indicators,
		textBlock(""),
		newBtn,
		textBlock(""),
		listTitle,
		list,
		summary,
		footer,
	)
	r.zones.Register(screen.zones...)
	return screen.view
}

func (r *Renderer) header() block {
	title := r.theme.Header.Render("tally")
	count := r.theme.Status.Render(fmt.Sprintf("%d/%d", r.current+1, len(r.counters)))
	gap := max(r.width-lipgloss.Width(title)-lipgloss.Width(count), 1)
	return textBlock(title + strings.Repeat(" ", gap) + count)
}

func (r *Renderer) cardWidth() int {
	return min(max(r.width-10, minCardWidth), maxCardWidth)
}

func (r *Renderer) carousel() block {
	c := r.counters[r.current]
	card := framed(r.card(c, r.cardWidth()-4), r.theme.Card(c.Style, true))

	prev := r.navButton("‹", ActionPrev, r.aff.CanPrev)
	next := r.navButton("›", ActionNext, r.aff.CanNext)
	mid := (card.height() - 1) / 2
	body := row(1, pushDown(prev, mid), card, pushDown(next, mid))
	body = center(body, r.width)

	// The surface spans the full carousel row; controls sit on top of it.
	surface := Zone{Rect: Rect{0, 0, r.width, body.height()}, Action: ActionSurface}
	body.zones = append([]Zone{surface}, body.zones...)
	return body
}

func (r *Renderer) navButton(label string, action Action, enabled bool) block {
	st := r.theme.Button
	if !enabled {
		st = r.theme.Disabled
	}
	return zoned(st.Render(label), Zone{Action: action, Disabled: !enabled})
}

// card renders the inner content of one counter card, innerWidth cells wide.
func (r *Renderer) card(c model.Counter, innerWidth int) block {
	// Title editor row
	saveLabel := "Save"
	if r.saved[c.ID] {
		saveLabel = "Saved!"
	}
	save := zoned(r.theme.Button.Render(saveLabel), Zone{Action: ActionSaveTitle, CounterID: c.ID})
	fieldWidth := max(innerWidth-save.width()-1, 4)
	var field string
	if r.editingID == c.ID {
		field = r.editor
	} else {
		field = r.theme.Status.Render(Truncate(c.Title, fieldWidth))
	}
	field = lipgloss.NewStyle().Width(fieldWidth).MaxWidth(fieldWidth).Render(field)
	titleRow := row(1, zoned(field, Zone{Action: ActionEditTitle, CounterID: c.ID}), save)

	// Value and title display
	valueStyle := r.theme.Renderer.NewStyle().Bold(true).Foreground(r.theme.StyleColor(c.Style)).Padding(0, 1)
	if r.pulsing[c.ID] {
		valueStyle = valueStyle.Reverse(true)
	}
	value := center(textBlock(valueStyle.Render(FormatValue(c.Value))), innerWidth)
	label := center(textBlock(r.theme.Base.Render(Truncate(c.Title, innerWidth))), innerWidth)

	// Step controls
	controls := center(row(1,
		zoned(r.theme.Button.Render("-"), Zone{Action: ActionDecrement, CounterID: c.ID, Disabled: c.Value == 0}),
		zoned(r.theme.Button.Render("Reset"), Zone{Action: ActionReset, CounterID: c.ID}),
		zoned(r.theme.Button.Render("+"), Zone{Action: ActionIncrement, CounterID: c.ID}),
	), innerWidth)

	// Style picker
	var styles []block
	short := innerWidth < r.stylePickerWidth()
	for _, s := range model.Styles {
		name := s.Name()
		if short {
			name = name[:1]
		}
		styles = append(styles, zoned(r.theme.StyleButton(s, s == c.Style).Render(name),
			Zone{Action: ActionStyle, CounterID: c.ID, Arg: string(s)}))
	}
	picker := center(row(1, styles...), innerWidth)

	return column(titleRow, textBlock(""), value, label, textBlock(""), controls, picker)
}

func (r *Renderer) stylePickerWidth() int {
	w := len(model.Styles) - 1
	for _, s := range model.Styles {
		w += lipgloss.Width(s.Name()) + 2
	}
	return w
}

func (r *Renderer) indicators() block {
	var dots []block
	for i, c := range r.counters {
		dot := "○"
		st := r.theme.Status
		if i == r.current {
			dot = "●"
			st = r.theme.Renderer.NewStyle().Foreground(r.theme.StyleColor(c.Style))
		}
		dots = append(dots, zoned(st.Render(dot), Zone{Action: ActionIndicator, CounterID: c.ID}))
	}
	return row(1, dots...)
}

// renderRows rebuilds the list row bodies from the snapshot.
func (r *Renderer) renderRows() {
	r.rows = r.rows[:0]
	deletable := len(r.counters) > 1
	labelWidth := max(r.list.Width-2-sparkWidth-1-2, 4)
	for _, c := range r.counters {
		label := Truncate(fmt.Sprintf("%s (%s)", c.Title, FormatValue(c.Value)), labelWidth)
		label += strings.Repeat(" ", max(labelWidth-lipgloss.Width(label), 0))
		bar := r.theme.Renderer.NewStyle().Foreground(r.theme.StyleColor(c.Style)).
			Render(RenderSparkline(r.summary.Share(c.Value), sparkWidth))
		line := label + " " + bar
		if deletable {
			line += " " + r.theme.Renderer.NewStyle().Foreground(r.theme.Danger).Render("×")
		}
		r.rows = append(r.rows, line)
	}
}

// refreshList re-marks the active row without rebuilding row bodies.
func (r *Renderer) refreshList() {
	lines := make([]string, len(r.rows))
	for i, body := range r.rows {
		if i == r.current {
			lines[i] = r.theme.Renderer.NewStyle().Bold(true).Render("› " + body)
		} else {
			lines[i] = "  " + body
		}
	}
	r.list.SetContent(strings.Join(lines, "\n"))
}

func (r *Renderer) scrollIntoView() {
	switch {
	case r.current < r.list.YOffset:
		r.list.SetYOffset(r.current)
	case r.current >= r.list.YOffset+r.list.Height:
		r.list.SetYOffset(r.current - r.list.Height + 1)
	}
}

func (r *Renderer) listBlock() block {
	b := indent(textBlock(r.list.View()), 1)
	deletable := len(r.counters) > 1
	for i, c := range r.counters {
		y := i - r.list.YOffset
		if y < 0 || y >= r.list.Height {
			continue
		}
		b.zones = append(b.zones, Zone{Rect: Rect{1, y, r.list.Width, 1}, Action: ActionSelectRow, CounterID: c.ID})
		if deletable {
			x := 1 + lipgloss.Width(r.rows[i]) + 2 - 1
			b.zones = append(b.zones, Zone{Rect: Rect{x, y, 1, 1}, Action: ActionDelete, CounterID: c.ID})
		}
	}
	return b
}

// listHeight is what is left for the summary list after the fixed parts.
func (r *Renderer) listHeight() int {
	const cardHeight = 9 // 7 content lines + border
	fixed := 1 + 1 + cardHeight + 1 + 1 + 1 + 1 + 1 + 1 + 2
	h := r.height - fixed
	if n := len(r.counters); n > 0 {
		h = min(h, n)
	}
	return max(h, 3)
}

// pushDown moves b down by n blank lines.
func pushDown(b block, n int) block {
	if n <= 0 {
		return b
	}
	return block{view: strings.Repeat("\n", n) + b.view, zones: b.shifted(0, n)}
}

// Package nav turns discrete navigation intents into cursor moves.
//
// Navigation never wraps: previous at the first counter and next at the last
// one are no-ops, for button and gesture input alike.
package nav

// Cursor is the part of the counter store navigation needs.
type Cursor interface {
	Len() int
	Current() int
	SetCurrent(index int) bool
}

// Affordances reports which of the prev/next controls are enabled.
type Affordances struct {
	CanPrev bool
	CanNext bool
}

// View receives active-state refreshes. It must not rebuild structure.
type View interface {
	RefreshActive(index int, aff Affordances)
}

// Controller moves the cursor and tells the view about it.
type Controller struct {
	cursor Cursor
	view   View
}

// NewController returns a controller over cursor. view may be nil until the
// renderer exists; use SetView to attach it.
func NewController(cursor Cursor, view View) *Controller {
	return &Controller{cursor: cursor, view: view}
}

// SetView replaces the view collaborator.
func (c *Controller) SetView(view View) {
	c.view = view
}

// GoTo moves to index. Out-of-range indices are ignored. The view is
// refreshed even when index is already current so that a jump always
// re-asserts active state.
func (c *Controller) GoTo(index int) bool {
	if !c.cursor.SetCurrent(index) {
		return false
	}
	c.Refresh()
	return true
}

// Previous moves one step back unless already at the first counter.
func (c *Controller) Previous() bool {
	if !c.Affordances().CanPrev {
		return false
	}
	return c.GoTo(c.cursor.Current() - 1)
}

// Next moves one step forward unless already at the last counter.
func (c *Controller) Next() bool {
	if !c.Affordances().CanNext {
		return false
	}
	return c.GoTo(c.cursor.Current() + 1)
}

// Affordances computes the edge-disable policy: both controls are disabled
// with a single counter, otherwise only the control at an edge is.
func (c *Controller) Affordances() Affordances {
	n, cur := c.cursor.Len(), c.cursor.Current()
	return Affordances{
		CanPrev: n > 1 && cur > 0,
		CanNext: n > 1 && cur < n-1,
	}
}

// Refresh pushes the current position to the view.
func (c *Controller) Refresh() {
	if c.view != nil {
		c.view.RefreshActive(c.cursor.Current(), c.Affordances())
	}
}

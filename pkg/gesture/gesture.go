// Package gesture recognizes horizontal swipes on the carousel.
//
// A gesture starts with a press on the carousel surface, follows the pointer
// while it moves and resolves to at most one navigation intent when the
// pointer is released or leaves the surface.
package gesture

// DefaultThreshold is the minimum horizontal displacement that counts as a swipe.
const DefaultThreshold = 50

// State is the recognizer state.
type State int

const (
	Idle State = iota
	Tracking
)

func (s State) String() string {
	if s == Tracking {
		return "tracking"
	}
	return "idle"
}

// Intent is the navigation a completed gesture asks for.
type Intent int

const (
	IntentNone Intent = iota
	IntentPrevious
	IntentNext
)

func (i Intent) String() string {
	switch i {
	case IntentPrevious:
		return "previous"
	case IntentNext:
		return "next"
	default:
		return "none"
	}
}

// Recognizer is a two-state swipe detector.
type Recognizer struct {
	Threshold int

	state State
	start int
	cur   int
}

// New returns a recognizer; a non-positive threshold selects DefaultThreshold.
func New(threshold int) *Recognizer {
	r := &Recognizer{}
	r.SetThreshold(threshold)
	return r
}

// SetThreshold changes the swipe threshold; non-positive values select the default.
func (r *Recognizer) SetThreshold(threshold int) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	r.Threshold = threshold
}

// State returns the current state.
func (r *Recognizer) State() State { return r.state }

// Down starts tracking at x. Presses on an interactive control, and any
// press while there are fewer than two counters, are ignored.
func (r *Recognizer) Down(x int, onControl bool, count int) bool {
	if onControl || count <= 1 {
		return false
	}
	r.state = Tracking
	r.start = x
	r.cur = x
	return true
}

// Move records the latest pointer position. Navigation only happens on release.
func (r *Recognizer) Move(x int) {
	if r.state == Tracking {
		r.cur = x
	}
}

// Up ends the gesture and returns the resulting intent.
func (r *Recognizer) Up() Intent {
	return r.finish()
}

// Leave ends the gesture because the pointer left the surface.
func (r *Recognizer) Leave() Intent {
	return r.finish()
}

// Cancel drops any gesture in progress without producing an intent.
func (r *Recognizer) Cancel() {
	r.state = Idle
}

// Displacement is the current offset of a gesture in progress.
func (r *Recognizer) Displacement() int {
	if r.state != Tracking {
		return 0
	}
	return r.cur - r.start
}

func (r *Recognizer) finish() Intent {
	if r.state != Tracking {
		return IntentNone
	}
	r.state = Idle
	dx := r.cur - r.start
	switch {
	case dx > r.Threshold:
		return IntentPrevious
	case dx < -r.Threshold:
		return IntentNext
	default:
		return IntentNone
	}
}

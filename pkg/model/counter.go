// Package model defines the counter record shared by storage, the store and the UI.
package model

import (
	"fmt"

	"github.com/google/uuid"
)

// DefaultTitle is the label given to newly created counters.
const DefaultTitle = "New counter"

// Style selects one of the five visual variants of a counter card.
type Style string

const (
	StyleBlue   Style = "1"
	StyleGreen  Style = "2"
	StylePurple Style = "3"
	StyleRed    Style = "4"
	StyleOrange Style = "5"
)

// DefaultStyle is used for new counters and for unreadable persisted styles.
const DefaultStyle = StyleBlue

// Styles lists every style in picker order.
var Styles = []Style{StyleBlue, StyleGreen, StylePurple, StyleRed, StyleOrange}

// IsValid reports whether s is one of the five known variants.
func (s Style) IsValid() bool {
	switch s {
	case StyleBlue, StyleGreen, StylePurple, StyleRed, StyleOrange:
		return true
	default:
		return false
	}
}

// Name returns the human-readable style label shown in the style picker.
func (s Style) Name() string {
	switch s {
	case StyleBlue:
		return "Blue"
	case StyleGreen:
		return "Green"
	case StylePurple:
		return "Purple"
	case StyleRed:
		return "Red"
	case StyleOrange:
		return "Orange"
	default:
		return "Style"
	}
}

// ParseStyle converts a persisted or user-supplied style id.
func ParseStyle(s string) (Style, error) {
	st := Style(s)
	if !st.IsValid() {
		return "", fmt.Errorf("unknown style %q", s)
	}
	return st, nil
}

// Counter is one independent, user-titled, non-negative counter.
type Counter struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Value int    `json:"value"`
	Style Style  `json:"style"`
}

// NewID returns a fresh opaque counter id.
func NewID() string {
	return uuid.NewString()
}

// NewCounter returns a counter with a fresh id, the default title and value 0.
func NewCounter(style Style) Counter {
	if !style.IsValid() {
		style = DefaultStyle
	}
	return Counter{
		ID:    NewID(),
		Title: DefaultTitle,
		Value: 0,
		Style: style,
	}
}

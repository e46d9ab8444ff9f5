// Package export writes counter snapshots to files: a markdown report, SVG and
// PNG card sheets, and a SQLite database.
package export

import (
	"fmt"
	"image/color"

	"github.com/mattn/go-runewidth"

	"github.com/smantzavinos/tally/pkg/model"
)

// Card sheet geometry, in pixels.
const (
	cardW    = 220
	cardH    = 120
	gap      = 16
	margin   = 24
	maxCols  = 4
	titleMax = 26
)

var (
	background = color.RGBA{0x28, 0x2A, 0x36, 0xFF}
	foreground = color.RGBA{0xF8, 0xF8, 0xF2, 0xFF}

	stylePalette = map[model.Style]color.RGBA{
		model.StyleBlue:   {0x3B, 0x82, 0xF6, 0xFF},
		model.StyleGreen:  {0x22, 0xC5, 0x5E, 0xFF},
		model.StylePurple: {0xA8, 0x55, 0xF7, 0xFF},
		model.StyleRed:    {0xEF, 0x44, 0x44, 0xFF},
		model.StyleOrange: {0xF9, 0x73, 0x16, 0xFF},
	}
)

func styleColor(s model.Style) color.RGBA {
	if c, ok := stylePalette[s]; ok {
		return c
	}
	return stylePalette[model.DefaultStyle]
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// sheet lays n cards out in a grid of up to maxCols columns.
type sheet struct {
	cols, rows    int
	width, height int
}

func layout(n int) sheet {
	n = max(n, 1)
	cols := min(n, maxCols)
	rows := (n + cols - 1) / cols
	return sheet{
		cols:   cols,
		rows:   rows,
		width:  2*margin + cols*cardW + (cols-1)*gap,
		height: 2*margin + rows*cardH + (rows-1)*gap,
	}
}

// origin returns the top-left corner of card i.
func (s sheet) origin(i int) (x, y int) {
	col, row := i%s.cols, i/s.cols
	return margin + col*(cardW+gap), margin + row*(cardH+gap)
}

func cardTitle(c model.Counter) string {
	return runewidth.Truncate(c.Title, titleMax, "…")
}

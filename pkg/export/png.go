package export

import (
	"fmt"
	"image/color"
	"io"
	"os"

	"git.sr.ht/~sbinet/gg"
	"github.com/dustin/go-humanize"
	"golang.org/x/image/font/basicfont"

	"github.com/smantzavinos/tally/pkg/model"
)

// WritePNG rasterises the same card sheet as WriteSVG. Text uses the
// built-in 7x13 bitmap face so no font files are needed.
func WritePNG(w io.Writer, counters []model.Counter) error {
	s := layout(len(counters))
	dc := gg.NewContext(s.width, s.height)
	dc.SetColor(background)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	for i, c := range counters {
		x, y := s.origin(i)
		fx, fy := float64(x), float64(y)
		accent := styleColor(c.Style)

		dc.DrawRoundedRectangle(fx, fy, cardW, cardH, 10)
		dc.SetColor(color.RGBA{accent.R / 4, accent.G / 4, accent.B / 4, 0xFF})
		dc.FillPreserve()
		dc.SetColor(accent)
		dc.SetLineWidth(3)
		dc.Stroke()

		dc.SetColor(foreground)
		dc.DrawStringAnchored(cardTitle(c), fx+cardW/2, fy+30, 0.5, 0.5)
		dc.SetColor(accent)
		dc.DrawStringAnchored(humanize.Comma(int64(c.Value)), fx+cardW/2, fy+75, 0.5, 0.5)
	}

	return dc.EncodePNG(w)
}

// SavePNGToFile writes the PNG card sheet to filename.
func SavePNGToFile(counters []model.Counter, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := WritePNG(f, counters); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}

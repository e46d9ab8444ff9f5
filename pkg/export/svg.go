package export

import (
	"fmt"
	"io"
	"os"

	svg "github.com/ajstarks/svgo"
	"github.com/dustin/go-humanize"

	"github.com/smantzavinos/tally/pkg/model"
)

// WriteSVG draws one card per counter.
func WriteSVG(w io.Writer, counters []model.Counter) error {
	s := layout(len(counters))
	canvas := svg.New(w)
	canvas.Start(s.width, s.height)
	canvas.Rect(0, 0, s.width, s.height, "fill:"+hex(background))

	for i, c := range counters {
		x, y := s.origin(i)
		accent := hex(styleColor(c.Style))
		canvas.Roundrect(x, y, cardW, cardH, 10, 10,
			fmt.Sprintf("fill:%s;fill-opacity:0.15;stroke:%s;stroke-width:3", accent, accent))
		canvas.Text(x+cardW/2, y+34, cardTitle(c),
			fmt.Sprintf("text-anchor:middle;font-family:sans-serif;font-size:16px;fill:%s", hex(foreground)))
		canvas.Text(x+cardW/2, y+86, humanize.Comma(int64(c.Value)),
			fmt.Sprintf("text-anchor:middle;font-family:sans-serif;font-size:40px;font-weight:bold;fill:%s", accent))
	}

	canvas.End()
	return nil
}

// SaveSVGToFile writes the SVG card sheet to filename.
func SaveSVGToFile(counters []model.Counter, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create svg: %w", err)
	}
	if err := WriteSVG(f, counters); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

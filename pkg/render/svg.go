package render

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// SVG is a surface that collects polygons and serializes them as an SVG document.
type SVG struct {
	width, height int
	body          bytes.Buffer
}

// NewSVG creates an empty width x height SVG surface.
func NewSVG(width, height int) *SVG {
	return &SVG{width: width, height: height}
}

// Size implements Surface.
func (s *SVG) Size() (int, int) {
	return s.width, s.height
}

// Clear implements Surface.
func (s *SVG) Clear() {
	s.body.Reset()
}

// Polygon implements Surface.
func (s *SVG) Polygon(points []Point, style Style) {
	if len(points) < 3 {
		return
	}

	s.body.WriteString(`  <polygon points="`)
	for i, p := range points {
		if i > 0 {
			s.body.WriteByte(' ')
		}
		s.body.WriteString(formatCoord(p.X))
		s.body.WriteByte(',')
		s.body.WriteString(formatCoord(p.Y))
	}
	s.body.WriteString(`"`)

	fill := "none"
	if style.Fill.A != 0 {
		fill = Hex(style.Fill)
	}
	fmt.Fprintf(&s.body, ` fill="%s"`, fill)

	if style.Stroke.A != 0 && style.LineWidth > 0 {
		fmt.Fprintf(&s.body, ` stroke="%s" stroke-width="%s"`, Hex(style.Stroke), formatCoord(style.LineWidth))
	}
	s.body.WriteString("/>\n")
}

// WriteTo writes the SVG document to w.
func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		s.width, s.height, s.width, s.height)
	buf.Write(s.body.Bytes())
	buf.WriteString("</svg>\n")
	return buf.WriteTo(w)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

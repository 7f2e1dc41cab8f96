package render

import (
	"image/color"

	"github.com/marmos91/shapeview/pkg/shape"
)

// Options configures a Renderer.
type Options struct {
	// Padding is subtracted from each surface dimension before scaling.
	// Nil means DefaultPadding; zero disables it.
	Padding *float64

	// LineWidth is the outline width in pixels.
	// Default: 1
	LineWidth float64

	// Outline is the outline color.
	// Default: black
	Outline color.RGBA

	// UnknownBlocks controls blocks with unrecognized type codes.
	// Default: UnknownFill
	UnknownBlocks UnknownBlockMode
}

func (o *Options) applyDefaults() {
	if o.Padding == nil || *o.Padding < 0 {
		p := float64(DefaultPadding)
		o.Padding = &p
	}
	if o.LineWidth <= 0 {
		o.LineWidth = 1
	}
	if o.Outline == (color.RGBA{}) {
		o.Outline = ColorOutline
	}
	if o.UnknownBlocks == "" {
		o.UnknownBlocks = UnknownFill
	}
}

// Polygon is one drawn block.
type Polygon struct {
	Block  shape.Block `json:"block"`
	Points []Point     `json:"points"`
	Fill   string      `json:"fill,omitempty"`
	Stroke string      `json:"stroke"`
}

// Drawing is the result of rendering a block list.
type Drawing struct {
	Layout   Layout    `json:"layout"`
	Polygons []Polygon `json:"polygons"`

	// Skipped counts blocks that produced no polygon.
	Skipped int `json:"skipped,omitempty"`
}

// Renderer draws shapes onto surfaces.
type Renderer struct {
	opts Options
}

// NewRenderer creates a renderer, filling unset options with defaults.
func NewRenderer(opts Options) *Renderer {
	opts.applyDefaults()
	return &Renderer{opts: opts}
}

// Options returns the effective options.
func (r *Renderer) Options() Options {
	return r.opts
}

// Padding returns the effective padding.
func (r *Renderer) Padding() float64 {
	return *r.opts.Padding
}

// MinSize is the smallest surface width or height the renderer can lay a
// shape out on.
func (r *Renderer) MinSize() int {
	return MinSurfaceSize(r.Padding())
}

// Plan computes the polygons for blocks on a width x height surface without
// drawing them. It returns false for an empty block list or a surface
// smaller than MinSize.
func (r *Renderer) Plan(blocks []shape.Block, width, height int) (Drawing, bool) {
	layout, ok := ComputeLayout(blocks, float64(width), float64(height), r.Padding())
	if !ok {
		return Drawing{}, false
	}

	d := Drawing{
		Layout:   layout,
		Polygons: make([]Polygon, 0, len(blocks)),
	}
	for _, b := range blocks {
		x0, y0, x1, y1 := layout.Cell(b.X, b.Y)

		if pts, ok := Vertices(b.Type, x0, y0, x1, y1); ok {
			d.Polygons = append(d.Polygons, Polygon{
				Block:  b,
				Points: pts,
				Fill:   Hex(FillColor(b.Type)),
				Stroke: Hex(r.opts.Outline),
			})
			continue
		}

		switch r.opts.UnknownBlocks {
		case UnknownFill:
			d.Polygons = append(d.Polygons, Polygon{
				Block:  b,
				Points: square(x0, y0, x1, y1),
				Fill:   Hex(ColorDefault),
				Stroke: Hex(r.opts.Outline),
			})
		case UnknownOutline:
			d.Polygons = append(d.Polygons, Polygon{
				Block:  b,
				Points: square(x0, y0, x1, y1),
				Stroke: Hex(r.opts.Outline),
			})
		default:
			d.Skipped++
		}
	}
	return d, true
}

// Draw clears s and paints blocks onto it in input order, so later blocks
// cover earlier ones. An empty block list or a surface smaller than MinSize
// leaves s blank and returns false.
func (r *Renderer) Draw(s Surface, blocks []shape.Block) (Drawing, bool) {
	s.Clear()

	w, h := s.Size()
	d, ok := r.Plan(blocks, w, h)
	if !ok {
		return Drawing{}, false
	}

	for _, p := range d.Polygons {
		style := Style{Stroke: r.opts.Outline, LineWidth: r.opts.LineWidth}
		if p.Fill != "" {
			style.Fill = MustParseHex(p.Fill)
		}
		s.Polygon(p.Points, style)
	}
	return d, true
}

package render

import (
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/vector"
)

// Raster is an in-memory RGBA surface rasterized with anti-aliasing.
type Raster struct {
	img *image.RGBA
	z   *vector.Rasterizer
}

// NewRaster creates a transparent width x height surface.
func NewRaster(width, height int) *Raster {
	return &Raster{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
		z:   vector.NewRasterizer(width, height),
	}
}

// Size implements Surface.
func (r *Raster) Size() (int, int) {
	b := r.img.Bounds()
	return b.Dx(), b.Dy()
}

// Clear implements Surface.
func (r *Raster) Clear() {
	draw.Draw(r.img, r.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

// Polygon implements Surface.
func (r *Raster) Polygon(points []Point, style Style) {
	if len(points) < 3 {
		return
	}

	if style.Fill.A != 0 {
		r.begin()
		r.path(points)
		r.z.Draw(r.img, r.img.Bounds(), image.NewUniform(style.Fill), image.Point{})
	}

	if style.Stroke.A != 0 && style.LineWidth > 0 {
		r.begin()
		for i := range points {
			r.edge(points[i], points[(i+1)%len(points)], style.LineWidth)
		}
		r.z.Draw(r.img, r.img.Bounds(), image.NewUniform(style.Stroke), image.Point{})
	}
}

// Image returns the backing image.
func (r *Raster) Image() *image.RGBA {
	return r.img
}

// EncodePNG writes the surface as a PNG image.
func (r *Raster) EncodePNG(w io.Writer) error {
	return png.Encode(w, r.img)
}

func (r *Raster) begin() {
	b := r.img.Bounds()
	r.z.Reset(b.Dx(), b.Dy())
	r.z.DrawOp = draw.Over
}

func (r *Raster) path(points []Point) {
	r.z.MoveTo(float32(points[0].X), float32(points[0].Y))
	for _, p := range points[1:] {
		r.z.LineTo(float32(p.X), float32(p.Y))
	}
	r.z.ClosePath()
}

// edge adds a line segment of the given width as a closed quad, extended by
// half the width at both ends so that corners join.
func (r *Raster) edge(a, b Point, width float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	half := width / 2
	ux, uy := dx/length*half, dy/length*half
	nx, ny := -uy, ux

	a = Point{a.X - ux, a.Y - uy}
	b = Point{b.X + ux, b.Y + uy}
	r.path([]Point{
		{a.X + nx, a.Y + ny},
		{b.X + nx, b.Y + ny},
		{b.X - nx, b.Y - ny},
		{a.X - nx, a.Y - ny},
	})
}

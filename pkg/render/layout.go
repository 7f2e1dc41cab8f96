// Package render turns a shape's unit-grid blocks into filled, outlined
// polygons on a fixed-size drawing surface.
//
// The shape's bounding box is scaled uniformly to fit the surface minus a
// padding and centered. Each block then occupies one scaled unit square and
// draws a triangle or square inside it according to its type code. Drawing
// coordinates grow rightwards and downwards.
package render

import (
	"math"

	"github.com/marmos91/shapeview/pkg/shape"
)

// DefaultPadding is subtracted from each surface dimension before scaling.
const DefaultPadding = 20

// MinSurfaceSize is the smallest width or height in whole pixels that
// leaves room for a shape inside padding.
func MinSurfaceSize(padding float64) int {
	return int(math.Floor(max(padding, 0))) + 1
}

// Layout is the placement of a shape on a surface.
type Layout struct {
	MinX, MaxX int
	MinY, MaxY int

	// WidthUnits and HeightUnits are the bounding box size in grid cells,
	// inclusive of the boundary cell.
	WidthUnits  int
	HeightUnits int

	// Scale is the pixel size of one grid cell.
	Scale float64

	// OffsetX and OffsetY map grid coordinates to pixels:
	// px = x*Scale + OffsetX.
	OffsetX float64
	OffsetY float64
}

// ComputeLayout fits blocks into a width x height surface. It returns false
// for an empty block list and for a surface that is not larger than the
// padding in both dimensions.
func ComputeLayout(blocks []shape.Block, width, height, padding float64) (Layout, bool) {
	if len(blocks) == 0 || width <= padding || height <= padding {
		return Layout{}, false
	}

	l := Layout{
		MinX: math.MaxInt, MaxX: math.MinInt,
		MinY: math.MaxInt, MaxY: math.MinInt,
	}
	for _, b := range blocks {
		l.MinX = min(l.MinX, b.X)
		l.MaxX = max(l.MaxX, b.X)
		l.MinY = min(l.MinY, b.Y)
		l.MaxY = max(l.MaxY, b.Y)
	}

	l.WidthUnits = l.MaxX - l.MinX + 1
	l.HeightUnits = l.MaxY - l.MinY + 1

	scaleX := (width - padding) / float64(l.WidthUnits)
	scaleY := (height - padding) / float64(l.HeightUnits)
	l.Scale = math.Min(scaleX, scaleY)

	shapeW := float64(l.WidthUnits) * l.Scale
	shapeH := float64(l.HeightUnits) * l.Scale
	l.OffsetX = (width-shapeW)/2 - float64(l.MinX)*l.Scale
	l.OffsetY = (height-shapeH)/2 - float64(l.MinY)*l.Scale

	return l, true
}

// Cell returns the pixel corners of the unit square at grid (x, y).
func (l Layout) Cell(x, y int) (x0, y0, x1, y1 float64) {
	x0 = float64(x)*l.Scale + l.OffsetX
	y0 = float64(y)*l.Scale + l.OffsetY
	return x0, y0, x0 + l.Scale, y0 + l.Scale
}

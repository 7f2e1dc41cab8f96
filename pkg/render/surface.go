package render

import "image/color"

// Style is the paint applied to one polygon. A zero Fill alpha draws no fill.
type Style struct {
	Fill      color.RGBA
	Stroke    color.RGBA
	LineWidth float64
}

// Surface is a fixed-size 2-D drawing target.
//
// A surface is owned by a single drawing at a time and is not safe for
// concurrent use.
type Surface interface {
	// Size returns the surface dimensions in pixels.
	Size() (width, height int)

	// Clear erases everything drawn so far.
	Clear()

	// Polygon fills and outlines a closed polygon.
	Polygon(points []Point, style Style)
}

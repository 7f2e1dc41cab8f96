package render

import (
	"github.com/marmos91/shapeview/pkg/shape"
)

// Point is a pixel position on a surface.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vertices returns the polygon of a block of type t inside the square
// (x0,y0)-(x1,y1). The boolean is false when the type has no polygon.
func Vertices(t shape.BlockType, x0, y0, x1, y1 float64) ([]Point, bool) {
	switch {
	case t.IsLowerRight():
		return []Point{{x0, y1}, {x1, y1}, {x1, y0}}, true
	case t.IsUpperRight():
		return []Point{{x0, y0}, {x1, y0}, {x1, y1}}, true
	case t.IsLowerLeft():
		return []Point{{x0, y0}, {x0, y1}, {x1, y1}}, true
	case t.IsUpperLeft():
		return []Point{{x0, y0}, {x1, y0}, {x0, y1}}, true
	case t.IsSquare():
		return square(x0, y0, x1, y1), true
	default:
		return nil, false
	}
}

func square(x0, y0, x1, y1 float64) []Point {
	return []Point{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
}

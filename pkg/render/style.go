package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/marmos91/shapeview/pkg/shape"
)

// Block fill colors.
var (
	ColorLowerRight = MustParseHex("#ff6b6b")
	ColorUpperRight = MustParseHex("#f0e68c")
	ColorLowerLeft  = MustParseHex("#4ecdc4")
	ColorUpperLeft  = MustParseHex("#45b7d1")
	ColorSquare     = MustParseHex("#a07d5c")
	ColorDefault    = MustParseHex("#cccccc")
	ColorOutline    = color.RGBA{A: 0xff}
)

// UnknownBlockMode controls how blocks with an unrecognized type code are drawn.
type UnknownBlockMode string

const (
	// UnknownFill draws a full square in the default color.
	UnknownFill UnknownBlockMode = "fill"
	// UnknownOutline draws the square border only.
	UnknownOutline UnknownBlockMode = "outline"
	// UnknownSkip draws nothing.
	UnknownSkip UnknownBlockMode = "skip"
)

// ParseUnknownBlockMode parses a mode name; empty selects UnknownFill.
func ParseUnknownBlockMode(s string) (UnknownBlockMode, error) {
	switch UnknownBlockMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", UnknownFill:
		return UnknownFill, nil
	case UnknownOutline:
		return UnknownOutline, nil
	case UnknownSkip:
		return UnknownSkip, nil
	default:
		return "", fmt.Errorf("invalid unknown block mode %q (valid: fill, outline, skip)", s)
	}
}

// FillColor returns the fill color of a block type. Unknown codes use ColorDefault.
func FillColor(t shape.BlockType) color.RGBA {
	switch {
	case t.IsLowerRight():
		return ColorLowerRight
	case t.IsUpperRight():
		return ColorUpperRight
	case t.IsLowerLeft():
		return ColorLowerLeft
	case t.IsUpperLeft():
		return ColorUpperLeft
	case t.IsSquare():
		return ColorSquare
	default:
		return ColorDefault
	}
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses #rgb or #rrggbb.
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// MustParseHex is ParseHex for package-level constants.
func MustParseHex(s string) color.RGBA {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

package render

// Call is one operation captured by a Recorder.
type Call struct {
	Op     string  `json:"op"`
	Points []Point `json:"points,omitempty"`
	Style  Style   `json:"-"`
}

// Recorder is a surface that records draw calls instead of painting them.
type Recorder struct {
	Width, Height int
	Calls         []Call
}

// NewRecorder creates a recording surface of the given size.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{Width: width, Height: height}
}

// Size implements Surface.
func (r *Recorder) Size() (int, int) {
	return r.Width, r.Height
}

// Clear implements Surface. The call history is kept; a "clear" call is appended.
func (r *Recorder) Clear() {
	r.Calls = append(r.Calls, Call{Op: "clear"})
}

// Polygon implements Surface.
func (r *Recorder) Polygon(points []Point, style Style) {
	pts := make([]Point, len(points))
	copy(pts, points)
	r.Calls = append(r.Calls, Call{Op: "polygon", Points: pts, Style: style})
}

// Polygons returns the polygons drawn since the last clear.
func (r *Recorder) Polygons() []Call {
	start := 0
	for i, c := range r.Calls {
		if c.Op == "clear" {
			start = i + 1
		}
	}
	return append([]Call(nil), r.Calls[start:]...)
}

// Clears returns how many times the surface was cleared.
func (r *Recorder) Clears() int {
	n := 0
	for _, c := range r.Calls {
		if c.Op == "clear" {
			n++
		}
	}
	return n
}

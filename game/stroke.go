package game

// Stroke is an opaque piece of drawing geometry.  Points are normalized to
// [0,1]x[0,1] so clients with different canvas sizes render the same image.
// A stroke is immutable once accepted.
type Stroke struct {
	ID     string       `json:"id"`
	Color  string       `json:"color"`
	Width  float64      `json:"width"`
	Points [][2]float64 `json:"points"`
	TS     int64        `json:"ts,omitempty"`
}

const (
	// MaxStrokePoints caps the point list of a single stroke.
	MaxStrokePoints = 1000
	// MinStrokeWidth and MaxStrokeWidth bound the brush size.
	MinStrokeWidth = 1
	MaxStrokeWidth = 100
)

// Valid reports whether the stroke is structurally well-formed: non-empty id
// and color, width in bounds, and a bounded list of in-range coordinate pairs.
// Invalid strokes are dropped by callers without surfacing an error.
func (s Stroke) Valid() bool {
	switch {
	case len(s.ID) == 0,
		len(s.Color) == 0,
		s.Width < MinStrokeWidth,
		s.Width > MaxStrokeWidth,
		len(s.Points) == 0,
		len(s.Points) > MaxStrokePoints:
		return false
	}
	for _, p := range s.Points {
		if p[0] < 0 || p[0] > 1 || p[1] < 0 || p[1] > 1 {
			return false
		}
	}
	return true
}

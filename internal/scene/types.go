package scene

import (
	"encoding/json"
	"fmt"
	"math"
)

// BBox is an axis-aligned box in source-frame pixels. Boxes may be inverted or
// extend past the frame; every derived quantity clamps instead of failing.
type BBox struct {
	X1, Y1, X2, Y2 float64
}

func (b BBox) Width() float64 {
	return math.Max(0, b.X2-b.X1)
}

func (b BBox) Height() float64 {
	return math.Max(0, b.Y2-b.Y1)
}

func (b BBox) Area() float64 {
	return b.Width() * b.Height()
}

func (b BBox) Center() (x, y float64) {
	return (b.X1 + b.X2) / 2, (b.Y1 + b.Y2) / 2
}

func (b BBox) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{b.X1, b.Y1, b.X2, b.Y2})
}

func (b *BBox) UnmarshalJSON(data []byte) error {
	var coords []float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return fmt.Errorf("bbox: %w", err)
	}
	if len(coords) != 4 {
		return fmt.Errorf("bbox: expected 4 coordinates, got %d", len(coords))
	}
	*b = BBox{X1: coords[0], Y1: coords[1], X2: coords[2], Y2: coords[3]}
	return nil
}

type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	BBox       BBox    `json:"bbox"`
}

// NewDetection builds a Detection with confidence clamped to [0,1].
// NaN and infinite coordinates collapse to zero.
func NewDetection(label string, confidence, x1, y1, x2, y2 float64) Detection {
	return Detection{
		Label:      label,
		Confidence: clamp01(confidence),
		BBox: BBox{
			X1: finite(x1),
			Y1: finite(y1),
			X2: finite(x2),
			Y2: finite(y2),
		},
	}
}

type Frame struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area is never below 1 so ratios against it are always defined.
func (f Frame) Area() float64 {
	return math.Max(float64(f.Width)*float64(f.Height), 1)
}

func (f Frame) Center() (x, y float64) {
	return float64(f.Width) / 2, float64(f.Height) / 2
}

type RankedDetection struct {
	Detection
	Score float64 `json:"score"`
}

// Selection holds the primary object and, optionally, a secondary one.
type Selection []RankedDetection

func (s Selection) Primary() (RankedDetection, bool) {
	if len(s) == 0 {
		return RankedDetection{}, false
	}
	return s[0], true
}

func (s Selection) Secondary() (RankedDetection, bool) {
	if len(s) < 2 {
		return RankedDetection{}, false
	}
	return s[1], true
}

type Position int

const (
	PositionLeft Position = iota
	PositionCenter
	PositionRight
)

func (p Position) String() string {
	switch p {
	case PositionLeft:
		return "left"
	case PositionCenter:
		return "center"
	case PositionRight:
		return "right"
	default:
		return "unknown"
	}
}

func ParsePosition(s string) (Position, error) {
	for _, p := range []Position{PositionLeft, PositionCenter, PositionRight} {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown position %q", s)
}

type Distance int

const (
	DistanceVeryClose Distance = iota
	DistanceClose
	DistanceMedium
	DistanceFar
)

func (d Distance) String() string {
	switch d {
	case DistanceVeryClose:
		return "very-close"
	case DistanceClose:
		return "close"
	case DistanceMedium:
		return "medium"
	case DistanceFar:
		return "far"
	default:
		return "unknown"
	}
}

func ParseDistance(s string) (Distance, error) {
	for _, d := range []Distance{DistanceVeryClose, DistanceClose, DistanceMedium, DistanceFar} {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown distance %q", s)
}

type Descriptor struct {
	DisplayName string
	Position    Position
	Distance    Distance
	Dangerous   bool
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(math.Max(v, 0), 1)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

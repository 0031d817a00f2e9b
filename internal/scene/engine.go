// Package scene turns raw object detections into a single spoken sentence.
//
// The pipeline is Rank -> Select -> Describe -> Compose. Every step is a pure
// function of its inputs and the Engine's immutable Vocabulary, so an Engine
// may be shared freely between goroutines.
package scene

import (
	"cmp"
	"math"
	"slices"
	"strings"
)

const (
	areaWeight       = 0.6
	centralityWeight = 0.4
	dangerPriority   = 1.35
	defaultPriority  = 1.0

	// DefaultSecondaryMinConfidence is the confidence a non-hazard runner-up
	// needs before it is narrated as the second object.
	DefaultSecondaryMinConfidence = 0.45

	leftBoundary  = 0.35
	rightBoundary = 0.65

	veryCloseRatio = 0.22
	closeRatio     = 0.10
	mediumRatio    = 0.04
)

type Engine struct {
	vocab                  *Vocabulary
	secondaryMinConfidence float64
}

type Option func(*Engine)

func WithSecondaryMinConfidence(c float64) Option {
	return func(e *Engine) {
		e.secondaryMinConfidence = c
	}
}

func NewEngine(vocab *Vocabulary, opts ...Option) *Engine {
	e := &Engine{
		vocab:                  vocab,
		secondaryMinConfidence: DefaultSecondaryMinConfidence,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Vocabulary() *Vocabulary {
	return e.vocab
}

// Score computes the salience of d within frame. Scores are only comparable
// between detections of the same frame.
func (e *Engine) Score(d Detection, frame Frame) float64 {
	cx, cy := d.BBox.Center()
	fx, fy := frame.Center()
	centerScore := 1 / (1 + math.Hypot(cx-fx, cy-fy))

	priority := defaultPriority
	if e.vocab.IsDangerous(d.Label) {
		priority = dangerPriority
	}

	score := (areaWeight*d.BBox.Area() + centralityWeight*centerScore*frame.Area()) * d.Confidence * priority
	if math.IsNaN(score) {
		return 0
	}
	return score
}

// Rank orders detections by descending salience. Equal scores keep their
// input order.
func (e *Engine) Rank(detections []Detection, frame Frame) []RankedDetection {
	ranked := make([]RankedDetection, len(detections))
	for i, d := range detections {
		ranked[i] = RankedDetection{Detection: d, Score: e.Score(d, frame)}
	}
	slices.SortStableFunc(ranked, func(a, b RankedDetection) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return ranked
}

// Select picks the primary object and at most one secondary. The first hazard
// after the primary with a different label wins the secondary slot regardless
// of its rank; otherwise the runner-up is used if it is confident enough.
func (e *Engine) Select(ranked []RankedDetection) Selection {
	if len(ranked) == 0 {
		return Selection{}
	}

	primary := ranked[0]
	for _, d := range ranked[1:] {
		if e.vocab.IsDangerous(d.Label) && d.Label != primary.Label {
			return Selection{primary, d}
		}
	}

	if len(ranked) > 1 && ranked[1].Confidence >= e.secondaryMinConfidence {
		return Selection{primary, ranked[1]}
	}
	return Selection{primary}
}

func (e *Engine) Describe(obj RankedDetection, frame Frame) Descriptor {
	cx, _ := obj.BBox.Center()
	return Descriptor{
		DisplayName: e.vocab.DisplayName(obj.Label),
		Position:    PositionOf(cx, frame.Width),
		Distance:    DistanceOf(obj.BBox.Area() / frame.Area()),
		Dangerous:   e.vocab.IsDangerous(obj.Label),
	}
}

func (e *Engine) Compose(sel Selection, frame Frame) string {
	primary, ok := sel.Primary()
	if !ok {
		return e.vocab.template.Fallback
	}

	phrase := e.vocab.render(e.vocab.template.Primary, e.Describe(primary, frame))
	if secondary, ok := sel.Secondary(); ok {
		phrase = strings.Join([]string{
			phrase,
			e.vocab.render(e.vocab.template.Secondary, e.Describe(secondary, frame)),
		}, " ")
	}
	return phrase
}

type Narration struct {
	Phrase        string
	DetectedCount int
	Picked        Selection
}

func (e *Engine) Narrate(detections []Detection, frame Frame) Narration {
	picked := e.Select(e.Rank(detections, frame))
	return Narration{
		Phrase:        e.Compose(picked, frame),
		DetectedCount: len(detections),
		Picked:        picked,
	}
}

// PositionOf buckets a horizontal center. 0.35 and 0.65 of the width both
// count as center.
func PositionOf(centerX float64, width int) Position {
	x := centerX / math.Max(float64(width), 1)
	if x < leftBoundary {
		return PositionLeft
	}
	if x > rightBoundary {
		return PositionRight
	}
	return PositionCenter
}

// DistanceOf buckets the box-to-frame area ratio. The checks run nearest
// first and each threshold is exclusive, so a ratio equal to a threshold
// lands in the farther bucket.
func DistanceOf(areaRatio float64) Distance {
	if areaRatio > veryCloseRatio {
		return DistanceVeryClose
	}
	if areaRatio > closeRatio {
		return DistanceClose
	}
	if areaRatio > mediumRatio {
		return DistanceMedium
	}
	return DistanceFar
}

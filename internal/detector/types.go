package detector

import (
	"context"
	"errors"
	"time"

	"github.com/eleven-am/vision-narrator/internal/scene"
)

// DefaultMinConfidence matches the threshold the detector model is queried with.
const DefaultMinConfidence = 0.35

var (
	ErrEmptyImage       = errors.New("empty image")
	ErrUnsupportedImage = errors.New("unsupported image format")
)

type Config struct {
	URL           string
	Timeout       time.Duration
	MinConfidence float64
}

type Result struct {
	Frame      scene.Frame
	Detections []scene.Detection
}

type Detector interface {
	Detect(ctx context.Context, image []byte) (*Result, error)
}

type detectResponse struct {
	Detections []detectionPayload `json:"detections"`
}

type detectionPayload struct {
	Label      string     `json:"label"`
	Confidence float64    `json:"confidence"`
	BBox       scene.BBox `json:"bbox"`
}

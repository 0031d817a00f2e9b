package narration

import (
	"context"
	"math"

	"github.com/eleven-am/vision-narrator/internal/scene"
)

// Gate is the anti-repeat decision. Implementations must be safe for
// concurrent use.
type Gate interface {
	Allow(ctx context.Context, phrase string) (bool, error)
}

type ClipStore interface {
	Save(ctx context.Context, data []byte, contentType string) (string, error)
}

type Request struct {
	Detections []scene.Detection
	Frame      scene.Frame
	Voice      bool
	// BypassGate speaks the phrase even if it was just spoken.
	BypassGate bool
}

type PickedObject struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type Result struct {
	Phrase        string         `json:"phrase"`
	DetectedCount int            `json:"detected_count"`
	Picked        []PickedObject `json:"picked"`
	AudioURL      string         `json:"audio_url"`
}

type NarrateRequest struct {
	Width      int               `json:"width"`
	Height     int               `json:"height"`
	Detections []scene.Detection `json:"detections"`
	Voice      bool              `json:"voice"`
}

func pickedObjects(sel scene.Selection) []PickedObject {
	out := make([]PickedObject, 0, len(sel))
	for _, d := range sel {
		out = append(out, PickedObject{
			Label:      d.Label,
			Confidence: math.Round(d.Confidence*1000) / 1000,
		})
	}
	return out
}

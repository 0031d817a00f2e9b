package synthesis

import (
	"context"
	"time"

	"github.com/eleven-am/vision-narrator/internal/shared"
)

const defaultContentType = "audio/mpeg"

type Config struct {
	URL      string
	Voice    string
	Language string
	Format   string
	Timeout  time.Duration
	Backoff  shared.BackoffConfig
}

type Request struct {
	Text     string `json:"text"`
	Voice    string `json:"voice,omitempty"`
	Language string `json:"language,omitempty"`
	Format   string `json:"format,omitempty"`
}

type Result struct {
	Audio       []byte
	ContentType string
}

type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (*Result, error)
	IsAvailable(ctx context.Context) bool
}

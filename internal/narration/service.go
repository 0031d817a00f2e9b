package narration

import (
	"context"
	"log/slog"

	"github.com/eleven-am/vision-narrator/internal/audio"
	"github.com/eleven-am/vision-narrator/internal/detector"
	"github.com/eleven-am/vision-narrator/internal/scene"
	"github.com/eleven-am/vision-narrator/internal/synthesis"
)

type ServiceConfig struct {
	Detector    detector.Detector
	Engine      *scene.Engine
	Gate        Gate
	Synthesizer synthesis.Synthesizer
	Clips       ClipStore
	Log         *slog.Logger
}

// Service runs one frame through detection, narration, the speech gate and
// synthesis. Audio problems never fail a request: the phrase is still returned.
type Service struct {
	detector    detector.Detector
	engine      *scene.Engine
	gate        Gate
	synthesizer synthesis.Synthesizer
	clips       ClipStore
	logger      *slog.Logger
}

func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Log
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		detector:    cfg.Detector,
		engine:      cfg.Engine,
		gate:        cfg.Gate,
		synthesizer: cfg.Synthesizer,
		clips:       cfg.Clips,
		logger:      logger.With("component", "narration"),
	}
}

func (s *Service) DetectAndNarrate(ctx context.Context, image []byte, voice, bypassGate bool) (*Result, error) {
	detected, err := s.detector.Detect(ctx, image)
	if err != nil {
		return nil, err
	}

	return s.Narrate(ctx, Request{
		Detections: detected.Detections,
		Frame:      detected.Frame,
		Voice:      voice,
		BypassGate: bypassGate,
	}), nil
}

func (s *Service) Narrate(ctx context.Context, req Request) *Result {
	n := s.engine.Narrate(req.Detections, req.Frame)

	result := &Result{
		Phrase:        n.Phrase,
		DetectedCount: n.DetectedCount,
		Picked:        pickedObjects(n.Picked),
	}

	if req.Voice && s.shouldSpeak(ctx, n.Phrase, req.BypassGate) {
		result.AudioURL = s.speak(ctx, n.Phrase)
	}

	s.logger.Debug("frame narrated",
		"detected", result.DetectedCount,
		"picked", len(result.Picked),
		"voice", req.Voice,
		"spoken", result.AudioURL != "")

	return result
}

func (s *Service) shouldSpeak(ctx context.Context, phrase string, bypass bool) bool {
	if bypass || s.gate == nil {
		return true
	}
	ok, err := s.gate.Allow(ctx, phrase)
	if err != nil {
		s.logger.Error("speech gate failed, speaking anyway", "error", err)
		return true
	}
	return ok
}

func (s *Service) speak(ctx context.Context, phrase string) string {
	if s.synthesizer == nil || s.clips == nil {
		return ""
	}

	res, err := s.synthesizer.Synthesize(ctx, synthesis.Request{
		Text:     phrase,
		Language: s.engine.Vocabulary().Language(),
	})
	if err != nil {
		s.logger.Warn("synthesis failed", "error", err)
		return ""
	}

	id, err := s.clips.Save(ctx, res.Audio, res.ContentType)
	if err != nil {
		s.logger.Warn("failed to store clip", "error", err)
		return ""
	}
	return audio.URLPath(id)
}

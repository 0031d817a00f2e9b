package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/eleven-am/vision-narrator/internal/audio"
	"github.com/eleven-am/vision-narrator/internal/detector"
	"github.com/eleven-am/vision-narrator/internal/narration"
	"github.com/eleven-am/vision-narrator/internal/scene"
	"github.com/eleven-am/vision-narrator/internal/speechgate"
	"github.com/eleven-am/vision-narrator/internal/synthesis"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

func ProvideVocabulary(cfg *Config, logger *slog.Logger) (*scene.Vocabulary, error) {
	if cfg.VocabularyFile != "" {
		vocab, err := scene.LoadVocabularyFile(cfg.VocabularyFile)
		if err != nil {
			return nil, err
		}
		logger.Info("loaded vocabulary", "file", cfg.VocabularyFile, "language", vocab.Language())
		return vocab, nil
	}
	return scene.Builtin(cfg.Language)
}

func ProvideEngine(vocab *scene.Vocabulary, cfg *Config) *scene.Engine {
	return scene.NewEngine(vocab, scene.WithSecondaryMinConfidence(cfg.SecondaryMinConfidence))
}

func ProvideSpeechGate(cfg *Config, redisClient *redis.Client) (narration.Gate, error) {
	switch cfg.GateBackend {
	case GateBackendMemory:
		return speechgate.New(cfg.SpeechCooldown), nil
	case GateBackendRedis:
		return speechgate.NewRedisGate(redisClient, cfg.GateKey, cfg.SpeechCooldown), nil
	default:
		return nil, fmt.Errorf("unknown gate backend %q", cfg.GateBackend)
	}
}

func ProvideDetector(cfg *Config) *detector.Client {
	return detector.NewClient(detector.Config{
		URL:           cfg.DetectorURL,
		Timeout:       cfg.DetectorTimeout,
		MinConfidence: cfg.DetectorMinConfidence,
	})
}

// ProvideSynthesizer returns nil when TTS_URL is unset; narration then
// returns phrases without audio.
func ProvideSynthesizer(cfg *Config, vocab *scene.Vocabulary) synthesis.Synthesizer {
	if cfg.TTSURL == "" {
		return nil
	}
	return synthesis.New(synthesis.Config{
		URL:      cfg.TTSURL,
		Voice:    cfg.TTSVoice,
		Language: vocab.Language(),
		Timeout:  cfg.TTSTimeout,
	})
}

func ProvideClipStore(redisClient *redis.Client, cfg *Config) *audio.Store {
	return audio.NewStore(redisClient, cfg.AudioTTL)
}

type NarrationParams struct {
	fx.In

	Detector    *detector.Client
	Engine      *scene.Engine
	Gate        narration.Gate
	Synthesizer synthesis.Synthesizer
	Clips       *audio.Store
	Logger      *slog.Logger
}

func ProvideNarrationService(p NarrationParams) *narration.Service {
	return narration.NewService(narration.ServiceConfig{
		Detector:    p.Detector,
		Engine:      p.Engine,
		Gate:        p.Gate,
		Synthesizer: p.Synthesizer,
		Clips:       p.Clips,
		Log:         p.Logger,
	})
}

func ProvideNarrationHandler(svc *narration.Service, logger *slog.Logger) *narration.Handler {
	return narration.NewHandler(svc, logger)
}

func ProvideAudioHandler(store *audio.Store, logger *slog.Logger) *audio.Handler {
	return audio.NewHandler(store, logger)
}

var NarrationModule = fx.Options(
	fx.Provide(
		ProvideVocabulary,
		ProvideEngine,
		ProvideSpeechGate,
		ProvideDetector,
		ProvideSynthesizer,
		ProvideClipStore,
		ProvideNarrationService,
		ProvideNarrationHandler,
		ProvideAudioHandler,
	),
)

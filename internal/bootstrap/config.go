package bootstrap

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	GateBackendMemory = "memory"
	GateBackendRedis  = "redis"
)

type Config struct {
	ServerAddr string
	LogLevel   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	GateBackend    string
	GateKey        string
	SpeechCooldown time.Duration

	DetectorURL           string
	DetectorTimeout       time.Duration
	DetectorMinConfidence float64

	TTSURL     string
	TTSVoice   string
	TTSTimeout time.Duration

	Language               string
	VocabularyFile         string
	SecondaryMinConfidence float64
	AudioTTL               time.Duration

	StaticDir string
	IndexHTML string
}

func LoadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		GateBackend:    strings.ToLower(getEnv("GATE_BACKEND", GateBackendMemory)),
		GateKey:        getEnv("GATE_KEY", "speechgate:default"),
		SpeechCooldown: getEnvSeconds("SPEECH_COOLDOWN_SECONDS", 3*time.Second),

		DetectorURL:           getEnv("DETECTOR_URL", "http://localhost:8000"),
		DetectorTimeout:       getEnvSeconds("DETECTOR_TIMEOUT_SECONDS", 10*time.Second),
		DetectorMinConfidence: getEnvFloat("DETECTOR_MIN_CONFIDENCE", 0.35),

		TTSURL:     getEnv("TTS_URL", ""),
		TTSVoice:   getEnv("TTS_VOICE", ""),
		TTSTimeout: getEnvSeconds("TTS_TIMEOUT_SECONDS", 15*time.Second),

		Language:               strings.ToLower(getEnv("NARRATION_LANGUAGE", "ru")),
		VocabularyFile:         getEnv("VOCABULARY_FILE", ""),
		SecondaryMinConfidence: getEnvFloat("SECONDARY_MIN_CONFIDENCE", 0.45),
		AudioTTL:               getEnvSeconds("AUDIO_TTL_SECONDS", 5*time.Minute),

		StaticDir: getEnv("STATIC_DIR", "./static"),
		IndexHTML: getEnv("INDEX_HTML", "./static/index.html"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvSeconds accepts fractional seconds, so SPEECH_COOLDOWN_SECONDS=1.5 works.
func getEnvSeconds(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f >= 0 {
			return time.Duration(f * float64(time.Second))
		}
	}
	return defaultValue
}

package bootstrap

import (
	"log/slog"
	"os"

	"github.com/eleven-am/vision-narrator/internal/audio"
	"github.com/eleven-am/vision-narrator/internal/narration"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type HandlerParams struct {
	fx.In

	NarrationHandler *narration.Handler
	AudioHandler     *audio.Handler
	Config           *Config
}

func RegisterRoutes(e *echo.Echo, params HandlerParams) {
	api := e.Group("/api/v1")

	params.NarrationHandler.RegisterRoutes(api)
	params.AudioHandler.RegisterRoutes(api.Group("/audio"))

	e.Static("/assets", params.Config.StaticDir)
	e.GET("/*", func(c echo.Context) error {
		return c.File(params.Config.IndexHTML)
	})
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ProvideLogger(cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)
	return logger
}

var HandlersModule = fx.Options(
	fx.Provide(
		ProvideLogger,
	),
	fx.Invoke(RegisterRoutes),
)

package detector

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/eleven-am/vision-narrator/internal/scene"
	_ "golang.org/x/image/webp"
)

// ProbeFrame reads the pixel dimensions from an encoded image header without
// decoding the pixels. It also reports the detected format name.
func ProbeFrame(data []byte) (scene.Frame, string, error) {
	if len(data) == 0 {
		return scene.Frame{}, "", ErrEmptyImage
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return scene.Frame{}, "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return scene.Frame{}, "", fmt.Errorf("%w: invalid dimensions %dx%d", ErrUnsupportedImage, cfg.Width, cfg.Height)
	}

	return scene.Frame{Width: cfg.Width, Height: cfg.Height}, format, nil
}

func contentTypeFor(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

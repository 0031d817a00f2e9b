package narration

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/eleven-am/vision-narrator/internal/detector"
	"github.com/eleven-am/vision-narrator/internal/scene"
	"github.com/eleven-am/vision-narrator/internal/shared"
	"github.com/labstack/echo/v4"
)

const (
	maxImageSize      = 10 * 1024 * 1024
	maxDetections     = 1000
	imageFormField    = "image"
	voiceFormField    = "voice"
	voiceEnabledValue = "1"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service: service,
		logger:  logger.With("handler", "narration"),
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/predict/frame", h.HandleFrame)
	g.POST("/predict/photo", h.HandlePhoto)
	g.POST("/narrate", h.HandleNarrate)
	g.GET("/stream", h.HandleStream)
}

// HandleFrame narrates one camera frame, speaking only if the speech gate allows
// @Summary      Narrate camera frame
// @Tags         narration
// @Accept       multipart/form-data
// @Produce      json
// @Param        image formData file true "Encoded frame (JPEG, PNG or WebP)"
// @Param        voice formData string false "1 to synthesize speech"
// @Success      200 {object} Result
// @Failure      400 {object} shared.APIError
// @Failure      502 {object} shared.APIError "Detector unavailable"
// @Router       /predict/frame [post]
func (h *Handler) HandleFrame(c echo.Context) error {
	return h.handleUpload(c, false)
}

// HandlePhoto narrates an uploaded photo; the speech gate does not apply
// @Summary      Narrate photo
// @Tags         narration
// @Accept       multipart/form-data
// @Produce      json
// @Param        image formData file true "Encoded photo"
// @Param        voice formData string false "1 to synthesize speech"
// @Success      200 {object} Result
// @Failure      400 {object} shared.APIError
// @Router       /predict/photo [post]
func (h *Handler) HandlePhoto(c echo.Context) error {
	return h.handleUpload(c, true)
}

func (h *Handler) handleUpload(c echo.Context, bypassGate bool) error {
	img, err := readImage(c)
	if err != nil {
		return err
	}
	voice := c.FormValue(voiceFormField) == voiceEnabledValue

	result, err := h.service.DetectAndNarrate(c.Request().Context(), img, voice, bypassGate)
	if err != nil {
		return h.detectionError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// HandleNarrate narrates detections produced by a client-side detector
// @Summary      Narrate detections
// @Tags         narration
// @Accept       json
// @Produce      json
// @Param        request body NarrateRequest true "Frame size and detections"
// @Success      200 {object} Result
// @Failure      400 {object} shared.APIError
// @Router       /narrate [post]
func (h *Handler) HandleNarrate(c echo.Context) error {
	var req NarrateRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_body", "invalid request body")
	}
	if err := validateNarrateRequest(req); err != nil {
		return err
	}

	result := h.service.Narrate(c.Request().Context(), toRequest(req))
	return c.JSON(http.StatusOK, result)
}

func validateNarrateRequest(req NarrateRequest) error {
	if req.Width <= 0 || req.Height <= 0 {
		return shared.BadRequest("invalid_frame", "width and height must be positive")
	}
	if len(req.Detections) > maxDetections {
		return shared.BadRequest("too_many_detections", "too many detections")
	}
	return nil
}

func toRequest(req NarrateRequest) Request {
	detections := make([]scene.Detection, 0, len(req.Detections))
	for _, d := range req.Detections {
		detections = append(detections, scene.NewDetection(d.Label, d.Confidence, d.BBox.X1, d.BBox.Y1, d.BBox.X2, d.BBox.Y2))
	}
	return Request{
		Detections: detections,
		Frame:      scene.Frame{Width: req.Width, Height: req.Height},
		Voice:      req.Voice,
	}
}

func readImage(c echo.Context) ([]byte, error) {
	fh, err := c.FormFile(imageFormField)
	if err != nil {
		return nil, shared.BadRequest("no_image", "no image")
	}
	if fh.Size > maxImageSize {
		return nil, shared.RequestTooLarge("image_too_large", "image exceeds size limit")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, shared.BadRequest("invalid_image", "failed to read image")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageSize+1))
	if err != nil {
		return nil, shared.BadRequest("invalid_image", "failed to read image")
	}
	if len(data) == 0 {
		return nil, shared.BadRequest("empty_image", "empty image")
	}
	if len(data) > maxImageSize {
		return nil, shared.RequestTooLarge("image_too_large", "image exceeds size limit")
	}
	return data, nil
}

func (h *Handler) detectionError(err error) error {
	switch {
	case errors.Is(err, detector.ErrEmptyImage):
		return shared.BadRequest("empty_image", "empty image")
	case errors.Is(err, detector.ErrUnsupportedImage):
		return shared.BadRequest("unsupported_image", "unsupported image format")
	default:
		h.logger.Error("detection failed", "error", err)
		return shared.BadGateway("detection_failed", "object detection failed")
	}
}

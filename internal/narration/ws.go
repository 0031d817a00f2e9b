package narration

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/eleven-am/vision-narrator/internal/detector"
	"github.com/eleven-am/vision-narrator/internal/shared"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = maxImageSize
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// StreamReply is written for every frame received on the stream. Exactly one
// of Result and Error is set.
type StreamReply struct {
	Result *Result          `json:"result,omitempty"`
	Error  *shared.APIError `json:"error,omitempty"`
}

type streamConn struct {
	ws      *websocket.Conn
	service *Service
	voice   bool
	logger  *slog.Logger
	send    chan *StreamReply
	done    chan struct{}
	mu      sync.Mutex
	closed  bool
}

func newStreamConn(ws *websocket.Conn, service *Service, voice bool, logger *slog.Logger) *streamConn {
	return &streamConn{
		ws:      ws,
		service: service,
		voice:   voice,
		logger:  logger,
		send:    make(chan *StreamReply, sendBufferSize),
		done:    make(chan struct{}),
	}
}

// HandleStream upgrades to a WebSocket carrying live camera frames. Binary
// messages are encoded images; text messages are NarrateRequest JSON.
// @Summary      Live narration stream
// @Tags         narration
// @Param        voice query string false "1 to synthesize speech"
// @Router       /stream [get]
func (h *Handler) HandleStream(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return err
	}

	voice := c.QueryParam(voiceFormField) == voiceEnabledValue
	conn := newStreamConn(ws, h.service, voice, h.logger)

	h.logger.Info("stream connected", "remote", c.RealIP(), "voice", voice)

	ctx := c.Request().Context()
	go conn.writePump(ctx)
	conn.readPump(ctx)

	h.logger.Info("stream disconnected", "remote", c.RealIP())
	return nil
}

func (c *streamConn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	_ = c.ws.Close()
}

func (c *streamConn) readPump(ctx context.Context) {
	defer c.close()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			return
		}

		reply := c.handleMessage(ctx, msgType, data)
		if reply == nil {
			continue
		}

		select {
		case c.send <- reply:
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (c *streamConn) handleMessage(ctx context.Context, msgType int, data []byte) *StreamReply {
	switch msgType {
	case websocket.BinaryMessage:
		result, err := c.service.DetectAndNarrate(ctx, data, c.voice, false)
		if err != nil {
			return &StreamReply{Error: c.streamError(err)}
		}
		return &StreamReply{Result: result}

	case websocket.TextMessage:
		var req NarrateRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return &StreamReply{Error: shared.NewAPIError("invalid_body", "invalid request body")}
		}
		if err := validateNarrateRequest(req); err != nil {
			return &StreamReply{Error: apiErrorOf(err)}
		}
		r := toRequest(req)
		r.Voice = r.Voice || c.voice
		return &StreamReply{Result: c.service.Narrate(ctx, r)}
	}
	return nil
}

func (c *streamConn) streamError(err error) *shared.APIError {
	switch {
	case errors.Is(err, detector.ErrEmptyImage):
		return shared.NewAPIError("empty_image", "empty image")
	case errors.Is(err, detector.ErrUnsupportedImage):
		return shared.NewAPIError("unsupported_image", "unsupported image format")
	default:
		c.logger.Error("detection failed", "error", err)
		return shared.NewAPIError("detection_failed", "object detection failed")
	}
}

func apiErrorOf(err error) *shared.APIError {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if apiErr, ok := httpErr.Message.(*shared.APIError); ok {
			return apiErr
		}
	}
	return shared.NewAPIError("invalid_request", err.Error())
}

func (c *streamConn) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case reply := <-c.send:
			data, err := json.Marshal(reply)
			if err != nil {
				c.logger.Error("failed to marshal reply", "error", err)
				continue
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Warn("websocket write error", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

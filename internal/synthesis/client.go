package synthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/eleven-am/vision-narrator/internal/shared"
)

const maxAudioSize = 20 * 1024 * 1024

var errRetryable = errors.New("retryable")

type Client struct {
	httpClient *http.Client
	baseURL    string
	voice      string
	language   string
	format     string
	backoff    shared.BackoffConfig
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.URL,
		voice:      cfg.Voice,
		language:   cfg.Language,
		format:     cfg.Format,
		backoff:    cfg.Backoff.Normalize(),
	}
}

// Synthesize renders text to audio. Transport failures and 5xx responses are
// retried with exponential backoff; 4xx responses are returned immediately.
func (c *Client) Synthesize(ctx context.Context, req Request) (*Result, error) {
	if req.Text == "" {
		return nil, fmt.Errorf("synthesize: empty text")
	}
	if req.Voice == "" {
		req.Voice = c.voice
	}
	if req.Language == "" {
		req.Language = c.language
	}
	if req.Format == "" {
		req.Format = c.format
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	delay := c.backoff.Initial
	var lastErr error
	for attempt := 0; attempt < c.backoff.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay = c.backoff.Next(delay)
		}

		res, err := c.do(ctx, body)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !errors.Is(err, errRetryable) || ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("synthesize: %w", lastErr)
}

func (c *Client) do(ctx context.Context, body []byte) (*Result, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/synthesize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: tts request: %v", errRetryable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: tts returned status %d", errRetryable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts returned status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read audio: %v", errRetryable, err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("tts returned empty audio")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}
	return &Result{Audio: audio, ContentType: contentType}, nil
}

func (c *Client) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

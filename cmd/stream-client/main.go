package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

type Result struct {
	Phrase        string `json:"phrase"`
	DetectedCount int    `json:"detected_count"`
	AudioURL      string `json:"audio_url"`
}

type Reply struct {
	Result *Result `json:"result,omitempty"`
	Error  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// stream-client replays image files against the narration stream, one frame
// per interval, and prints each reply. Useful for checking the speech gate by
// sending the same frame repeatedly.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: stream-client <image> [image...]")
	}

	streamURL := os.Getenv("STREAM_URL")
	if streamURL == "" {
		streamURL = "ws://localhost:8080/api/v1/stream"
	}
	interval := time.Second
	if v := os.Getenv("FRAME_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			interval = d
		}
	}

	u, err := url.Parse(streamURL)
	if err != nil {
		log.Fatal("parse url:", err)
	}
	if os.Getenv("VOICE") == "1" {
		q := u.Query()
		q.Set("voice", "1")
		u.RawQuery = q.Encode()
	}

	fmt.Printf("[STREAM] Connecting to %s\n", u.String())

	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		if resp != nil {
			body, _ := io.ReadAll(resp.Body)
			fmt.Printf("[STREAM] Dial failed: %v, status=%d, body=%s\n", err, resp.StatusCode, string(body))
		}
		log.Fatal("dial:", err)
	}
	defer conn.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		fmt.Println("[STREAM] Shutting down...")
		conn.Close()
		os.Exit(0)
	}()

	for i, path := range os.Args[1:] {
		if i > 0 {
			time.Sleep(interval)
		}
		if err := sendFrame(conn, path); err != nil {
			fmt.Printf("[STREAM] %s: %v\n", path, err)
			return
		}
	}
}

func sendFrame(conn *websocket.Conn, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read frame: %w", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}

	_, raw, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("read reply: %w", err)
	}

	var reply Reply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}

	switch {
	case reply.Error != nil:
		fmt.Printf("[STREAM] %s: error %s: %s\n", path, reply.Error.Code, reply.Error.Message)
	case reply.Result != nil:
		spoken := "silent"
		if reply.Result.AudioURL != "" {
			spoken = reply.Result.AudioURL
		}
		fmt.Printf("[STREAM] %s: %q (objects=%d, audio=%s)\n", path, reply.Result.Phrase, reply.Result.DetectedCount, spoken)
	}
	return nil
}

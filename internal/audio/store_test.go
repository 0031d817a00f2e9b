package audio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/eleven-am/vision-narrator/internal/shared"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client, ttl), mr
}

func TestNewStore_DefaultTTL(t *testing.T) {
	store := NewStore(redis.NewClient(&redis.Options{}), 0)
	if store.ttl != defaultClipTTL {
		t.Errorf("expected default TTL %v, got %v", defaultClipTTL, store.ttl)
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	store, _ := newTestStore(t, time.Minute)
	ctx := context.Background()

	id, err := store.Save(ctx, []byte("mp3-bytes"), "audio/mpeg")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasPrefix(id, clipIDPrefix) {
		t.Errorf("expected clip id prefix, got %s", id)
	}

	clip, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(clip.Data) != "mp3-bytes" {
		t.Errorf("unexpected data %q", clip.Data)
	}
	if clip.ContentType != "audio/mpeg" {
		t.Errorf("unexpected content type %s", clip.ContentType)
	}
}

func TestStore_Expires(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	id, err := store.Save(ctx, []byte("data"), "audio/mpeg")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.Get(ctx, id); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("expected ErrNotFound after TTL, got %v", err)
	}
}

func TestStore_SaveEmpty(t *testing.T) {
	store, _ := newTestStore(t, time.Minute)
	if _, err := store.Save(context.Background(), nil, "audio/mpeg"); err == nil {
		t.Error("expected error for empty clip")
	}
}

func TestStore_Delete(t *testing.T) {
	store, _ := newTestStore(t, time.Minute)
	ctx := context.Background()

	id, _ := store.Save(ctx, []byte("data"), "audio/mpeg")
	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, id); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestURLPath(t *testing.T) {
	if got := URLPath("clip_abc"); got != "/api/v1/audio/clip_abc" {
		t.Errorf("unexpected path %s", got)
	}
}

func newTestHandler(store *Store) *Handler {
	return NewHandler(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandler_RegisterRoutes(t *testing.T) {
	h := newTestHandler(nil)
	e := echo.New()
	h.RegisterRoutes(e.Group("/api/v1/audio"))

	found := false
	for _, r := range e.Routes() {
		if r.Path == "/api/v1/audio/:id" && r.Method == http.MethodGet {
			found = true
		}
	}
	if !found {
		t.Error("expected GET /api/v1/audio/:id to be registered")
	}
}

func TestHandler_GetClip(t *testing.T) {
	store, _ := newTestStore(t, time.Minute)
	id, _ := store.Save(context.Background(), []byte("ogg-bytes"), "audio/ogg")
	h := newTestHandler(store)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, URLPath(id), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)

	if err := h.HandleGetClip(c); err != nil {
		t.Fatalf("HandleGetClip failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "audio/ogg" {
		t.Errorf("expected audio/ogg, got %s", rec.Header().Get("Content-Type"))
	}
	if rec.Body.String() != "ogg-bytes" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestHandler_GetClip_NotFound(t *testing.T) {
	store, _ := newTestStore(t, time.Minute)
	h := newTestHandler(store)

	for _, id := range []string{"clip_missing", "../etc/passwd"} {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/audio/x", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(id)

		err := h.HandleGetClip(c)
		httpErr, ok := err.(*echo.HTTPError)
		if !ok {
			t.Fatalf("%s: expected echo.HTTPError, got %v", id, err)
		}
		if httpErr.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", id, httpErr.Code)
		}
	}
}

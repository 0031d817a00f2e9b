package shared

import (
	"strings"
	"testing"
	"time"
)

func TestNewID(t *testing.T) {
	tests := []struct {
		prefix string
	}{
		{prefix: "clip_"},
		{prefix: "frame_"},
		{prefix: ""},
	}

	for _, tt := range tests {
		t.Run("prefix_"+tt.prefix, func(t *testing.T) {
			id := NewID(tt.prefix)
			if !strings.HasPrefix(id, tt.prefix) {
				t.Errorf("expected ID to start with '%s', got '%s'", tt.prefix, id)
			}
			expectedLen := len(tt.prefix) + 32
			if len(id) != expectedLen {
				t.Errorf("expected length %d, got %d", expectedLen, len(id))
			}
		})
	}

	id1 := NewID("test_")
	id2 := NewID("test_")
	if id1 == id2 {
		t.Error("expected unique IDs, got duplicates")
	}
}

func TestBackoffConfig_Normalize(t *testing.T) {
	tests := []struct {
		name  string
		input BackoffConfig
		want  BackoffConfig
	}{
		{
			name:  "empty config gets defaults",
			input: BackoffConfig{},
			want: BackoffConfig{
				Initial:     100 * time.Millisecond,
				MaxAttempts: 3,
				MaxDelay:    2 * time.Second,
			},
		},
		{
			name: "preserves non-zero values",
			input: BackoffConfig{
				Initial:     200 * time.Millisecond,
				MaxAttempts: 10,
				MaxDelay:    5 * time.Second,
			},
			want: BackoffConfig{
				Initial:     200 * time.Millisecond,
				MaxAttempts: 10,
				MaxDelay:    5 * time.Second,
			},
		},
		{
			name: "negative values treated as zero",
			input: BackoffConfig{
				Initial:     -100 * time.Millisecond,
				MaxAttempts: -5,
				MaxDelay:    -1 * time.Second,
			},
			want: BackoffConfig{
				Initial:     100 * time.Millisecond,
				MaxAttempts: 3,
				MaxDelay:    2 * time.Second,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.input.Normalize(); got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBackoffConfig_Next(t *testing.T) {
	cfg := BackoffConfig{MaxDelay: time.Second}
	if got := cfg.Next(300 * time.Millisecond); got != 600*time.Millisecond {
		t.Errorf("expected 600ms, got %v", got)
	}
	if got := cfg.Next(800 * time.Millisecond); got != time.Second {
		t.Errorf("expected cap at 1s, got %v", got)
	}
}

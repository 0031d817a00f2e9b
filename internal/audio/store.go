package audio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eleven-am/vision-narrator/internal/shared"
	"github.com/redis/go-redis/v9"
)

const (
	defaultClipTTL = 5 * time.Minute
	clipIDPrefix   = "clip_"
)

type Clip struct {
	ID          string
	ContentType string
	Data        []byte
}

// Store keeps synthesized clips just long enough for the client to fetch and
// play them.
type Store struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStore(redisClient *redis.Client, ttl time.Duration) *Store {
	if ttl == 0 {
		ttl = defaultClipTTL
	}
	return &Store{
		redis: redisClient,
		ttl:   ttl,
	}
}

func clipKey(id string) string {
	return fmt.Sprintf("audio:%s", id)
}

func (s *Store) Save(ctx context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty clip")
	}

	id := shared.NewID(clipIDPrefix)
	key := clipKey(id)

	pipe := s.redis.TxPipeline()
	pipe.HSet(ctx, key, "type", contentType, "data", data)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("save clip: %w", err)
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, id string) (*Clip, error) {
	values, err := s.redis.HGetAll(ctx, clipKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get clip: %w", err)
	}
	data, ok := values["data"]
	if !ok {
		return nil, shared.ErrNotFound
	}

	return &Clip{
		ID:          id,
		ContentType: values["type"],
		Data:        []byte(data),
	}, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.redis.Del(ctx, clipKey(id)).Err()
}

// URLPath is where Handler serves the clip with the given id.
func URLPath(id string) string {
	return "/api/v1/audio/" + id
}

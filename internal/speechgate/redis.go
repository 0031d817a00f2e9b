package speechgate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultKey = "speechgate:default"

// The whole check-and-set runs as one script so replicas sharing the key see
// a single critical section.
var decideScript = redis.NewScript(`
local last = redis.call('HGET', KEYS[1], 'phrase')
local at = tonumber(redis.call('HGET', KEYS[1], 'at') or '0')
local now = tonumber(ARGV[2])
local cooldown = tonumber(ARGV[3])
if last == ARGV[1] and (now - at) < cooldown then
	return 0
end
redis.call('HSET', KEYS[1], 'phrase', ARGV[1], 'at', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// RedisGate shares the gate state between server replicas. The key expires
// after one cooldown, which is when the state stops mattering anyway.
type RedisGate struct {
	redis    *redis.Client
	key      string
	cooldown time.Duration
	now      func() time.Time
}

func NewRedisGate(redisClient *redis.Client, key string, cooldown time.Duration) *RedisGate {
	if key == "" {
		key = DefaultKey
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &RedisGate{
		redis:    redisClient,
		key:      key,
		cooldown: cooldown,
		now:      time.Now,
	}
}

func (g *RedisGate) ShouldSpeak(ctx context.Context, phrase string, now time.Time) (bool, error) {
	res, err := decideScript.Run(ctx, g.redis, []string{g.key},
		phrase,
		now.UnixMilli(),
		g.cooldown.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("speech gate: %w", err)
	}
	return res == 1, nil
}

func (g *RedisGate) Allow(ctx context.Context, phrase string) (bool, error) {
	return g.ShouldSpeak(ctx, phrase, g.now())
}

func (g *RedisGate) Reset(ctx context.Context) error {
	return g.redis.Del(ctx, g.key).Err()
}

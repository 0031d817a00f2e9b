// Package speechgate decides whether a narrated phrase should be spoken,
// suppressing repeats of an unchanged phrase inside a cooldown window.
package speechgate

import (
	"context"
	"sync"
	"time"
)

const DefaultCooldown = 3 * time.Second

type State struct {
	LastPhrase   string
	LastSpokenAt time.Time
}

// Decide applies the anti-repeat rule to state. It reports false only when
// phrase equals the last spoken phrase and less than cooldown has elapsed;
// otherwise it records phrase as spoken at now and reports true.
func Decide(state *State, phrase string, cooldown time.Duration, now time.Time) bool {
	if phrase == state.LastPhrase && now.Sub(state.LastSpokenAt) < cooldown {
		return false
	}
	state.LastPhrase = phrase
	state.LastSpokenAt = now
	return true
}

// Gate holds one process-wide State behind a mutex so concurrent frame
// requests serialize their read-modify-write.
type Gate struct {
	mu       sync.Mutex
	state    State
	cooldown time.Duration
	now      func() time.Time
}

func New(cooldown time.Duration) *Gate {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Gate{
		cooldown: cooldown,
		now:      time.Now,
	}
}

func (g *Gate) Cooldown() time.Duration {
	return g.cooldown
}

func (g *Gate) ShouldSpeak(phrase string, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Decide(&g.state, phrase, g.cooldown, now)
}

// Allow checks phrase against the wall clock. It never fails.
func (g *Gate) Allow(_ context.Context, phrase string) (bool, error) {
	return g.ShouldSpeak(phrase, g.now()), nil
}

func (g *Gate) Snapshot() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = State{}
}

package uploads

import (
	"context"
	"sync"
	"time"
)

// memorySweepInterval is how often writes drop expired entries.
const memorySweepInterval = time.Minute

// MemoryTracker keeps upload states in process memory. Expired entries are
// dropped on lookup and by a periodic sweep on writes.
type MemoryTracker struct {
	mu        sync.Mutex
	entries   map[string]entry
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

type entry struct {
	state   State
	expires time.Time
}

// NewMemoryTracker constructs a MemoryTracker. A nil now uses time.Now.
func NewMemoryTracker(ttl time.Duration, now func() time.Time) *MemoryTracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &MemoryTracker{
		entries:   make(map[string]entry),
		ttl:       ttl,
		now:       now,
		lastSweep: now(),
	}
}

func (t *MemoryTracker) Begin(ctx context.Context, client string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	t.sweep(now)
	if cur := t.current(client, now); cur == StateUploading {
		return ErrUploadInFlight
	}
	t.entries[client] = entry{state: StateUploading, expires: now.Add(t.ttl)}
	return nil
}

func (t *MemoryTracker) Finish(ctx context.Context, client string, outcome State) error {
	if err := checkOutcome(outcome); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	t.sweep(now)
	t.entries[client] = entry{state: outcome, expires: now.Add(outcomeTTL)}
	return nil
}

func (t *MemoryTracker) State(ctx context.Context, client string) (State, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current(client, t.now()), nil
}

// Len reports how many clients have a live entry.
func (t *MemoryTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// sweep must be called with mu held.
func (t *MemoryTracker) sweep(now time.Time) {
	if now.Sub(t.lastSweep) < memorySweepInterval {
		return
	}
	t.lastSweep = now
	for client, e := range t.entries {
		if !now.Before(e.expires) {
			delete(t.entries, client)
		}
	}
}

// current must be called with mu held.
func (t *MemoryTracker) current(client string, now time.Time) State {
	e, ok := t.entries[client]
	if !ok {
		return StateIdle
	}
	if !now.Before(e.expires) {
		delete(t.entries, client)
		return StateIdle
	}
	return e.state
}

var _ Tracker = (*MemoryTracker)(nil)

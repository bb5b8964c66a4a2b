package uploads

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// State is where a client's most recent upload stands.
type State string

const (
	StateIdle      State = "idle"
	StateUploading State = "uploading"
	StateDone      State = "done"
	StateFailed    State = "failed"
)

const (
	// DefaultTTL bounds how long an uploading marker survives a request that never finishes.
	DefaultTTL = 2 * time.Minute
	// outcomeTTL is how long done/failed stay visible before the client reads as idle.
	outcomeTTL = time.Hour
)

var (
	// ErrUploadInFlight is returned by Begin while the client already has an upload running.
	ErrUploadInFlight = errors.New("upload already in progress")
	// ErrInvalidOutcome is returned by Finish for anything other than done or failed.
	ErrInvalidOutcome = errors.New("invalid upload outcome")
)

// Tracker serializes uploads per client: idle -> uploading -> done|failed,
// and done|failed -> uploading on the next attempt.
type Tracker interface {
	Begin(ctx context.Context, client string) error
	Finish(ctx context.Context, client string, outcome State) error
	State(ctx context.Context, client string) (State, error)
}

// ParseState validates a stored state value.
func ParseState(raw string) (State, error) {
	switch State(raw) {
	case StateIdle, StateUploading, StateDone, StateFailed:
		return State(raw), nil
	case "":
		return StateIdle, nil
	default:
		return "", fmt.Errorf("unknown upload state %q", raw)
	}
}

func checkOutcome(outcome State) error {
	if outcome != StateDone && outcome != StateFailed {
		return fmt.Errorf("%w: %q", ErrInvalidOutcome, outcome)
	}
	return nil
}

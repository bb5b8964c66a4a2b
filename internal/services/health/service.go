package health

import (
	"context"
	"time"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// PingContext calls f.
func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// Dependency state values.
const (
	StateUp       = "up"
	StateDown     = "down"
	StateDisabled = "disabled"
)

// Report is the health payload.
type Report struct {
	OK       bool   `json:"ok"`
	Database string `json:"database"`
	Uploads  string `json:"uploads"`
}

// Service encapsulates health-related checks.
type Service struct {
	DB      Pinger
	Uploads Pinger
	Timeout time.Duration
}

// NewService constructs a health service. Nil pingers are reported as disabled.
func NewService(db, uploads Pinger) *Service {
	return &Service{DB: db, Uploads: uploads, Timeout: 2 * time.Second}
}

// Status probes each configured dependency. The service is healthy when every
// configured dependency answers.
func (s *Service) Status(ctx context.Context) Report {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	report := Report{
		Database: probe(ctx, s.DB),
		Uploads:  probe(ctx, s.Uploads),
	}
	report.OK = report.Database != StateDown && report.Uploads != StateDown
	return report
}

func probe(ctx context.Context, p Pinger) string {
	if p == nil {
		return StateDisabled
	}
	if err := p.PingContext(ctx); err != nil {
		return StateDown
	}
	return StateUp
}

// Package health serves liveness and readiness endpoints for the demo service.
// Readiness runs named dependency checks concurrently, e.g. a Redis PING for
// the shared state store.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	StatusUp   = "up"
	StatusDown = "down"
)

// Check tests one dependency.
type Check func(ctx context.Context) error

type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Checker holds the readiness checks.
type Checker struct {
	checks  map[string]Check
	log     *slog.Logger
	timeout time.Duration
}

func New(log *slog.Logger, timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Checker{checks: map[string]Check{}, log: log, timeout: timeout}
}

// Add registers a check. Not safe to call once the checker is serving.
func (p *Checker) Add(name string, c Check) *Checker {
	p.checks[name] = c
	return p
}

// Run executes every check with the checker timeout.
func (p *Checker) Run(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var (
		mu  sync.Mutex
		rep = Report{Status: StatusUp, Checks: make(map[string]string, len(p.checks))}
		g   errgroup.Group
	)
	for name, check := range p.checks {
		g.Go(func() error {
			status := StatusUp
			if err := check(ctx); err != nil {
				status = StatusDown
				p.log.WarnContext(ctx, "readiness check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}
			mu.Lock()
			rep.Checks[name] = status
			if status == StatusDown {
				rep.Status = StatusDown
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return rep
}

// Live always answers 200.
func Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Report{Status: StatusUp})
}

// Ready answers 200 when every check passes and 503 otherwise.
func (p *Checker) Ready(w http.ResponseWriter, r *http.Request) {
	rep := p.Run(r.Context())
	code := http.StatusOK
	if rep.Status != StatusUp {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, rep)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

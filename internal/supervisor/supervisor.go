// Package supervisor implements the top-level lifecycle: start the
// Executor and HTTP subsystems, propagate shutdown, join.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// DefaultGracePeriod is how long Supervisor waits for each subsystem to
// drain after cancellation before giving up on it.
const DefaultGracePeriod = 1 * time.Second

// Subsystem is one long-running component the supervisor manages. Run
// blocks until ctx is cancelled or the subsystem fails; Shutdown is given
// a bounded grace period to drain in-flight work.
type Subsystem struct {
	Name     string
	Run      func(ctx context.Context) error
	Shutdown func(ctx context.Context) error
}

// Supervisor starts a fixed set of subsystems under one shared
// cancellation signal and joins them on shutdown.
type Supervisor struct {
	subsystems  []Subsystem
	gracePeriod time.Duration
	log         zerolog.Logger
}

// New builds a Supervisor with the default 1-second grace period.
func New(log zerolog.Logger, subsystems ...Subsystem) *Supervisor {
	return &Supervisor{subsystems: subsystems, gracePeriod: DefaultGracePeriod, log: log}
}

// WithGracePeriod overrides the default shutdown grace period.
func (sv *Supervisor) WithGracePeriod(d time.Duration) *Supervisor {
	sv.gracePeriod = d
	return sv
}

// Run starts every subsystem, waits for SIGINT/SIGTERM or for any
// subsystem's Run to return (with or without an error), then cancels,
// calls each Shutdown, and waits for the subsystems to return, all within
// the grace period. It returns a non-zero-suggesting error if any subsystem
// reported failure.
func (sv *Supervisor) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errs := make(chan subsystemResult, len(sv.subsystems))
	var wg sync.WaitGroup

	for _, s := range sv.subsystems {
		wg.Add(1)
		go func(s Subsystem) {
			defer wg.Done()
			err := s.Run(ctx)
			errs <- subsystemResult{name: s.Name, err: err}
		}(s)
	}

	var firstFailure error
	select {
	case <-ctx.Done():
		sv.log.Info().Msg("shutdown signal received")
	case result := <-errs:
		if result.err != nil {
			sv.log.Error().Err(result.err).Str("subsystem", result.name).Msg("subsystem failed")
			firstFailure = fmt.Errorf("subsystem %s: %w", result.name, result.err)
		}
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), sv.gracePeriod)
	defer cancel()
	for _, s := range sv.subsystems {
		if s.Shutdown == nil {
			continue
		}
		if err := s.Shutdown(shutdownCtx); err != nil {
			sv.log.Warn().Err(err).Str("subsystem", s.Name).Msg("subsystem shutdown error")
		}
	}

	joined := make(chan struct{})
	go func() {
		wg.Wait()
		close(joined)
	}()
	select {
	case <-joined:
	case <-shutdownCtx.Done():
		sv.log.Warn().Msg("grace period elapsed before every subsystem returned")
	}

	for drained := false; !drained; {
		select {
		case result := <-errs:
			if result.err != nil && firstFailure == nil && !errors.Is(result.err, context.Canceled) {
				firstFailure = fmt.Errorf("subsystem %s: %w", result.name, result.err)
			}
		default:
			drained = true
		}
	}

	return firstFailure
}

type subsystemResult struct {
	name string
	err  error
}

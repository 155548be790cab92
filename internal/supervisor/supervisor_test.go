package supervisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRunStopsAllOnParentCancel(t *testing.T) {
	started := make(chan struct{}, 2)
	sub := func(name string) Subsystem {
		return Subsystem{
			Name: name,
			Run: func(ctx context.Context) error {
				started <- struct{}{}
				<-ctx.Done()
				return nil
			},
		}
	}

	sv := New(zerolog.Nop(), sub("a"), sub("b"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sv.Run(ctx) }()

	<-started
	<-started
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() = %v, want nil on clean cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunPropagatesSubsystemFailure(t *testing.T) {
	boom := errors.New("boom")
	failing := Subsystem{
		Name: "worker",
		Run: func(ctx context.Context) error {
			return boom
		},
	}
	blocking := Subsystem{
		Name: "server",
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		},
	}

	sv := New(zerolog.Nop(), failing, blocking)

	done := make(chan error, 1)
	go func() { done <- sv.Run(context.Background()) }()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("Run() = nil, want error from failing subsystem")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after subsystem failure")
	}
}

func TestRunCallsShutdownWithinGracePeriod(t *testing.T) {
	shutdownCalled := make(chan struct{}, 1)
	sub := Subsystem{
		Name: "server",
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		},
		Shutdown: func(ctx context.Context) error {
			shutdownCalled <- struct{}{}
			return nil
		},
	}

	sv := New(zerolog.Nop(), sub).WithGracePeriod(100 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sv.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-shutdownCalled:
	case <-time.After(1 * time.Second):
		t.Fatal("Shutdown was not invoked")
	}
	<-done
}

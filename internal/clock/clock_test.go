package clock

import (
	"sync"
	"testing"
)

func TestStateUnsetInitially(t *testing.T) {
	s := New()
	if _, ok := s.Get(); ok {
		t.Fatalf("expected unset clock to report ok=false")
	}
}

func TestStateSetThenGet(t *testing.T) {
	s := New()
	s.Set(500_000_000)

	ms, ok := s.Get()
	if !ok {
		t.Fatalf("expected ok=true after Set")
	}
	if ms != 500_000_000 {
		t.Fatalf("got ms=%d, want 500000000", ms)
	}
}

func TestStateConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.Set(uint64(n))
		}(i)
	}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Get()
		}()
	}
	wg.Wait()

	if _, ok := s.Get(); !ok {
		t.Fatalf("expected ok=true after concurrent Set calls")
	}
}

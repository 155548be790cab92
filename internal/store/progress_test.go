package store

import (
	"context"
	"testing"

	"github.com/iotaledger/stardust-indexer-go/internal/metrics"
)

func TestProgressLoadAbsentDefaultsToZero(t *testing.T) {
	s := newTestStore(t, KindProgress)
	p := NewProgressStore(s, nil)

	seq, err := p.Load(context.Background(), "primary")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if seq != 0 {
		t.Fatalf("seq = %d, want 0 for fresh start", seq)
	}
}

func TestProgressSaveThenLoad(t *testing.T) {
	s := newTestStore(t, KindProgress)
	reg := metrics.New()
	p := NewProgressStore(s, reg)
	ctx := context.Background()

	if err := p.Save(ctx, "primary", 7); err != nil {
		t.Fatalf("Save: %v", err)
	}
	seq, err := p.Load(ctx, "primary")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if seq != 7 {
		t.Fatalf("seq = %d, want 7", seq)
	}

	if err := p.Save(ctx, "primary", 9); err != nil {
		t.Fatalf("Save overwrite: %v", err)
	}
	seq, err = p.Load(ctx, "primary")
	if err != nil {
		t.Fatalf("Load after overwrite: %v", err)
	}
	if seq != 9 {
		t.Fatalf("seq = %d, want 9 (upsert)", seq)
	}
}

func TestProgressMonotoneAcrossTasks(t *testing.T) {
	s := newTestStore(t, KindProgress)
	p := NewProgressStore(s, nil)
	ctx := context.Background()

	if err := p.Save(ctx, "primary", 3); err != nil {
		t.Fatalf("Save primary: %v", err)
	}
	if err := p.Save(ctx, "secondary", 1); err != nil {
		t.Fatalf("Save secondary: %v", err)
	}

	primary, err := p.Load(ctx, "primary")
	if err != nil {
		t.Fatalf("Load primary: %v", err)
	}
	secondary, err := p.Load(ctx, "secondary")
	if err != nil {
		t.Fatalf("Load secondary: %v", err)
	}
	if primary != 3 || secondary != 1 {
		t.Fatalf("primary=%d secondary=%d, want 3 and 1 (independent task bookmarks)", primary, secondary)
	}
}

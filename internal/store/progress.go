package store

import (
	"context"
	"database/sql"

	"github.com/iotaledger/stardust-indexer-go/internal/apierr"
	"github.com/iotaledger/stardust-indexer-go/internal/metrics"
)

// ProgressStore is a thin adapter over the progress database exposing
// load/save for the last-completed checkpoint sequence per worker task.
type ProgressStore struct {
	store   *Store
	metrics *metrics.Registry
}

// NewProgressStore wraps a progress-database Store. metrics may be nil in
// tests that don't care about gauge side effects.
func NewProgressStore(s *Store, reg *metrics.Registry) *ProgressStore {
	return &ProgressStore{store: s, metrics: reg}
}

// Load returns the last-acknowledged sequence number for taskID, or 0 when
// absent (fresh start).
func (p *ProgressStore) Load(ctx context.Context, taskID string) (int64, error) {
	var seq int64
	err := p.store.DB().QueryRowContext(ctx,
		"SELECT sequence_number FROM last_checkpoint_sync WHERE task_id = ?", taskID,
	).Scan(&seq)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, apierr.Wrap(apierr.Unavailable, "load progress", err)
	}
	return seq, nil
}

// Save upserts taskID's sequence number and, on success, sets the
// last_checkpoint_checked gauge to seq. The executor treats a Save failure as
// fatal for the current checkpoint: it is not acknowledged, and will be
// re-processed on restart.
func (p *ProgressStore) Save(ctx context.Context, taskID string, seq int64) error {
	_, err := p.store.DB().ExecContext(ctx, `
		INSERT INTO last_checkpoint_sync (task_id, sequence_number)
		VALUES (?, ?)
		ON CONFLICT(task_id) DO UPDATE SET sequence_number = excluded.sequence_number
	`, taskID, seq)
	if err != nil {
		return apierr.Wrap(apierr.Unavailable, "save progress", err)
	}

	if p.metrics != nil {
		p.metrics.SetLastCheckpointChecked(seq)
	}
	return nil
}

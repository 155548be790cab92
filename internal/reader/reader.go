// Package reader specifies the contract of the external checkpoint
// fetcher. The fetcher itself — fetching, decompressing, and batching
// checkpoints from a remote store URL — is deliberately out of scope;
// only the interface the executor calls into is specified here.
package reader

import (
	"context"

	"github.com/iotaledger/stardust-indexer-go/internal/model"
)

// Options configures a Reader's back-pressure window and memory bound.
type Options struct {
	// BatchSize is the back-pressure window: the configured download
	// queue size.
	BatchSize int
	// DataLimit caps the aggregate checkpoint bytes pulled concurrently.
	DataLimit int64
}

// DefaultDataLimit is the default checkpoint-processing batch data limit
// in bytes, matching the indexer's documented default.
const DefaultDataLimit int64 = 20_000_000

// Reader is the external checkpoint source. FetchNext returns checkpoints
// starting at the given sequence number, in strictly ascending order, as
// a finite stream for the current process run — it is not restartable
// mid-stream; callers that need to resume after a restart must call
// FetchNext again with a later start sequence.
type Reader interface {
	// FetchNext streams checkpoints beginning at start (inclusive) on the
	// returned channel, honoring opts, until ctx is done or the stream is
	// naturally exhausted. Errors encountered while fetching are sent on
	// the returned error channel and terminate the checkpoint channel.
	FetchNext(ctx context.Context, start int64, opts Options) (<-chan model.Checkpoint, <-chan error)
}

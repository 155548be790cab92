package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/iotaledger/stardust-indexer-go/internal/model"
	"github.com/iotaledger/stardust-indexer-go/internal/reader"
)

// fileReader is a minimal reader.Reader that replays checkpoints from a
// local newline-delimited JSON file named by STARDUST_CHECKPOINT_FIXTURE.
// The real checkpoint fetcher — downloading and decompressing checkpoints
// from --remote-store-url — is explicitly out of scope (spec.md §1); this
// stands in for it so start-indexer has something to drive the executor
// with. If the env var is unset, FetchNext returns a stream that is
// immediately exhausted.
type fileReader struct {
	path string
}

func newFileReader(path string) *fileReader {
	return &fileReader{path: path}
}

var _ reader.Reader = (*fileReader)(nil)

func (r *fileReader) FetchNext(ctx context.Context, start int64, opts reader.Options) (<-chan model.Checkpoint, <-chan error) {
	out := make(chan model.Checkpoint)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		if r.path == "" {
			return
		}

		f, err := os.Open(r.path)
		if err != nil {
			errs <- fmt.Errorf("open checkpoint fixture: %w", err)
			return
		}
		defer f.Close()

		dec := json.NewDecoder(f)
		for {
			var cp model.Checkpoint
			if err := dec.Decode(&cp); err != nil {
				if errors.Is(err, io.EOF) {
					return
				}
				errs <- fmt.Errorf("decode checkpoint fixture: %w", err)
				return
			}
			if cp.Summary.SequenceNumber < start {
				continue
			}
			select {
			case out <- cp:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, errs
}

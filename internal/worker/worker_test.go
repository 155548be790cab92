package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"

	"github.com/iotaledger/stardust-indexer-go/internal/clock"
	"github.com/iotaledger/stardust-indexer-go/internal/metrics"
	"github.com/iotaledger/stardust-indexer-go/internal/model"
	"github.com/iotaledger/stardust-indexer-go/internal/stardust"
	"github.com/iotaledger/stardust-indexer-go/internal/store"
)

func mustAddr(t *testing.T, hexStr string) model.Address {
	t.Helper()
	a, err := model.ParseAddress(hexStr)
	if err != nil {
		t.Fatalf("ParseAddress(%q): %v", hexStr, err)
	}
	return a
}

func newTestWorker(t *testing.T, packageID model.Address) (*Worker, *store.ObjectsRepo, *clock.State, *metrics.Registry) {
	t.Helper()
	path := t.TempDir() + "/objects.db"
	s, err := store.New(path, store.DefaultConfig(), store.KindObjects)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.RunMigrations(context.Background()); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}

	repo := store.NewObjectsRepo(s)
	clk := clock.New()
	reg := metrics.New()
	w := New(repo, stardust.NewJSONDecoder(), clk, reg, []model.Address{packageID}, zerolog.Nop())
	return w, repo, clk, reg
}

func basicOutputContents(t *testing.T, owner, ret model.Address, unixTime int64) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"balance":       map[string]any{"value": "100"},
		"native_tokens": map[string]any{"id": "", "size": 0},
		"expiration": map[string]any{
			"owner":          owner.String(),
			"return_address": ret.String(),
			"unix_time":      unixTime,
		},
	})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return raw
}

func TestColdStartSingleBasic(t *testing.T) {
	pkg := mustAddr(t, "0x1000000000000000000000000000000000000000")
	id := mustAddr(t, "0x2000000000000000000000000000000000000000")
	owner := mustAddr(t, "0x3000000000000000000000000000000000000000")
	ret := mustAddr(t, "0x4000000000000000000000000000000000000000")

	w, repo, clk, reg := newTestWorker(t, pkg)

	cp := model.Checkpoint{
		Summary: model.CheckpointSummary{SequenceNumber: 1, TimestampMs: 500_000_000},
		Transactions: []model.Transaction{
			{
				InputObjectIDs: []model.Address{pkg},
				OutputObjects: []model.OutputObject{
					{
						ID:       id,
						Tag:      model.StructTag{Module: "basic_output", Name: "BasicOutput"},
						Shared:   true,
						Contents: basicOutputContents(t, owner, ret, 400_000),
					},
				},
			},
		},
	}

	if err := w.Process(context.Background(), cp); err != nil {
		t.Fatalf("Process: %v", err)
	}

	total, basic, _, err := repo.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if total != 1 || basic != 1 {
		t.Fatalf("counts = (%d,%d), want (1,1)", total, basic)
	}

	ms, ok := clk.Get()
	if !ok || ms != 500_000_000 {
		t.Fatalf("clock = (%d,%v), want (500000000,true)", ms, ok)
	}

	if got := testutilFloat(t, reg); got != 1 {
		t.Fatalf("basic outputs counter = %v, want 1", got)
	}
}

func TestUpsertOverwriteOnSecondCheckpoint(t *testing.T) {
	pkg := mustAddr(t, "0x1000000000000000000000000000000000000000")
	id := mustAddr(t, "0x2000000000000000000000000000000000000000")
	owner := mustAddr(t, "0x3000000000000000000000000000000000000000")
	ret := mustAddr(t, "0x4000000000000000000000000000000000000000")

	w, repo, _, _ := newTestWorker(t, pkg)
	ctx := context.Background()

	mkCheckpoint := func(seq int64, balance string) model.Checkpoint {
		contents, _ := json.Marshal(map[string]any{
			"balance":       map[string]any{"value": balance},
			"native_tokens": map[string]any{"id": "", "size": 0},
			"expiration": map[string]any{
				"owner":          owner.String(),
				"return_address": ret.String(),
				"unix_time":      400_000,
			},
		})
		return model.Checkpoint{
			Summary: model.CheckpointSummary{SequenceNumber: seq, TimestampMs: uint64(seq) * 1000},
			Transactions: []model.Transaction{
				{
					InputObjectIDs: []model.Address{pkg},
					OutputObjects: []model.OutputObject{
						{ID: id, Tag: model.StructTag{Module: "basic_output", Name: "BasicOutput"}, Shared: true, Contents: contents},
					},
				},
			},
		}
	}

	if err := w.Process(ctx, mkCheckpoint(1, "100")); err != nil {
		t.Fatalf("Process cp1: %v", err)
	}
	if err := w.Process(ctx, mkCheckpoint(2, "200")); err != nil {
		t.Fatalf("Process cp2: %v", err)
	}

	total, _, _, err := repo.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if total != 1 {
		t.Fatalf("total = %d, want 1 (upsert)", total)
	}

	rows, err := repo.ListByOwnerOrReturn(ctx, model.Basic, owner, 0, 10)
	if err != nil {
		t.Fatalf("ListByOwnerOrReturn: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	var decoded map[string]any
	if err := json.Unmarshal(rows[0].Object.Contents, &decoded); err != nil {
		t.Fatalf("unmarshal stored contents: %v", err)
	}
	if decoded["balance"].(map[string]any)["value"] != "200" {
		t.Fatalf("stored balance = %v, want 200", decoded["balance"])
	}
}

func TestDeleteViaRemovedPreVersion(t *testing.T) {
	pkg := mustAddr(t, "0x1000000000000000000000000000000000000000")
	id := mustAddr(t, "0x2000000000000000000000000000000000000000")
	owner := mustAddr(t, "0x3000000000000000000000000000000000000000")
	ret := mustAddr(t, "0x4000000000000000000000000000000000000000")

	w, repo, _, _ := newTestWorker(t, pkg)
	ctx := context.Background()

	create := model.Checkpoint{
		Summary: model.CheckpointSummary{SequenceNumber: 1, TimestampMs: 1000},
		Transactions: []model.Transaction{
			{
				InputObjectIDs: []model.Address{pkg},
				OutputObjects: []model.OutputObject{
					{ID: id, Tag: model.StructTag{Module: "basic_output", Name: "BasicOutput"}, Shared: true, Contents: basicOutputContents(t, owner, ret, 400_000)},
				},
			},
		},
	}
	if err := w.Process(ctx, create); err != nil {
		t.Fatalf("Process create: %v", err)
	}

	del := model.Checkpoint{
		Summary: model.CheckpointSummary{SequenceNumber: 3, TimestampMs: 3000},
		Transactions: []model.Transaction{
			{
				InputObjectIDs:           []model.Address{pkg},
				RemovedObjectsPreVersion: []model.RemovedObject{{ID: id, Shared: true}},
			},
		},
	}
	if err := w.Process(ctx, del); err != nil {
		t.Fatalf("Process delete: %v", err)
	}

	total, _, _, err := repo.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if total != 0 {
		t.Fatalf("total after delete = %d, want 0", total)
	}
}

func TestNonRelevantTransactionSkipped(t *testing.T) {
	pkg := mustAddr(t, "0x1000000000000000000000000000000000000000")
	otherPkg := mustAddr(t, "0x9000000000000000000000000000000000000000")
	id := mustAddr(t, "0x2000000000000000000000000000000000000000")
	owner := mustAddr(t, "0x3000000000000000000000000000000000000000")
	ret := mustAddr(t, "0x4000000000000000000000000000000000000000")

	w, repo, _, _ := newTestWorker(t, pkg)
	ctx := context.Background()

	cp := model.Checkpoint{
		Summary: model.CheckpointSummary{SequenceNumber: 1, TimestampMs: 1000},
		Transactions: []model.Transaction{
			{
				InputObjectIDs: []model.Address{otherPkg},
				OutputObjects: []model.OutputObject{
					{ID: id, Tag: model.StructTag{Module: "basic_output", Name: "BasicOutput"}, Shared: true, Contents: basicOutputContents(t, owner, ret, 400_000)},
				},
			},
		},
	}
	if err := w.Process(ctx, cp); err != nil {
		t.Fatalf("Process: %v", err)
	}

	total, _, _, err := repo.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if total != 0 {
		t.Fatalf("total = %d, want 0 (transaction not relevant to configured package)", total)
	}
}

func testutilFloat(t *testing.T, reg *metrics.Registry) float64 {
	t.Helper()
	gathered, err := reg.Gatherer().Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range gathered {
		if mf.GetName() == "stardust_indexer_indexed_basic_outputs_count" {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}

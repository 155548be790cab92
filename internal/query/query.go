// Package query implements the expiration-resolved and raw read paths
// over the objects store.
package query

import (
	"context"

	"github.com/iotaledger/stardust-indexer-go/internal/apierr"
	"github.com/iotaledger/stardust-indexer-go/internal/clock"
	"github.com/iotaledger/stardust-indexer-go/internal/model"
	"github.com/iotaledger/stardust-indexer-go/internal/store"
)

// DefaultPage and DefaultPageSize are the documented pagination defaults.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// Pagination is a validated (page, page_size) pair.
type Pagination struct {
	Page     int
	PageSize int
}

// ParsePagination validates raw page/page_size query parameters, applying
// defaults when absent (0). Both must be >= 1 when present.
func ParsePagination(page, pageSize int) (Pagination, error) {
	if page == 0 {
		page = DefaultPage
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		return Pagination{}, apierr.New(apierr.BadRequest, "page must be >= 1")
	}
	if pageSize < 1 {
		return Pagination{}, apierr.New(apierr.BadRequest, "page_size must be >= 1")
	}
	return Pagination{Page: page, PageSize: pageSize}, nil
}

func (p Pagination) offset() int { return (p.Page - 1) * p.PageSize }

// Engine answers raw-by-address and expiration-resolved-by-address
// queries for one objects database.
type Engine struct {
	repo  *store.ObjectsRepo
	clock *clock.State
}

// New builds a query Engine over repo, reading the latest checkpoint time
// from clk.
func New(repo *store.ObjectsRepo, clk *clock.State) *Engine {
	return &Engine{repo: repo, clock: clk}
}

// Raw returns objects of variant whose expiration condition names addr as
// either owner or return_address, paginated.
func (e *Engine) Raw(ctx context.Context, variant model.ObjectType, addr model.Address, p Pagination) ([]store.Row, error) {
	rows, err := e.repo.ListByOwnerOrReturn(ctx, variant, addr, p.offset(), p.PageSize)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Resolved returns objects of variant currently owned by addr once
// expiration is accounted for against the latest observed checkpoint
// time: still owned by the original owner if unix_time*1000 > now_ms, or
// owned by the return address once unix_time*1000 <= now_ms (the boundary
// goes to the return address).
//
// Fails with apierr.Unavailable while the clock cell is unset (no
// checkpoint processed yet).
func (e *Engine) Resolved(ctx context.Context, variant model.ObjectType, addr model.Address, p Pagination) ([]store.Row, error) {
	nowMs, ok := e.clock.Get()
	if !ok {
		return nil, apierr.New(apierr.Unavailable, "no checkpoint has been processed yet")
	}

	// Both predicates are evaluated as separate queries and merged in
	// process rather than with a UNION query. Each branch is fetched in
	// insertion order (rowid) up to offset+page_size rows; the result is
	// the owner branch followed by the return-address branch, and the
	// (page, page_size) window is taken over that concatenation.
	owned, err := e.repo.ListResolvedByOwner(ctx, variant, addr, nowMs, 0, p.offset()+p.PageSize)
	if err != nil {
		return nil, err
	}
	returned, err := e.repo.ListResolvedByReturnAddress(ctx, variant, addr, nowMs, 0, p.offset()+p.PageSize)
	if err != nil {
		return nil, err
	}

	merged := mergeByRowOrder(owned, returned)
	return paginate(merged, p), nil
}

// mergeByRowOrder joins two disjoint (per P4, when addr != its own
// return address) row sets by appending b after a. Each set keeps its
// own insertion order; rows of the two sets are not interleaved by rowid.
func mergeByRowOrder(a, b []store.Row) []store.Row {
	if len(b) == 0 {
		return a
	}
	if len(a) == 0 {
		return b
	}
	out := make([]store.Row, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

func paginate(rows []store.Row, p Pagination) []store.Row {
	offset := p.offset()
	if offset >= len(rows) {
		return nil
	}
	end := offset + p.PageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

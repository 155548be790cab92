package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iotaledger/stardust-indexer-go/internal/apierr"
	"github.com/iotaledger/stardust-indexer-go/internal/model"
)

// ObjectsRepo is the persistence layer over the objects database: the
// `objects` and `expiration_unlock_conditions` tables. It is bound to a
// Store opened with KindObjects.
type ObjectsRepo struct {
	store *Store
}

// NewObjectsRepo wraps an objects-database Store.
func NewObjectsRepo(s *Store) *ObjectsRepo {
	return &ObjectsRepo{store: s}
}

// ApplyOutput upserts one decoded output and, if it carries an expiration
// condition, upserts that too, inside a single transaction — the unit the
// worker treats as consistent. Objects without an encoded expiration leave
// the expiration table untouched.
func (r *ObjectsRepo) ApplyOutput(ctx context.Context, out model.DecodedOutput) error {
	tx, err := r.store.DB().BeginTx(ctx, nil)
	if err != nil {
		return apierr.Wrap(apierr.Unavailable, "begin object transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO objects (id, object_type, contents)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			object_type = excluded.object_type,
			contents = excluded.contents
	`, []byte(out.Object.ID), int64(out.Object.ObjectType), out.Object.Contents)
	if err != nil {
		return apierr.Wrap(apierr.Internal, "upsert object", err)
	}

	if out.Expiration != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO expiration_unlock_conditions (object_id, owner, return_address, unix_time)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(object_id) DO UPDATE SET
				owner = excluded.owner,
				return_address = excluded.return_address,
				unix_time = excluded.unix_time
		`, []byte(out.Expiration.ObjectID), []byte(out.Expiration.Owner), []byte(out.Expiration.ReturnAddress), out.Expiration.UnixTime)
		if err != nil {
			return apierr.Wrap(apierr.Internal, "upsert expiration condition", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apierr.Wrap(apierr.Unavailable, "commit object transaction", err)
	}
	return nil
}

// DeleteObjects removes every id in a single statement. Foreign-key
// cascade (PRAGMA foreign_keys=ON) removes the matching expiration rows.
func (r *ObjectsRepo) DeleteObjects(ctx context.Context, ids []model.Address) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := make([]byte, 0, len(ids)*2)
	args := make([]any, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders = append(placeholders, ',', '?')
		} else {
			placeholders = append(placeholders, '?')
		}
		args[i] = []byte(id)
	}

	query := fmt.Sprintf("DELETE FROM objects WHERE id IN (%s)", string(placeholders))
	if _, err := r.store.DB().ExecContext(ctx, query, args...); err != nil {
		return apierr.Wrap(apierr.Internal, "delete objects", err)
	}
	return nil
}

// Counts returns total/basic/nft row counts for the health endpoint.
func (r *ObjectsRepo) Counts(ctx context.Context) (total, basic, nft int64, err error) {
	row := r.store.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM objects")
	if err = row.Scan(&total); err != nil {
		return 0, 0, 0, apierr.Wrap(apierr.Unavailable, "count objects", err)
	}
	row = r.store.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM objects WHERE object_type = ?", int64(model.Basic))
	if err = row.Scan(&basic); err != nil {
		return 0, 0, 0, apierr.Wrap(apierr.Unavailable, "count basic objects", err)
	}
	row = r.store.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM objects WHERE object_type = ?", int64(model.Nft))
	if err = row.Scan(&nft); err != nil {
		return 0, 0, 0, apierr.Wrap(apierr.Unavailable, "count nft objects", err)
	}
	return total, basic, nft, nil
}

// Row is a joined object + expiration condition row, the shape both raw
// and resolved queries return.
type Row struct {
	Object     model.StoredObject
	Expiration model.ExpirationCondition
}

// ListByOwnerOrReturn returns rows of the given variant whose expiration
// condition has owner = addr OR return_address = addr, ordered by object
// rowid (insertion order), sliced to [offset, offset+limit).
func (r *ObjectsRepo) ListByOwnerOrReturn(ctx context.Context, variant model.ObjectType, addr model.Address, offset, limit int) ([]Row, error) {
	rows, err := r.store.DB().QueryContext(ctx, `
		SELECT o.id, o.object_type, o.contents, e.object_id, e.owner, e.return_address, e.unix_time
		FROM objects o
		JOIN expiration_unlock_conditions e ON e.object_id = o.id
		WHERE o.object_type = ? AND (e.owner = ? OR e.return_address = ?)
		ORDER BY o.rowid
		LIMIT ? OFFSET ?
	`, int64(variant), []byte(addr), []byte(addr), limit, offset)
	if err != nil {
		return nil, apierr.Wrap(apierr.Unavailable, "query raw by address", err)
	}
	defer func() { _ = rows.Close() }()

	return scanRows(rows)
}

// ListResolvedByOwner returns rows of the given variant where the object
// is still owned by addr as original owner: owner = addr AND
// unix_time*1000 > nowMs.
func (r *ObjectsRepo) ListResolvedByOwner(ctx context.Context, variant model.ObjectType, addr model.Address, nowMs uint64, offset, limit int) ([]Row, error) {
	rows, err := r.store.DB().QueryContext(ctx, `
		SELECT o.id, o.object_type, o.contents, e.object_id, e.owner, e.return_address, e.unix_time
		FROM objects o
		JOIN expiration_unlock_conditions e ON e.object_id = o.id
		WHERE o.object_type = ? AND e.owner = ? AND (e.unix_time * 1000) > ?
		ORDER BY o.rowid
		LIMIT ? OFFSET ?
	`, int64(variant), []byte(addr), int64(nowMs), limit, offset)
	if err != nil {
		return nil, apierr.Wrap(apierr.Unavailable, "query resolved by owner", err)
	}
	defer func() { _ = rows.Close() }()

	return scanRows(rows)
}

// ListResolvedByReturnAddress returns rows of the given variant where
// ownership has reverted to the return address: return_address = addr AND
// unix_time*1000 <= nowMs (inclusive at the boundary).
func (r *ObjectsRepo) ListResolvedByReturnAddress(ctx context.Context, variant model.ObjectType, addr model.Address, nowMs uint64, offset, limit int) ([]Row, error) {
	rows, err := r.store.DB().QueryContext(ctx, `
		SELECT o.id, o.object_type, o.contents, e.object_id, e.owner, e.return_address, e.unix_time
		FROM objects o
		JOIN expiration_unlock_conditions e ON e.object_id = o.id
		WHERE o.object_type = ? AND e.return_address = ? AND (e.unix_time * 1000) <= ?
		ORDER BY o.rowid
		LIMIT ? OFFSET ?
	`, int64(variant), []byte(addr), int64(nowMs), limit, offset)
	if err != nil {
		return nil, apierr.Wrap(apierr.Unavailable, "query resolved by return address", err)
	}
	defer func() { _ = rows.Close() }()

	return scanRows(rows)
}

func scanRows(rows *sql.Rows) ([]Row, error) {
	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(
			&row.Object.ID, &row.Object.ObjectType, &row.Object.Contents,
			&row.Expiration.ObjectID, &row.Expiration.Owner, &row.Expiration.ReturnAddress, &row.Expiration.UnixTime,
		); err != nil {
			return nil, apierr.Wrap(apierr.Corrupt, "scan row", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apierr.Wrap(apierr.Unavailable, "iterate rows", err)
	}
	return out, nil
}

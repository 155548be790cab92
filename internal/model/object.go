package model

import (
	"database/sql/driver"
	"fmt"

	"github.com/iotaledger/stardust-indexer-go/internal/apierr"
)

// ObjectType distinguishes the two legacy output variants this indexer
// tracks. The wire mapping is fixed: Basic=0, Nft=1.
type ObjectType int

const (
	// Basic is a value-bearing legacy output, struct tag
	// (module=basic_output, name=BasicOutput).
	Basic ObjectType = 0
	// Nft is a legacy NFT output, struct tag
	// (module=nft_output, name=NftOutput).
	Nft ObjectType = 1
)

func (t ObjectType) String() string {
	switch t {
	case Basic:
		return "basic"
	case Nft:
		return "nft"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Value implements driver.Valuer.
func (t ObjectType) Value() (driver.Value, error) {
	return int64(t), nil
}

// Scan implements sql.Scanner. Unknown codes are rejected with apierr.Corrupt,
// since a row decoded from storage that doesn't match a known variant is a
// shape violation, not a recoverable default.
func (t *ObjectType) Scan(src any) error {
	var n int64
	switch v := src.(type) {
	case int64:
		n = v
	case int:
		n = int64(v)
	default:
		return apierr.New(apierr.Corrupt, fmt.Sprintf("object_type: unexpected scan type %T", src))
	}
	switch ObjectType(n) {
	case Basic, Nft:
		*t = ObjectType(n)
		return nil
	default:
		return apierr.New(apierr.Corrupt, fmt.Sprintf("object_type: unknown code %d", n))
	}
}

// StoredObject is the persisted row shape of the `objects` relation.
type StoredObject struct {
	ID         Address
	ObjectType ObjectType
	Contents   []byte
}

// ExpirationCondition is the persisted row shape of the
// `expiration_unlock_conditions` relation. At most one row exists per
// object id, and only for objects whose encoded contents carry an
// expiration unlock condition.
type ExpirationCondition struct {
	ObjectID      Address
	Owner         Address
	ReturnAddress Address
	UnixTime      int64
}

// DecodedOutput is what the stardust decoder produces for one output
// object: the stored row plus, when present, its expiration condition.
type DecodedOutput struct {
	Object     StoredObject
	Expiration *ExpirationCondition // nil when the output carries no expiration
}

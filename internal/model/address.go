package model

import (
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"strings"
)

// Address is a 20- or 32-byte ledger address, stored in its raw byte form
// and rendered as a 0x-prefixed hex string at the HTTP boundary.
type Address []byte

// ParseAddress decodes a 0x-prefixed (or bare) hex string into an Address.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s) == 0 {
		return nil, fmt.Errorf("empty address")
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid address hex: %w", err)
	}
	if len(raw) != 20 && len(raw) != 32 {
		return nil, fmt.Errorf("address must be 20 or 32 bytes, got %d", len(raw))
	}
	return Address(raw), nil
}

// String renders the address as a 0x-prefixed lowercase hex string.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a)
}

// Equal reports whether two addresses hold the same bytes.
func (a Address) Equal(other Address) bool {
	if len(a) != len(other) {
		return false
	}
	for i := range a {
		if a[i] != other[i] {
			return false
		}
	}
	return true
}

// Value implements driver.Valuer, storing the address as raw bytes.
func (a Address) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return []byte(a), nil
}

// Scan implements sql.Scanner, reading the address back as raw bytes.
func (a *Address) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		cp := make([]byte, len(v))
		copy(cp, v)
		*a = cp
		return nil
	case string:
		*a = Address(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Address", src)
	}
}

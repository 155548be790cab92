package stardust

import (
	"encoding/json"
	"testing"

	"github.com/iotaledger/stardust-indexer-go/internal/model"
)

func addr(t *testing.T, hexStr string) model.Address {
	t.Helper()
	a, err := model.ParseAddress(hexStr)
	if err != nil {
		t.Fatalf("ParseAddress(%q): %v", hexStr, err)
	}
	return a
}

func TestJSONDecoderWithExpiration(t *testing.T) {
	owner := "0x" + "1111111111111111111111111111111111111111"
	ret := "0x" + "2222222222222222222222222222222222222222"

	contents, err := json.Marshal(map[string]any{
		"balance":       map[string]any{"value": "100"},
		"native_tokens": map[string]any{"id": "", "size": 0},
		"expiration": map[string]any{
			"owner":          owner,
			"return_address": ret,
			"unix_time":      400_000,
		},
	})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}

	obj := model.OutputObject{
		ID:       addr(t, "0x3333333333333333333333333333333333333333"),
		Contents: contents,
	}

	d := NewJSONDecoder()
	out, err := d.Decode(obj, model.Basic)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Expiration == nil {
		t.Fatalf("expected expiration condition to be decoded")
	}
	if out.Expiration.UnixTime != 400_000 {
		t.Fatalf("unix_time = %d, want 400000", out.Expiration.UnixTime)
	}
	if out.Object.ObjectType != model.Basic {
		t.Fatalf("object type = %v, want Basic", out.Object.ObjectType)
	}
}

func TestJSONDecoderNoExpiration(t *testing.T) {
	contents, err := json.Marshal(map[string]any{
		"balance":       map[string]any{"value": "1"},
		"native_tokens": map[string]any{"id": "", "size": 0},
	})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}

	obj := model.OutputObject{ID: addr(t, "0x4444444444444444444444444444444444444444")}
	obj.Contents = contents

	d := NewJSONDecoder()
	out, err := d.Decode(obj, model.Nft)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Expiration != nil {
		t.Fatalf("expected no expiration condition")
	}
}

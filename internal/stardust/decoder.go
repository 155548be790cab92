// Package stardust specifies the contract of the legacy output decoder.
// The real binary (BCS/Move) decoder for stardust output structs is
// deliberately out of scope; this package specifies only the semantic
// fields a decoder must produce, plus a JSON-based reference
// implementation used for local development and tests.
package stardust

import (
	"encoding/json"
	"fmt"

	"github.com/iotaledger/stardust-indexer-go/internal/model"
)

// Decoder turns a raw output object's contents into a stored row plus,
// when present, its expiration unlock condition. Decoding failures are
// reported to the caller (the worker), which skips the output with a
// warning rather than failing the checkpoint.
type Decoder interface {
	Decode(obj model.OutputObject, variant model.ObjectType) (model.DecodedOutput, error)
}

// wireOutput is the JSON shape the reference decoder expects in an output
// object's Contents field. Basic and Nft share this shape; the Nft variant
// carries no metadata/tag/sender at all in the newer schema, so any such
// fields present on the wire are dropped silently by omitting them here.
type wireOutput struct {
	Balance struct {
		Value string `json:"value"`
	} `json:"balance"`
	NativeTokens struct {
		ID   string `json:"id"`
		Size uint32 `json:"size"`
	} `json:"native_tokens"`
	StorageDepositReturn *struct {
		ReturnAddress string `json:"return_address"`
		ReturnAmount  string `json:"return_amount"`
	} `json:"storage_deposit_return,omitempty"`
	Timelock *struct {
		UnixTime int64 `json:"unix_time"`
	} `json:"timelock,omitempty"`
	Expiration *struct {
		Owner         string `json:"owner"`
		ReturnAddress string `json:"return_address"`
		UnixTime      int64  `json:"unix_time"`
	} `json:"expiration,omitempty"`
}

// JSONDecoder decodes output contents as JSON matching wireOutput. It
// stands in for the real binary decoder so the indexer can run and be
// tested end-to-end without the out-of-scope wire codec.
type JSONDecoder struct{}

// NewJSONDecoder returns a ready-to-use reference decoder.
func NewJSONDecoder() *JSONDecoder { return &JSONDecoder{} }

// Decode implements Decoder.
func (d *JSONDecoder) Decode(obj model.OutputObject, variant model.ObjectType) (model.DecodedOutput, error) {
	var wire wireOutput
	if err := json.Unmarshal(obj.Contents, &wire); err != nil {
		return model.DecodedOutput{}, fmt.Errorf("decode output %s: %w", obj.ID, err)
	}

	out := model.DecodedOutput{
		Object: model.StoredObject{
			ID:         obj.ID,
			ObjectType: variant,
			Contents:   obj.Contents,
		},
	}

	if wire.Expiration != nil {
		owner, err := model.ParseAddress(wire.Expiration.Owner)
		if err != nil {
			return model.DecodedOutput{}, fmt.Errorf("decode output %s: expiration owner: %w", obj.ID, err)
		}
		returnAddr, err := model.ParseAddress(wire.Expiration.ReturnAddress)
		if err != nil {
			return model.DecodedOutput{}, fmt.Errorf("decode output %s: expiration return_address: %w", obj.ID, err)
		}
		// The wire carries unsigned 32- or 64-bit unix_time; widen to the
		// schema's signed 64-bit on decode, reject negative on re-encode
		// (re-encoding is out of scope for this indexer, which is
		// read/ingest only).
		out.Expiration = &model.ExpirationCondition{
			ObjectID:      obj.ID,
			Owner:         owner,
			ReturnAddress: returnAddr,
			UnixTime:      wire.Expiration.UnixTime,
		}
	}

	return out, nil
}

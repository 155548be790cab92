package httpapi

import (
	"encoding/json"

	"github.com/iotaledger/stardust-indexer-go/internal/apierr"
	"github.com/iotaledger/stardust-indexer-go/internal/store"
)

// balance, nativeTokens, storageDepositReturn, timelock, and expiration
// mirror the stable flattened response shape from spec.md §4.7.
type balance struct {
	Value string `json:"value"`
}

type nativeTokens struct {
	ID   string `json:"id"`
	Size uint32 `json:"size"`
}

type storageDepositReturn struct {
	ReturnAddress string `json:"return_address"`
	ReturnAmount  string `json:"return_amount"`
}

type timelock struct {
	UnixTime int64 `json:"unix_time"`
}

type expiration struct {
	Owner         string `json:"owner"`
	ReturnAddress string `json:"return_address"`
	UnixTime      int64  `json:"unix_time"`
}

// outputResponse is the stable, flattened record returned per object. The
// NFT variant never populates Metadata/Tag/Sender: the reference decoder
// never carries those fields past decode in the first place (spec.md §9's
// "drop silently" note), so there's nothing to suppress here.
type outputResponse struct {
	ID                   string                `json:"id"`
	Balance              balance               `json:"balance"`
	NativeTokens         nativeTokens          `json:"native_tokens"`
	StorageDepositReturn *storageDepositReturn `json:"storage_deposit_return,omitempty"`
	Timelock             *timelock             `json:"timelock,omitempty"`
	Expiration           *expiration           `json:"expiration,omitempty"`
}

// contentsFields is the subset of a stored object's JSON contents needed
// to build the response; it mirrors stardust.wireOutput's shape.
type contentsFields struct {
	Balance      balance      `json:"balance"`
	NativeTokens nativeTokens `json:"native_tokens"`
	StorageDepositReturn *storageDepositReturn `json:"storage_deposit_return,omitempty"`
	Timelock             *timelock             `json:"timelock,omitempty"`
}

func buildResponse(row store.Row) (outputResponse, error) {
	var fields contentsFields
	if err := json.Unmarshal(row.Object.Contents, &fields); err != nil {
		return outputResponse{}, apierr.Wrap(apierr.Internal, "decode stored contents", err)
	}

	resp := outputResponse{
		ID:                   row.Object.ID.String(),
		Balance:              fields.Balance,
		NativeTokens:         fields.NativeTokens,
		StorageDepositReturn: fields.StorageDepositReturn,
		Timelock:             fields.Timelock,
		// Every row returned by the address-based queries joins against
		// expiration_unlock_conditions, so an expiration condition is
		// always present here.
		Expiration: &expiration{
			Owner:         row.Expiration.Owner.String(),
			ReturnAddress: row.Expiration.ReturnAddress.String(),
			UnixTime:      row.Expiration.UnixTime,
		},
	}

	return resp, nil
}

func buildResponses(rows []store.Row) ([]outputResponse, error) {
	out := make([]outputResponse, 0, len(rows))
	for _, row := range rows {
		resp, err := buildResponse(row)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

// healthResponse is the /health body: total and per-variant object counts.
type healthResponse struct {
	ObjectsCount      int64 `json:"objects_count"`
	BasicObjectsCount int64 `json:"basic_objects_count"`
	NftObjectsCount   int64 `json:"nft_objects_count"`
}

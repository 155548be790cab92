package model

// StructTag identifies a Move/object struct by its declaring module and
// type name, the way the chain tags shared output objects.
type StructTag struct {
	Module string
	Name   string
}

// VariantOf maps a struct tag to the ObjectType it represents, mirroring
// the fixed pair the worker matches against. ok is false for any tag that
// isn't one of the two tracked variants.
func (t StructTag) VariantOf() (ObjectType, bool) {
	switch {
	case t.Module == "basic_output" && t.Name == "BasicOutput":
		return Basic, true
	case t.Module == "nft_output" && t.Name == "NftOutput":
		return Nft, true
	default:
		return 0, false
	}
}

// OutputObject is one output object as it appears in a transaction's
// output set, prior to decoding. Shared reports whether it is a shared
// object; the worker only indexes shared ones.
type OutputObject struct {
	ID       Address
	Tag      StructTag
	Shared   bool
	Contents []byte
}

// RemovedObject is one entry in a transaction's pre-version removed
// shared objects projection.
type RemovedObject struct {
	ID     Address
	Shared bool
}

// Transaction is one transaction within a checkpoint, reduced to the
// fields the worker's filter and decode steps consume.
type Transaction struct {
	// IsGenesis marks the chain's genesis transaction, which is always
	// treated as relevant regardless of declared input objects.
	IsGenesis bool
	// InputObjectIDs lists the object ids this transaction declares as
	// input objects (used to test package-id membership).
	InputObjectIDs []Address
	// OutputObjects is the transaction's full output-object set.
	OutputObjects []OutputObject
	// RemovedObjectsPreVersion is the transaction's pre-version removed
	// shared objects projection.
	RemovedObjectsPreVersion []RemovedObject
}

// CheckpointSummary carries the sequencing and wall-clock metadata for a
// checkpoint.
type CheckpointSummary struct {
	SequenceNumber int64
	TimestampMs    uint64
}

// Checkpoint is one atomic batch of transactions with a monotonically
// increasing sequence number and wall-clock timestamp.
type Checkpoint struct {
	Summary      CheckpointSummary
	Transactions []Transaction
}

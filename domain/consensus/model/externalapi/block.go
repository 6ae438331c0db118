package externalapi

// PayloadType identifies the kind of payload a block carries.
type PayloadType uint32

// The payload types understood by the consensus core.
const (
	PayloadTypeTreasuryTransaction PayloadType = 4
	PayloadTypeTaggedData          PayloadType = 5
	PayloadTypeTransaction         PayloadType = 6
	PayloadTypeMilestone           PayloadType = 7
)

func (payloadType PayloadType) String() string {
	switch payloadType {
	case PayloadTypeTreasuryTransaction:
		return "TreasuryTransaction"
	case PayloadTypeTaggedData:
		return "TaggedData"
	case PayloadTypeTransaction:
		return "Transaction"
	case PayloadTypeMilestone:
		return "Milestone"
	default:
		return "Unknown"
	}
}

// Payload is the optional content of a block.
type Payload interface {
	PayloadType() PayloadType
}

// Block is a vertex of the tangle. It approves 1..MaxBlockParents parents.
type Block struct {
	Parents []BlockID
	Payload Payload
	Nonce   uint64
}

// Transaction returns the block's transaction payload, if it has one.
func (block *Block) Transaction() (*TransactionPayload, bool) {
	transaction, ok := block.Payload.(*TransactionPayload)
	return transaction, ok && transaction != nil
}

// Milestone returns the block's milestone payload, if it has one.
func (block *Block) Milestone() (*MilestonePayload, bool) {
	milestone, ok := block.Payload.(*MilestonePayload)
	return milestone, ok && milestone != nil
}

// Clone returns a clone of Block
func (block *Block) Clone() *Block {
	return &Block{
		Parents: CloneBlockIDs(block.Parents),
		Payload: clonePayload(block.Payload),
		Nonce:   block.Nonce,
	}
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal and Clone accordingly.
var _ = Block{[]BlockID{}, nil, 0}

func clonePayload(payload Payload) Payload {
	switch payload := payload.(type) {
	case *TransactionPayload:
		return payload.Clone()
	case *MilestonePayload:
		return payload.Clone()
	case *TaggedDataPayload:
		return payload.Clone()
	case *TreasuryTransactionPayload:
		clone := *payload
		return &clone
	default:
		return payload
	}
}

// TaggedDataPayload carries arbitrary indexed data.
type TaggedDataPayload struct {
	Tag  []byte
	Data []byte
}

// PayloadType implements Payload
func (payload *TaggedDataPayload) PayloadType() PayloadType {
	return PayloadTypeTaggedData
}

// Clone returns a clone of TaggedDataPayload
func (payload *TaggedDataPayload) Clone() *TaggedDataPayload {
	if payload == nil {
		return nil
	}
	return &TaggedDataPayload{
		Tag:  append([]byte(nil), payload.Tag...),
		Data: append([]byte(nil), payload.Data...),
	}
}

// TreasuryTransactionPayload moves the treasury from the output created by
// InputMilestoneID to a new output holding OutputAmount.
type TreasuryTransactionPayload struct {
	InputMilestoneID MilestoneID
	OutputAmount     uint64
}

// PayloadType implements Payload
func (payload *TreasuryTransactionPayload) PayloadType() PayloadType {
	return PayloadTypeTreasuryTransaction
}

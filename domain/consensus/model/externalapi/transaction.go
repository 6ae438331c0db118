package externalapi

// Schnorr key and signature sizes used by unlocks and milestone signatures.
const (
	PublicKeySize = 32
	SignatureSize = 64
)

// TransactionPayload transfers funds from a set of unspent outputs to a set
// of new outputs.
type TransactionPayload struct {
	NetworkID  uint64
	Inputs     []*UTXOInput
	Outputs    []*Output
	TaggedData *TaggedDataPayload
	Unlocks    []Unlock
}

// PayloadType implements Payload
func (transaction *TransactionPayload) PayloadType() PayloadType {
	return PayloadTypeTransaction
}

// Clone returns a clone of TransactionPayload
func (transaction *TransactionPayload) Clone() *TransactionPayload {
	inputs := make([]*UTXOInput, len(transaction.Inputs))
	for i, input := range transaction.Inputs {
		inputClone := *input
		inputs[i] = &inputClone
	}
	outputs := make([]*Output, len(transaction.Outputs))
	for i, output := range transaction.Outputs {
		outputClone := *output
		outputs[i] = &outputClone
	}
	unlocks := make([]Unlock, len(transaction.Unlocks))
	for i, unlock := range transaction.Unlocks {
		switch unlock := unlock.(type) {
		case *SignatureUnlock:
			unlockClone := *unlock
			unlocks[i] = &unlockClone
		case *ReferenceUnlock:
			unlockClone := *unlock
			unlocks[i] = &unlockClone
		default:
			unlocks[i] = unlock
		}
	}
	return &TransactionPayload{
		NetworkID:  transaction.NetworkID,
		Inputs:     inputs,
		Outputs:    outputs,
		TaggedData: transaction.TaggedData.Clone(),
		Unlocks:    unlocks,
	}
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Clone accordingly.
var _ = TransactionPayload{0, []*UTXOInput{}, []*Output{}, nil, []Unlock{}}

// UTXOInput references the output it spends.
type UTXOInput struct {
	OutputID OutputID
}

// Output sends Amount to Address. The output can't be spent by a milestone
// with an index lower than TimelockMilestoneIndex.
type Output struct {
	Address                Address
	Amount                 uint64
	TimelockMilestoneIndex MilestoneIndex
}

// UnlockType identifies the kind of an Unlock.
type UnlockType byte

// Unlock types
const (
	UnlockTypeSignature UnlockType = 0
	UnlockTypeReference UnlockType = 1
)

// Unlock proves the right to spend the input at the same position.
type Unlock interface {
	UnlockType() UnlockType
}

// SignatureUnlock is a schnorr signature over the transaction essence.
type SignatureUnlock struct {
	PublicKey [PublicKeySize]byte
	Signature [SignatureSize]byte
}

// UnlockType implements Unlock
func (unlock *SignatureUnlock) UnlockType() UnlockType {
	return UnlockTypeSignature
}

// ReferenceUnlock reuses the SignatureUnlock at position Reference.
type ReferenceUnlock struct {
	Reference uint16
}

// UnlockType implements Unlock
func (unlock *ReferenceUnlock) UnlockType() UnlockType {
	return UnlockTypeReference
}

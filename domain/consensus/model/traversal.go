package model

// TraversalOutcome tells a past-cone walker what to do with the block it
// just yielded.
type TraversalOutcome uint8

const (
	// TraversalContinue marks the block visited and descends into its parents.
	TraversalContinue TraversalOutcome = iota

	// TraversalStop marks the block visited without descending into its parents.
	TraversalStop

	// TraversalDefer keeps the block on the stack and visits its first
	// unvisited parent first. The block is yielded again afterwards.
	TraversalDefer
)

func (outcome TraversalOutcome) String() string {
	switch outcome {
	case TraversalContinue:
		return "Continue"
	case TraversalStop:
		return "Stop"
	case TraversalDefer:
		return "Defer"
	default:
		return "Unknown"
	}
}

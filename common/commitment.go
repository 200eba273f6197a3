package common

// Commitment is the confirmation level requested for ledger queries and
// submitted operations.
type Commitment string

const (
	CommitmentProcessed Commitment = "processed"
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

var supportedCommitments = map[Commitment]struct{}{
	CommitmentProcessed: {},
	CommitmentConfirmed: {},
	CommitmentFinalized: {},
}

func (c Commitment) IsSupported() bool {
	_, ok := supportedCommitments[c]
	return ok
}

func (c Commitment) String() string {
	return string(c)
}

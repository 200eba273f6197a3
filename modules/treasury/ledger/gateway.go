package ledger

import (
	"context"
)

// Gateway is the narrow surface the policy engine consumes. Transaction
// construction, signing, serialization and submission all live behind it.
//
// Lookups return errs.NotFound when the account does not exist. Submit
// returns errs.Transport when the cluster is unreachable or the operation
// fails to confirm; the engine does not retry transport failures itself.
type Gateway interface {
	// GetBalance returns the token balance of an account.
	GetBalance(ctx context.Context, account Address) (uint64, error)

	// GetWithheldFee returns the fee amount withheld inside an account.
	GetWithheldFee(ctx context.Context, account Address) (uint64, error)

	// GetAccount returns a fresh snapshot of an account, including its
	// owning program and withheld amount.
	GetAccount(ctx context.Context, account Address) (*AccountSnapshot, error)

	// AccountExists reports whether the account exists on the ledger.
	AccountExists(ctx context.Context, account Address) (bool, error)

	// Submit executes one operation signed by the given authorities and
	// waits for confirmation at the configured commitment level.
	Submit(ctx context.Context, op Operation, signers []Signer) (*Confirmation, error)

	// CreateAccount creates a new account owned by owner, funded by
	// fundingSource. Account creation is NOT idempotent.
	CreateAccount(ctx context.Context, owner Address, space uint64, fundingSource Signer) (AccountRef, error)

	// InitializeMint creates and initializes the asset mint account with
	// its transfer-fee config and metadata.
	InitializeMint(ctx context.Context, init MintInit, signers []Signer) (*Confirmation, error)
}

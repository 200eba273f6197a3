package treasury

import (
	"context"

	"github.com/cockroachdb/errors"
	cstream "github.com/planxnx/concurrent-stream"
	"github.com/treasury-network/treasury-engine/common/errs"
	"github.com/treasury-network/treasury-engine/modules/treasury/ledger"
)

// snapshotConcurrency bounds parallel snapshot fetches; candidates share no
// state so their lookups are independent.
const snapshotConcurrency = 8

type candidateState struct {
	address  ledger.Address
	snapshot *ledger.AccountSnapshot
	err      error
}

// SelectWithdrawable decides which candidate accounts are eligible for a
// withheld-fee withdrawal: the account must resolve, be owned by owner, and
// hold a strictly positive withheld amount. Candidates that do not resolve
// are excluded, not errored. Snapshots are fetched concurrently but the
// result keeps the candidates' order, so the decision is deterministic
// given the fetched state.
func SelectWithdrawable(ctx context.Context, gateway ledger.Gateway, candidates []ledger.Address, owner ledger.Address) ([]ledger.Address, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	out := make(chan *candidateState)
	stream := cstream.NewStream(ctx, snapshotConcurrency, out)

	go func() {
		defer stream.Close()
		for _, candidate := range candidates {
			candidate := candidate
			stream.Go(func() *candidateState {
				snapshot, err := gateway.GetAccount(ctx, candidate)
				return &candidateState{address: candidate, snapshot: snapshot, err: err}
			})
		}
	}()

	// Wait for stream to finish and close out channel
	go func() {
		defer close(out)
		_ = stream.Wait()
	}()

	eligible := make([]ledger.Address, 0, len(candidates))
	for state := range out {
		if state.err != nil {
			if errors.Is(state.err, errs.NotFound) {
				continue
			}
			return nil, errors.Wrapf(state.err, "failed to fetch snapshot for candidate %s", state.address)
		}
		if state.snapshot.Owner != owner {
			continue
		}
		if state.snapshot.WithheldAmount == 0 {
			continue
		}
		eligible = append(eligible, state.address)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	return eligible, nil
}

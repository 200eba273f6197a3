package treasury

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/treasury-network/treasury-engine/common/errs"
	"github.com/treasury-network/treasury-engine/modules/treasury/internal/entity"
	"github.com/treasury-network/treasury-engine/modules/treasury/ledger"
	"github.com/treasury-network/treasury-engine/pkg/logger"
	"github.com/treasury-network/treasury-engine/pkg/logger/slogx"
)

// Run executes one full stage sequence. A failed stage halts the stages
// after it, but the report always carries the outcomes gathered so far;
// logical skips (nothing to do, insufficient balance, before burn window)
// never halt the run.
func (p *Processor) Run(ctx context.Context) (*entity.RunReport, error) {
	now := p.timezone.Resolve(p.now())
	report := &entity.RunReport{
		StartedAt: now,
		Year:      now.Year(),
		Quarter:   QuarterOf(now),
		Status:    entity.RunStatusSucceeded,
	}

	state := stateIdle
	for state != stateDone && state != stateFailed {
		var outcome entity.StageOutcome
		switch state {
		case stateIdle:
			state = stateMinting
			continue
		case stateMinting:
			outcome = p.runMinting(ctx)
			state = stateTransferring
		case stateTransferring:
			outcome = p.runTransferring(ctx)
			state = stateWithdrawing
		case stateWithdrawing:
			outcome = p.runWithdrawing(ctx)
			state = stateHarvesting
		case stateHarvesting:
			outcome = p.runHarvesting(ctx)
			state = stateBurnGate
		case stateBurnGate:
			outcome = p.runBurnGate(ctx, report.Year, report.Quarter)
			state = stateDone
		}

		report.Stages = append(report.Stages, outcome)
		logger.InfoContext(ctx, "Treasury stage finished",
			slogx.Stringer("stage", outcome.Stage),
			slogx.Stringer("status", outcome.Status),
			slogx.String("reason", outcome.Reason),
			slogx.Uint64("amount", outcome.Amount),
		)
		if outcome.Status == entity.StageStatusFailed {
			state = stateFailed
		}
	}

	report.FinishedAt = p.timezone.Resolve(p.now())
	if report.Failed() {
		report.Status = entity.RunStatusFailed
	}

	stored, err := p.treasuryDg.CreateRunReport(ctx, report)
	if err != nil {
		return report, errors.Wrap(err, "failed to store run report")
	}
	return stored, nil
}

// gatewayCtx bounds a single gateway call. On expiry the stage reports
// "timeout", not a hang.
func (p *Processor) gatewayCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.callTimeout)
}

func failureReason(err error) string {
	if errors.Is(err, errs.Timeout) || errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return err.Error()
}

func failed(stage entity.Stage, err error) entity.StageOutcome {
	return entity.StageOutcome{Stage: stage, Status: entity.StageStatusFailed, Reason: failureReason(err)}
}

func skipped(stage entity.Stage, reason string) entity.StageOutcome {
	return entity.StageOutcome{Stage: stage, Status: entity.StageStatusSkipped, Reason: reason}
}

// runMinting mints the configured amount to the source account. A missing
// mint or target account is fatal: account creation is an external
// precondition, not retried here. Minting is not idempotent.
func (p *Processor) runMinting(ctx context.Context) entity.StageOutcome {
	for _, account := range []ledger.Address{p.accounts.Mint, p.accounts.Source} {
		callCtx, cancel := p.gatewayCtx(ctx)
		exists, err := p.gateway.AccountExists(callCtx, account)
		cancel()
		if err != nil {
			return failed(entity.StageMinting, err)
		}
		if !exists {
			return failed(entity.StageMinting, errors.Wrapf(errs.NotFound, "account %s does not exist", account))
		}
	}

	callCtx, cancel := p.gatewayCtx(ctx)
	defer cancel()
	confirmation, err := p.gateway.Submit(callCtx,
		ledger.NewMintTo(p.accounts.Mint, p.accounts.Source, p.asset.MintAmount),
		[]ledger.Signer{p.authorities.Mint},
	)
	if err != nil {
		return failed(entity.StageMinting, err)
	}
	return entity.StageOutcome{
		Stage:       entity.StageMinting,
		Status:      entity.StageStatusSucceeded,
		Amount:      p.asset.MintAmount,
		TxSignature: confirmation.Signature,
	}
}

// runTransferring observes the source balance immediately beforehand; an
// insufficient balance is a skip, not a failure, and the run continues to
// the later independent stages.
func (p *Processor) runTransferring(ctx context.Context) entity.StageOutcome {
	callCtx, cancel := p.gatewayCtx(ctx)
	balance, err := p.gateway.GetBalance(callCtx, p.accounts.Source)
	cancel()
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return skipped(entity.StageTransferring, "source account does not exist")
		}
		return failed(entity.StageTransferring, err)
	}
	if balance < p.asset.TransferAmount {
		return skipped(entity.StageTransferring, "insufficient balance")
	}

	fee := ComputeFee(p.asset.TransferAmount, p.asset.FeeBasisPoints, p.asset.FeeCap)

	callCtx, cancel = p.gatewayCtx(ctx)
	defer cancel()
	confirmation, err := p.gateway.Submit(callCtx,
		ledger.NewTransferWithFee(p.accounts.Mint, p.accounts.Source, p.accounts.Destination, p.asset.TransferAmount, fee, p.asset.Decimals),
		[]ledger.Signer{p.authorities.Transfer},
	)
	if err != nil {
		return failed(entity.StageTransferring, err)
	}
	return entity.StageOutcome{
		Stage:       entity.StageTransferring,
		Status:      entity.StageStatusSucceeded,
		Amount:      p.asset.TransferAmount,
		Fee:         fee,
		TxSignature: confirmation.Signature,
	}
}

// runWithdrawing reconciles the candidate set and issues one batched
// withdraw naming every eligible account. An empty set is a zero-op success.
func (p *Processor) runWithdrawing(ctx context.Context) entity.StageOutcome {
	callCtx, cancel := p.gatewayCtx(ctx)
	eligible, err := SelectWithdrawable(callCtx, p.gateway, p.accounts.WithdrawCandidates, p.accounts.OwnerProgram)
	cancel()
	if err != nil {
		return failed(entity.StageWithdrawing, err)
	}
	if len(eligible) == 0 {
		return skipped(entity.StageWithdrawing, "nothing to withdraw")
	}

	callCtx, cancel = p.gatewayCtx(ctx)
	defer cancel()
	confirmation, err := p.gateway.Submit(callCtx,
		ledger.NewWithdrawWithheldFees(p.accounts.Mint, p.accounts.Destination, eligible),
		[]ledger.Signer{p.authorities.Withdraw},
	)
	if err != nil {
		return failed(entity.StageWithdrawing, err)
	}
	return entity.StageOutcome{
		Stage:       entity.StageWithdrawing,
		Status:      entity.StageStatusSucceeded,
		Reason:      fmt.Sprintf("%d accounts", len(eligible)),
		TxSignature: confirmation.Signature,
	}
}

// runHarvesting resolves the fee-collection account, creating it when
// absent (retried at most once with a freshly generated identifier on
// collision), then harvests any positive withheld amount to the mint.
func (p *Processor) runHarvesting(ctx context.Context) entity.StageOutcome {
	callCtx, cancel := p.gatewayCtx(ctx)
	snapshot, err := p.gateway.GetAccount(callCtx, p.accounts.FeeCollector)
	cancel()
	if err != nil {
		if !errors.Is(err, errs.NotFound) {
			return failed(entity.StageHarvesting, err)
		}

		ref, err := p.createFeeAccount(ctx)
		if err != nil {
			return failed(entity.StageHarvesting, err)
		}
		logger.InfoContext(ctx, "Created new fee-collection account",
			slogx.Stringer("account", ref.Address),
		)
		// a fresh account holds nothing to harvest
		return skipped(entity.StageHarvesting, "created fee account, nothing to harvest")
	}

	if snapshot.WithheldAmount == 0 {
		return skipped(entity.StageHarvesting, "nothing to harvest")
	}

	callCtx, cancel = p.gatewayCtx(ctx)
	defer cancel()
	confirmation, err := p.gateway.Submit(callCtx,
		ledger.NewHarvestToMint(p.accounts.Mint, p.accounts.FeeCollector, snapshot.WithheldAmount),
		[]ledger.Signer{p.authorities.Withdraw},
	)
	if err != nil {
		return failed(entity.StageHarvesting, err)
	}
	return entity.StageOutcome{
		Stage:       entity.StageHarvesting,
		Status:      entity.StageStatusSucceeded,
		Amount:      snapshot.WithheldAmount,
		TxSignature: confirmation.Signature,
	}
}

// createFeeAccount delegates to the gateway's create-account capability.
// CreateAccount generates a fresh identifier per call, so a collision is
// retried exactly once, then fatal.
func (p *Processor) createFeeAccount(ctx context.Context) (ledger.AccountRef, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		callCtx, cancel := p.gatewayCtx(ctx)
		ref, err := p.gateway.CreateAccount(callCtx, p.accounts.OwnerProgram, feeAccountSpace, p.authorities.Funding)
		cancel()
		if err == nil {
			return ref, nil
		}
		lastErr = err
		if !errors.Is(err, errs.ConflictSetting) {
			break
		}
	}
	return ledger.AccountRef{}, errors.Wrap(lastErr, "failed to create fee account")
}

// runBurnGate applies the quarter gate, the persisted burn ledger and the
// proportional burn model, in that order. All three misses are successful
// no-ops, distinguishable by reason.
func (p *Processor) runBurnGate(ctx context.Context, year, quarter int) entity.StageOutcome {
	if quarter < p.asset.BurnStartQuarter {
		return skipped(entity.StageBurnGate, "before burn window")
	}

	_, err := p.treasuryDg.GetBurnRecord(ctx, year, quarter)
	if err == nil {
		return skipped(entity.StageBurnGate, "already burned this quarter")
	}
	if !errors.Is(err, errs.NotFound) {
		return failed(entity.StageBurnGate, err)
	}

	callCtx, cancel := p.gatewayCtx(ctx)
	balance, err := p.gateway.GetBalance(callCtx, p.accounts.BurnAccount)
	cancel()
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return skipped(entity.StageBurnGate, "burn account does not exist")
		}
		return failed(entity.StageBurnGate, err)
	}

	amount := ComputeBurn(balance, p.asset.BurnRate)
	if amount == 0 {
		return skipped(entity.StageBurnGate, "nothing to burn")
	}

	callCtx, cancel = p.gatewayCtx(ctx)
	defer cancel()
	confirmation, err := p.gateway.Submit(callCtx,
		ledger.NewBurn(p.accounts.Mint, p.accounts.BurnAccount, amount, p.asset.Decimals),
		[]ledger.Signer{p.authorities.Burn},
	)
	if err != nil {
		return failed(entity.StageBurnGate, err)
	}

	if err := p.treasuryDg.RecordBurn(ctx, entity.BurnRecord{
		Year:        year,
		Quarter:     quarter,
		Amount:      amount,
		TxSignature: confirmation.Signature,
		BurnedAt:    p.timezone.Resolve(p.now()),
	}); err != nil {
		// the burn itself is confirmed; losing the marker risks a
		// double-burn on re-run, so make it loud
		logger.ErrorContext(ctx, "Burn confirmed but failed to record burn marker",
			slogx.Error(err),
			slogx.Int("year", year),
			slogx.Int("quarter", quarter),
		)
	}
	return entity.StageOutcome{
		Stage:       entity.StageBurnGate,
		Status:      entity.StageStatusSucceeded,
		Amount:      amount,
		TxSignature: confirmation.Signature,
	}
}

package treasury

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/treasury-network/treasury-engine/modules/treasury/datagateway"
	"github.com/treasury-network/treasury-engine/modules/treasury/ledger"
)

// runState is the scheduler's position in the stage sequence. Stages are
// strictly sequential: each reads ledger state mutated by the one before it.
type runState string

const (
	stateIdle         runState = "idle"
	stateMinting      runState = "minting"
	stateTransferring runState = "transferring"
	stateWithdrawing  runState = "withdrawing"
	stateHarvesting   runState = "harvesting"
	stateBurnGate     runState = "burn_gate"
	stateDone         runState = "done"
	stateFailed       runState = "failed"
)

const (
	// feeAccountSpace is the account size requested when the harvest stage
	// has to create a missing fee-collection account.
	feeAccountSpace = 278

	// defaultCallTimeout bounds every single gateway call.
	defaultCallTimeout = 30 * time.Second
)

// Accounts binds the engine to one deployment's concrete ledger accounts.
type Accounts struct {
	// Mint is the asset mint account.
	Mint ledger.Address

	// Source receives minted supply and funds the per-run transfer.
	Source ledger.Address

	// Destination receives the per-run transfer and withdrawn fees.
	Destination ledger.Address

	// FeeCollector is the fee-collection account harvested to the mint.
	FeeCollector ledger.Address

	// BurnAccount is the account the quarterly burn draws from.
	BurnAccount ledger.Address

	// WithdrawCandidates are the accounts considered for fee withdrawal.
	WithdrawCandidates []ledger.Address

	// OwnerProgram is the token program that must own withdrawable accounts.
	OwnerProgram ledger.Address
}

func (a Accounts) Validate() error {
	if a.Mint == "" || a.Source == "" || a.Destination == "" {
		return errors.New("mint, source and destination accounts are required")
	}
	if a.FeeCollector == "" {
		return errors.New("fee collector account is required")
	}
	if a.BurnAccount == "" {
		return errors.New("burn account is required")
	}
	if a.OwnerProgram == "" {
		return errors.New("owner program is required")
	}
	return nil
}

// Authorities is the signer set, injected explicitly. No ambient wallet.
type Authorities struct {
	Mint     ledger.Signer
	Transfer ledger.Signer
	Withdraw ledger.Signer
	Burn     ledger.Signer

	// Funding pays for accounts the harvest stage has to create.
	Funding ledger.Signer
}

func (a Authorities) Validate() error {
	if a.Mint == nil || a.Transfer == nil || a.Withdraw == nil || a.Burn == nil || a.Funding == nil {
		return errors.New("all five authorities are required")
	}
	return nil
}

// Processor runs the treasury stage sequence against a ledger gateway and
// records outcomes through the treasury datagateway.
type Processor struct {
	asset       AssetConfig
	accounts    Accounts
	authorities Authorities
	gateway     ledger.Gateway
	treasuryDg  datagateway.TreasuryDataGateway
	timezone    QuarterTimezone
	callTimeout time.Duration

	// now is swappable for tests.
	now func() time.Time
}

type ProcessorOption func(*Processor)

// WithCallTimeout overrides the per-call gateway timeout.
func WithCallTimeout(timeout time.Duration) ProcessorOption {
	return func(p *Processor) {
		p.callTimeout = timeout
	}
}

// WithClock overrides the wall clock the burn gate reads.
func WithClock(now func() time.Time) ProcessorOption {
	return func(p *Processor) {
		p.now = now
	}
}

// NewProcessor validates the configuration up front: invalid config is
// rejected here, before any stage can run.
func NewProcessor(asset AssetConfig, accounts Accounts, authorities Authorities, gateway ledger.Gateway, treasuryDg datagateway.TreasuryDataGateway, timezone QuarterTimezone, opts ...ProcessorOption) (*Processor, error) {
	if err := asset.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid asset config")
	}
	if err := accounts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid accounts config")
	}
	if err := authorities.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid authorities")
	}
	if !timezone.IsSupported() {
		return nil, errors.Errorf("quarter timezone %q is not supported", timezone)
	}

	p := &Processor{
		asset:       asset,
		accounts:    accounts,
		authorities: authorities,
		gateway:     gateway,
		treasuryDg:  treasuryDg,
		timezone:    timezone,
		callTimeout: defaultCallTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Processor) Name() string {
	return "Treasury"
}

// Asset returns the validated asset config the processor runs with.
func (p *Processor) Asset() AssetConfig {
	return p.asset
}

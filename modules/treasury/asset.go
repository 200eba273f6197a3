package treasury

import (
	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"github.com/treasury-network/treasury-engine/common/errs"
	"github.com/treasury-network/treasury-engine/modules/treasury/ledger"
)

// AssetConfig is the immutable per-deployment policy for one asset. It is
// created once at startup from configuration and validated before any stage
// runs; the pure models can then assume sane values.
type AssetConfig struct {
	Metadata ledger.Metadata

	// Decimals of the asset's smallest unit.
	Decimals uint8

	// FeeBasisPoints is the proportional transfer fee rate, 0..10000.
	FeeBasisPoints uint16

	// FeeCap bounds the fee charged on any single transfer.
	FeeCap uint64

	// BurnRate is the fraction of the balance burned per quarter, in [0, 1).
	BurnRate decimal.Decimal

	// BurnStartQuarter gates burning until this fiscal quarter, 1..4.
	BurnStartQuarter int

	// TransferAmount is the per-run transfer size in the smallest unit.
	TransferAmount uint64

	// MintAmount is the per-run mint size in the smallest unit.
	MintAmount uint64
}

var one = decimal.NewFromInt(1)

func (c AssetConfig) Validate() error {
	if c.Metadata.Name == "" || c.Metadata.Symbol == "" {
		return errors.Wrap(errs.InvalidArgument, "asset name and symbol are required")
	}
	if c.FeeBasisPoints > basisPointsDivisor {
		return errors.Wrapf(errs.InvalidArgument, "fee basis points must be 0..10000, got %d", c.FeeBasisPoints)
	}
	if c.BurnRate.IsNegative() || c.BurnRate.GreaterThanOrEqual(one) {
		return errors.Wrapf(errs.InvalidArgument, "burn rate must be in [0, 1), got %s", c.BurnRate)
	}
	if c.BurnStartQuarter < 1 || c.BurnStartQuarter > 4 {
		return errors.Wrapf(errs.InvalidArgument, "burn start quarter must be 1..4, got %d", c.BurnStartQuarter)
	}
	if c.TransferAmount == 0 {
		return errors.Wrap(errs.InvalidArgument, "transfer amount must be positive")
	}
	if c.MintAmount == 0 {
		return errors.Wrap(errs.InvalidArgument, "mint amount must be positive")
	}
	return nil
}

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/treasury-network/treasury-engine/internal/config"
	"github.com/treasury-network/treasury-engine/modules/treasury"
	"github.com/treasury-network/treasury-engine/modules/treasury/ledger"
	treasurymemory "github.com/treasury-network/treasury-engine/modules/treasury/repository/memory"
)

type planCmdOptions struct {
	SourceBalance uint64
	BurnBalance   uint64
}

// NewPlanCommand rehearses a full policy run against the in-process
// simulator, leaving the real ledger untouched.
func NewPlanCommand() *cobra.Command {
	opts := &planCmdOptions{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Dry-run one policy run against an in-process ledger simulator",
		RunE: func(cmd *cobra.Command, args []string) error {
			return planHandler(opts, cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.Uint64Var(&opts.SourceBalance, "source-balance", 0, "Initial source account balance, in the smallest unit")
	flags.Uint64Var(&opts.BurnBalance, "burn-balance", 0, "Initial burn account balance, in the smallest unit")

	return cmd
}

func planHandler(opts *planCmdOptions, cmd *cobra.Command, _ []string) error {
	conf := config.Load()
	moduleConf := conf.Modules.Treasury

	asset := treasury.AssetConfig{
		Metadata: ledger.Metadata{
			Name:   moduleConf.Asset.Name,
			Symbol: moduleConf.Asset.Symbol,
			URI:    moduleConf.Asset.URI,
		},
		Decimals:         moduleConf.Asset.Decimals,
		FeeBasisPoints:   moduleConf.Asset.FeeBasisPoints,
		FeeCap:           moduleConf.Asset.FeeCap,
		BurnRate:         decimal.NewFromFloat(moduleConf.Asset.BurnRate),
		BurnStartQuarter: moduleConf.Asset.BurnStartQuarter,
		TransferAmount:   moduleConf.Asset.TransferAmount,
		MintAmount:       moduleConf.Asset.MintAmount,
	}
	accounts := treasury.Accounts{
		Mint:         ledger.Address(moduleConf.Accounts.Mint),
		Source:       ledger.Address(moduleConf.Accounts.Source),
		Destination:  ledger.Address(moduleConf.Accounts.Destination),
		FeeCollector: ledger.Address(moduleConf.Accounts.FeeCollector),
		BurnAccount:  ledger.Address(moduleConf.Accounts.BurnAccount),
		WithdrawCandidates: lo.Map(moduleConf.Accounts.WithdrawCandidates, func(address string, _ int) ledger.Address {
			return ledger.Address(address)
		}),
		OwnerProgram: ledger.Address(moduleConf.Accounts.OwnerProgram),
	}

	// Every authority is ephemeral, the simulator does not verify signatures.
	newKeypair := func() (*ledger.Keypair, error) {
		keypair, err := ledger.NewKeypair()
		return keypair, errors.Wrap(err, "can't generate keypair")
	}
	var authorities treasury.Authorities
	for _, signer := range []*ledger.Signer{
		&authorities.Mint, &authorities.Transfer, &authorities.Withdraw, &authorities.Burn, &authorities.Funding,
	} {
		keypair, err := newKeypair()
		if err != nil {
			return errors.WithStack(err)
		}
		*signer = keypair
	}

	simulator := ledger.NewSimulator(accounts.OwnerProgram)
	if _, err := simulator.InitializeMint(cmd.Context(), ledger.MintInit{
		Mint:           accounts.Mint,
		Decimals:       asset.Decimals,
		FeeBasisPoints: asset.FeeBasisPoints,
		FeeCap:         asset.FeeCap,
		Metadata:       asset.Metadata,
	}, []ledger.Signer{authorities.Mint}); err != nil {
		return errors.Wrap(err, "can't initialize simulator mint")
	}
	simulator.SeedAccount(accounts.Source, accounts.OwnerProgram, opts.SourceBalance, 0)
	simulator.SeedAccount(accounts.Destination, accounts.OwnerProgram, 0, 0)
	simulator.SeedAccount(accounts.FeeCollector, accounts.OwnerProgram, 0, 0)
	simulator.SeedAccount(accounts.BurnAccount, accounts.OwnerProgram, opts.BurnBalance, 0)
	for _, candidate := range accounts.WithdrawCandidates {
		simulator.SeedAccount(candidate, accounts.OwnerProgram, 0, 0)
	}

	processor, err := treasury.NewProcessor(asset, accounts, authorities, simulator, treasurymemory.NewRepository(), treasury.QuarterTimezoneUTC)
	if err != nil {
		return errors.Wrap(err, "can't create treasury processor")
	}

	report, err := processor.Run(cmd.Context())
	if err != nil {
		return errors.Wrap(err, "plan run failed")
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.Wrap(err, "can't marshal run report")
	}
	fmt.Println(string(out))
	return nil
}

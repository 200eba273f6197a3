package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/treasury-network/treasury-engine/internal/config"
	"github.com/treasury-network/treasury-engine/modules/treasury/ledger"
	"github.com/treasury-network/treasury-engine/modules/treasury/ledgerclient"
)

func NewInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the asset mint on the configured ledger",
		RunE:  initHandler,
	}
}

func initHandler(cmd *cobra.Command, _ []string) error {
	conf := config.Load()
	moduleConf := conf.Modules.Treasury

	client, err := ledgerclient.New(conf.Ledger.Endpoint, conf.Ledger.Commitment)
	if err != nil {
		return errors.Wrap(err, "can't create ledger rpc client")
	}

	mintAuthority, err := ledger.LoadKeypair(filepath.Join(moduleConf.KeysPath, "mint_authority.key"))
	if err != nil {
		return errors.Wrap(err, "can't load mint authority keypair")
	}

	confirmation, err := client.InitializeMint(cmd.Context(), ledger.MintInit{
		Mint:           ledger.Address(moduleConf.Accounts.Mint),
		Decimals:       moduleConf.Asset.Decimals,
		FeeBasisPoints: moduleConf.Asset.FeeBasisPoints,
		FeeCap:         moduleConf.Asset.FeeCap,
		Metadata: ledger.Metadata{
			Name:   moduleConf.Asset.Name,
			Symbol: moduleConf.Asset.Symbol,
			URI:    moduleConf.Asset.URI,
		},
	}, []ledger.Signer{mintAuthority})
	if err != nil {
		return errors.Wrap(err, "can't initialize mint")
	}

	fmt.Printf("Mint %s initialized, signature: %s\n", moduleConf.Accounts.Mint, confirmation.Signature)
	return nil
}

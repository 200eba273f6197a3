package cmd

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/treasury-network/treasury-engine/internal/config"
	"github.com/treasury-network/treasury-engine/modules/treasury/ledger"
	"github.com/treasury-network/treasury-engine/modules/treasury/ledgerclient"
)

type balanceCmdOptions struct {
	Account string
}

func NewBalanceCommand() *cobra.Command {
	opts := &balanceCmdOptions{}

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show balance and withheld fees of a ledger account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return balanceHandler(opts, cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Account, "account", "", "Account address to query")

	return cmd
}

func balanceHandler(opts *balanceCmdOptions, cmd *cobra.Command, _ []string) error {
	if opts.Account == "" {
		return errors.New("--account is required")
	}

	conf := config.Load()
	client, err := ledgerclient.New(conf.Ledger.Endpoint, conf.Ledger.Commitment)
	if err != nil {
		return errors.Wrap(err, "can't create ledger rpc client")
	}

	snapshot, err := client.GetAccount(cmd.Context(), ledger.Address(opts.Account))
	if err != nil {
		return errors.Wrap(err, "can't get account")
	}

	fmt.Printf("Account:  %s\n", snapshot.Address)
	fmt.Printf("Owner:    %s\n", snapshot.Owner)
	fmt.Printf("Balance:  %d\n", snapshot.Balance)
	fmt.Printf("Withheld: %d\n", snapshot.WithheldAmount)
	return nil
}

package cmd

import (
	"fmt"
	"os"
	"path"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/treasury-network/treasury-engine/modules/treasury/ledger"
)

type generateKeypairCmdOptions struct {
	Path string
	Name string
}

func NewGenerateKeypairCommand() *cobra.Command {
	opts := &generateKeypairCmdOptions{}

	cmd := &cobra.Command{
		Use:   "generate-keypair",
		Short: "Generate a new signing keypair for a treasury authority",
		RunE: func(cmd *cobra.Command, args []string) error {
			return generateKeypairHandler(opts, cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Path, "path", "/data/keys", `Path to save the keypair file`)
	flags.StringVar(&opts.Name, "name", "authority", `Keypair file name, saved as <name>.key. E.g. "mint_authority"`)

	return cmd
}

func generateKeypairHandler(opts *generateKeypairCmdOptions, _ *cobra.Command, _ []string) error {
	fmt.Printf("Generating keypair\n")
	keypair, err := ledger.NewKeypair()
	if err != nil {
		return errors.Wrap(err, "can't generate keypair")
	}

	fmt.Printf("Address: %s\n", keypair.Address())
	if err := os.MkdirAll(opts.Path, 0o755); err != nil {
		return errors.Wrap(err, "can't create keys directory")
	}

	keyPath := path.Join(opts.Path, opts.Name+".key")

	if _, err := os.Stat(keyPath); err == nil {
		fmt.Printf("Existing key found at %s\n[WARNING] THE EXISTING KEY WILL BE LOST\nType [replace] to replace existing key: ", keyPath)
		var ans string
		fmt.Scanln(&ans)
		if ans != "replace" {
			fmt.Printf("Keypair generation aborted\n")
			return nil
		}
	}

	if err := os.WriteFile(keyPath, []byte(keypair.Seed()), 0o600); err != nil {
		return errors.Wrap(err, "can't write keypair file")
	}
	fmt.Printf("Keypair saved to %s\n", keyPath)
	return nil
}

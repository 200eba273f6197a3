package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/treasury-network/treasury-engine/internal/config"
	"github.com/treasury-network/treasury-engine/pkg/logger"
	"github.com/treasury-network/treasury-engine/pkg/logger/slogx"
)

var rootCmd = &cobra.Command{
	Use:  "treasuryd",
	Long: `Fee-aware token treasury policy engine`,
}

func init() {
	var configFile string

	// Add global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file, E.g. `./config.yaml`")
	flags.String("ledger-endpoint", "", "ledger RPC endpoint, E.g. `http://localhost:8899`")

	// Bind flags to configuration
	config.BindPFlag("ledger.endpoint", flags.Lookup("ledger-endpoint"))

	// Initialize configuration and logger on start command
	cobra.OnInitialize(func() {
		config.SetConfigFile(configFile)
		conf := config.Load()

		if err := logger.Init(conf.Logger); err != nil {
			logger.Panic("Failed to initialize logger", slogx.Error(err), slog.Any("config", conf.Logger))
		}
	})
}

func Execute(ctx context.Context) {
	// Register sub-commands
	rootCmd.AddCommand(
		NewRunCommand(),
		NewVersionCommand(),
		NewMigrateCommand(),
		NewGenerateKeypairCommand(),
		NewInitCommand(),
		NewBalanceCommand(),
		NewPlanCommand(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Fatal("Failed to execute command", slogx.Error(err))
	}
}

package config

import (
	"time"

	"github.com/treasury-network/treasury-engine/internal/postgres"
)

type Config struct {
	Database        string          `mapstructure:"database"` // Database to store treasury run history. `postgres` | `memory`
	Postgres        postgres.Config `mapstructure:"postgres"`
	RunInterval     time.Duration   `mapstructure:"run_interval"`      // Interval between scheduled policy runs. Zero means run once and stop.
	QuarterTimezone string          `mapstructure:"quarter_timezone"`  // Timezone used when resolving the calendar quarter. `utc` | `local`
	Asset           AssetConfig     `mapstructure:"asset"`
	Accounts        AccountsConfig  `mapstructure:"accounts"`
	KeysPath        string          `mapstructure:"keys_path"`    // Directory holding authority keypair files.
	APIHandlers     []string        `mapstructure:"api_handlers"` // API handlers to mount. e.g. `http`
}

type AssetConfig struct {
	Name             string  `mapstructure:"name"`
	Symbol           string  `mapstructure:"symbol"`
	URI              string  `mapstructure:"uri"`
	Decimals         uint8   `mapstructure:"decimals"`
	FeeBasisPoints   uint16  `mapstructure:"fee_basis_points"`
	FeeCap           uint64  `mapstructure:"fee_cap"`
	BurnRate         float64 `mapstructure:"burn_rate"`
	BurnStartQuarter int     `mapstructure:"burn_start_quarter"`
	TransferAmount   uint64  `mapstructure:"transfer_amount"`
	MintAmount       uint64  `mapstructure:"mint_amount"`
}

type AccountsConfig struct {
	Mint               string   `mapstructure:"mint"`
	Source             string   `mapstructure:"source"`
	Destination        string   `mapstructure:"destination"`
	FeeCollector       string   `mapstructure:"fee_collector"`
	BurnAccount        string   `mapstructure:"burn_account"`
	WithdrawCandidates []string `mapstructure:"withdraw_candidates"`
	OwnerProgram       string   `mapstructure:"owner_program"`
}

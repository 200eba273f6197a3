package config

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/treasury-network/treasury-engine/common"
	"github.com/treasury-network/treasury-engine/modules/treasury/config"
	"github.com/treasury-network/treasury-engine/pkg/logger"
	"github.com/treasury-network/treasury-engine/pkg/logger/slogx"
	"github.com/treasury-network/treasury-engine/pkg/middleware/requestlogger"
	"github.com/treasury-network/treasury-engine/pkg/reportingclient"
)

var (
	configOnce sync.Once
	cfg        = &Config{
		Logger: logger.Config{
			Output: "TEXT",
		},
		HTTPServer: HTTPServer{
			Port: 8080,
		},
		Ledger: Ledger{
			Backend:        "rpc",
			Commitment:     common.CommitmentConfirmed,
			RequestTimeout: 30 * time.Second,
		},
		// Outbound integrations are opt-in: a minimal config must be able
		// to start the engine without a bucket or reporting endpoint.
		Reporting: reportingclient.Config{
			Disabled: true,
		},
		Archiver: Archiver{
			Disabled: true,
		},
	}
)

type Config struct {
	Logger        logger.Config          `mapstructure:"logger"`
	APIOnly       bool                   `mapstructure:"api_only"`
	HTTPServer    HTTPServer             `mapstructure:"http_server"`
	Ledger        Ledger                 `mapstructure:"ledger"`
	Reporting     reportingclient.Config `mapstructure:"reporting"`
	Archiver      Archiver               `mapstructure:"archiver"`
	EnableModules []string               `mapstructure:"enable_modules"`
	Modules       Modules                `mapstructure:"modules"`
}

type HTTPServer struct {
	Port      int                  `mapstructure:"port"`
	Logger    requestlogger.Config `mapstructure:"logger"`
	RequestIP RequestIP            `mapstructure:"request_ip"`
}

type RequestIP struct {
	TrustedHeader string `mapstructure:"trusted_header"`
}

type Ledger struct {
	Backend        string            `mapstructure:"backend"` // `rpc` | `simulator`
	Endpoint       string            `mapstructure:"endpoint"`
	Commitment     common.Commitment `mapstructure:"commitment"`
	RequestTimeout time.Duration     `mapstructure:"request_timeout"`
}

type Archiver struct {
	Disabled bool   `mapstructure:"disabled"`
	Bucket   string `mapstructure:"bucket"`
	Prefix   string `mapstructure:"prefix"`
	Region   string `mapstructure:"region"`
}

type Modules struct {
	Treasury config.Config `mapstructure:"treasury"`
}

// SetConfigFile overrides the config file location. Must be called before
// the first Load.
func SetConfigFile(path string) {
	if path != "" {
		viper.SetConfigFile(path)
	}
}

// BindPFlag binds a command-line flag to a configuration key.
func BindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		logger.Panic("failed to bind flag to config", slogx.String("key", key), slogx.Error(err))
	}
}

// Load reads the configuration from config file and environment variables.
// Subsequent calls return the cached configuration.
func Load() Config {
	ctx := logger.WithContext(context.Background(), slog.String("package", "config"))
	configOnce.Do(func() {
		viper.AddConfigPath("./")
		viper.SetConfigName("config")

		viper.AutomaticEnv()
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		if err := viper.ReadInConfig(); err != nil {
			var errNotfound viper.ConfigFileNotFoundError
			if errors.As(err, &errNotfound) {
				logger.WarnContext(ctx, "config file not found, use default value", slogx.Error(err))
			} else {
				logger.PanicContext(ctx, "invalid config file", slogx.Error(err))
			}
		}

		if err := viper.Unmarshal(&cfg); err != nil {
			logger.PanicContext(ctx, "failed to unmarshal config", slogx.Error(err))
		}
		logger.InfoContext(ctx, "loaded config successfully")
	})

	return *cfg
}

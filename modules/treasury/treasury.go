package treasury

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/do/v2"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/treasury-network/treasury-engine/common/errs"
	"github.com/treasury-network/treasury-engine/core"
	"github.com/treasury-network/treasury-engine/core/scheduler"
	"github.com/treasury-network/treasury-engine/internal/config"
	"github.com/treasury-network/treasury-engine/internal/postgres"
	treasuryapi "github.com/treasury-network/treasury-engine/modules/treasury/api"
	"github.com/treasury-network/treasury-engine/modules/treasury/archiver"
	"github.com/treasury-network/treasury-engine/modules/treasury/datagateway"
	"github.com/treasury-network/treasury-engine/modules/treasury/internal/entity"
	"github.com/treasury-network/treasury-engine/modules/treasury/ledger"
	"github.com/treasury-network/treasury-engine/modules/treasury/ledgerclient"
	treasurymemory "github.com/treasury-network/treasury-engine/modules/treasury/repository/memory"
	treasurypostgres "github.com/treasury-network/treasury-engine/modules/treasury/repository/postgres"
	treasuryusecase "github.com/treasury-network/treasury-engine/modules/treasury/usecase"
	"github.com/treasury-network/treasury-engine/pkg/logger"
	"github.com/treasury-network/treasury-engine/pkg/reportingclient"
)

func New(injector do.Injector) (core.Worker, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector)
	reportingClient := do.MustInvoke[*reportingclient.ReportingClient](injector)
	runArchiver := do.MustInvoke[*archiver.Archiver](injector)
	moduleConf := conf.Modules.Treasury

	var treasuryDg datagateway.TreasuryDataGateway
	switch strings.ToLower(moduleConf.Database) {
	case "postgresql", "postgres", "pg":
		pg, err := postgres.NewPool(ctx, moduleConf.Postgres)
		if err != nil {
			if errors.Is(err, errs.InvalidArgument) {
				return nil, errors.Wrap(err, "Invalid Postgres configuration for treasury module")
			}
			return nil, errors.Wrap(err, "can't create Postgres connection pool")
		}
		treasuryDg = treasurypostgres.NewRepository(pg)
	case "memory":
		treasuryDg = treasurymemory.NewRepository()
	default:
		return nil, errors.Wrapf(errs.Unsupported, "%q database for treasury module is not supported", moduleConf.Database)
	}

	authorities, err := loadAuthorities(moduleConf.KeysPath)
	if err != nil {
		return nil, errors.Wrap(err, "can't load authority keypairs")
	}

	asset := AssetConfig{
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
	accounts := Accounts{
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

	var gateway ledger.Gateway
	switch strings.ToLower(conf.Ledger.Backend) {
	case "rpc":
		client, err := ledgerclient.New(conf.Ledger.Endpoint, conf.Ledger.Commitment)
		if err != nil {
			return nil, errors.Wrap(err, "can't create ledger rpc client")
		}
		gateway = client
	case "simulator":
		simulator := ledger.NewSimulator(accounts.OwnerProgram)
		if err := seedSimulator(ctx, simulator, asset, accounts, authorities); err != nil {
			return nil, errors.Wrap(err, "can't seed ledger simulator")
		}
		gateway = simulator
	default:
		return nil, errors.Wrapf(errs.Unsupported, "%q ledger backend is not supported", conf.Ledger.Backend)
	}

	timezone := QuarterTimezone(utils.Default(moduleConf.QuarterTimezone, string(QuarterTimezoneUTC)))
	processor, err := NewProcessor(asset, accounts, authorities, gateway, treasuryDg, timezone,
		WithCallTimeout(conf.Ledger.RequestTimeout),
	)
	if err != nil {
		return nil, errors.Wrap(err, "can't create treasury processor")
	}

	// Mount API
	apiHandlers := lo.Uniq(moduleConf.APIHandlers)
	for _, handler := range apiHandlers {
		switch handler {
		case "http":
			httpServer := do.MustInvoke[*fiber.App](injector)
			treasuryUsecase := treasuryusecase.New(treasuryDg, processor)
			treasuryHTTPHandler := treasuryapi.NewHTTPHandler(moduleConf.Asset, treasuryUsecase)
			if err := treasuryHTTPHandler.Mount(httpServer); err != nil {
				return nil, errors.Wrap(err, "can't mount Treasury API")
			}
			logger.InfoContext(ctx, "Mounted HTTP handler")
		default:
			return nil, errors.Wrapf(errs.Unsupported, "%q API handler is not supported", handler)
		}
	}

	var sinks []scheduler.Sink[*entity.RunReport]
	if reportingClient != nil {
		sinks = append(sinks, func(ctx context.Context, report *entity.RunReport) error {
			return reportingClient.SubmitRunReport(ctx, reportingclient.SubmitRunReportPayload{
				Type:          "treasury_run",
				ClientVersion: Version,
				DBVersion:     DBVersion,
				RunId:         report.Id,
				Status:        string(report.Status),
				Year:          report.Year,
				Quarter:       report.Quarter,
				StartedAt:     report.StartedAt,
				FinishedAt:    report.FinishedAt,
			})
		})
	}
	if runArchiver != nil {
		sinks = append(sinks, func(ctx context.Context, report *entity.RunReport) error {
			return runArchiver.ArchiveRun(ctx, report)
		})
	}

	return scheduler.New[*entity.RunReport](processor, moduleConf.RunInterval, sinks...), nil
}

// loadAuthorities reads the five authority keypairs from the keys directory.
func loadAuthorities(keysPath string) (Authorities, error) {
	if keysPath == "" {
		return Authorities{}, errors.Wrap(errs.InvalidArgument, "treasury.keys_path config is required")
	}
	load := func(name string) (*ledger.Keypair, error) {
		keypair, err := ledger.LoadKeypair(filepath.Join(keysPath, name))
		if err != nil {
			return nil, errors.Wrapf(err, "can't load keypair %q", name)
		}
		return keypair, nil
	}

	mint, err := load("mint_authority.key")
	if err != nil {
		return Authorities{}, err
	}
	transfer, err := load("transfer_authority.key")
	if err != nil {
		return Authorities{}, err
	}
	withdraw, err := load("withdraw_authority.key")
	if err != nil {
		return Authorities{}, err
	}
	burn, err := load("burn_authority.key")
	if err != nil {
		return Authorities{}, err
	}
	funding, err := load("funding.key")
	if err != nil {
		return Authorities{}, err
	}

	return Authorities{
		Mint:     mint,
		Transfer: transfer,
		Withdraw: withdraw,
		Burn:     burn,
		Funding:  funding,
	}, nil
}

// seedSimulator prepares the in-process ledger so a run has a mint and
// funded accounts to work against.
func seedSimulator(ctx context.Context, simulator *ledger.Simulator, asset AssetConfig, accounts Accounts, authorities Authorities) error {
	if _, err := simulator.InitializeMint(ctx, ledger.MintInit{
		Mint:           accounts.Mint,
		Decimals:       asset.Decimals,
		FeeBasisPoints: asset.FeeBasisPoints,
		FeeCap:         asset.FeeCap,
		Metadata:       asset.Metadata,
	}, []ledger.Signer{authorities.Mint}); err != nil {
		return errors.Wrap(err, "can't initialize simulator mint")
	}

	simulator.SeedAccount(accounts.Source, accounts.OwnerProgram, 0, 0)
	simulator.SeedAccount(accounts.Destination, accounts.OwnerProgram, 0, 0)
	simulator.SeedAccount(accounts.FeeCollector, accounts.OwnerProgram, 0, 0)
	simulator.SeedAccount(accounts.BurnAccount, accounts.OwnerProgram, 0, 0)
	for _, candidate := range accounts.WithdrawCandidates {
		simulator.SeedAccount(candidate, accounts.OwnerProgram, 0, 0)
	}
	return nil
}

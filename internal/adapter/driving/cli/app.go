package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/diillson/finly-dashboard-go/internal/adapter/driven/api"
	"github.com/diillson/finly-dashboard-go/internal/adapter/driven/export"
	"github.com/diillson/finly-dashboard-go/internal/adapter/driven/session"
	"github.com/diillson/finly-dashboard-go/internal/application/usecase"
	"github.com/diillson/finly-dashboard-go/internal/domain/repository"
	"github.com/diillson/finly-dashboard-go/internal/shared/types"
	"github.com/diillson/finly-dashboard-go/pkg/version"
	"github.com/spf13/cobra"
)

// ErrReported is returned when the failure was already shown to the user.
var ErrReported = errors.New("command failed")

const skipRestore = "skip-restore"

// Services agrupa os casos de uso montados a partir da configuração.
type Services struct {
	Auth      *usecase.AuthUseCase
	Dashboard *usecase.DashboardUseCase
	Console   types.ConsoleInterface
	Close     func() error
}

// ServicesFactory monta os serviços depois que a configuração foi resolvida.
type ServicesFactory func(cfg *types.Config) (*Services, error)

// NewServices wires the HTTP client, the sqlite session store and the
// exporters into the use cases.
func NewServices(cfg *types.Config, console types.ConsoleInterface) (*Services, error) {
	sessions, err := session.NewSessionRepository(cfg.StateDB)
	if err != nil {
		return nil, err
	}

	apiRepo := api.NewAPIRepository(cfg.APIURL, cfg.Timeout(), cfg.SendUserIDHeader)
	auth := usecase.NewAuthUseCase(apiRepo, sessions, console)
	dashboard := usecase.NewDashboardUseCase(
		apiRepo,
		export.NewExportRepository(),
		auth,
		console,
		usecase.NewNotices(cfg.NoticeTTL()),
	)

	return &Services{
		Auth:      auth,
		Dashboard: dashboard,
		Console:   console,
		Close:     sessions.Close,
	}, nil
}

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd    *cobra.Command
	version    string
	configRepo repository.ConfigRepository
	factory    ServicesFactory

	config   *types.Config
	args     *types.CLIArgs
	services *Services
	input    *bufio.Scanner

	// quanto esperar pela verificação de versão depois de exibir o dashboard
	releaseWait time.Duration
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(versionStr string) *CLIApp {
	app := &CLIApp{
		version:     versionStr,
		releaseWait: 300 * time.Millisecond,
	}

	// Obtem a versão formatada
	formattedVersion := version.Current().String()

	rootCmd := &cobra.Command{
		Use:               "finly",
		Short:             "Finly personal budget dashboard",
		Version:           formattedVersion,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: app.setup,
		RunE:              app.runDashboard,
	}

	rootCmd.SetVersionTemplate(`{{printf "Finly Dashboard version: %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	rootCmd.PersistentFlags().String("api-url", "", "Base URL of the Finly backend")
	rootCmd.PersistentFlags().String("state-db", "", "Path to the local state database")
	addListFlags(rootCmd)

	rootCmd.AddCommand(
		app.newLoginCmd(),
		app.newRegisterCmd(),
		app.newLogoutCmd(),
		app.newWhoamiCmd(),
		app.newRefreshCmd(),
		app.newDashboardCmd(),
		app.newBudgetCmd(),
		app.newTransactionCmd(),
		app.newCategoryCmd(),
		app.newExportCmd(),
	)

	app.rootCmd = rootCmd
	return app
}

// SetConfigRepository sets the repository used to resolve the configuration.
func (app *CLIApp) SetConfigRepository(repo repository.ConfigRepository) {
	app.configRepo = repo
}

// SetServicesFactory sets the function that builds the use cases.
func (app *CLIApp) SetServicesFactory(factory ServicesFactory) {
	app.factory = factory
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.ExecuteContext(context.Background())
}

// ExecuteContext runs the CLI application with the given context.
func (app *CLIApp) ExecuteContext(ctx context.Context) error {
	defer app.close()
	return app.rootCmd.ExecuteContext(ctx)
}

func (app *CLIApp) close() {
	if app.services == nil || app.services.Close == nil {
		return
	}
	if err := app.services.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close state database: %v\n", err)
	}
	app.services = nil
}

// parseArgs parses command-line arguments into a CLIArgs struct.
func (app *CLIApp) parseArgs(cmd *cobra.Command) (*types.CLIArgs, error) {
	flags := cmd.Flags()
	configFile, _ := flags.GetString("config-file")
	apiURL, _ := flags.GetString("api-url")
	stateDB, _ := flags.GetString("state-db")
	reportName, _ := flags.GetString("report-name")
	reportType, _ := flags.GetStringSlice("report-type")
	dir, _ := flags.GetString("dir")
	limit, _ := flags.GetInt("limit")
	all, _ := flags.GetBool("all")
	custom, _ := flags.GetBool("custom")

	if dir != "" {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		dir = absDir
	}

	return &types.CLIArgs{
		ConfigFile: configFile,
		APIURL:     apiURL,
		StateDB:    stateDB,
		ReportName: reportName,
		ReportType: reportType,
		Dir:        dir,
		Limit:      limit,
		All:        all,
		Custom:     custom,
	}, nil
}

// loadConfig resolve a configuração: padrões, arquivo, variáveis de ambiente e flags.
func (app *CLIApp) loadConfig(args *types.CLIArgs) (*types.Config, error) {
	cfg := types.DefaultConfig()

	if app.configRepo != nil {
		if args.ConfigFile != "" {
			fileCfg, err := app.configRepo.LoadConfigFile(args.ConfigFile)
			if err != nil {
				return nil, err
			}
			cfg.Merge(fileCfg)
		}
		if err := app.configRepo.ApplyEnv(cfg); err != nil {
			return nil, err
		}
	}

	if args.APIURL != "" {
		cfg.APIURL = args.APIURL
	}
	if args.StateDB != "" {
		cfg.StateDB = args.StateDB
	}
	return cfg, nil
}

// setup runs before every command: resolves the configuration, builds the
// services and restores a persisted session.
func (app *CLIApp) setup(cmd *cobra.Command, _ []string) error {
	args, err := app.parseArgs(cmd)
	if err != nil {
		return err
	}
	cfg, err := app.loadConfig(args)
	if err != nil {
		return err
	}
	if app.factory == nil {
		return errors.New("cli: no services factory configured")
	}
	services, err := app.factory(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialise: %w", err)
	}

	app.args = args
	app.config = cfg
	app.services = services

	if cmd.Annotations[skipRestore] == "true" {
		return nil
	}
	if err := services.Auth.Restore(cmd.Context()); err != nil {
		if errors.Is(err, types.ErrUnauthorized) {
			services.Console.LogWarning("%s", types.ErrSessionExpired)
		} else {
			services.Console.LogWarning("Could not verify the saved session: %s", usecase.UserMessage(err, "unknown error"))
		}
	}
	return nil
}

// reported exibe os avisos pendentes; quando houver falha já exibida,
// devolve ErrReported para não repetir a mensagem.
func (app *CLIApp) reported(err error) error {
	shown := app.services.Dashboard.RenderNotices()
	if err != nil && shown > 0 {
		return ErrReported
	}
	return err
}

// pageSize resolves how many transactions a listing shows; 0 means all.
func (app *CLIApp) pageSize() int {
	if app.args.All {
		return 0
	}
	if app.args.Limit > 0 {
		return app.args.Limit
	}
	return app.config.PageSize
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().Int("limit", 0, "Number of transactions to show (default: page_size from config)")
	cmd.Flags().Bool("all", false, "Show every transaction")
}

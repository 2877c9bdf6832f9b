package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/diillson/finly-dashboard-go/internal/adapter/driven/config"
	"github.com/diillson/finly-dashboard-go/internal/adapter/driving/cli"
	"github.com/diillson/finly-dashboard-go/internal/shared/types"
	"github.com/diillson/finly-dashboard-go/pkg/console"
	"github.com/diillson/finly-dashboard-go/pkg/version"
)

func main() {
	// Inicializa o aplicativo CLI
	app := cli.NewCLIApp(version.Current().Version)

	// Inicializa os repositórios
	configRepo := config.NewConfigRepository()
	consoleImpl := console.NewConsole()

	app.SetConfigRepository(configRepo)
	app.SetServicesFactory(func(cfg *types.Config) (*cli.Services, error) {
		return cli.NewServices(cfg, consoleImpl)
	})

	// Executa o aplicativo
	if err := app.Execute(); err != nil {
		if !errors.Is(err, cli.ErrReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"sellusgenie-backend/internal/app"
	"sellusgenie-backend/internal/config"
	"sellusgenie-backend/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "genie",
	Short: "SellUsGenie page engine maintenance tool",
	Example: `genie widgets
genie render -s <store-id> --slug about
genie render -s <store-id> --system footer
genie upgrade-widgets -s <store-id>
genie upgrade-widgets --all
genie tokenize -s <store-id> --dry-run`,
	SilenceUsage: true,
}

func main() {
	logger.Init()
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment variables", nil)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(widgetsCmd())
	rootCmd.AddCommand(renderCmd())
	rootCmd.AddCommand(upgradeWidgetsCmd())
	rootCmd.AddCommand(tokenizeCmd())

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}

// openApplication wires the engine against the configured database. The HTTP
// server and background jobs are never started.
func openApplication(cmd *cobra.Command) (*app.Application, func(), error) {
	application, err := app.New(config.New())
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := application.Shutdown(cmd.Context()); err != nil {
			logger.Error(err, "Failed to close application", nil)
		}
	}
	return application, closeFn, nil
}

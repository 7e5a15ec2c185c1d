package main // Entry point package

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/iliyamo/wedding-guests/internal/logger"
)

func main() {
	// Flag defaults read the environment, so .env is applied first.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "wedding-guests",
		Short:         "Bilingual wedding guest directory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		serveCmd(),
		migrateCmd(),
		consumeCmd(),
		uploadCmd(),
		guestsCmd(),
	)

	err := root.Execute()
	if err != nil {
		logger.L().Errorw("command failed", "error", err)
	}
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// Command draft runs and inspects hero drafts from a terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DoyleJ11/hots-draft-backend/internal/config"
	"github.com/DoyleJ11/hots-draft-backend/internal/logging"
	"github.com/DoyleJ11/hots-draft-backend/internal/store"
)

type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	logLevel string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "draft",
		Short:         "Simulate and review hero drafts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			// Decision logs would drown the prompts, so the CLI logs quietly.
			logger, err := logging.New("development", a.logLevel)
			if err != nil {
				return err
			}
			a.cfg, a.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newRunCmd(a),
		newReplayCmd(a),
		newListCmd(a),
		newShowCmd(a),
	)
	return root
}

// archive opens the Postgres store when DATABASE_URL is set.
func (a *app) archive() (store.Store, bool, error) {
	if a.cfg.DatabaseURL == "" {
		return nil, false, nil
	}
	s, err := store.OpenPostgres(a.cfg.DatabaseURL)
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

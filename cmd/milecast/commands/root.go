package commands

import (
	"context"
	"os/signal"
	"syscall"

	"milecast/internal/config"
	"milecast/internal/forecast"
	"milecast/internal/httpapi"
	"milecast/internal/logging"
	"milecast/internal/rules"
	"milecast/internal/state"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "milecast",
	Short: "Milecast is a milestone forecasting and delivery rule engine",
	Long: `A reasoning core for project delivery: critical-path milestone forecasting
(P50/P80 dates with a causal breakdown) and a deterministic event-to-command
rule engine, served over HTTP from a portfolio snapshot.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		// Load configuration
		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("Milecast starting")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		store := state.NewDocumentStore(cfg.PortfolioPath)
		snap, err := store.Load()
		if err != nil {
			return err
		}

		fc := forecast.NewEngine()
		engine := rules.NewEngine(fc)
		build := httpapi.BuildInfo{Version: Version, Commit: Commit, BuildDate: BuildDate}
		server, err := httpapi.NewServer(cfg, build, snap, fc, engine, rules.NewLogExecutor())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return server.Run(ctx)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

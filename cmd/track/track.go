package track

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"vsireport/internal/config"
	"vsireport/internal/slapi"
	"vsireport/internal/snapshot"
)

type trackOptions struct {
	schedule string
}

// NewTrackCmd creates the track command
func NewTrackCmd() *cobra.Command {
	opts := &trackOptions{}

	cmd := &cobra.Command{
		Use:   "track",
		Short: "Snapshot in-progress provisioning jobs",
		Long: `Capture placement, network and image attributes of virtual servers that
are still being provisioned, and upsert them into the snapshot store keyed
by guest id. The daily report later joins these snapshots back into its
rows, since the attributes are unavailable once provisioning completes.

Runs once by default; with --schedule it stays resident and runs on the
given cron expression.

Examples:
  # Single collection pass
  vsireport track

  # Collect every five minutes
  vsireport track --schedule "*/5 * * * *"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.schedule, "schedule", "", "Cron expression to run the collector on (default: run once)")

	return cmd
}

func run(ctx context.Context, cfg *config.Config, opts *trackOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var store snapshot.Store
	if cfg.Redis.Addr != "" {
		store = snapshot.NewRedisStore(cfg.Redis)
	} else {
		log.Warn().Msg("no snapshot store configured; observations will be logged only")
	}

	reconciler := &snapshot.Reconciler{
		API:   slapi.NewClient(cfg.API),
		Store: store,
	}

	if opts.schedule == "" {
		written, err := reconciler.Run(ctx)
		if err != nil {
			return err
		}
		log.Info().Int("written", written).Msg("snapshot collection finished")
		return nil
	}

	scheduler := cron.New()
	_, err := scheduler.AddFunc(opts.schedule, func() {
		written, err := reconciler.Run(ctx)
		if err != nil {
			log.Error().Err(err).Msg("snapshot collection failed")
			return
		}
		log.Info().Int("written", written).Msg("snapshot collection finished")
	})
	if err != nil {
		return err
	}

	log.Info().Str("schedule", opts.schedule).Msg("snapshot collector started")
	scheduler.Run()
	return nil
}

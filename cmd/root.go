package cmd

import (
	initCmd "vsireport/cmd/init"
	"vsireport/cmd/report"
	"vsireport/cmd/track"
	"vsireport/cmd/version"
	"vsireport/internal/logging"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	var (
		logLevel   string
		logFormat  string
		configFile string
	)

	rootCmd := &cobra.Command{
		Use:   "vsireport",
		Short: "vsireport - virtual server provisioning statistics",
		Long: `vsireport reconciles virtual-server provisioning latency for a cloud account.

The report command builds the daily report: for every virtual server billed
on the report day it reconstructs the billing-create, provisioning-complete
and power-on timestamps, aggregates the latency distribution, and delivers
the result as a spreadsheet and HTML email.

The track command snapshots in-progress provisioning jobs so placement and
image attributes that disappear after completion can be joined back into
later reports.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Configure(logLevel, logFormat)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config.ini")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log output format (text or json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO",
		"Set logging level (DEBUG, INFO, WARN, ERROR)")

	rootCmd.AddCommand(report.NewReportCmd())
	rootCmd.AddCommand(track.NewTrackCmd())
	rootCmd.AddCommand(initCmd.NewInitCmd())
	rootCmd.AddCommand(version.NewVersionCmd())

	err := rootCmd.Execute()
	if err != nil {
		log.Error().Err(err).Msg("command failed")
	}
	return err
}

package report

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"vsireport/internal/config"
	"vsireport/internal/reconcile"
	"vsireport/internal/report"
	"vsireport/internal/slapi"
	"vsireport/internal/snapshot"
	"vsireport/internal/stats"
)

type reportOptions struct {
	date        string
	noEmail     bool
	noExcel     bool
	skipPowerOn bool
}

// NewReportCmd creates the report command
func NewReportCmd() *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate the daily provisioning report",
		Long: `Generate the daily provisioning statistics report.

For every virtual server billed on the report day the command reconstructs
its billing-create, provisioning-complete and power-on timestamps, computes
latency deltas, and renders the distribution as a spreadsheet and HTML
email.

Examples:
  # Report for yesterday (the default)
  vsireport report

  # Report for a specific day
  vsireport report --date 05/01/2021

  # Build the spreadsheet but skip email delivery
  vsireport report --no-email`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}

			day, err := resolveReportDate(opts.date, time.Now())
			if err != nil {
				return err
			}

			return run(cmd.Context(), cfg, day, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.date, "date", "d", "", "Date to generate report for (mm/dd/yyyy), defaults to yesterday")
	cmd.Flags().BoolVar(&opts.noEmail, "no-email", false, "Skip email delivery")
	cmd.Flags().BoolVar(&opts.noExcel, "no-excel", false, "Skip spreadsheet generation")
	cmd.Flags().BoolVar(&opts.skipPowerOn, "skip-poweron", false, "Skip the event-log power-on lookup")

	return cmd
}

// resolveReportDate picks the report day: yesterday unless overridden.
func resolveReportDate(override string, now time.Time) (time.Time, error) {
	if override == "" {
		return now.AddDate(0, 0, -1), nil
	}
	day, err := time.Parse("01/02/2006", override)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q (want mm/dd/yyyy): %w", override, err)
	}
	return day, nil
}

func run(ctx context.Context, cfg *config.Config, day time.Time, opts *reportOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	date := day.Format("01/02/2006")
	log.Info().Str("date", date).Msg("Running daily provisioning report")

	client := slapi.NewClient(cfg.API)

	var snapshots snapshot.Reader
	if cfg.Redis.Addr != "" {
		snapshots = snapshot.NewRedisStore(cfg.Redis)
	} else {
		log.Warn().Msg("no snapshot store configured; records will not be enriched")
	}

	log.Info().Str("date", date).Msg("Getting invoice list for account")
	invoices, err := client.InvoicesForDay(ctx, day)
	if err != nil {
		return err
	}

	builder := &reconcile.Builder{
		API:         client,
		Snapshots:   snapshots,
		SkipPowerOn: opts.skipPowerOn,
	}

	var records []reconcile.Record
	bar := progressbar.Default(int64(len(invoices)), "invoices")
	for _, invoice := range invoices {
		recs, err := builder.BuildInvoice(ctx, invoice.ID)
		if err != nil {
			return err
		}
		records = append(records, recs...)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	data := buildData(date, records)

	workbook := ""
	if len(records) > 0 && !opts.noExcel {
		workbook = report.Filename(day)
		log.Info().Str("file", workbook).Msg("Creating Excel file")
		if err := report.WriteWorkbook(workbook, records, data.Pivot, data.ByImage); err != nil {
			return err
		}
	}
	if len(records) == 0 {
		log.Warn().Str("date", date).Msg("No invoices found")
	}

	if !opts.noEmail && cfg.SMTP.Host != "" {
		if err := dispatch(cfg.SMTP, data, workbook); err != nil {
			// Dispatch is the last step; a failure is logged, not fatal.
			log.Error().Err(err).Msg("email dispatch failed")
		}
	}

	report.PrintSummary(os.Stdout, data)
	log.Info().Str("date", date).Msg("Finished daily provisioning report job")
	return nil
}

func buildData(date string, records []reconcile.Record) report.Data {
	deltas := make([]float64, 0, len(records))
	for _, rec := range records {
		deltas = append(deltas, rec.ProvisionedDelta)
	}

	return report.Data{
		Date:       date,
		HasRecords: len(records) > 0,
		Stats:      stats.Describe(deltas),
		Pivot:      stats.Pivot(records, true),
		ByImage:    true,
		Dist:       stats.Distribute(records),
	}
}

func dispatch(smtpCfg config.SMTPConfig, data report.Data, workbook string) error {
	mailer, err := report.NewMailer(smtpCfg)
	if err != nil {
		return err
	}

	body, err := report.RenderHTML(data)
	if err != nil {
		return err
	}

	log.Info().Msg("Sending report via email")
	if err := mailer.Send(smtpCfg.Subject, body, workbook); err != nil {
		return err
	}

	// The workbook only exists locally for the attachment; remove it once
	// delivery succeeded.
	if workbook != "" {
		if err := os.Remove(workbook); err != nil {
			log.Error().Err(err).Str("file", workbook).Msg("could not delete report file")
		} else {
			log.Info().Str("file", workbook).Msg("report file deleted after delivery")
		}
	}
	return nil
}

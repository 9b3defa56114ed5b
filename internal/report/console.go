package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	titleColor = color.New(color.Bold)
	labelColor = color.New(color.FgCyan)
	alertColor = color.New(color.FgRed, color.Bold)
	okColor    = color.New(color.FgGreen)
	mutedColor = color.New(color.Faint)
)

// PrintSummary writes a short operator-facing summary of the run to w.
func PrintSummary(w io.Writer, data Data) {
	titleColor.Fprintf(w, "Provisioning report for %s\n", data.Date)

	if !data.HasRecords {
		mutedColor.Fprintln(w, "No invoices found for this date.")
		return
	}

	labelColor.Fprint(w, "Records: ")
	fmt.Fprintf(w, "%d\n", data.Dist.Total)
	labelColor.Fprint(w, "Mean provisioning minutes: ")
	fmt.Fprintf(w, "%s\n", formatFloat(data.Stats.Mean, 1))

	labelColor.Fprint(w, "Distribution: ")
	for i, bucket := range data.Buckets() {
		if i > 0 {
			fmt.Fprint(w, "  ")
		}
		fmt.Fprintf(w, "%s=%d", bucket.Label, bucket.Count)
	}
	fmt.Fprintln(w)

	if data.Dist.NotAllocated > 0 {
		alertColor.Fprintf(w, "Not allocated within SLA: %d\n", data.Dist.NotAllocated)
	} else {
		okColor.Fprintln(w, "All records allocated within SLA.")
	}
}

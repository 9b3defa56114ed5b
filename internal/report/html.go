package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"
	"strconv"

	"vsireport/internal/stats"
)

//go:embed templates/*.html
var templateFS embed.FS

// Data is everything the HTML body and console summary render.
type Data struct {
	Date       string
	HasRecords bool
	Stats      stats.Summary
	Pivot      []stats.PivotRow
	ByImage    bool
	Dist       stats.Distribution
}

// Bucket pairs a distribution bucket with its label for rendering.
type Bucket struct {
	Label string
	Count int
}

// Buckets returns the distribution buckets in report order.
func (d Data) Buckets() []Bucket {
	out := make([]Bucket, len(d.Dist.Buckets))
	for i, count := range d.Dist.Buckets {
		out[i] = Bucket{Label: stats.BucketLabels[i], Count: count}
	}
	return out
}

var funcs = template.FuncMap{
	"f1": func(v float64) string { return formatFloat(v, 1) },
	"f3": func(v float64) string { return formatFloat(v, 3) },
}

var htmlTemplates = template.Must(
	template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"),
)

func formatFloat(v float64, prec int) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// RenderHTML produces the email body: statistics, SLA, distribution and
// pivot tables, or the fixed no-invoices message on a zero-result day.
func RenderHTML(data Data) (string, error) {
	var buf bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&buf, "daily.html", data); err != nil {
		return "", fmt.Errorf("render report body: %w", err)
	}
	return buf.String(), nil
}

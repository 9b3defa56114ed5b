// Package stats aggregates a day's reconciled records: descriptive
// statistics, datacenter/image pivots and the fixed-bucket latency
// distribution. Every function is a pure pass over the record sequence.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"vsireport/internal/reconcile"
)

// Summary holds the descriptive statistics over the provisioning deltas,
// matching the count/mean/std/min/quartiles/max shape of the report.
type Summary struct {
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
}

// Describe computes summary statistics over a value set. Quartiles use
// linear interpolation; the standard deviation is the sample deviation and
// is NaN for fewer than two values.
func Describe(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	return Summary{
		Count:  len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Std:    stat.StdDev(sorted, nil),
		Min:    sorted[0],
		Q1:     stat.Quantile(0.25, stat.LinInterp, sorted, nil),
		Median: stat.Quantile(0.5, stat.LinInterp, sorted, nil),
		Q3:     stat.Quantile(0.75, stat.LinInterp, sorted, nil),
		Max:    sorted[len(sorted)-1],
	}
}

// PivotRow is one group of the datacenter (or datacenter × image) pivot
// over the provisioning delta. The grand-total row uses "All" as its
// datacenter, mirroring the original report.
type PivotRow struct {
	Datacenter string
	Image      string
	Count      int
	Min        float64
	Mean       float64
	Std        float64
	Max        float64
}

// TotalLabel names the pivot's grand-total row.
const TotalLabel = "All"

type pivotKey struct {
	datacenter string
	image      string
}

// Pivot groups records by datacenter, and additionally by template image
// when byImage is set, aggregating count/min/mean/std/max of the
// provisioning delta. The grand-total row is appended last.
func Pivot(records []reconcile.Record, byImage bool) []PivotRow {
	if len(records) == 0 {
		return nil
	}

	groups := make(map[pivotKey][]float64)
	for _, rec := range records {
		key := pivotKey{datacenter: rec.Datacenter}
		if byImage {
			key.image = rec.TemplateImage
		}
		groups[key] = append(groups[key], rec.ProvisionedDelta)
	}

	keys := make([]pivotKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].datacenter != keys[j].datacenter {
			return keys[i].datacenter < keys[j].datacenter
		}
		return keys[i].image < keys[j].image
	})

	rows := make([]PivotRow, 0, len(keys)+1)
	for _, key := range keys {
		rows = append(rows, pivotRow(key.datacenter, key.image, groups[key]))
	}

	all := make([]float64, 0, len(records))
	for _, rec := range records {
		all = append(all, rec.ProvisionedDelta)
	}
	rows = append(rows, pivotRow(TotalLabel, "", all))

	return rows
}

func pivotRow(datacenter, image string, values []float64) PivotRow {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return PivotRow{
		Datacenter: datacenter,
		Image:      image,
		Count:      len(sorted),
		Min:        sorted[0],
		Mean:       stat.Mean(sorted, nil),
		Std:        stat.StdDev(sorted, nil),
		Max:        sorted[len(sorted)-1],
	}
}

// BucketLabels names the fixed latency buckets in report order.
var BucketLabels = [6]string{"0to30", "31-60", "61-90", "91-120", "121-360", "gt360"}

// bucketEdges are the lower bounds of buckets 1..5 in minutes; each bucket
// is the half-open interval [lower, nextLower), so 30.99 and 31 land in
// adjacent buckets.
var bucketEdges = [5]float64{31, 61, 91, 121, 361}

// Distribution is the day's latency histogram plus the SLA counter.
type Distribution struct {
	// Total counts every reconciled record, whether or not it was
	// distributed into a bucket.
	Total int
	// Buckets holds the per-range counts over the provisioning delta.
	Buckets [6]int
	// Distributed is the sum of the bucket counts.
	Distributed int
	// NotAllocated counts records whose power-on delta exceeded 30
	// minutes, reported as "not allocated within SLA".
	NotAllocated int
}

// Distribute buckets the provisioning deltas. Records without a found
// power-on event are counted in the total but excluded from the buckets;
// the SLA counter depends only on the power-on delta.
func Distribute(records []reconcile.Record) Distribution {
	var d Distribution
	for _, rec := range records {
		d.Total++
		if rec.PowerOnDelta > 30 {
			d.NotAllocated++
		}
		if rec.PoweredOn == nil {
			continue
		}
		idx, ok := bucketIndex(rec.ProvisionedDelta)
		if !ok {
			continue
		}
		d.Buckets[idx]++
		d.Distributed++
	}
	return d
}

func bucketIndex(delta float64) (int, bool) {
	if delta < 0 || math.IsNaN(delta) {
		return 0, false
	}
	for i, edge := range bucketEdges {
		if delta < edge {
			return i, true
		}
	}
	return len(bucketEdges), true
}

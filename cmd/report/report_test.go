package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vsireport/internal/reconcile"
)

func TestResolveReportDateDefaultsToYesterday(t *testing.T) {
	now := time.Date(2021, 5, 2, 9, 30, 0, 0, time.UTC)

	day, err := resolveReportDate("", now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, -1), day)
}

func TestResolveReportDateOverride(t *testing.T) {
	day, err := resolveReportDate("05/01/2021", time.Now())
	require.NoError(t, err)

	assert.Equal(t, 2021, day.Year())
	assert.Equal(t, time.May, day.Month())
	assert.Equal(t, 1, day.Day())
}

func TestResolveReportDateInvalid(t *testing.T) {
	_, err := resolveReportDate("2021-05-01", time.Now())
	assert.ErrorContains(t, err, "invalid --date")
}

func TestNewReportCmdFlags(t *testing.T) {
	cmd := NewReportCmd()

	assert.Equal(t, "report", cmd.Use)
	for _, name := range []string{"date", "no-email", "no-excel", "skip-poweron"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag %s should be registered", name)
	}
}

func TestBuildDataEmpty(t *testing.T) {
	data := buildData("05/01/2021", nil)

	assert.Equal(t, "05/01/2021", data.Date)
	assert.False(t, data.HasRecords)
	assert.Zero(t, data.Stats.Count)
	assert.Nil(t, data.Pivot)
}

func TestBuildData(t *testing.T) {
	poweredOn := time.Now()
	records := []reconcile.Record{
		{Datacenter: "dal10", TemplateImage: "centos8", ProvisionedDelta: 10, PowerOnDelta: 5, PoweredOn: &poweredOn},
		{Datacenter: "dal10", TemplateImage: "centos8", ProvisionedDelta: 20, PowerOnDelta: 40, PoweredOn: &poweredOn},
	}

	data := buildData("05/01/2021", records)

	assert.True(t, data.HasRecords)
	assert.Equal(t, 2, data.Stats.Count)
	assert.InDelta(t, 15.0, data.Stats.Mean, 1e-9)
	assert.True(t, data.ByImage)
	assert.Equal(t, 2, data.Dist.Total)
	assert.Equal(t, 1, data.Dist.NotAllocated)
	require.NotEmpty(t, data.Pivot)
	assert.Equal(t, "dal10", data.Pivot[0].Datacenter)
}

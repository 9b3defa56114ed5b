package report

import (
	"fmt"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	"vsireport/internal/reconcile"
	"vsireport/internal/stats"
)

// Filename returns the date-encoded workbook name for a report day, e.g.
// daily05012021.xlsx.
func Filename(day time.Time) string {
	return "daily" + day.Format("01022006") + ".xlsx"
}

var detailHeaders = []string{
	"InvoiceId", "BillingItemId", "GuestId", "Datacenter", "Router", "Vlan",
	"IpAddress", "TemplateImage", "Product", "Cores", "OS", "Memory", "Disk",
	"Hostname", "CreateDate", "CreateTime", "PowerOnDate", "PowerOnTime",
	"PowerOnDelta", "ProvisionedDate", "ProvisionedTime", "ProvisionedDelta",
}

// WriteWorkbook writes the Detail and Image_Pivot sheets to path.
func WriteWorkbook(path string, records []reconcile.Record, pivot []stats.PivotRow, byImage bool) error {
	f := excelize.NewFile()
	defer f.Close()

	const detailSheet = "Detail"
	if err := f.SetSheetName("Sheet1", detailSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet("Image_Pivot"); err != nil {
		return err
	}

	for col, header := range detailHeaders {
		if err := setCell(f, detailSheet, col+1, 1, header); err != nil {
			return err
		}
	}
	for i, rec := range records {
		row := i + 2
		values := []interface{}{
			rec.InvoiceID, rec.BillingItemID, rec.GuestIDDisplay(),
			rec.Datacenter, rec.Router, rec.VLAN, rec.IPAddress,
			rec.TemplateImage, rec.Product, rec.CoresDisplay(),
			rec.OSDisplay(), rec.MemoryDisplay(), rec.DiskDisplay(),
			rec.Hostname, rec.CreateDateDisplay(), rec.CreateTimeDisplay(),
			rec.PowerOnDateDisplay(), rec.PowerOnTimeDisplay(), rec.PowerOnDelta,
			rec.ProvisionedDateDisplay(), rec.ProvisionedTimeDisplay(), rec.ProvisionedDelta,
		}
		for col, value := range values {
			if err := setCell(f, detailSheet, col+1, row, value); err != nil {
				return err
			}
		}
	}

	if err := writePivotSheet(f, pivot, byImage); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write workbook %s: %w", path, err)
	}
	return nil
}

func writePivotSheet(f *excelize.File, pivot []stats.PivotRow, byImage bool) error {
	const sheet = "Image_Pivot"

	headers := []string{"Datacenter", "count", "min", "mean", "std", "max"}
	if byImage {
		headers = []string{"Datacenter", "Image", "count", "min", "mean", "std", "max"}
	}
	for col, header := range headers {
		if err := setCell(f, sheet, col+1, 1, header); err != nil {
			return err
		}
	}

	for i, row := range pivot {
		values := []interface{}{row.Datacenter}
		if byImage {
			values = append(values, row.Image)
		}
		values = append(values, row.Count, row.Min, row.Mean, row.Std, row.Max)
		for col, value := range values {
			if err := setCell(f, sheet, col+1, i+2, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	// Excel has no NaN literal; render the sentinel string instead.
	if v, ok := value.(float64); ok && math.IsNaN(v) {
		value = "NaN"
	}
	return f.SetCellValue(sheet, cell, value)
}

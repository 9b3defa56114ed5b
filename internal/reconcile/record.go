// Package reconcile reconstructs the provisioning timeline of each billed
// virtual server by joining invoice detail, billing-item detail and the
// audit event log, enriched with the collector's snapshots.
package reconcile

import (
	"strconv"
	"time"

	"vsireport/internal/timeutil"
)

// NotFound is the literal rendered for attributes that could not be
// resolved from any source.
const NotFound = "Not Found"

// Record is the reconciled view of one provisioned virtual server: the
// three timestamps (billing create, provisioning completion, actual power
// on) and the attributes the report pivots on. Optional fields are nil
// pointers internally; the display sentinels appear only at the rendering
// boundary.
type Record struct {
	InvoiceID     int
	BillingItemID int

	// GuestID is nil when the billing item carried no provisioning
	// transaction.
	GuestID *int

	Datacenter string
	Product    string
	Cores      *int
	OS         *string
	Memory     *string
	Disk       *string
	Hostname   string

	// Enrichment from the snapshot store; empty strings on a miss.
	Router        string
	VLAN          string
	IPAddress     string
	TemplateImage string

	Created time.Time

	// PoweredOn is nil when no qualifying power-on event was found; its
	// delta is then reported as zero by policy.
	PoweredOn    *time.Time
	PowerOnDelta float64

	Provisioned      time.Time
	ProvisionedDelta float64
}

// GuestIDDisplay renders the guest id, using the "0" sentinel when the
// provisioning transaction was absent.
func (r *Record) GuestIDDisplay() string {
	if r.GuestID == nil {
		return "0"
	}
	return strconv.Itoa(*r.GuestID)
}

// CoresDisplay renders the physical core count, empty when the nested
// product was absent.
func (r *Record) CoresDisplay() string {
	if r.Cores == nil {
		return ""
	}
	return strconv.Itoa(*r.Cores)
}

func display(s *string) string {
	if s == nil {
		return NotFound
	}
	return *s
}

// OSDisplay renders the OS description.
func (r *Record) OSDisplay() string { return display(r.OS) }

// MemoryDisplay renders the RAM description.
func (r *Record) MemoryDisplay() string { return display(r.Memory) }

// DiskDisplay renders the first-disk description.
func (r *Record) DiskDisplay() string { return display(r.Disk) }

// CreateDateDisplay renders the billing-create date.
func (r *Record) CreateDateDisplay() string { return timeutil.FormatDate(r.Created) }

// CreateTimeDisplay renders the billing-create time.
func (r *Record) CreateTimeDisplay() string { return timeutil.FormatTime(r.Created) }

// PowerOnDateDisplay renders the power-on date or the not-found sentinel.
func (r *Record) PowerOnDateDisplay() string {
	if r.PoweredOn == nil {
		return NotFound
	}
	return timeutil.FormatDate(*r.PoweredOn)
}

// PowerOnTimeDisplay renders the power-on time or the not-found sentinel.
func (r *Record) PowerOnTimeDisplay() string {
	if r.PoweredOn == nil {
		return NotFound
	}
	return timeutil.FormatTime(*r.PoweredOn)
}

// ProvisionedDateDisplay renders the provisioning-completion date.
func (r *Record) ProvisionedDateDisplay() string { return timeutil.FormatDate(r.Provisioned) }

// ProvisionedTimeDisplay renders the provisioning-completion time.
func (r *Record) ProvisionedTimeDisplay() string { return timeutil.FormatTime(r.Provisioned) }

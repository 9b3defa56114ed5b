package reconcile

import (
	"context"
	"errors"
	"strconv"

	"github.com/rs/zerolog/log"

	"vsireport/internal/slapi"
	"vsireport/internal/snapshot"
	"vsireport/internal/timeutil"
)

// guestCoreCategory is the category code of the one line item per invoice
// that represents a virtual-server provisioning charge.
const guestCoreCategory = "guest_core"

// API is the subset of the query layer the builder consumes.
type API interface {
	InvoiceDetail(ctx context.Context, id int) (*slapi.Invoice, error)
	BillingItemDetail(ctx context.Context, itemID int) (*slapi.BillingItemDetail, error)
	PowerOnEvents(ctx context.Context, guestID int) ([]slapi.EventLogEntry, error)
}

// Builder turns each qualifying invoice line item into a Record. Snapshots
// is optional; without it enrichment fields stay empty.
type Builder struct {
	API         API
	Snapshots   snapshot.Reader
	SkipPowerOn bool
}

// BuildInvoice fetches an invoice's detail and emits one record per
// guest_core line item. An invoice with no qualifying items contributes
// nothing. A line item whose essential create timestamp cannot be parsed
// is logged and skipped rather than failing the run.
func (b *Builder) BuildInvoice(ctx context.Context, invoiceID int) ([]Record, error) {
	log.Info().Int("invoice_id", invoiceID).Msg("Looking up invoice")

	detail, err := b.API.InvoiceDetail(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	var records []Record
	for _, item := range detail.TopLevelItems {
		if item.CategoryCode != guestCoreCategory {
			continue
		}
		rec, err := b.buildItem(ctx, detail.ID, item)
		if err != nil {
			log.Warn().Err(err).
				Int("invoice_id", detail.ID).
				Int("item_id", item.ID).
				Msg("skipping unreconcilable line item")
			continue
		}
		records = append(records, *rec)
	}
	return records, nil
}

func (b *Builder) buildItem(ctx context.Context, invoiceID int, item slapi.LineItem) (*Record, error) {
	created, err := timeutil.ParseISO(item.CreateDate)
	if err != nil {
		return nil, err
	}

	rec := &Record{
		InvoiceID:     invoiceID,
		BillingItemID: item.BillingItemID,
		Hostname:      item.HostName + "." + item.DomainName,
		Product:       item.Description,
		Created:       created,
	}
	if item.Location != nil {
		rec.Datacenter = item.Location.Name
	}
	if item.Product != nil {
		rec.Product = item.Product.Description
		cores := item.Product.TotalPhysicalCoreCount
		rec.Cores = &cores
	}

	log.Info().Int("item_id", item.ID).Msg("Looking up billing invoice detail")
	detail, err := b.API.BillingItemDetail(ctx, item.ID)
	if err != nil {
		return nil, err
	}

	rec.OS = childDescription(detail.FilteredAssociatedChildren, "os")
	rec.Memory = childDescription(detail.FilteredAssociatedChildren, "ram")
	rec.Disk = childDescription(detail.FilteredAssociatedChildren, "guest_disk0")

	// Fallback: without a provisioning transaction the line item's create
	// time stands in for the provisioned instant and the guest id stays at
	// its unknown sentinel.
	rec.Provisioned = created
	if detail.BillingItem != nil && detail.BillingItem.ProvisionTransaction != nil {
		tx := detail.BillingItem.ProvisionTransaction
		guestID := tx.GuestID
		rec.GuestID = &guestID
		if provisioned, err := timeutil.ParseISO(tx.ModifyDate); err == nil {
			rec.Provisioned = provisioned
		}
	}
	rec.ProvisionedDelta = timeutil.DeltaMinutes(rec.Provisioned, rec.Created)

	b.resolvePowerOn(ctx, rec)
	b.enrich(ctx, rec)

	return rec, nil
}

// resolvePowerOn finds the earliest "Power On" event at or before
// provisioning completion. The candidate starts at the provisioning
// timestamp; only events strictly earlier than the current best replace
// it. No qualifying event leaves power-on "not found" with a zero delta —
// a policy decision, not a failure.
func (b *Builder) resolvePowerOn(ctx context.Context, rec *Record) {
	if b.SkipPowerOn || rec.GuestID == nil {
		return
	}

	log.Info().Int("guest_id", *rec.GuestID).Msg("Searching event log for power-on detail")
	events, err := b.API.PowerOnEvents(ctx, *rec.GuestID)
	if err != nil {
		code, msg := slapi.Fault(err)
		log.Error().
			Str("fault_code", code).
			Str("fault_string", msg).
			Int("guest_id", *rec.GuestID).
			Msg("Event_Log::getAllObjects failed")
		return
	}

	best := rec.Provisioned
	found := false
	for _, event := range events {
		if event.EventName != "Power On" {
			continue
		}
		at, err := timeutil.ParseEventLog(event.EventCreateDate)
		if err != nil {
			log.Warn().Err(err).Int("guest_id", *rec.GuestID).Msg("unparseable event timestamp")
			continue
		}
		if at.Before(best) {
			best = at
			found = true
		}
	}

	if !found {
		log.Warn().Int("guest_id", *rec.GuestID).Msg("power-on detail not found")
		return
	}
	poweredOn := best.In(timeutil.Central)
	rec.PoweredOn = &poweredOn
	rec.PowerOnDelta = timeutil.DeltaMinutes(poweredOn, rec.Created)
}

// enrich joins the snapshot captured while the guest was provisioning. A
// store miss yields empty strings; the record is still emitted.
func (b *Builder) enrich(ctx context.Context, rec *Record) {
	if b.Snapshots == nil || rec.GuestID == nil {
		return
	}

	doc, err := b.Snapshots.Get(ctx, strconv.Itoa(*rec.GuestID))
	if err != nil {
		if !errors.Is(err, snapshot.ErrNotFound) {
			log.Warn().Err(err).Int("guest_id", *rec.GuestID).Msg("snapshot lookup failed")
		}
		return
	}

	rec.Router = doc.Router
	rec.VLAN = doc.VLAN
	rec.IPAddress = doc.BackendIP
	rec.TemplateImage = doc.TemplateImage
}

func childDescription(children []slapi.ChildItem, categoryCode string) *string {
	for _, child := range children {
		if child.CategoryCode == categoryCode {
			desc := child.Description
			return &desc
		}
	}
	return nil
}

package snapshot

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"vsireport/internal/slapi"
	"vsireport/internal/timeutil"
)

// Inventory lists the live hourly virtual guests.
type Inventory interface {
	HourlyGuests(ctx context.Context) ([]slapi.VirtualGuest, error)
}

// Reconciler snapshots every guest that is still being provisioned. It runs
// on its own schedule, independent of the report job, and only writes to
// the store the report later reads.
type Reconciler struct {
	API   Inventory
	Store Store

	// Now is overridable for tests; nil means time.Now.
	Now func() time.Time
}

// Run lists the hourly guests, filters to those whose provision date is
// still empty, and upserts one snapshot per guest. It returns the number of
// snapshots written. Failing to enumerate the guest list aborts the run;
// individual write failures are logged and dropped.
func (r *Reconciler) Run(ctx context.Context) (int, error) {
	guests, err := r.API.HourlyGuests(ctx)
	if err != nil {
		code, msg := slapi.Fault(err)
		log.Error().
			Str("fault_code", code).
			Str("fault_string", msg).
			Msg("Account::getHourlyVirtualGuests failed")
		return 0, err
	}
	log.Info().Int("count", len(guests)).Msg("Found VirtualGuests")

	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}

	written := 0
	for _, guest := range guests {
		// An empty provision date marks a job still being provisioned.
		if guest.ProvisionDate != "" {
			continue
		}

		doc := DocumentFor(guest, now)
		log.Info().
			Str("guest_id", doc.GuestID).
			Str("image", doc.TemplateImage).
			Str("router", doc.Router).
			Str("vlan", doc.VLAN).
			Msg("VSI provisioning in progress")

		if r.Store == nil {
			continue
		}
		if err := r.Store.Upsert(ctx, doc); err != nil {
			log.Error().Err(err).Str("guest_id", doc.GuestID).Msg("failed to save snapshot")
			continue
		}
		written++
	}
	return written, nil
}

// DocumentFor extracts the snapshot attributes from a live guest record.
// Missing nested data resolves to defined defaults, never an error.
func DocumentFor(guest slapi.VirtualGuest, now time.Time) *Document {
	doc := &Document{
		GuestID:    strconv.Itoa(guest.ID),
		DocType:    DocType,
		Hostname:   guest.Hostname,
		FQDN:       guest.FullyQualifiedDomainName,
		BackendIP:  guest.PrimaryBackendIPAddress,
		MaxCPU:     guest.MaxCPU,
		MaxMemory:  guest.MaxMemory,
		ObservedAt: now,
	}

	if guest.BlockDeviceTemplateGroup != nil {
		doc.TemplateImage = guest.BlockDeviceTemplateGroup.Name
	}
	if guest.Datacenter != nil {
		doc.Datacenter = guest.Datacenter.Name
	}
	if guest.ServerRoom != nil {
		doc.ServerRoom = guest.ServerRoom.Name
	}
	if len(guest.NetworkVlans) > 0 {
		doc.VLAN = strconv.Itoa(guest.NetworkVlans[0].VlanNumber)
	}
	if len(guest.BackendRouters) > 0 {
		doc.Router = guest.BackendRouters[0].Hostname
	}

	if tx := guest.ActiveTransaction; tx != nil {
		if tx.TransactionStatus != nil {
			doc.TransactionStatus = tx.TransactionStatus.Name
		}
		doc.ElapsedMinutes = math.Round(float64(tx.ElapsedSeconds)/60*10) / 10
		if started, err := timeutil.ParseISO(tx.CreateDate); err == nil {
			doc.TransactionStarted = started.Format(time.RFC3339)
			doc.InFlightMinutes = timeutil.DeltaMinutes(now, started)
		}
	}

	return doc
}

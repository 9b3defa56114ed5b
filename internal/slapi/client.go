// Package slapi is the query layer over the IBM Cloud Classic (SoftLayer)
// billing and inventory API. It issues masked, filtered queries through the
// official session transport and returns typed records; transient failures
// on the reconciliation read paths are retried per the configured policy.
package slapi

import (
	"context"
	"time"

	"github.com/softlayer/softlayer-go/filter"
	"github.com/softlayer/softlayer-go/session"
	"github.com/softlayer/softlayer-go/sl"

	"vsireport/internal/config"
)

const (
	invoiceListMask   = "createDate,typeCode,id,invoiceTotalAmount"
	invoiceDetailMask = "id,closedDate,invoiceTopLevelItems,invoiceTopLevelItems.product,invoiceTopLevelItems.location"
	billingItemMask   = "filteredAssociatedChildren.product,filteredAssociatedChildren.categoryCode," +
		"filteredAssociatedChildren.description,billingItem.cancellationDate,billingItem.provisionTransaction"
	eventLogMask = "objectId,eventName,eventCreateDate"
	guestMask    = "id,provisionDate,hostname,fullyQualifiedDomainName,datacenter.name,serverRoom.name," +
		"primaryBackendIpAddress,networkVlans,backendRouters,blockDeviceTemplateGroup,maxCpu,maxMemory," +
		"activeTransaction[createDate,elapsedSeconds,transactionStatus.name]"
)

// Client wraps an authenticated API session with the retry policy and the
// cooperative rate-limit pacing used by the reconciliation jobs.
type Client struct {
	sess  *session.Session
	retry RetryPolicy
	pacer *Pacer
}

// NewClient builds a client from the API configuration.
func NewClient(cfg config.APIConfig) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = session.DefaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 240 * time.Second
	}

	return &Client{
		sess: &session.Session{
			UserName: cfg.Username,
			APIKey:   cfg.APIKey,
			Endpoint: endpoint,
			Timeout:  timeout,
		},
		retry: RetryPolicy{MaxAttempts: cfg.MaxAttempts, Delay: cfg.RetryDelay},
		pacer: NewPacer(cfg.DetailPause),
	}
}

// InvoicesForDay lists the account's ONE-TIME-CHARGE and NEW invoices whose
// create date falls on the given report day.
func (c *Client) InvoicesForDay(ctx context.Context, day time.Time) ([]Invoice, error) {
	start := day.Format("01/02/2006") + " 0:0:0"
	end := day.Format("01/02/2006") + " 23:59:59"

	objectFilter := filter.New(
		filter.Path("invoices.createDate").DateBetween(start, end),
		filter.Path("invoices.typeCode").In("ONE-TIME-CHARGE", "NEW"),
	).Build()

	var invoices []Invoice
	err := c.retry.Do(ctx, "Account::getInvoices", func() error {
		invoices = invoices[:0]
		return c.sess.DoRequest("SoftLayer_Account", "getInvoices", nil,
			&sl.Options{Mask: invoiceListMask, Filter: objectFilter}, &invoices)
	})
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// InvoiceDetail fetches one invoice with its nested top-level line items.
func (c *Client) InvoiceDetail(ctx context.Context, id int) (*Invoice, error) {
	var inv Invoice
	err := c.retry.Do(ctx, "Billing_Invoice::getObject", func() error {
		c.pacer.Wait()
		inv = Invoice{}
		return c.sess.DoRequest("SoftLayer_Billing_Invoice", "getObject", nil,
			&sl.Options{Id: &id, Mask: invoiceDetailMask}, &inv)
	})
	if err != nil {
		return nil, err
	}
	if inv.ID == 0 {
		inv.ID = id
	}
	return &inv, nil
}

// BillingItemDetail fetches a line item's child cost components and billing
// item with its optional provisioning transaction.
func (c *Client) BillingItemDetail(ctx context.Context, itemID int) (*BillingItemDetail, error) {
	var detail BillingItemDetail
	err := c.retry.Do(ctx, "Billing_Invoice_Item::getObject", func() error {
		c.pacer.Wait()
		detail = BillingItemDetail{}
		return c.sess.DoRequest("SoftLayer_Billing_Invoice_Item", "getObject", nil,
			&sl.Options{Id: &itemID, Mask: billingItemMask}, &detail)
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// PowerOnEvents lists the audit-log "Power On" entries for a guest. Unlike
// the invoice paths this is a single attempt; a failure here degrades to
// "power-on not found" rather than stalling the run.
func (c *Client) PowerOnEvents(ctx context.Context, guestID int) ([]EventLogEntry, error) {
	c.pacer.Wait()

	objectFilter := filter.New(
		filter.Path("eventName").Eq("Power On"),
		filter.Path("objectId").Eq(guestID),
	).Build()

	var events []EventLogEntry
	err := c.sess.DoRequest("SoftLayer_Event_Log", "getAllObjects", nil,
		&sl.Options{Mask: eventLogMask, Filter: objectFilter}, &events)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// HourlyGuests lists every hourly-billed virtual guest with the placement,
// network and transaction fields the snapshot collector records. A failure
// here is fatal to the collector run; there is no downstream recovery
// without the guest list.
func (c *Client) HourlyGuests(ctx context.Context) ([]VirtualGuest, error) {
	var guests []VirtualGuest
	err := c.sess.DoRequest("SoftLayer_Account", "getHourlyVirtualGuests", nil,
		&sl.Options{Mask: guestMask}, &guests)
	if err != nil {
		return nil, err
	}
	return guests, nil
}

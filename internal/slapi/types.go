package slapi

// Typed views of the nested records the billing and inventory endpoints
// return. Only the fields named in the query masks are populated; optional
// nested records are pointers so absence is an explicit nil check rather
// than a dynamic key probe. Timestamps stay raw strings here and are
// normalized by the timeutil package.

// Invoice is a billing-period container with its top-level line items.
type Invoice struct {
	ID                 int        `json:"id"`
	TypeCode           string     `json:"typeCode"`
	CreateDate         string     `json:"createDate"`
	ClosedDate         string     `json:"closedDate"`
	InvoiceTotalAmount string     `json:"invoiceTotalAmount"`
	TopLevelItems      []LineItem `json:"invoiceTopLevelItems"`
}

// LineItem is one billed product within an invoice. Only items with
// category code "guest_core" represent a virtual-server provisioning
// charge.
type LineItem struct {
	ID            int          `json:"id"`
	BillingItemID int          `json:"billingItemId"`
	CategoryCode  string       `json:"categoryCode"`
	HostName      string       `json:"hostName"`
	DomainName    string       `json:"domainName"`
	Description   string       `json:"description"`
	CreateDate    string       `json:"createDate"`
	Location      *NamedEntity `json:"location"`
	Product       *Product     `json:"product"`
}

// Product carries the catalog description for a line item.
type Product struct {
	Description            string `json:"description"`
	TotalPhysicalCoreCount int    `json:"totalPhysicalCoreCount"`
}

// NamedEntity is a nested record we only need the name of.
type NamedEntity struct {
	Name string `json:"name"`
}

// BillingItemDetail is the expansion of a line item: its child cost
// components plus the billing item with an optional provisioning
// transaction.
type BillingItemDetail struct {
	FilteredAssociatedChildren []ChildItem  `json:"filteredAssociatedChildren"`
	BillingItem                *BillingItem `json:"billingItem"`
}

// ChildItem is an associated child cost component (OS, RAM, disk).
type ChildItem struct {
	CategoryCode string   `json:"categoryCode"`
	Description  string   `json:"description"`
	Product      *Product `json:"product"`
}

// BillingItem links a line item to its provisioning transaction when one
// was recorded. Absence of the transaction is a valid, expected state.
type BillingItem struct {
	CancellationDate     string                `json:"cancellationDate"`
	ProvisionTransaction *ProvisionTransaction `json:"provisionTransaction"`
}

// ProvisionTransaction records provisioning completion; its modify date is
// the "provisioned" instant.
type ProvisionTransaction struct {
	ID         int    `json:"id"`
	GuestID    int    `json:"guestId"`
	ModifyDate string `json:"modifyDate"`
}

// EventLogEntry is an audit-log record keyed by guest identifier.
type EventLogEntry struct {
	ObjectID        int    `json:"objectId"`
	EventName       string `json:"eventName"`
	EventCreateDate string `json:"eventCreateDate"`
}

// VirtualGuest is the live inventory view of a virtual server. An empty
// ProvisionDate marks a guest still being provisioned.
type VirtualGuest struct {
	ID                       int                `json:"id"`
	Hostname                 string             `json:"hostname"`
	FullyQualifiedDomainName string             `json:"fullyQualifiedDomainName"`
	ProvisionDate            string             `json:"provisionDate"`
	Datacenter               *NamedEntity       `json:"datacenter"`
	ServerRoom               *NamedEntity       `json:"serverRoom"`
	PrimaryBackendIPAddress  string             `json:"primaryBackendIpAddress"`
	NetworkVlans             []NetworkVlan      `json:"networkVlans"`
	BackendRouters           []BackendRouter    `json:"backendRouters"`
	BlockDeviceTemplateGroup *NamedEntity       `json:"blockDeviceTemplateGroup"`
	MaxCPU                   int                `json:"maxCpu"`
	MaxMemory                int                `json:"maxMemory"`
	ActiveTransaction        *ActiveTransaction `json:"activeTransaction"`
}

// NetworkVlan is a VLAN placement entry.
type NetworkVlan struct {
	VlanNumber int `json:"vlanNumber"`
}

// BackendRouter is a backend router placement entry.
type BackendRouter struct {
	Hostname string `json:"hostname"`
}

// ActiveTransaction is the currently running provisioning transaction of an
// in-flight guest.
type ActiveTransaction struct {
	CreateDate        string             `json:"createDate"`
	ElapsedSeconds    int                `json:"elapsedSeconds"`
	TransactionStatus *TransactionStatus `json:"transactionStatus"`
}

// TransactionStatus names the current step of a provisioning transaction.
type TransactionStatus struct {
	Name         string `json:"name"`
	FriendlyName string `json:"friendlyName"`
}

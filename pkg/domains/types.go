package domains

import "time"

// Operation names of the domains service.
const (
	OpListDomains             = "ListDomains"
	OpViewBilling             = "ViewBilling"
	OpListOperations          = "ListOperations"
	OpGetDomainDetail         = "GetDomainDetail"
	OpCheckDomainAvailability = "CheckDomainAvailability"
)

// MaxPageSize is the largest page the service returns for list operations.
// It is also the default page size.
const MaxPageSize = 20

// Domain is one registered domain as returned by ListDomains.
type Domain struct {
	DomainName   string     `json:"DomainName"`
	AutoRenew    *bool      `json:"AutoRenew,omitempty"`
	TransferLock *bool      `json:"TransferLock,omitempty"`
	Expiry       *time.Time `json:"Expiry,omitempty"`
}

// ListDomainsInput requests one page of registered domains.
type ListDomainsInput struct {
	Marker   *string `json:"Marker,omitempty"`
	MaxItems *int32  `json:"MaxItems,omitempty"`
}

// ListDomainsOutput is one page of registered domains.
type ListDomainsOutput struct {
	Domains        []Domain `json:"Domains"`
	NextPageMarker *string  `json:"NextPageMarker,omitempty"`
}

// BillingRecord is one billed operation.
type BillingRecord struct {
	DomainName string     `json:"DomainName"`
	Operation  string     `json:"Operation"`
	InvoiceID  string     `json:"InvoiceId"`
	BillDate   *time.Time `json:"BillDate,omitempty"`
	Price      float64    `json:"Price"`
}

// ViewBillingInput requests one page of billing records in [Start, End).
type ViewBillingInput struct {
	Start    *time.Time `json:"Start,omitempty"`
	End      *time.Time `json:"End,omitempty"`
	Marker   *string    `json:"Marker,omitempty"`
	MaxItems *int32     `json:"MaxItems,omitempty"`
}

// ViewBillingOutput is one page of billing records.
type ViewBillingOutput struct {
	BillingRecords []BillingRecord `json:"BillingRecords"`
	NextPageMarker *string         `json:"NextPageMarker,omitempty"`
}

// BillingFilter restricts billing enumeration to a time range.
type BillingFilter struct {
	Start *time.Time
	End   *time.Time
}

// OperationSummary describes one asynchronous registry operation.
type OperationSummary struct {
	OperationID   string     `json:"OperationId"`
	Status        string     `json:"Status"`
	Type          string     `json:"Type"`
	SubmittedDate *time.Time `json:"SubmittedDate,omitempty"`
}

// ListOperationsInput requests one page of operations.
type ListOperationsInput struct {
	SubmittedSince *time.Time `json:"SubmittedSince,omitempty"`
	Marker         *string    `json:"Marker,omitempty"`
	MaxItems       *int32     `json:"MaxItems,omitempty"`
}

// ListOperationsOutput is one page of operations.
type ListOperationsOutput struct {
	Operations     []OperationSummary `json:"Operations"`
	NextPageMarker *string            `json:"NextPageMarker,omitempty"`
}

// OperationsFilter restricts operation enumeration.
type OperationsFilter struct {
	SubmittedSince *time.Time
}

// Nameserver of a domain.
type Nameserver struct {
	Name    string   `json:"Name"`
	GlueIps []string `json:"GlueIps,omitempty"`
}

// GetDomainDetailInput names the domain to describe.
type GetDomainDetailInput struct {
	DomainName string `json:"DomainName"`
}

// GetDomainDetailOutput describes one domain.
type GetDomainDetailOutput struct {
	DomainName     string       `json:"DomainName"`
	Nameservers    []Nameserver `json:"Nameservers,omitempty"`
	AutoRenew      *bool        `json:"AutoRenew,omitempty"`
	RegistrarName  *string      `json:"RegistrarName,omitempty"`
	CreationDate   *time.Time   `json:"CreationDate,omitempty"`
	ExpirationDate *time.Time   `json:"ExpirationDate,omitempty"`
	StatusList     []string     `json:"StatusList,omitempty"`
}

// CheckDomainAvailabilityInput names the domain to check.
type CheckDomainAvailabilityInput struct {
	DomainName  string  `json:"DomainName"`
	IdnLangCode *string `json:"IdnLangCode,omitempty"`
}

// CheckDomainAvailabilityOutput reports availability, e.g. "AVAILABLE".
type CheckDomainAvailabilityOutput struct {
	Availability string `json:"Availability"`
}

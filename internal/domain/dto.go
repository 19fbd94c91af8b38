package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaginatedResponse wraps list responses with paging metadata
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// CreateJobRequest is the payload for creating a job.
// Routing is classified from the vendor at creation time and stored.
type CreateJobRequest struct {
	Title        string  `json:"title" validate:"required,max=200"`
	CustomerID   string  `json:"customerId" validate:"required,uuid"`
	VendorID     string  `json:"vendorId" validate:"omitempty,uuid"`
	DirectToShop bool    `json:"directToShop"`
	Quantity     int64   `json:"quantity" validate:"gte=0"`
	SellPrice    string  `json:"sellPrice" validate:"omitempty,numeric"`
	FinishedSize string  `json:"finishedSize" validate:"max=50"`
	Notes        string  `json:"notes" validate:"max=5000"`
}

// UpdateJobRequest carries editable job fields. Version is required so a
// stale client loses the optimistic-locking race instead of clobbering.
type UpdateJobRequest struct {
	Title        *string `json:"title" validate:"omitempty,max=200"`
	VendorID     *string `json:"vendorId" validate:"omitempty,uuid"`
	Quantity     *int64  `json:"quantity" validate:"omitempty,gte=0"`
	SellPrice    *string `json:"sellPrice" validate:"omitempty,numeric"`
	FinishedSize *string `json:"finishedSize" validate:"omitempty,max=50"`
	Notes        *string `json:"notes" validate:"omitempty,max=5000"`
	Version      int     `json:"version" validate:"required,gte=1"`
}

// SetIntermediaryCutRequest sets or clears the manual intermediary cut.
// Auto=true derives the cut as 35% of gross profit on each recompute.
type SetIntermediaryCutRequest struct {
	Amount *string `json:"amount" validate:"omitempty,numeric"`
	Auto   bool    `json:"auto"`
}

// RecordMilestoneRequest is the payload for recording a payment milestone.
type RecordMilestoneRequest struct {
	Milestone PaymentMilestone `json:"milestone" validate:"required"`
	Amount    *string          `json:"amount" validate:"omitempty,numeric"`
	Note      string           `json:"note" validate:"max=500"`
	At        *time.Time       `json:"at"`
}

// UnsetMilestoneRequest is the payload for reversing a milestone entry.
type UnsetMilestoneRequest struct {
	Milestone PaymentMilestone `json:"milestone" validate:"required"`
}

// OverrideStatusRequest sets a manual lifecycle status override.
type OverrideStatusRequest struct {
	Status JobStatus `json:"status" validate:"required"`
}

// UpdateReadinessRequest updates job-level readiness flags. Nil fields are
// left untouched.
type UpdateReadinessRequest struct {
	Artwork     *ReadinessState `json:"artwork"`
	DataFiles   *ReadinessState `json:"dataFiles"`
	MailingInfo *ReadinessState `json:"mailingInfo"`
	Materials   *ReadinessState `json:"materials"`
	Versions    *ReadinessState `json:"versions"`
}

// LineItemRequest creates or updates a line item. Exactly one of cost, price
// or markup drives each update; the others are recomputed.
type LineItemRequest struct {
	Description   string `json:"description" validate:"required,max=500"`
	Quantity      string `json:"quantity" validate:"required,numeric"`
	UnitCost      string `json:"unitCost" validate:"omitempty,numeric"`
	MarkupPercent string `json:"markupPercent" validate:"omitempty,numeric"`
	UnitPrice     string `json:"unitPrice" validate:"omitempty,numeric"`
}

// LineItemEditRequest applies a single driving edit to an existing line item.
type LineItemEditRequest struct {
	Field string `json:"field" validate:"required,oneof=cost price markup"`
	Value string `json:"value" validate:"required,numeric"`
}

// PurchaseOrderRequest creates or updates a purchase order.
type PurchaseOrderRequest struct {
	OriginParty       Party   `json:"originParty" validate:"required"`
	TargetParty       Party   `json:"targetParty" validate:"required"`
	VendorID          *string `json:"vendorId" validate:"omitempty,uuid"`
	BuyCost           string  `json:"buyCost" validate:"required,numeric"`
	PaperCPM          *string `json:"paperCpm" validate:"omitempty,numeric"`
	PrintCPM          *string `json:"printCpm" validate:"omitempty,numeric"`
	PaperCost         *string `json:"paperCost" validate:"omitempty,numeric"`
	PaperMarkup       *string `json:"paperMarkup" validate:"omitempty,numeric"`
	ManufacturingCost *string `json:"manufacturingCost" validate:"omitempty,numeric"`
	Notes             string  `json:"notes" validate:"max=1000"`
}

// JobComponentRequest creates or updates a job component.
type JobComponentRequest struct {
	Name           string          `json:"name" validate:"required,max=200"`
	SupplierID     *string         `json:"supplierId" validate:"omitempty,uuid"`
	ArtworkStatus  *ReadinessState `json:"artworkStatus"`
	MaterialStatus *ReadinessState `json:"materialStatus"`
	TrackingNumber *string         `json:"trackingNumber" validate:"omitempty,max=100"`
	Notes          *string         `json:"notes" validate:"omitempty,max=1000"`
}

// VendorRequest creates or updates a vendor.
type VendorRequest struct {
	Name               string `json:"name" validate:"required,max=200"`
	Email              string `json:"email" validate:"omitempty,email"`
	Phone              string `json:"phone" validate:"max=50"`
	Address            string `json:"address" validate:"max=500"`
	City               string `json:"city" validate:"max=100"`
	PostalCode         string `json:"postalCode" validate:"max=20"`
	IsPreferredPartner bool   `json:"isPreferredPartner"`
	Notes              string `json:"notes" validate:"max=5000"`
}

// CustomerRequest creates or updates a customer.
type CustomerRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	OrgNumber     string `json:"orgNumber" validate:"max=20"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone" validate:"max=50"`
	Address       string `json:"address" validate:"max=500"`
	City          string `json:"city" validate:"max=100"`
	PostalCode    string `json:"postalCode" validate:"max=20"`
	ContactPerson string `json:"contactPerson" validate:"max=200"`
}

// JobDTO is the API representation of a job.
type JobDTO struct {
	ID           uuid.UUID   `json:"id"`
	JobNumber    string      `json:"jobNumber"`
	Title        string      `json:"title"`
	CustomerID   uuid.UUID   `json:"customerId"`
	CustomerName string      `json:"customerName,omitempty"`
	VendorID     *uuid.UUID  `json:"vendorId,omitempty"`
	VendorName   string      `json:"vendorName,omitempty"`
	RoutingType  RoutingType `json:"routingType"`
	Quantity     int64       `json:"quantity"`
	SellPrice    string      `json:"sellPrice"`
	FinishedSize string      `json:"finishedSize,omitempty"`

	Status          JobStatus       `json:"status"`
	EffectiveStatus JobStatus       `json:"effectiveStatus"`
	Override        *StatusOverride `json:"override,omitempty"`

	Payments  PaymentStateDTO   `json:"payments"`
	Readiness ReadinessFlagsDTO `json:"readiness"`

	IntermediaryCut *string `json:"intermediaryCut,omitempty"`
	CutIsAuto       bool    `json:"cutIsAuto"`

	ProfitSplit *ProfitSplitDTO `json:"profitSplit,omitempty"`
	LineItems   []LineItemDTO   `json:"lineItems,omitempty"`
	Components  []JobComponentDTO `json:"components,omitempty"`

	Version   int    `json:"version"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// MilestoneDTO is one recorded payment milestone.
type MilestoneDTO struct {
	At     *time.Time `json:"at,omitempty"`
	Amount *string    `json:"amount,omitempty"`
	Note   string     `json:"note,omitempty"`
}

// PaymentStateDTO groups the job's payment milestones.
type PaymentStateDTO struct {
	InvoiceSent       MilestoneDTO `json:"invoiceSent"`
	CustomerPaid      MilestoneDTO `json:"customerPaid"`
	IntermediaryPaid  MilestoneDTO `json:"intermediaryPaid"`
	FinalVendorPaid   MilestoneDTO `json:"finalVendorPaid"`
	DownstreamInvoice MilestoneDTO `json:"downstreamInvoice"`
}

// ReadinessFlagsDTO groups job-level readiness flags.
type ReadinessFlagsDTO struct {
	Artwork     ReadinessState `json:"artwork"`
	DataFiles   ReadinessState `json:"dataFiles"`
	MailingInfo ReadinessState `json:"mailingInfo"`
	Materials   ReadinessState `json:"materials"`
	Versions    ReadinessState `json:"versions"`
	POSentAt    *time.Time     `json:"poSentAt,omitempty"`
}

// ReadinessResultDTO is the gate evaluation result.
type ReadinessResultDTO struct {
	Status   ReadinessStatus `json:"status"`
	Blockers []string        `json:"blockers"`
	Warnings []string        `json:"warnings"`
}

// ProfitSplitDTO is the API representation of a cached profit split.
// Amounts are fixed-precision decimal strings.
type ProfitSplitDTO struct {
	Method             ProfitSplitMethod `json:"method"`
	TotalCost          string            `json:"totalCost"`
	Revenue            string            `json:"revenue"`
	Spread             string            `json:"spread"`
	PaperMarkup        string            `json:"paperMarkup"`
	PartnerShare       string            `json:"partnerShare"`
	BrokerShare        string            `json:"brokerShare"`
	IntermediaryCut    string            `json:"intermediaryCut"`
	FinalProfit        string            `json:"finalProfit"`
	GrossMarginPercent string            `json:"grossMarginPercent"`
	ComputedAt         string            `json:"computedAt"`
	Warnings           []string          `json:"warnings,omitempty"`
}

// LineItemDTO is the API representation of a line item.
type LineItemDTO struct {
	ID            uuid.UUID `json:"id"`
	Description   string    `json:"description"`
	Quantity      string    `json:"quantity"`
	UnitCost      string    `json:"unitCost"`
	MarkupPercent string    `json:"markupPercent"`
	UnitPrice     string    `json:"unitPrice"`
}

// PurchaseOrderDTO is the API representation of a purchase order.
type PurchaseOrderDTO struct {
	ID                uuid.UUID  `json:"id"`
	JobID             uuid.UUID  `json:"jobId"`
	OriginParty       Party      `json:"originParty"`
	TargetParty       Party      `json:"targetParty"`
	VendorID          *uuid.UUID `json:"vendorId,omitempty"`
	VendorName        string     `json:"vendorName,omitempty"`
	BuyCost           string     `json:"buyCost"`
	PaperCPM          *string    `json:"paperCpm,omitempty"`
	PrintCPM          *string    `json:"printCpm,omitempty"`
	PaperCost         *string    `json:"paperCost,omitempty"`
	PaperMarkup       *string    `json:"paperMarkup,omitempty"`
	ManufacturingCost *string    `json:"manufacturingCost,omitempty"`
	SentAt            *time.Time `json:"sentAt,omitempty"`
	Notes             string     `json:"notes,omitempty"`
}

// JobComponentDTO is the API representation of a job component.
type JobComponentDTO struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	SupplierID     *uuid.UUID     `json:"supplierId,omitempty"`
	SupplierName   string         `json:"supplierName,omitempty"`
	ArtworkStatus  ReadinessState `json:"artworkStatus"`
	MaterialStatus ReadinessState `json:"materialStatus"`
	TrackingNumber string         `json:"trackingNumber,omitempty"`
	Notes          string         `json:"notes,omitempty"`
}

// VendorDTO is the API representation of a vendor.
type VendorDTO struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email,omitempty"`
	Phone              string    `json:"phone,omitempty"`
	Address            string    `json:"address,omitempty"`
	City               string    `json:"city,omitempty"`
	PostalCode         string    `json:"postalCode,omitempty"`
	IsPreferredPartner bool      `json:"isPreferredPartner"`
	IsActive           bool      `json:"isActive"`
	CreatedAt          string    `json:"createdAt"`
	UpdatedAt          string    `json:"updatedAt"`
}

// CustomerDTO is the API representation of a customer.
type CustomerDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	OrgNumber     string    `json:"orgNumber,omitempty"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	City          string    `json:"city,omitempty"`
	PostalCode    string    `json:"postalCode,omitempty"`
	ContactPerson string    `json:"contactPerson,omitempty"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     string    `json:"createdAt"`
	UpdatedAt     string    `json:"updatedAt"`
}

// ActivityDTO is the API representation of an activity entry.
type ActivityDTO struct {
	ID          uuid.UUID          `json:"id"`
	TargetType  ActivityTargetType `json:"targetType"`
	TargetID    uuid.UUID          `json:"targetId"`
	Title       string             `json:"title"`
	Body        string             `json:"body,omitempty"`
	OccurredAt  string             `json:"occurredAt"`
	CreatorName string             `json:"creatorName,omitempty"`
}

// ArtworkFileDTO is the API representation of an uploaded production file.
type ArtworkFileDTO struct {
	ID          uuid.UUID `json:"id"`
	JobID       uuid.UUID `json:"jobId"`
	Kind        string    `json:"kind"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	CreatedAt   string    `json:"createdAt"`
}

// CPMRateDTO is one row of the CPM pricing table.
type CPMRateDTO struct {
	FinishedSize      string `json:"finishedSize"`
	PaperCostCPM      string `json:"paperCostCpm"`
	PaperSellCPM      string `json:"paperSellCpm"`
	PrintCPM          string `json:"printCpm"`
	PoundsPerThousand string `json:"poundsPerThousand"`
}

// MilestoneUpdateResponse is returned by payment milestone operations.
// Warnings carry non-fatal conditions such as a failed downstream invoice
// dispatch or a negative spread.
type MilestoneUpdateResponse struct {
	Job      *JobDTO  `json:"job"`
	Warnings []string `json:"warnings,omitempty"`
}

// ParseDecimal parses a decimal string from a DTO, treating empty as zero.
func ParseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

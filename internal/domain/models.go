package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a UUID if one has not been set.
// IDs are generated application-side so the same models work on both
// PostgreSQL and the SQLite test database.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// RoutingType represents which fulfillment path a job follows.
// It is classified once at job creation and stored, so later changes to a
// vendor's partner flag never reclassify historical jobs.
type RoutingType string

const (
	// RoutingPartner routes the job through the preferred printing partner.
	RoutingPartner RoutingType = "partner_routed"
	// RoutingDirect bills the job straight through to the secondary print shop.
	RoutingDirect RoutingType = "direct_routed"
	// RoutingThirdParty routes the job to an arbitrary outside vendor.
	RoutingThirdParty RoutingType = "third_party_routed"
)

// IsValid checks if the RoutingType is a valid enum value
func (rt RoutingType) IsValid() bool {
	switch rt {
	case RoutingPartner, RoutingDirect, RoutingThirdParty:
		return true
	}
	return false
}

// Party identifies one of the parties on a purchase order.
type Party string

const (
	PartyBroker  Party = "broker"
	PartyPartner Party = "partner"
	PartyVendor  Party = "vendor"
)

// IsValid checks if the Party is a valid enum value
func (p Party) IsValid() bool {
	switch p {
	case PartyBroker, PartyPartner, PartyVendor:
		return true
	}
	return false
}

// JobStatus represents the production stage of a job.
// The order of the pipeline is defined in the workflow package; invoiced and
// paid are terminal states reachable only after completed.
type JobStatus string

const (
	JobStatusNew              JobStatus = "new"
	JobStatusAwaitingProof    JobStatus = "awaiting_vendor_proof"
	JobStatusProofReceived    JobStatus = "proof_received"
	JobStatusProofSent        JobStatus = "proof_sent_to_customer"
	JobStatusAwaitingCustomer JobStatus = "awaiting_customer_response"
	JobStatusApproved         JobStatus = "approved_pending_vendor"
	JobStatusInProduction     JobStatus = "in_production"
	JobStatusCompleted        JobStatus = "completed"
	JobStatusInvoiced         JobStatus = "invoiced"
	JobStatusPaid             JobStatus = "paid"
)

// IsValid checks if the JobStatus is a valid enum value
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusNew, JobStatusAwaitingProof, JobStatusProofReceived,
		JobStatusProofSent, JobStatusAwaitingCustomer, JobStatusApproved,
		JobStatusInProduction, JobStatusCompleted, JobStatusInvoiced, JobStatusPaid:
		return true
	}
	return false
}

// PaymentMilestone represents one step of the ordered payment workflow.
type PaymentMilestone string

const (
	MilestoneInvoiceSent      PaymentMilestone = "invoice_sent"
	MilestoneCustomerPaid     PaymentMilestone = "customer_paid"
	MilestoneIntermediaryPaid PaymentMilestone = "intermediary_paid"
	MilestoneFinalVendorPaid  PaymentMilestone = "final_vendor_paid"
)

// IsValid checks if the PaymentMilestone is a valid enum value
func (m PaymentMilestone) IsValid() bool {
	switch m {
	case MilestoneInvoiceSent, MilestoneCustomerPaid, MilestoneIntermediaryPaid, MilestoneFinalVendorPaid:
		return true
	}
	return false
}

// ReadinessState is the state of a single readiness flag.
// NotApplicable excludes the flag from gating entirely.
type ReadinessState string

const (
	ReadinessReceived      ReadinessState = "received"
	ReadinessPending       ReadinessState = "pending"
	ReadinessNotApplicable ReadinessState = "not_applicable"
)

// IsValid checks if the ReadinessState is a valid enum value
func (r ReadinessState) IsValid() bool {
	switch r {
	case ReadinessReceived, ReadinessPending, ReadinessNotApplicable:
		return true
	}
	return false
}

// Satisfied reports whether the flag no longer blocks PO issuance.
func (r ReadinessState) Satisfied() bool {
	return r == ReadinessReceived || r == ReadinessNotApplicable
}

// ReadinessStatus is the rolled-up readiness of a job.
type ReadinessStatus string

const (
	ReadinessStatusReady      ReadinessStatus = "ready"
	ReadinessStatusIncomplete ReadinessStatus = "incomplete"
	// ReadinessStatusSent means the vendor PO has been transmitted; sending is
	// one-way and the gate never retroactively blocks a sent PO.
	ReadinessStatusSent ReadinessStatus = "sent"
)

// Vendor represents a print shop or fulfillment vendor
type Vendor struct {
	BaseModel
	Name               string `gorm:"type:varchar(200);not null;index"`
	Email              string `gorm:"type:varchar(255)"`
	Phone              string `gorm:"type:varchar(50)"`
	Address            string `gorm:"type:varchar(500)"`
	City               string `gorm:"type:varchar(100)"`
	PostalCode         string `gorm:"type:varchar(20)"`
	IsPreferredPartner bool   `gorm:"not null;default:false;column:is_preferred_partner;index"`
	IsActive           bool   `gorm:"not null;default:true;column:is_active"`
	Notes              string `gorm:"type:text"`
}

// Customer represents the organization buying printed material
type Customer struct {
	BaseModel
	Name          string `gorm:"type:varchar(200);not null;index"`
	OrgNumber     string `gorm:"type:varchar(20);index;column:org_number"`
	Email         string `gorm:"type:varchar(255)"`
	Phone         string `gorm:"type:varchar(50)"`
	Address       string `gorm:"type:varchar(500)"`
	City          string `gorm:"type:varchar(100)"`
	PostalCode    string `gorm:"type:varchar(20)"`
	ContactPerson string `gorm:"type:varchar(200);column:contact_person"`
	IsActive      bool   `gorm:"not null;default:true;column:is_active"`
	Jobs          []Job  `gorm:"foreignKey:CustomerID"`
}

// StatusOverride is an explicit manual override of a job's computed status.
// Presence of the override is a type-level fact: a nil *StatusOverride means
// the job runs on its computed status.
type StatusOverride struct {
	Status JobStatus `json:"status"`
	SetBy  string    `json:"setBy"`
	SetAt  time.Time `json:"setAt"`
}

// Job is the unit of brokered work. It owns its line items, purchase orders,
// components and the cached profit split; deleting a job soft-deletes it so
// financial history is never destroyed.
type Job struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index"`

	JobNumber    string    `gorm:"type:varchar(50);uniqueIndex;column:job_number"`
	Title        string    `gorm:"type:varchar(200);not null"`
	CustomerID   uuid.UUID `gorm:"type:uuid;not null;index;column:customer_id"`
	Customer     *Customer `gorm:"foreignKey:CustomerID"`
	CustomerName string    `gorm:"type:varchar(200);column:customer_name"`
	VendorID     *uuid.UUID `gorm:"type:uuid;index;column:vendor_id"`
	Vendor       *Vendor    `gorm:"foreignKey:VendorID"`

	RoutingType  RoutingType     `gorm:"type:varchar(50);not null;index;column:routing_type"`
	Quantity     int64           `gorm:"not null;default:0"`
	SellPrice    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:sell_price"`
	FinishedSize string          `gorm:"type:varchar(50);column:finished_size"`

	// Lifecycle. Status is the natural computed status; the override columns
	// are only populated by an explicit override action.
	Status           JobStatus  `gorm:"type:varchar(50);not null;default:'new';index"`
	OverrideStatus   *JobStatus `gorm:"type:varchar(50);column:override_status"`
	OverrideSetBy    string     `gorm:"type:varchar(200);column:override_set_by"`
	OverrideSetAt    *time.Time `gorm:"column:override_set_at"`

	// Intermediary cut for direct/third-party routed jobs. When CutIsAuto is
	// true the cut is derived as 35% of gross profit on each recompute.
	IntermediaryCut *decimal.Decimal `gorm:"type:decimal(15,2);column:intermediary_cut"`
	CutIsAuto       bool             `gorm:"not null;default:false;column:cut_is_auto"`

	// Payment milestones. Monotonicity is enforced by the workflow package.
	InvoiceSentAt      *time.Time       `gorm:"column:invoice_sent_at"`
	CustomerPaidAt     *time.Time       `gorm:"column:customer_paid_at"`
	CustomerPaidAmount *decimal.Decimal `gorm:"type:decimal(15,2);column:customer_paid_amount"`
	CustomerPaidNote   string           `gorm:"type:varchar(500);column:customer_paid_note"`
	PartnerPaidAt      *time.Time       `gorm:"column:partner_paid_at"`
	PartnerPaidAmount  *decimal.Decimal `gorm:"type:decimal(15,2);column:partner_paid_amount"`
	PartnerPaidNote    string           `gorm:"type:varchar(500);column:partner_paid_note"`
	VendorPaidAt       *time.Time       `gorm:"column:vendor_paid_at"`
	VendorPaidAmount   *decimal.Decimal `gorm:"type:decimal(15,2);column:vendor_paid_amount"`
	VendorPaidNote     string           `gorm:"type:varchar(500);column:vendor_paid_note"`

	// Downstream invoice to the final fulfillment vendor, generated as a side
	// effect of the intermediary-paid milestone.
	DownstreamInvoiceSentAt *time.Time `gorm:"column:downstream_invoice_sent_at"`
	DownstreamInvoiceSentTo string     `gorm:"type:varchar(255);column:downstream_invoice_sent_to"`

	// Readiness flags for the vendor PO gate.
	ArtworkStatus     ReadinessState `gorm:"type:varchar(50);not null;default:'pending';column:artwork_status"`
	DataFilesStatus   ReadinessState `gorm:"type:varchar(50);not null;default:'pending';column:data_files_status"`
	MailingInfoStatus ReadinessState `gorm:"type:varchar(50);not null;default:'pending';column:mailing_info_status"`
	MaterialsStatus   ReadinessState `gorm:"type:varchar(50);not null;default:'pending';column:materials_status"`
	VersionsStatus    ReadinessState `gorm:"type:varchar(50);not null;default:'pending';column:versions_status"`
	POSentAt          *time.Time     `gorm:"column:po_sent_at"`

	// Version supports optimistic locking on job mutations. A stale writer
	// loses the race and receives a conflict error.
	Version int `gorm:"not null;default:1"`

	Notes string `gorm:"type:text"`

	LineItems      []LineItem      `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
	PurchaseOrders []PurchaseOrder `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
	Components     []JobComponent  `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
	ProfitSplit    *ProfitSplit    `gorm:"foreignKey:JobID"`
}

// Override returns the job's status override as a tagged value, or nil when
// the job runs on its computed status.
func (j *Job) Override() *StatusOverride {
	if j.OverrideStatus == nil {
		return nil
	}
	o := &StatusOverride{Status: *j.OverrideStatus, SetBy: j.OverrideSetBy}
	if j.OverrideSetAt != nil {
		o.SetAt = *j.OverrideSetAt
	}
	return o
}

// EffectiveStatus is the manual override if one is set, else the computed status.
func (j *Job) EffectiveStatus() JobStatus {
	if j.OverrideStatus != nil {
		return *j.OverrideStatus
	}
	return j.Status
}

// MilestoneAt returns the recorded timestamp for a payment milestone.
func (j *Job) MilestoneAt(m PaymentMilestone) *time.Time {
	switch m {
	case MilestoneInvoiceSent:
		return j.InvoiceSentAt
	case MilestoneCustomerPaid:
		return j.CustomerPaidAt
	case MilestoneIntermediaryPaid:
		return j.PartnerPaidAt
	case MilestoneFinalVendorPaid:
		return j.VendorPaidAt
	}
	return nil
}

// LineItem is a costed line belonging to exactly one job.
// UnitPrice is derived from UnitCost and MarkupPercent unless a direct price
// entry back-derives the markup; the pricing package owns that invariant.
type LineItem struct {
	BaseModel
	JobID         uuid.UUID       `gorm:"type:uuid;not null;index;column:job_id"`
	Job           *Job            `gorm:"foreignKey:JobID"`
	Description   string          `gorm:"type:varchar(500);not null"`
	Quantity      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	UnitCost      decimal.Decimal `gorm:"type:decimal(15,4);not null;default:0;column:unit_cost"`
	MarkupPercent decimal.Decimal `gorm:"type:decimal(8,3);not null;default:0;column:markup_percent"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(15,4);not null;default:0;column:unit_price"`
}

// PurchaseOrder records a buy between two parties on a job.
// POs between the broker's internal companies are cost-basis only and are
// never billed to the customer directly.
type PurchaseOrder struct {
	BaseModel
	JobID       uuid.UUID  `gorm:"type:uuid;not null;index;column:job_id"`
	Job         *Job       `gorm:"foreignKey:JobID"`
	OriginParty Party      `gorm:"type:varchar(20);not null;column:origin_party"`
	TargetParty Party      `gorm:"type:varchar(20);not null;column:target_party"`
	VendorID    *uuid.UUID `gorm:"type:uuid;column:vendor_id"`
	Vendor      *Vendor    `gorm:"foreignKey:VendorID"`

	BuyCost decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:buy_cost"`

	// Optional CPM rates used when the PO was priced off the rate table.
	PaperCPM *decimal.Decimal `gorm:"type:decimal(12,4);column:paper_cpm"`
	PrintCPM *decimal.Decimal `gorm:"type:decimal(12,4);column:print_cpm"`

	// Optional cost breakdown. PaperMarkup here is the recorded historical
	// value, preserved as entered rather than recomputed at 18%.
	PaperCost         *decimal.Decimal `gorm:"type:decimal(15,2);column:paper_cost"`
	PaperMarkup       *decimal.Decimal `gorm:"type:decimal(15,2);column:paper_markup"`
	ManufacturingCost *decimal.Decimal `gorm:"type:decimal(15,2);column:manufacturing_cost"`

	SentAt *time.Time `gorm:"column:sent_at"`
	Notes  string     `gorm:"type:varchar(1000)"`
}

// ProfitSplitMethod records which costing path produced a profit split.
type ProfitSplitMethod string

const (
	ProfitMethodCPM            ProfitSplitMethod = "cpm"
	ProfitMethodPurchaseOrders ProfitSplitMethod = "purchase_orders"
	ProfitMethodLineItems      ProfitSplitMethod = "line_items"
)

// ProfitSplit is the cached, derived financial record for a job (1:1).
// It is recomputed whenever routing type, sell price, line items or relevant
// PO costs change and is never hand-edited.
type ProfitSplit struct {
	ID    uuid.UUID `gorm:"type:uuid;primary_key"`
	JobID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:job_id"`

	Method      ProfitSplitMethod `gorm:"type:varchar(30);not null"`
	TotalCost   decimal.Decimal   `gorm:"type:decimal(15,2);not null;column:total_cost"`
	Revenue     decimal.Decimal   `gorm:"type:decimal(15,2);not null"`
	Spread      decimal.Decimal   `gorm:"type:decimal(15,2);not null"`
	PaperMarkup decimal.Decimal   `gorm:"type:decimal(15,2);not null;column:paper_markup"`

	PartnerShare decimal.Decimal `gorm:"type:decimal(15,2);not null;column:partner_share"`
	BrokerShare  decimal.Decimal `gorm:"type:decimal(15,2);not null;column:broker_share"`

	IntermediaryCut decimal.Decimal `gorm:"type:decimal(15,2);not null;column:intermediary_cut"`
	FinalProfit     decimal.Decimal `gorm:"type:decimal(15,2);not null;column:final_profit"`

	// GrossMarginPercent = spread / revenue * 100, zero when revenue is zero.
	GrossMarginPercent decimal.Decimal `gorm:"type:decimal(8,3);not null;column:gross_margin_percent"`

	ComputedAt time.Time `gorm:"not null;column:computed_at"`
}

// BeforeCreate assigns a UUID if one has not been set
func (p *ProfitSplit) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// JobComponent is one part of a multi-part job, possibly produced by a
// different supplier. Its readiness flags roll up into the job's gate.
type JobComponent struct {
	BaseModel
	JobID          uuid.UUID      `gorm:"type:uuid;not null;index;column:job_id"`
	Job            *Job           `gorm:"foreignKey:JobID"`
	Name           string         `gorm:"type:varchar(200);not null"`
	SupplierID     *uuid.UUID     `gorm:"type:uuid;column:supplier_id"`
	Supplier       *Vendor        `gorm:"foreignKey:SupplierID"`
	ArtworkStatus  ReadinessState `gorm:"type:varchar(50);not null;default:'pending';column:artwork_status"`
	MaterialStatus ReadinessState `gorm:"type:varchar(50);not null;default:'pending';column:material_status"`
	TrackingNumber string         `gorm:"type:varchar(100);column:tracking_number"`
	Notes          string         `gorm:"type:varchar(1000)"`
}

// ActivityTargetType represents the type of entity an activity is associated with
type ActivityTargetType string

const (
	ActivityTargetJob      ActivityTargetType = "Job"
	ActivityTargetVendor   ActivityTargetType = "Vendor"
	ActivityTargetCustomer ActivityTargetType = "Customer"
)

// Activity represents an event log entry for any entity
type Activity struct {
	BaseModel
	TargetType  ActivityTargetType `gorm:"type:varchar(50);not null;index;column:target_type"`
	TargetID    uuid.UUID          `gorm:"type:uuid;not null;index;column:target_id"`
	Title       string             `gorm:"type:varchar(200);not null"`
	Body        string             `gorm:"type:varchar(2000)"`
	OccurredAt  time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP;index;column:occurred_at"`
	CreatorID   string             `gorm:"type:varchar(100);column:creator_id"`
	CreatorName string             `gorm:"type:varchar(200);column:creator_name"`
}

// ArtworkFile represents an uploaded artwork or data file attached to a job.
// Uploads feed the readiness flags; the bytes live in the storage backend.
type ArtworkFile struct {
	BaseModel
	JobID       uuid.UUID `gorm:"type:uuid;not null;index;column:job_id"`
	Job         *Job      `gorm:"foreignKey:JobID"`
	Kind        string    `gorm:"type:varchar(50);not null"` // artwork or data_file
	Filename    string    `gorm:"type:varchar(255);not null"`
	ContentType string    `gorm:"type:varchar(100);not null;column:content_type"`
	Size        int64     `gorm:"not null"`
	StoragePath string    `gorm:"type:varchar(500);not null;unique;column:storage_path"`
}

// User represents an operator in the system
type User struct {
	ID          string         `gorm:"type:varchar(100);primaryKey" json:"id"`
	Email       string         `gorm:"type:varchar(255);not null;unique" json:"email"`
	DisplayName string         `gorm:"type:varchar(200);not null;column:display_name" json:"displayName"`
	Roles       pq.StringArray `gorm:"type:text[]" json:"roles"`
	IsActive    bool           `gorm:"not null;default:true;column:is_active" json:"isActive"`
	LastLoginAt *time.Time     `gorm:"column:last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// NumberSequence backs gap-free job number generation.
type NumberSequence struct {
	Key       string    `gorm:"type:varchar(50);primaryKey"`
	NextValue int64     `gorm:"not null;default:1;column:next_value"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

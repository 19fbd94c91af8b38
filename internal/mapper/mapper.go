// Package mapper converts domain models to API DTOs. All money fields are
// rendered as fixed-point strings so clients never see float artifacts.
package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pressgate/broker-api/internal/domain"
)

func decString(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func decPtrString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

// ToJobDTO maps a job with whatever relations are loaded.
func ToJobDTO(job *domain.Job) domain.JobDTO {
	dto := domain.JobDTO{
		ID:              job.ID,
		JobNumber:       job.JobNumber,
		Title:           job.Title,
		CustomerID:      job.CustomerID,
		CustomerName:    job.CustomerName,
		VendorID:        job.VendorID,
		RoutingType:     job.RoutingType,
		Quantity:        job.Quantity,
		SellPrice:       decString(job.SellPrice),
		FinishedSize:    job.FinishedSize,
		Status:          job.Status,
		EffectiveStatus: job.EffectiveStatus(),
		Override:        job.Override(),
		Payments:        toPaymentStateDTO(job),
		Readiness:       toReadinessFlagsDTO(job),
		IntermediaryCut: decPtrString(job.IntermediaryCut),
		CutIsAuto:       job.CutIsAuto,
		Version:         job.Version,
		Notes:           job.Notes,
		CreatedAt:       job.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       job.UpdatedAt.Format(time.RFC3339),
	}

	if job.Customer != nil {
		dto.CustomerName = job.Customer.Name
	}
	if job.Vendor != nil {
		dto.VendorName = job.Vendor.Name
	}
	if job.ProfitSplit != nil {
		split := ToProfitSplitDTO(job.ProfitSplit, nil)
		dto.ProfitSplit = &split
	}
	if len(job.LineItems) > 0 {
		dto.LineItems = make([]domain.LineItemDTO, len(job.LineItems))
		for i := range job.LineItems {
			dto.LineItems[i] = ToLineItemDTO(&job.LineItems[i])
		}
	}
	if len(job.Components) > 0 {
		dto.Components = make([]domain.JobComponentDTO, len(job.Components))
		for i := range job.Components {
			dto.Components[i] = ToJobComponentDTO(&job.Components[i])
		}
	}

	return dto
}

func toPaymentStateDTO(job *domain.Job) domain.PaymentStateDTO {
	state := domain.PaymentStateDTO{
		InvoiceSent: domain.MilestoneDTO{At: job.InvoiceSentAt},
		CustomerPaid: domain.MilestoneDTO{
			At:     job.CustomerPaidAt,
			Amount: decPtrString(job.CustomerPaidAmount),
			Note:   job.CustomerPaidNote,
		},
		IntermediaryPaid: domain.MilestoneDTO{
			At:     job.PartnerPaidAt,
			Amount: decPtrString(job.PartnerPaidAmount),
			Note:   job.PartnerPaidNote,
		},
		FinalVendorPaid: domain.MilestoneDTO{
			At:     job.VendorPaidAt,
			Amount: decPtrString(job.VendorPaidAmount),
			Note:   job.VendorPaidNote,
		},
		DownstreamInvoice: domain.MilestoneDTO{
			At:   job.DownstreamInvoiceSentAt,
			Note: job.DownstreamInvoiceSentTo,
		},
	}
	return state
}

func toReadinessFlagsDTO(job *domain.Job) domain.ReadinessFlagsDTO {
	return domain.ReadinessFlagsDTO{
		Artwork:     job.ArtworkStatus,
		DataFiles:   job.DataFilesStatus,
		MailingInfo: job.MailingInfoStatus,
		Materials:   job.MaterialsStatus,
		Versions:    job.VersionsStatus,
		POSentAt:    job.POSentAt,
	}
}

// ToProfitSplitDTO maps a cached profit split; warnings from the most recent
// computation ride along when the caller has them.
func ToProfitSplitDTO(split *domain.ProfitSplit, warnings []string) domain.ProfitSplitDTO {
	return domain.ProfitSplitDTO{
		Method:             split.Method,
		TotalCost:          decString(split.TotalCost),
		Revenue:            decString(split.Revenue),
		Spread:             decString(split.Spread),
		PaperMarkup:        decString(split.PaperMarkup),
		PartnerShare:       decString(split.PartnerShare),
		BrokerShare:        decString(split.BrokerShare),
		IntermediaryCut:    decString(split.IntermediaryCut),
		FinalProfit:        decString(split.FinalProfit),
		GrossMarginPercent: split.GrossMarginPercent.StringFixed(3),
		ComputedAt:         split.ComputedAt.Format(time.RFC3339),
		Warnings:           warnings,
	}
}

// ToLineItemDTO maps a line item.
func ToLineItemDTO(item *domain.LineItem) domain.LineItemDTO {
	return domain.LineItemDTO{
		ID:            item.ID,
		Description:   item.Description,
		Quantity:      item.Quantity.String(),
		UnitCost:      item.UnitCost.StringFixed(4),
		MarkupPercent: item.MarkupPercent.StringFixed(3),
		UnitPrice:     item.UnitPrice.StringFixed(4),
	}
}

// ToPurchaseOrderDTO maps a purchase order.
func ToPurchaseOrderDTO(po *domain.PurchaseOrder) domain.PurchaseOrderDTO {
	dto := domain.PurchaseOrderDTO{
		ID:                po.ID,
		JobID:             po.JobID,
		OriginParty:       po.OriginParty,
		TargetParty:       po.TargetParty,
		VendorID:          po.VendorID,
		BuyCost:           decString(po.BuyCost),
		PaperCost:         decPtrString(po.PaperCost),
		PaperMarkup:       decPtrString(po.PaperMarkup),
		ManufacturingCost: decPtrString(po.ManufacturingCost),
		SentAt:            po.SentAt,
		Notes:             po.Notes,
	}
	if po.PaperCPM != nil {
		s := po.PaperCPM.String()
		dto.PaperCPM = &s
	}
	if po.PrintCPM != nil {
		s := po.PrintCPM.String()
		dto.PrintCPM = &s
	}
	if po.Vendor != nil {
		dto.VendorName = po.Vendor.Name
	}
	return dto
}

// ToJobComponentDTO maps a job component.
func ToJobComponentDTO(c *domain.JobComponent) domain.JobComponentDTO {
	dto := domain.JobComponentDTO{
		ID:             c.ID,
		Name:           c.Name,
		SupplierID:     c.SupplierID,
		ArtworkStatus:  c.ArtworkStatus,
		MaterialStatus: c.MaterialStatus,
		TrackingNumber: c.TrackingNumber,
		Notes:          c.Notes,
	}
	if c.Supplier != nil {
		dto.SupplierName = c.Supplier.Name
	}
	return dto
}

// ToVendorDTO maps a vendor.
func ToVendorDTO(v *domain.Vendor) domain.VendorDTO {
	return domain.VendorDTO{
		ID:                 v.ID,
		Name:               v.Name,
		Email:              v.Email,
		Phone:              v.Phone,
		Address:            v.Address,
		City:               v.City,
		PostalCode:         v.PostalCode,
		IsPreferredPartner: v.IsPreferredPartner,
		IsActive:           v.IsActive,
		CreatedAt:          v.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          v.UpdatedAt.Format(time.RFC3339),
	}
}

// ToCustomerDTO maps a customer.
func ToCustomerDTO(c *domain.Customer) domain.CustomerDTO {
	return domain.CustomerDTO{
		ID:            c.ID,
		Name:          c.Name,
		OrgNumber:     c.OrgNumber,
		Email:         c.Email,
		Phone:         c.Phone,
		Address:       c.Address,
		City:          c.City,
		PostalCode:    c.PostalCode,
		ContactPerson: c.ContactPerson,
		IsActive:      c.IsActive,
		CreatedAt:     c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     c.UpdatedAt.Format(time.RFC3339),
	}
}

// ToArtworkFileDTO maps an uploaded production file.
func ToArtworkFileDTO(f *domain.ArtworkFile) domain.ArtworkFileDTO {
	return domain.ArtworkFileDTO{
		ID:          f.ID,
		JobID:       f.JobID,
		Kind:        f.Kind,
		Filename:    f.Filename,
		ContentType: f.ContentType,
		Size:        f.Size,
		CreatedAt:   f.CreatedAt.Format(time.RFC3339),
	}
}

// ToActivityDTO maps an activity entry.
func ToActivityDTO(a *domain.Activity) domain.ActivityDTO {
	return domain.ActivityDTO{
		ID:          a.ID,
		TargetType:  a.TargetType,
		TargetID:    a.TargetID,
		Title:       a.Title,
		Body:        a.Body,
		OccurredAt:  a.OccurredAt.Format(time.RFC3339),
		CreatorName: a.CreatorName,
	}
}

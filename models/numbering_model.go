package models

import (
	"engsupply-erp/types"
	"fmt"
	"strings"
	"time"
)

type DocumentType string

const (
	DocSalesInvoice     DocumentType = "sales_invoice"
	DocSalesReturn      DocumentType = "sales_return"
	DocSalesQuotation   DocumentType = "sales_quotation"
	DocSalesOrder       DocumentType = "sales_order"
	DocPurchaseInvoice  DocumentType = "purchase_invoice"
	DocPurchaseReturn   DocumentType = "purchase_return"
	DocPurchaseOrder    DocumentType = "purchase_order"
	DocPurchaseRequest  DocumentType = "purchase_request"
	DocStockIn          DocumentType = "stock_in"
	DocStockOut         DocumentType = "stock_out"
	DocStockTransfer    DocumentType = "stock_transfer"
	DocStockCount       DocumentType = "stock_count"
	DocJournalEntry     DocumentType = "journal_entry"
	DocPaymentVoucher   DocumentType = "payment_voucher"
	DocReceiptVoucher   DocumentType = "receipt_voucher"
	DocAsset            DocumentType = "asset"
	DocAssetTransaction DocumentType = "asset_transaction"
	DocAssetMaintenance DocumentType = "asset_maintenance"
	DocApprovalRequest  DocumentType = "approval_request"
	DocEmployee         DocumentType = "employee"
)

var documentTypes = map[DocumentType]bool{
	DocSalesInvoice: true, DocSalesReturn: true, DocSalesQuotation: true, DocSalesOrder: true,
	DocPurchaseInvoice: true, DocPurchaseReturn: true, DocPurchaseOrder: true, DocPurchaseRequest: true,
	DocStockIn: true, DocStockOut: true, DocStockTransfer: true, DocStockCount: true,
	DocJournalEntry: true, DocPaymentVoucher: true, DocReceiptVoucher: true,
	DocAsset: true, DocAssetTransaction: true, DocAssetMaintenance: true,
	DocApprovalRequest: true, DocEmployee: true,
}

func (d DocumentType) Valid() bool {
	return documentTypes[d]
}

type NumberingSequence struct {
	BaseModel
	CompanyID      types.SnowflakeID `json:"company_id" gorm:"not null;uniqueIndex:idx_numbering_company_doc"`
	DocumentType   DocumentType      `json:"document_type" gorm:"size:50;not null;uniqueIndex:idx_numbering_company_doc"`
	Prefix         string            `json:"prefix" gorm:"size:20"`
	Suffix         string            `json:"suffix" gorm:"size:20"`
	NextNumber     int64             `json:"next_number" gorm:"not null"`
	Padding        int               `json:"padding" gorm:"not null"`
	YearlyReset    bool              `json:"yearly_reset" gorm:"not null"`
	MonthlyReset   bool              `json:"monthly_reset" gorm:"not null"`
	IncludeYear    bool              `json:"include_year" gorm:"not null"`
	IncludeMonth   bool              `json:"include_month" gorm:"not null"`
	Separator      string            `json:"separator" gorm:"size:1"`
	LastResetYear  int               `json:"last_reset_year"`
	LastResetMonth int               `json:"last_reset_month"`
	Version        int64             `json:"-" gorm:"not null"`
	IsActive       bool              `json:"is_active" gorm:"not null"`
}

// DefaultSequence returns a sequence with the stock settings:
// six digit padding, "/" separator, year included and reset every year.
func DefaultSequence(companyID types.SnowflakeID, docType DocumentType, prefix string) NumberingSequence {
	return NumberingSequence{
		CompanyID:    companyID,
		DocumentType: docType,
		Prefix:       prefix,
		NextNumber:   1,
		Padding:      6,
		YearlyReset:  true,
		IncludeYear:  true,
		Separator:    "/",
		IsActive:     true,
	}
}

// ResetDue reports whether the counter restarts at 1 for a number issued at now.
func (s *NumberingSequence) ResetDue(now time.Time) bool {
	if s.YearlyReset && s.IncludeYear && s.LastResetYear != now.Year() {
		return true
	}
	if s.MonthlyReset && s.IncludeMonth {
		return s.LastResetYear != now.Year() || s.LastResetMonth != int(now.Month())
	}
	return false
}

// Format builds the document number for counter value n:
// [prefix] [year] [month] [n zero padded] [suffix] joined by Separator.
func (s *NumberingSequence) Format(n int64, now time.Time) string {
	parts := make([]string, 0, 5)
	if s.Prefix != "" {
		parts = append(parts, s.Prefix)
	}
	if s.IncludeYear {
		parts = append(parts, fmt.Sprintf("%d", now.Year()))
	}
	if s.IncludeMonth {
		parts = append(parts, fmt.Sprintf("%02d", int(now.Month())))
	}
	parts = append(parts, fmt.Sprintf("%0*d", s.Padding, n))
	if s.Suffix != "" {
		parts = append(parts, s.Suffix)
	}
	return strings.Join(parts, s.Separator)
}

// Issue applies any due reset, returns the formatted number and advances the counter.
// The caller persists the sequence.
func (s *NumberingSequence) Issue(now time.Time) string {
	if s.ResetDue(now) {
		s.NextNumber = 1
		s.LastResetYear = now.Year()
		s.LastResetMonth = int(now.Month())
	}
	if s.NextNumber < 1 {
		s.NextNumber = 1
	}
	number := s.Format(s.NextNumber, now)
	s.NextNumber++
	return number
}

// Preview is Issue without side effects.
func (s NumberingSequence) Preview(now time.Time) string {
	return s.Issue(now)
}

// Package domain contains the core business entities.
package domain

import "fmt"

// =============================================================================
// Tax Category
// =============================================================================

// TaxCategory classifies how a line item's amount contributes to the invoice
// tax totals.
type TaxCategory string

const (
	TaxCategoryTaxable TaxCategory = "taxable"  // 應稅
	TaxCategoryTaxFree TaxCategory = "tax_free" // 免稅
	TaxCategoryZeroTax TaxCategory = "zero_tax" // 零稅率
)

// =============================================================================
// Email Context
// =============================================================================

// EmailContext carries the originating message's metadata. It is stamped into
// the extracted record verbatim, never derived from the PDF.
type EmailContext struct {
	Subject string `json:"subject"`
	Sender  string `json:"sender"`
	Date    string `json:"date"`
}

// =============================================================================
// Invoice Record
// =============================================================================

// InvoiceRecord is the structured result of a successful extraction.
// InvoiceNumber and TotalAmount are mandatory; every other field defaults to
// the zero value when unrecoverable. Records are constructed fresh per PDF and
// never mutated after return.
type InvoiceRecord struct {
	InvoiceNumber string `json:"invoice_number"`
	InvoiceDate   string `json:"invoice_date"`
	BuyerName     string `json:"buyer_name"`
	BuyerTaxID    string `json:"buyer_tax_id"`
	SellerName    string `json:"seller_name"`

	TaxableAmount float64 `json:"taxable_amount"`
	TaxFreeAmount float64 `json:"tax_free_amount"`
	ZeroTaxAmount float64 `json:"zero_tax_amount"`
	TaxAmount     float64 `json:"tax_amount"`
	TotalAmount   float64 `json:"total_amount"`

	EmailSubject string `json:"email_subject"`
	EmailSender  string `json:"email_sender"`
	EmailDate    string `json:"email_date"`
}

// LineItem is a single itemized row recovered from the invoice body. It is
// transient: its amount feeds the category totals but the item itself is not
// part of the returned record.
type LineItem struct {
	Description string      `json:"description"`
	Category    TaxCategory `json:"tax_category"`
	Quantity    int         `json:"quantity"`
	UnitPrice   float64     `json:"unit_price"`
	Amount      float64     `json:"amount"`
}

// =============================================================================
// Extraction Failure
// =============================================================================

// FailureReason tags an extraction failure.
type FailureReason string

const (
	// FailureNoText means the document yielded no extractable characters,
	// most likely a scanned/image PDF.
	FailureNoText FailureReason = "no_text"
	// FailureMissingMandatory means text was present but neither pattern
	// dialect nor fallback recovered invoice_number or total_amount.
	FailureMissingMandatory FailureReason = "missing_mandatory_fields"
	// FailureMalformedAmount means a numeral-shaped match failed conversion.
	// It is logged and treated as an absent field, never surfaced as the
	// failure reason of a whole document on its own.
	FailureMalformedAmount FailureReason = "malformed_amount"
)

// ExtractionFailure is the typed result for a document the core could not
// turn into an InvoiceRecord. It carries the raw text and whatever partial
// fields were recovered, for diagnostics.
type ExtractionFailure struct {
	Reason  FailureReason  `json:"reason"`
	Text    string         `json:"-"`
	Partial *InvoiceRecord `json:"partial,omitempty"`
}

func (e *ExtractionFailure) Error() string {
	return fmt.Sprintf("invoice extraction failed: %s", e.Reason)
}

// IsExtractionFailure reports whether err is a typed extraction failure and
// returns it if so. Callers iterating many PDFs use this to continue past any
// single document.
func IsExtractionFailure(err error) (*ExtractionFailure, bool) {
	f, ok := err.(*ExtractionFailure)
	return f, ok
}

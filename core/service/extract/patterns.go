// Package extract implements the PDF invoice field-extraction engine.
package extract

import "regexp"

// =============================================================================
// Field Pattern Library
// =============================================================================

// Field identifies a logical invoice field.
type Field string

const (
	FieldInvoiceNumber Field = "invoice_number"
	FieldInvoiceDate   Field = "invoice_date"
	FieldBuyerName     Field = "buyer_name"
	FieldBuyerTaxID    Field = "buyer_tax_id"
	FieldSellerName    Field = "seller_name"
	FieldTaxableAmount Field = "taxable_amount"
	FieldTaxFreeAmount Field = "tax_free_amount"
	FieldZeroTaxAmount Field = "zero_tax_amount"
	FieldTaxAmount     Field = "tax_amount"
	FieldTotalAmount   Field = "total_amount"
)

// Matcher pairs a label synonym (for diagnostics) with a compiled pattern.
// Capture group 1 is the field value.
type Matcher struct {
	Label   string
	Pattern *regexp.Regexp
}

// Value shapes shared across matchers. Amounts allow thousands-group commas;
// dates allow dash or slash separators.
const (
	amountShape = `([0-9][0-9,]*(?:\.[0-9]+)?)`
	dateShape   = `(\d{4}[-/]\d{1,2}[-/]\d{1,2})`
)

// filenameInvoiceNumber is the positional fallback for invoice numbers:
// Taiwanese e-invoice numbers are two uppercase letters plus eight digits and
// commonly appear as a token of the attachment filename.
var filenameInvoiceNumber = regexp.MustCompile(`[A-Z]{2}\d{8}`)

// PatternLibrary holds, per field, an ordered list of candidate matchers.
// Ordering encodes dialect priority: field-specific Chinese tax-invoice labels
// first, generic English labels second, contextual fallbacks last. The library
// is pure data; documents are colon-normalized before it is applied, so every
// pattern only needs the half-width `:` form.
type PatternLibrary struct {
	order    []Field
	matchers map[Field][]Matcher
}

// NewPatternLibrary builds the default catalog.
func NewPatternLibrary() *PatternLibrary {
	lib := &PatternLibrary{matchers: make(map[Field][]Matcher)}

	lib.add(FieldInvoiceNumber,
		Matcher{"zh:發票號碼", regexp.MustCompile(`發票號碼\s*:?\s*([A-Z]{2}\d{8})`)},
		Matcher{"zh:發票號碼:loose", regexp.MustCompile(`發票號碼\s*:\s*(\S+)`)},
		Matcher{"zh:發票編號", regexp.MustCompile(`發票編號\s*:?\s*(\S+)`)},
		Matcher{"en:invoice-number", regexp.MustCompile(`(?i)Invoice\s*(?:Number|No\.?)\s*:?\s*([A-Z0-9][A-Z0-9-]*)`)},
		Matcher{"en:no.", regexp.MustCompile(`(?m)^\s*NO\.\s*:?\s*([A-Z]{2}\d{8})`)},
	)

	lib.add(FieldInvoiceDate,
		Matcher{"zh:發票日期", regexp.MustCompile(`發票日期\s*:?\s*`+dateShape)},
		Matcher{"en:invoice-date", regexp.MustCompile(`(?i)Invoice\s*Date\s*:?\s*`+dateShape)},
		Matcher{"en:date", regexp.MustCompile(`(?im)^\s*Date\s*:?\s*`+dateShape)},
	)

	lib.add(FieldBuyerName,
		Matcher{"zh:買受人", regexp.MustCompile(`買受人\s*:?\s*([^\n]+)`)},
		Matcher{"en:buyer-name", regexp.MustCompile(`(?i)Buyer\s*Name\s*:?\s*([^\n]+)`)},
		Matcher{"en:customer", regexp.MustCompile(`(?im)^\s*Customer\s*:?\s*([^\n]+)`)},
	)

	lib.add(FieldBuyerTaxID,
		Matcher{"zh:統一編號", regexp.MustCompile(`統一編號\s*:?\s*(\d{8})`)},
		Matcher{"en:buyer-tax-id", regexp.MustCompile(`(?i)Buyer\s*Tax\s*ID\s*:?\s*(\d{8})`)},
		Matcher{"en:tax-id", regexp.MustCompile(`(?im)^\s*Tax\s*ID\s*:?\s*(\d{8})`)},
	)

	lib.add(FieldSellerName,
		Matcher{"zh:賣方名稱", regexp.MustCompile(`賣方名稱\s*:?\s*([^\n]+)`)},
		Matcher{"en:seller-name", regexp.MustCompile(`(?i)Seller\s*Name\s*:?\s*([^\n]+)`)},
	)

	lib.add(FieldTaxableAmount,
		Matcher{"zh:應稅銷售額", regexp.MustCompile(`應稅銷售額\s*:?\s*`+amountShape)},
		Matcher{"en:taxable-amount", regexp.MustCompile(`(?i)Taxable\s*Amount\s*:?\s*`+amountShape)},
	)

	lib.add(FieldTaxFreeAmount,
		Matcher{"zh:免稅銷售額", regexp.MustCompile(`免稅銷售額\s*:?\s*`+amountShape)},
		Matcher{"en:tax-free-amount", regexp.MustCompile(`(?i)Tax\s*Free\s*Amount\s*:?\s*`+amountShape)},
	)

	lib.add(FieldZeroTaxAmount,
		Matcher{"zh:零稅率銷售額", regexp.MustCompile(`零稅率銷售額\s*:?\s*`+amountShape)},
		Matcher{"en:zero-tax-amount", regexp.MustCompile(`(?i)Zero\s*Tax\s*Amount\s*:?\s*`+amountShape)},
	)

	// 稅額 and "Tax Amount" are anchored to line starts so they cannot fire
	// inside 營業稅額 / "Zero Tax Amount" lines.
	lib.add(FieldTaxAmount,
		Matcher{"zh:營業稅額", regexp.MustCompile(`營業稅額\s*:?\s*`+amountShape)},
		Matcher{"zh:稅額", regexp.MustCompile(`(?m)^\s*稅額\s*:?\s*`+amountShape)},
		Matcher{"en:tax-amount", regexp.MustCompile(`(?im)^\s*Tax\s*Amount\s*:?\s*`+amountShape)},
	)

	lib.add(FieldTotalAmount,
		Matcher{"zh:發票總金額", regexp.MustCompile(`發票總金額\s*:?\s*`+amountShape)},
		Matcher{"zh:總金額", regexp.MustCompile(`總金額\s*:?\s*`+amountShape)},
		Matcher{"zh:總計", regexp.MustCompile(`總計\s*:?\s*`+amountShape)},
		Matcher{"en:total-amount", regexp.MustCompile(`(?i)Total\s*Amount\s*:?\s*`+amountShape)},
	)

	return lib
}

func (l *PatternLibrary) add(field Field, matchers ...Matcher) {
	l.order = append(l.order, field)
	l.matchers[field] = matchers
}

// Fields returns the fields in catalog order.
func (l *PatternLibrary) Fields() []Field {
	return l.order
}

// CandidatesFor returns the ordered matcher list for a field.
func (l *PatternLibrary) CandidatesFor(field Field) []Matcher {
	return l.matchers[field]
}

// IsAmountField reports whether the field carries a decimal amount.
func IsAmountField(f Field) bool {
	switch f {
	case FieldTaxableAmount, FieldTaxFreeAmount, FieldZeroTaxAmount, FieldTaxAmount, FieldTotalAmount:
		return true
	}
	return false
}

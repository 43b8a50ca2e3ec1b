package extract

import (
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/NATEHSIAO/pdf-invoice/core/domain"
)

// =============================================================================
// Invoice Extractor
// =============================================================================

// Extractor recovers a structured invoice record from the extracted text layer
// of a PDF. It is stateless and safe for concurrent use; the same input always
// yields the same result.
type Extractor struct {
	lib *PatternLibrary
	log zerolog.Logger
}

// NewExtractor creates an extractor with the default pattern library.
func NewExtractor(log zerolog.Logger) *Extractor {
	return &Extractor{
		lib: NewPatternLibrary(),
		log: log,
	}
}

// Extract applies the pattern library to the document text and returns the
// completed record, or a *domain.ExtractionFailure describing why no record
// could be produced. filename may be empty; when present it enables the
// positional invoice-number fallback. Extract never panics on malformed input.
func (e *Extractor) Extract(text string, email domain.EmailContext, filename string) (*domain.InvoiceRecord, error) {
	if strings.TrimSpace(text) == "" {
		e.log.Warn().Msg("document has no extractable text")
		return nil, &domain.ExtractionFailure{Reason: domain.FailureNoText, Text: text}
	}

	// Full-width colons collapse to half-width so both dialects hit the same
	// patterns.
	norm := normalizeColons(text)

	rec := &domain.InvoiceRecord{
		EmailSubject: email.Subject,
		EmailSender:  email.Sender,
		EmailDate:    email.Date,
	}

	matched := make(map[Field]bool, len(e.lib.Fields()))
	for _, field := range e.lib.Fields() {
		if e.matchField(norm, field, rec) {
			matched[field] = true
		} else {
			e.log.Debug().Str("field", string(field)).Msg("no matcher fired")
		}
	}

	// Positional fallback: derive the invoice number from the filename token.
	if rec.InvoiceNumber == "" && filename != "" {
		if token := filenameInvoiceNumber.FindString(filename); token != "" {
			rec.InvoiceNumber = token
			e.log.Debug().Str("field", string(FieldInvoiceNumber)).
				Str("value", token).Msg("resolved from filename")
		}
	}

	// Line-item aggregation fills only the summary fields no matcher resolved;
	// directly matched values are never overwritten.
	items, sums := AggregateLineItems(norm, e.log)
	if len(items) > 0 {
		e.log.Debug().Int("line_items", len(items)).Msg("aggregated line items")
	}
	if !matched[FieldTaxableAmount] && rec.TaxableAmount == 0 {
		rec.TaxableAmount = sums[domain.TaxCategoryTaxable]
	}
	if !matched[FieldTaxFreeAmount] && rec.TaxFreeAmount == 0 {
		rec.TaxFreeAmount = sums[domain.TaxCategoryTaxFree]
	}
	if !matched[FieldZeroTaxAmount] && rec.ZeroTaxAmount == 0 {
		rec.ZeroTaxAmount = sums[domain.TaxCategoryZeroTax]
	}

	// Date fallback: ISO truncation of the message date.
	if rec.InvoiceDate == "" && len(email.Date) >= 10 {
		rec.InvoiceDate = email.Date[:10]
	}

	if rec.InvoiceNumber == "" || rec.TotalAmount <= 0 {
		e.log.Warn().
			Str("invoice_number", rec.InvoiceNumber).
			Float64("total_amount", rec.TotalAmount).
			Msg("mandatory fields unresolved")
		return nil, &domain.ExtractionFailure{
			Reason:  domain.FailureMissingMandatory,
			Text:    text,
			Partial: rec,
		}
	}

	return rec, nil
}

// matchField walks the field's matcher list top to bottom; the first matcher
// that fires anywhere in the text wins. A fired matcher whose amount fails
// conversion leaves the field unresolved rather than trying further matchers.
func (e *Extractor) matchField(text string, field Field, rec *domain.InvoiceRecord) bool {
	for _, m := range e.lib.CandidatesFor(field) {
		groups := m.Pattern.FindStringSubmatch(text)
		if groups == nil {
			continue
		}
		raw := strings.TrimSpace(groups[1])

		if IsAmountField(field) {
			value, err := parseAmount(raw)
			if err != nil {
				e.log.Warn().Str("field", string(field)).Str("matcher", m.Label).
					Str("value", raw).Err(err).
					Str("reason", string(domain.FailureMalformedAmount)).
					Msg("amount failed conversion, field treated as absent")
				return false
			}
			setAmount(rec, field, value)
		} else {
			setText(rec, field, raw)
		}

		e.log.Debug().Str("field", string(field)).Str("matcher", m.Label).Msg("field resolved")
		return true
	}
	return false
}

func setText(rec *domain.InvoiceRecord, field Field, value string) {
	switch field {
	case FieldInvoiceNumber:
		rec.InvoiceNumber = value
	case FieldInvoiceDate:
		rec.InvoiceDate = value
	case FieldBuyerName:
		rec.BuyerName = value
	case FieldBuyerTaxID:
		rec.BuyerTaxID = value
	case FieldSellerName:
		rec.SellerName = value
	}
}

func setAmount(rec *domain.InvoiceRecord, field Field, value float64) {
	switch field {
	case FieldTaxableAmount:
		rec.TaxableAmount = value
	case FieldTaxFreeAmount:
		rec.TaxFreeAmount = value
	case FieldZeroTaxAmount:
		rec.ZeroTaxAmount = value
	case FieldTaxAmount:
		rec.TaxAmount = value
	case FieldTotalAmount:
		rec.TotalAmount = value
	}
}

func normalizeColons(s string) string {
	return strings.ReplaceAll(s, "：", ":")
}

// parseAmount strips thousands-group separators and converts to a non-negative
// decimal with two fractional digits of precision.
func parseAmount(s string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, strconv.ErrRange
	}
	return math.Round(v*100) / 100, nil
}

package extract

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/NATEHSIAO/pdf-invoice/core/domain"
)

func testExtractor() *Extractor {
	return NewExtractor(zerolog.Nop())
}

func testEmail() domain.EmailContext {
	return domain.EmailContext{
		Subject: "三月發票",
		Sender:  "億聲科技 <billing@example.com.tw>",
		Date:    "2024-03-15T09:30:00Z",
	}
}

func TestExtractChineseInvoice(t *testing.T) {
	text := `電子發票證明聯
發票號碼: AB12345678
發票日期: 2024-03-10
買受人: 測試股份有限公司
統一編號: 12345678
賣方名稱: 億聲科技有限公司
應稅銷售額: 1,000
營業稅額: 50
發票總金額 1,050`

	rec, err := testExtractor().Extract(text, testEmail(), "")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if rec.InvoiceNumber != "AB12345678" {
		t.Errorf("InvoiceNumber = %q, want AB12345678", rec.InvoiceNumber)
	}
	if rec.InvoiceDate != "2024-03-10" {
		t.Errorf("InvoiceDate = %q, want 2024-03-10", rec.InvoiceDate)
	}
	if rec.BuyerName != "測試股份有限公司" {
		t.Errorf("BuyerName = %q", rec.BuyerName)
	}
	if rec.BuyerTaxID != "12345678" {
		t.Errorf("BuyerTaxID = %q", rec.BuyerTaxID)
	}
	if rec.TaxableAmount != 1000 {
		t.Errorf("TaxableAmount = %v, want 1000", rec.TaxableAmount)
	}
	if rec.TaxAmount != 50 {
		t.Errorf("TaxAmount = %v, want 50", rec.TaxAmount)
	}
	// 發票總金額 matches even without a colon between label and value.
	if rec.TotalAmount != 1050 {
		t.Errorf("TotalAmount = %v, want 1050", rec.TotalAmount)
	}
	if rec.EmailSubject != "三月發票" || rec.EmailDate != "2024-03-15T09:30:00Z" {
		t.Errorf("email context not stamped: %+v", rec)
	}
}

func TestExtractFullWidthColons(t *testing.T) {
	// Full-width colons must behave exactly like half-width ones.
	text := "發票號碼：CD87654321\n發票總金額：2,500.50\n"

	rec, err := testExtractor().Extract(text, testEmail(), "")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if rec.InvoiceNumber != "CD87654321" {
		t.Errorf("InvoiceNumber = %q, want CD87654321", rec.InvoiceNumber)
	}
	if rec.TotalAmount != 2500.50 {
		t.Errorf("TotalAmount = %v, want 2500.50", rec.TotalAmount)
	}
}

func TestExtractEnglishInvoice(t *testing.T) {
	text := `INVOICE
Invoice Number: INV-2024-001
Invoice Date: 2024/03/01
Buyer Name: Acme Corp
Total Amount: 99.99`

	rec, err := testExtractor().Extract(text, testEmail(), "")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if rec.InvoiceNumber != "INV-2024-001" {
		t.Errorf("InvoiceNumber = %q", rec.InvoiceNumber)
	}
	if rec.InvoiceDate != "2024/03/01" {
		t.Errorf("InvoiceDate = %q", rec.InvoiceDate)
	}
	if rec.TotalAmount != 99.99 {
		t.Errorf("TotalAmount = %v", rec.TotalAmount)
	}
}

func TestExtractNoText(t *testing.T) {
	for _, text := range []string{"", "   \n\t  "} {
		_, err := testExtractor().Extract(text, testEmail(), "")
		failure, ok := domain.IsExtractionFailure(err)
		if !ok {
			t.Fatalf("Extract(%q) error = %v, want ExtractionFailure", text, err)
		}
		if failure.Reason != domain.FailureNoText {
			t.Errorf("Reason = %q, want %q", failure.Reason, domain.FailureNoText)
		}
	}
}

func TestExtractMissingMandatory(t *testing.T) {
	// Buyer info alone is not enough: no invoice number, no total.
	text := "買受人: 測試公司\n統一編號: 12345678\n"

	_, err := testExtractor().Extract(text, testEmail(), "")
	failure, ok := domain.IsExtractionFailure(err)
	if !ok {
		t.Fatalf("Extract() error = %v, want ExtractionFailure", err)
	}
	if failure.Reason != domain.FailureMissingMandatory {
		t.Errorf("Reason = %q, want %q", failure.Reason, domain.FailureMissingMandatory)
	}
	if failure.Partial == nil || failure.Partial.BuyerName != "測試公司" {
		t.Errorf("Partial record missing recovered fields: %+v", failure.Partial)
	}
}

func TestExtractFilenameFallback(t *testing.T) {
	text := "發票總金額: 500\n"

	rec, err := testExtractor().Extract(text, testEmail(), "invoice_EF11223344.pdf")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if rec.InvoiceNumber != "EF11223344" {
		t.Errorf("InvoiceNumber = %q, want EF11223344 (from filename)", rec.InvoiceNumber)
	}
}

func TestExtractFilenameFallbackNeverOverrides(t *testing.T) {
	text := "發票號碼: AB12345678\n發票總金額: 500\n"

	rec, err := testExtractor().Extract(text, testEmail(), "invoice_ZZ99999999.pdf")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if rec.InvoiceNumber != "AB12345678" {
		t.Errorf("InvoiceNumber = %q, filename must not override a matched number", rec.InvoiceNumber)
	}
}

func TestExtractEmailDateFallback(t *testing.T) {
	text := "發票號碼: AB12345678\n發票總金額: 500\n"

	rec, err := testExtractor().Extract(text, testEmail(), "")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if rec.InvoiceDate != "2024-03-15" {
		t.Errorf("InvoiceDate = %q, want 2024-03-15 (message date truncation)", rec.InvoiceDate)
	}
}

func TestExtractAggregationFillsOnlyUnmatched(t *testing.T) {
	// The summary line for taxable sales is present, so line-item sums must
	// not overwrite it; the tax-free total has no summary line and is filled
	// from the aggregated rows.
	text := `發票號碼: AB12345678
商品甲 應稅 2 100 200
商品乙 免稅 1 300 300
應稅銷售額: 999
發票總金額: 1299`

	rec, err := testExtractor().Extract(text, testEmail(), "")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if rec.TaxableAmount != 999 {
		t.Errorf("TaxableAmount = %v, want 999 (matched summary wins)", rec.TaxableAmount)
	}
	if rec.TaxFreeAmount != 300 {
		t.Errorf("TaxFreeAmount = %v, want 300 (filled from line items)", rec.TaxFreeAmount)
	}
}

func TestExtractAggregationKeepsExplicitZero(t *testing.T) {
	// A summary line that matched with value 0 stays 0 even when line items
	// would sum to more.
	text := `發票號碼: AB12345678
商品甲 應稅 2 100 200
應稅銷售額: 0
發票總金額: 200`

	rec, err := testExtractor().Extract(text, testEmail(), "")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if rec.TaxableAmount != 0 {
		t.Errorf("TaxableAmount = %v, want 0 (explicit zero match wins)", rec.TaxableAmount)
	}
}

func TestExtractDeterministic(t *testing.T) {
	text := `發票號碼: AB12345678
商品甲 應稅 2 100 200
發票總金額: 200`

	first, err := testExtractor().Extract(text, testEmail(), "a.pdf")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := testExtractor().Extract(text, testEmail(), "a.pdf")
		if err != nil {
			t.Fatalf("Extract() run %d error = %v", i, err)
		}
		if *again != *first {
			t.Fatalf("run %d diverged: %+v vs %+v", i, again, first)
		}
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    float64
		wantErr bool
	}{
		{"plain integer", "1050", 1050, false},
		{"thousands separators", "1,234,567.89", 1234567.89, false},
		{"rounds to cents", "10.005", 10.01, false},
		{"surrounding space", " 42 ", 42, false},
		{"negative rejected", "-5", 0, true},
		{"not a number", "abc", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAmount(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseAmount(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseAmount(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

package extract

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/NATEHSIAO/pdf-invoice/core/domain"
)

func TestAggregateLineItems(t *testing.T) {
	text := `品名 課稅別 數量 單價 金額
筆記型電腦 應稅 2 30,000 60,000
書籍 免稅 3 500 1,500
外銷服務 零稅率 1 10,000 10,000
雜項不成行
辦公椅 4 1,200 4,800
耗材 數量: 10 單價: 50 金額: 500`

	items, sums := AggregateLineItems(text, zerolog.Nop())

	if len(items) != 5 {
		t.Fatalf("len(items) = %d, want 5", len(items))
	}

	want := []domain.LineItem{
		{Description: "筆記型電腦", Category: domain.TaxCategoryTaxable, Quantity: 2, UnitPrice: 30000, Amount: 60000},
		{Description: "書籍", Category: domain.TaxCategoryTaxFree, Quantity: 3, UnitPrice: 500, Amount: 1500},
		{Description: "外銷服務", Category: domain.TaxCategoryZeroTax, Quantity: 1, UnitPrice: 10000, Amount: 10000},
		{Description: "辦公椅", Category: domain.TaxCategoryTaxable, Quantity: 4, UnitPrice: 1200, Amount: 4800},
		{Description: "耗材", Category: domain.TaxCategoryTaxable, Quantity: 10, UnitPrice: 50, Amount: 500},
	}
	for i, w := range want {
		if items[i] != w {
			t.Errorf("items[%d] = %+v, want %+v", i, items[i], w)
		}
	}

	if sums[domain.TaxCategoryTaxable] != 65300 {
		t.Errorf("taxable sum = %v, want 65300", sums[domain.TaxCategoryTaxable])
	}
	if sums[domain.TaxCategoryTaxFree] != 1500 {
		t.Errorf("tax-free sum = %v, want 1500", sums[domain.TaxCategoryTaxFree])
	}
	if sums[domain.TaxCategoryZeroTax] != 10000 {
		t.Errorf("zero-tax sum = %v, want 10000", sums[domain.TaxCategoryZeroTax])
	}
}

func TestAggregateLineItemsEmpty(t *testing.T) {
	items, sums := AggregateLineItems("發票號碼: AB12345678\n總計: 100\n", zerolog.Nop())
	if len(items) != 0 {
		t.Errorf("len(items) = %d, want 0", len(items))
	}
	for cat, sum := range sums {
		if sum != 0 {
			t.Errorf("sums[%s] = %v, want 0", cat, sum)
		}
	}
}

func TestMatchLineFirstShapeWins(t *testing.T) {
	// A line carrying a category token must land in the category shape, not
	// the reduced one.
	item, ok := matchLine("商品 免稅 1 100 100", zerolog.Nop())
	if !ok {
		t.Fatal("matchLine() = false, want match")
	}
	if item.Category != domain.TaxCategoryTaxFree {
		t.Errorf("Category = %q, want %q", item.Category, domain.TaxCategoryTaxFree)
	}
}

func TestMatchLineRejectsNonItems(t *testing.T) {
	tests := []string{
		"",
		"電子發票證明聯",
		"發票日期: 2024-03-10",
		"統一編號: 12345678",
	}
	for _, line := range tests {
		if _, ok := matchLine(line, zerolog.Nop()); ok {
			t.Errorf("matchLine(%q) matched, want no match", line)
		}
	}
}

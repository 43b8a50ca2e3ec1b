package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/NATEHSIAO/pdf-invoice/core/domain"
)

// =============================================================================
// Line Item Aggregator
// =============================================================================

// lineShape is one recognized physical-line layout. Group indices name which
// capture holds what; category 0 means the shape carries no tax-category token
// and defaults to taxable.
type lineShape struct {
	name     string
	re       *regexp.Regexp
	desc     int
	category int
	quantity int
	price    int
	amount   int
}

// Shapes are tried per line in order; the first match wins. A line matching
// none of them is simply not a line item.
var lineShapes = []lineShape{
	{
		name: "category",
		re: regexp.MustCompile(`^(.+?)\s+(應稅|免稅|零稅率)\s+(\d+)\s+` +
			amountShape + `\s+` + amountShape + `$`),
		desc: 1, category: 2, quantity: 3, price: 4, amount: 5,
	},
	{
		name: "reduced",
		re: regexp.MustCompile(`^(.+?)\s+(\d+)\s+` +
			amountShape + `\s+` + amountShape + `$`),
		desc: 1, quantity: 2, price: 3, amount: 4,
	},
	{
		name: "labelled",
		re: regexp.MustCompile(`^(.*?)\s*數量\s*:?\s*(\d+)\s*單價\s*:?\s*` +
			amountShape + `\s*金額\s*:?\s*` + amountShape + `$`),
		desc: 1, quantity: 2, price: 3, amount: 4,
	},
}

var categoryTokens = map[string]domain.TaxCategory{
	"應稅":  domain.TaxCategoryTaxable,
	"免稅":  domain.TaxCategoryTaxFree,
	"零稅率": domain.TaxCategoryZeroTax,
}

// AggregateLineItems scans the document line by line, recovers itemized rows,
// and sums their amounts per tax category. Lines whose matched groups fail
// numeric conversion are discarded, not fatal.
func AggregateLineItems(text string, log zerolog.Logger) ([]domain.LineItem, map[domain.TaxCategory]float64) {
	var items []domain.LineItem
	sums := map[domain.TaxCategory]float64{
		domain.TaxCategoryTaxable: 0,
		domain.TaxCategoryTaxFree: 0,
		domain.TaxCategoryZeroTax: 0,
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		item, ok := matchLine(line, log)
		if !ok {
			continue
		}
		items = append(items, item)
		sums[item.Category] += item.Amount
	}

	return items, sums
}

func matchLine(line string, log zerolog.Logger) (domain.LineItem, bool) {
	for _, shape := range lineShapes {
		groups := shape.re.FindStringSubmatch(line)
		if groups == nil {
			continue
		}

		category := domain.TaxCategoryTaxable
		if shape.category > 0 {
			category = categoryTokens[groups[shape.category]]
		}

		quantity, err := strconv.Atoi(groups[shape.quantity])
		if err != nil {
			log.Warn().Str("shape", shape.name).Str("line", line).Err(err).
				Msg("line item quantity failed conversion, discarded")
			return domain.LineItem{}, false
		}
		price, err := parseAmount(groups[shape.price])
		if err != nil {
			log.Warn().Str("shape", shape.name).Str("line", line).Err(err).
				Msg("line item unit price failed conversion, discarded")
			return domain.LineItem{}, false
		}
		amount, err := parseAmount(groups[shape.amount])
		if err != nil {
			log.Warn().Str("shape", shape.name).Str("line", line).Err(err).
				Msg("line item amount failed conversion, discarded")
			return domain.LineItem{}, false
		}

		return domain.LineItem{
			Description: strings.TrimSpace(groups[shape.desc]),
			Category:    category,
			Quantity:    quantity,
			UnitPrice:   price,
			Amount:      amount,
		}, true
	}

	return domain.LineItem{}, false
}

package repositories

import (
	"fmt"

	"scango/internal/apperrors"
	"scango/internal/models"
	"scango/internal/validation"

	"github.com/shopspring/decimal"
)

var documentValidator = validation.New()

// checkDocument rejects documents that do not match the collection schema.
// It runs on every write and on every read so a malformed record fails at the
// data-access layer instead of leaking zero values upward.
func checkDocument(kind, id string, doc interface{}) error {
	if err := validation.Struct(documentValidator, doc); err != nil {
		return fmt.Errorf("malformed %s document %s: %w", kind, id, err)
	}
	switch d := doc.(type) {
	case *models.Cart:
		if !d.TotalPrice.Equal(d.ComputeTotal()) {
			return fmt.Errorf("malformed cart document %s: %w", id,
				apperrors.Invalid("total_price", fmt.Sprintf("stored %s, lines sum to %s", d.TotalPrice, d.ComputeTotal())))
		}
	case *models.Order:
		if !d.TotalPrice.Equal(orderLinesTotal(d)) {
			return fmt.Errorf("malformed order document %s: %w", id,
				apperrors.Invalid("total_price", fmt.Sprintf("stored %s, lines sum to %s", d.TotalPrice, orderLinesTotal(d))))
		}
	}
	return nil
}

func orderLinesTotal(o *models.Order) decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

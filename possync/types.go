package possync

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/toyiyo/kitchenbooks_backend/workflow"
)

// SaleEvent is one sold line item as delivered by the POS sync collaborator.
// SaleDate accepts "2006-01-02" or RFC 3339; POS exports use both.
type SaleEvent struct {
	PosItemName     string          `json:"pos_item_name" validate:"required"`
	QuantitySold    decimal.Decimal `json:"quantity_sold"`
	SaleDate        string          `json:"sale_date" validate:"required"`
	ExternalOrderId string          `json:"external_order_id" validate:"required"`
}

const (
	OutcomeDeducted         = "deducted"
	OutcomeNoRecipe         = "no_recipe"
	OutcomeAlreadyProcessed = "already_processed"
	OutcomeFailed           = "failed"
)

// SaleLineOutcome reports what happened to one sale line. A failed line never
// halts the rest of the batch; it is reported here for the caller to alert on.
type SaleLineOutcome struct {
	ExternalOrderId string                    `json:"external_order_id"`
	PosItemName     string                    `json:"pos_item_name"`
	Status          string                    `json:"status"`
	Error           string                    `json:"error,omitempty"`
	Result          *workflow.DeductionResult `json:"result,omitempty"`
}

// SalesBatchRequest is the intake body for one sync cycle's line items.
type SalesBatchRequest struct {
	RestaurantId string      `json:"restaurant_id" binding:"required"`
	Sales        []SaleEvent `json:"sales" binding:"required"`
}

type SalesBatchResponse struct {
	Processed int               `json:"processed"`
	Failed    int               `json:"failed"`
	Outcomes  []SaleLineOutcome `json:"outcomes"`
}

func parseSaleDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TransactionTypeUsage TransactionType = "usage"
)

// InventoryTransaction is the append-only audit trail for stock changes made
// by the deduction core: one row per ingredient per processed sale line, with
// signed quantity and cost deltas (negative for usage). Rows are never
// updated or deleted.
//
// The unique (restaurant_id, reference_id, product_id) index is the
// idempotency fence: the ledger itself doubles as the processed-sale index,
// so there is no second source of truth to drift. A recipe must therefore not
// list the same product twice (enforced by the recipe editor upstream).
type InventoryTransaction struct {
	ID              string          `gorm:"size:36;primary_key" json:"id"`
	RestaurantId    string          `gorm:"size:36;index:uniq_usage_ref,unique,priority:1;not null" json:"restaurant_id"`
	ReferenceId     string          `gorm:"size:120;index:uniq_usage_ref,unique,priority:2;not null" json:"reference_id"`
	ProductId       string          `gorm:"size:36;index:uniq_usage_ref,unique,priority:3;not null" json:"product_id"`
	Quantity        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	TotalCost       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_cost"`
	TransactionType TransactionType `gorm:"size:20;not null;default:'usage'" json:"transaction_type"`
	TransactionDate time.Time       `gorm:"index;not null" json:"transaction_date"`
	CorrelationId   string          `gorm:"size:64;index" json:"correlation_id"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (t *InventoryTransaction) BeforeCreate(tx *gorm.DB) error {
	_ = tx
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.TransactionType == "" {
		t.TransactionType = TransactionTypeUsage
	}
	return nil
}

// SaleReferenceId composes the ledger reference for one processed
// (external order, recipe) pair. The external order id is embedded so
// downstream reporting can join back to the POS sale.
func SaleReferenceId(externalOrderId string, recipeId string) string {
	return fmt.Sprintf("pos_sale:%s:%s", externalOrderId, recipeId)
}

// HasProcessedSale reports whether any usage transaction exists for the
// reference. Existence IS the already-processed signal; call it inside the
// same transaction (and under the same deduction lock) as the stock mutation.
func HasProcessedSale(tx *gorm.DB, restaurantId string, referenceId string) (bool, error) {
	var count int64
	err := tx.Model(&InventoryTransaction{}).
		Where("restaurant_id = ? AND reference_id = ? AND transaction_type = ?",
			restaurantId, referenceId, TransactionTypeUsage).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindUsageTransactions returns the logged rows for a reference in insertion
// order, used to rebuild the summary of an already-processed sale.
func FindUsageTransactions(tx *gorm.DB, restaurantId string, referenceId string) ([]*InventoryTransaction, error) {
	var rows []*InventoryTransaction
	err := tx.
		Where("restaurant_id = ? AND reference_id = ? AND transaction_type = ?",
			restaurantId, referenceId, TransactionTypeUsage).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

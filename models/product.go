package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/toyiyo/kitchenbooks_backend/units"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Product is a raw material tracked in purchase units. CurrentStock is the
// mutable on-hand aggregate; it never goes below zero (deductions clamp).
// SizeValue/SizeUnit declare the content of one container when PurchaseUnit
// is a vessel, e.g. a 750 ml bottle.
type Product struct {
	ID           string          `gorm:"size:36;primary_key" json:"id"`
	RestaurantId string          `gorm:"size:36;index;not null" json:"restaurant_id"`
	Name         string          `gorm:"size:100;not null" json:"name" binding:"required"`
	PurchaseUnit string          `gorm:"size:20;not null" json:"purchase_unit" binding:"required"`
	CurrentStock decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"current_stock"`
	CostPerUnit  decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"cost_per_unit"`
	SizeValue    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"size_value"`
	SizeUnit     string          `gorm:"size:20" json:"size_unit"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	_ = tx
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// ConversionSpec adapts the product's purchase-side description for the unit
// conversion resolver. Unparseable unit strings are passed through raw so the
// resolver reports them as conversion failures instead of guessing.
func (p *Product) ConversionSpec() units.ProductSpec {
	spec := units.ProductSpec{Name: p.Name}
	if u, ok := units.Parse(p.PurchaseUnit); ok {
		spec.PurchaseUnit = u
	} else {
		spec.PurchaseUnit = units.Unit(p.PurchaseUnit)
	}
	if p.SizeUnit != "" && p.SizeValue.IsPositive() {
		if u, ok := units.Parse(p.SizeUnit); ok {
			spec.SizeUnit = u
			spec.SizeValue = p.SizeValue
		}
	}
	return spec
}

// GetProductForUpdate fetches a product row serialized against concurrent
// deductions. On MySQL the row is locked FOR UPDATE for the duration of the
// caller's transaction; the sqlite test driver serializes writers itself and
// rejects the locking clause, so it is applied per dialect.
func GetProductForUpdate(tx *gorm.DB, restaurantId string, productId string) (*Product, error) {
	q := tx.Where("restaurant_id = ? AND id = ?", restaurantId, productId)
	if tx.Dialector.Name() == "mysql" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var product Product
	if err := q.First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProductStock persists a new on-hand quantity for a locked product row.
func UpdateProductStock(tx *gorm.DB, product *Product, newStock decimal.Decimal) error {
	if err := tx.Model(&Product{}).Where("id = ?", product.ID).
		Update("current_stock", newStock).Error; err != nil {
		return err
	}
	product.CurrentStock = newStock
	return nil
}

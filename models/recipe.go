package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Recipe maps a POS-sold item name to its ingredient consumption rules.
// Created and edited by restaurant staff; the deduction core only reads it.
type Recipe struct {
	ID           string             `gorm:"size:36;primary_key" json:"id"`
	RestaurantId string             `gorm:"size:36;index:idx_recipe_pos_item,priority:1;not null" json:"restaurant_id"`
	Name         string             `gorm:"size:100;not null" json:"name" binding:"required"`
	PosItemName  string             `gorm:"size:100;index:idx_recipe_pos_item,priority:2;not null" json:"pos_item_name" binding:"required"`
	IsActive     *bool              `gorm:"not null;default:true" json:"is_active"`
	Ingredients  []RecipeIngredient `gorm:"foreignKey:RecipeId" json:"ingredients"`
	CreatedAt    time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	_ = tx
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// RecipeIngredient is one (product, quantity, unit) consumption rule. The
// unit is recipe-side (cup, oz, g, ...) and converted per product on deduction.
type RecipeIngredient struct {
	ID        int             `gorm:"primary_key" json:"id"`
	RecipeId  string          `gorm:"size:36;index;not null" json:"recipe_id"`
	ProductId string          `gorm:"size:36;not null" json:"product_id"`
	Quantity  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	Unit      string          `gorm:"size:20;not null" json:"unit"`
}

// FindActiveRecipe resolves a POS item name to its active recipe by exact
// string match, ingredients preloaded in insertion order. No match is a
// normal outcome (gift cards, comped items) and returns (nil, nil).
func FindActiveRecipe(tx *gorm.DB, restaurantId string, posItemName string) (*Recipe, error) {
	var recipe Recipe
	err := tx.
		Where("restaurant_id = ? AND pos_item_name = ? AND is_active = ?", restaurantId, posItemName, true).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.id ASC")
		}).
		First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

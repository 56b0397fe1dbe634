package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Restaurant is the tenant boundary: every product, recipe and inventory
// transaction belongs to exactly one restaurant, and each restaurant's
// inventory is an independent consistency domain.
type Restaurant struct {
	ID        string    `gorm:"size:36;primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Timezone  string    `gorm:"size:50" json:"timezone"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *Restaurant) BeforeCreate(tx *gorm.DB) error {
	_ = tx
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

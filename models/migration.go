package models

import (
	"log"

	"github.com/toyiyo/kitchenbooks_backend/config"
	"gorm.io/gorm"
)

func MigrateTable() {
	if err := MigrateTablesOn(config.GetDB()); err != nil {
		log.Fatal(err)
	}
}

// MigrateTablesOn runs the schema migration against an explicit connection.
// Tests use it with the in-memory sqlite driver.
func MigrateTablesOn(db *gorm.DB) error {
	return db.AutoMigrate(
		&Restaurant{},
		&Product{},
		&Recipe{}, &RecipeIngredient{},
		&InventoryTransaction{},
	)
}

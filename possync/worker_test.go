package possync

import (
	"context"
	"io"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/toyiyo/kitchenbooks_backend/models"
	"github.com/toyiyo/kitchenbooks_backend/utils"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := models.MigrateTablesOn(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedKitchen(t *testing.T, db *gorm.DB) (restaurantId string, productId string) {
	t.Helper()
	r := &models.Restaurant{Name: "Batch Kitchen", IsActive: utils.NewTrue()}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("create restaurant: %v", err)
	}
	p := &models.Product{
		RestaurantId: r.ID,
		Name:         "Beef",
		PurchaseUnit: "kg",
		CurrentStock: decimal.NewFromInt(10),
		CostPerUnit:  decimal.NewFromInt(12),
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	recipe := &models.Recipe{
		RestaurantId: r.ID,
		Name:         "Burger",
		PosItemName:  "Classic Burger",
		IsActive:     utils.NewTrue(),
		Ingredients: []models.RecipeIngredient{
			{ProductId: p.ID, Quantity: decimal.RequireFromString("0.5"), Unit: "kg"},
		},
	}
	if err := db.Create(recipe).Error; err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	return r.ID, p.ID
}

func TestProcessSaleBatch_MixedLinesNeverHalt(t *testing.T) {
	db := newTestDB(t)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	restaurantId, productId := seedKitchen(t, db)

	events := []SaleEvent{
		{PosItemName: "Classic Burger", QuantitySold: decimal.NewFromInt(2), SaleDate: "2026-03-14", ExternalOrderId: "b-1"},
		// Malformed: no sale date.
		{PosItemName: "Classic Burger", QuantitySold: decimal.NewFromInt(1), ExternalOrderId: "b-2"},
		// No recipe: gift card.
		{PosItemName: "Gift Card $25", QuantitySold: decimal.NewFromInt(1), SaleDate: "2026-03-14", ExternalOrderId: "b-3"},
		// Duplicate of the first line.
		{PosItemName: "Classic Burger", QuantitySold: decimal.NewFromInt(2), SaleDate: "2026-03-14", ExternalOrderId: "b-1"},
		// Unparseable date.
		{PosItemName: "Classic Burger", QuantitySold: decimal.NewFromInt(1), SaleDate: "14/03/2026", ExternalOrderId: "b-4"},
	}

	outcomes, err := ProcessSaleBatch(context.Background(), db, logger, restaurantId, events)
	if err != nil {
		t.Fatalf("ProcessSaleBatch: %v", err)
	}
	if len(outcomes) != len(events) {
		t.Fatalf("expected %d outcomes, got %d", len(events), len(outcomes))
	}

	expected := []string{
		OutcomeDeducted,
		OutcomeFailed,
		OutcomeNoRecipe,
		OutcomeAlreadyProcessed,
		OutcomeFailed,
	}
	for i, want := range expected {
		if outcomes[i].Status != want {
			t.Fatalf("line %d: expected status %s, got %s (error=%q)", i, want, outcomes[i].Status, outcomes[i].Error)
		}
	}

	// Only the first line moved stock: 2 x 0.5 kg.
	var p models.Product
	if err := db.Where("id = ?", productId).First(&p).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if !p.CurrentStock.Equal(decimal.NewFromInt(9)) {
		t.Fatalf("expected stock 9, got %s", p.CurrentStock)
	}
}

func TestParseSaleDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2026-03-14", true},
		{"2026-03-14T13:45:00Z", true},
		{"14/03/2026", false},
		{"", false},
	}
	for _, tc := range cases {
		_, err := parseSaleDate(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("parseSaleDate(%q): unexpected error %v", tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("parseSaleDate(%q): expected error", tc.in)
		}
	}
}

// usage-recheck audits the deduction core's persisted invariants over a live
// database: no product may carry negative stock, and no processed sale may
// have logged the same product twice.
package main

import (
	"fmt"
	"os"

	"github.com/toyiyo/kitchenbooks_backend/config"
	"github.com/toyiyo/kitchenbooks_backend/models"
)

func main() {
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()

	violations := 0

	var negativeStock []models.Product
	if err := db.Where("current_stock < 0").Find(&negativeStock).Error; err != nil {
		fmt.Fprintf(os.Stderr, "scan products: %v\n", err)
		os.Exit(2)
	}
	for _, p := range negativeStock {
		violations++
		fmt.Printf("NEGATIVE STOCK restaurant=%s product=%s name=%q stock=%s\n",
			p.RestaurantId, p.ID, p.Name, p.CurrentStock)
	}

	type dupRow struct {
		RestaurantId string
		ReferenceId  string
		ProductId    string
		N            int
	}
	var dups []dupRow
	if err := db.Model(&models.InventoryTransaction{}).
		Select("restaurant_id, reference_id, product_id, COUNT(*) AS n").
		Where("transaction_type = ?", models.TransactionTypeUsage).
		Group("restaurant_id, reference_id, product_id").
		Having("COUNT(*) > 1").
		Scan(&dups).Error; err != nil {
		fmt.Fprintf(os.Stderr, "scan transactions: %v\n", err)
		os.Exit(2)
	}
	for _, d := range dups {
		violations++
		fmt.Printf("DUPLICATE LEDGER ROWS restaurant=%s reference=%s product=%s count=%d\n",
			d.RestaurantId, d.ReferenceId, d.ProductId, d.N)
	}

	if violations > 0 {
		fmt.Printf("%d violation(s) found\n", violations)
		os.Exit(1)
	}
	fmt.Println("OK: no negative stock, no duplicate usage rows")
}

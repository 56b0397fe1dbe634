package workflow

import (
	"context"
	"errors"
	"strings"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/toyiyo/kitchenbooks_backend/config"
	"github.com/toyiyo/kitchenbooks_backend/models"
	"github.com/toyiyo/kitchenbooks_backend/units"
	"github.com/toyiyo/kitchenbooks_backend/utils"
	"gorm.io/gorm"
)

// errDuplicateSale signals that another worker logged the same sale between
// our existence check and our insert. The unique ledger index is the backstop.
var errDuplicateSale = errors.New("sale already processed concurrently")

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// sqlite (tests) reports unique violations without a translated type.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}

// DeductionInput is one sold line item as delivered by the POS sync.
type DeductionInput struct {
	RestaurantId    string
	PosItemName     string
	QuantitySold    decimal.Decimal
	SaleDate        time.Time
	ExternalOrderId string
}

type DeductedIngredient struct {
	ProductId        string          `json:"product_id"`
	QuantityDeducted decimal.Decimal `json:"quantity_deducted"`
	Unit             string          `json:"unit"`
	Cost             decimal.Decimal `json:"cost"`
}

// SkippedIngredient surfaces an ingredient the resolver could not convert.
// The rest of the recipe still deducts; the caller can alert without the
// sync pipeline stalling.
type SkippedIngredient struct {
	ProductId string `json:"product_id"`
	Unit      string `json:"unit"`
	Reason    string `json:"reason"`
}

type DeductionResult struct {
	RecipeName          string               `json:"recipe_name"`
	TotalCost           decimal.Decimal      `json:"total_cost"`
	AlreadyProcessed    bool                 `json:"already_processed"`
	IngredientsDeducted []DeductedIngredient `json:"ingredients_deducted"`
	SkippedIngredients  []SkippedIngredient  `json:"skipped_ingredients,omitempty"`
}

func emptyDeductionResult() *DeductionResult {
	return &DeductionResult{
		TotalCost:           decimal.Zero,
		IngredientsDeducted: []DeductedIngredient{},
	}
}

// ProcessSaleDeduction translates one sold POS item into raw-material usage:
// resolve the recipe, convert each ingredient into purchase units, clamp
// stock at zero and append the usage ledger rows — all in one DB transaction,
// at most once per (restaurant, external order, recipe).
//
// No recipe match and an already-processed sale are normal outcomes, not
// errors; an unconvertible ingredient is skipped and reported on the result.
func ProcessSaleDeduction(ctx context.Context, db *gorm.DB, logger *logrus.Logger, input DeductionInput) (*DeductionResult, error) {
	result := emptyDeductionResult()

	var referenceId string

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := AcquireRestaurantDeductionLock(tx, input.RestaurantId); err != nil {
			return err
		}
		defer ReleaseRestaurantDeductionLock(tx, input.RestaurantId)

		recipe, err := models.FindActiveRecipe(tx, input.RestaurantId, input.PosItemName)
		if err != nil {
			return err
		}
		if recipe == nil {
			// Gift cards, comped items and the like have no recipe; the sale
			// line is a no-op.
			return nil
		}
		result.RecipeName = recipe.Name
		referenceId = models.SaleReferenceId(input.ExternalOrderId, recipe.ID)

		processed, err := models.HasProcessedSale(tx, input.RestaurantId, referenceId)
		if err != nil {
			return err
		}
		if processed {
			return errDuplicateSale
		}

		correlationId := correlationIdFromContextOrNew(ctx)

		for _, ingredient := range recipe.Ingredients {
			product, err := models.GetProductForUpdate(tx, input.RestaurantId, ingredient.ProductId)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					result.SkippedIngredients = append(result.SkippedIngredients, SkippedIngredient{
						ProductId: ingredient.ProductId,
						Unit:      ingredient.Unit,
						Reason:    "product not found",
					})
					continue
				}
				return err
			}

			delta, convErr := convertIngredient(ingredient, input.QuantitySold, product)
			if convErr != nil {
				config.LogError(logger, "workflow", "ProcessSaleDeduction", "skipping unconvertible ingredient", map[string]any{
					"restaurant_id": input.RestaurantId,
					"product_id":    product.ID,
					"unit":          ingredient.Unit,
				}, convErr)
				result.SkippedIngredients = append(result.SkippedIngredients, SkippedIngredient{
					ProductId: product.ID,
					Unit:      ingredient.Unit,
					Reason:    convErr.Error(),
				})
				continue
			}

			newStock := product.CurrentStock.Sub(delta)
			if newStock.IsNegative() {
				// Known business rule: clamp, never reject. The ledger row
				// below still carries the full delta, so the audit trail
				// keeps the true consumption signal.
				newStock = decimal.Zero
			}
			if err := models.UpdateProductStock(tx, product, newStock); err != nil {
				return err
			}

			lineCost := delta.Mul(product.CostPerUnit)
			txn := models.InventoryTransaction{
				RestaurantId:    input.RestaurantId,
				ProductId:       product.ID,
				Quantity:        delta.Neg(),
				TotalCost:       lineCost.Neg(),
				TransactionType: models.TransactionTypeUsage,
				ReferenceId:     referenceId,
				TransactionDate: input.SaleDate,
				CorrelationId:   correlationId,
			}
			if err := tx.Create(&txn).Error; err != nil {
				if isDuplicateKeyErr(err) {
					return errDuplicateSale
				}
				return err
			}

			result.TotalCost = result.TotalCost.Add(lineCost)
			result.IngredientsDeducted = append(result.IngredientsDeducted, DeductedIngredient{
				ProductId:        product.ID,
				QuantityDeducted: delta,
				Unit:             product.PurchaseUnit,
				Cost:             lineCost,
			})
		}
		return nil
	})

	if errors.Is(err, errDuplicateSale) {
		return alreadyProcessedResult(ctx, db, logger, input.RestaurantId, result.RecipeName, referenceId)
	}
	if err != nil {
		config.LogError(logger, "workflow", "ProcessSaleDeduction", "deduction failed", input, err)
		return nil, err
	}

	if result.RecipeName != "" {
		cacheDeductionResult(logger, input.RestaurantId, referenceId, result)
	}
	return result, nil
}

func convertIngredient(ingredient models.RecipeIngredient, quantitySold decimal.Decimal, product *models.Product) (decimal.Decimal, error) {
	from, ok := units.Parse(ingredient.Unit)
	if !ok {
		return decimal.Zero, errors.New("unrecognized ingredient unit " + ingredient.Unit)
	}
	needed := ingredient.Quantity.Mul(quantitySold)
	return units.Convert(needed, from, product.ConversionSpec())
}

// alreadyProcessedResult describes what the first processing of this sale
// deducted, without writing anything: the cached summary when present,
// otherwise rebuilt from the logged ledger rows.
func alreadyProcessedResult(ctx context.Context, db *gorm.DB, logger *logrus.Logger, restaurantId, recipeName, referenceId string) (*DeductionResult, error) {
	if cached, ok := cachedDeductionResult(logger, restaurantId, referenceId); ok {
		cached.AlreadyProcessed = true
		return cached, nil
	}

	result := emptyDeductionResult()
	result.RecipeName = recipeName
	result.AlreadyProcessed = true

	tx := db.WithContext(ctx)
	rows, err := models.FindUsageTransactions(tx, restaurantId, referenceId)
	if err != nil {
		return nil, err
	}

	productIds := make([]string, 0, len(rows))
	for _, row := range rows {
		productIds = append(productIds, row.ProductId)
	}
	unitsByProduct := map[string]string{}
	if len(productIds) > 0 {
		var products []models.Product
		if err := tx.Where("restaurant_id = ? AND id IN ?", restaurantId, productIds).
			Find(&products).Error; err != nil {
			return nil, err
		}
		for _, p := range products {
			unitsByProduct[p.ID] = p.PurchaseUnit
		}
	}

	for _, row := range rows {
		qty := row.Quantity.Neg()
		cost := row.TotalCost.Neg()
		result.TotalCost = result.TotalCost.Add(cost)
		result.IngredientsDeducted = append(result.IngredientsDeducted, DeductedIngredient{
			ProductId:        row.ProductId,
			QuantityDeducted: qty,
			Unit:             unitsByProduct[row.ProductId],
			Cost:             cost,
		})
	}
	return result, nil
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}

package workflow

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/toyiyo/kitchenbooks_backend/config"
	"github.com/vmihailenco/msgpack/v5"
)

// Duplicate deliveries cluster right after a sync cycle; a day of cache is
// plenty before falling back to rebuilding from the ledger.
const deductionCacheTTL = 24 * time.Hour

// cachedDeduction is the wire form of a DeductionResult in Redis. Decimals
// travel as strings; msgpack reflection cannot see their unexported fields.
type cachedDeduction struct {
	RecipeName  string             `msgpack:"recipe_name"`
	TotalCost   string             `msgpack:"total_cost"`
	Ingredients []cachedIngredient `msgpack:"ingredients"`
	Skipped     []cachedSkipped    `msgpack:"skipped,omitempty"`
}

type cachedIngredient struct {
	ProductId string `msgpack:"product_id"`
	Quantity  string `msgpack:"quantity"`
	Unit      string `msgpack:"unit"`
	Cost      string `msgpack:"cost"`
}

type cachedSkipped struct {
	ProductId string `msgpack:"product_id"`
	Unit      string `msgpack:"unit"`
	Reason    string `msgpack:"reason"`
}

func deductionCacheKey(restaurantId, referenceId string) string {
	return fmt.Sprintf("deduction:%s:%s", restaurantId, referenceId)
}

// cacheDeductionResult stores the summary after a successful commit. Cache
// failures only cost the duplicate fast path, so they are logged and dropped.
func cacheDeductionResult(logger *logrus.Logger, restaurantId, referenceId string, result *DeductionResult) {
	payload := cachedDeduction{
		RecipeName: result.RecipeName,
		TotalCost:  result.TotalCost.String(),
	}
	for _, ing := range result.IngredientsDeducted {
		payload.Ingredients = append(payload.Ingredients, cachedIngredient{
			ProductId: ing.ProductId,
			Quantity:  ing.QuantityDeducted.String(),
			Unit:      ing.Unit,
			Cost:      ing.Cost.String(),
		})
	}
	for _, sk := range result.SkippedIngredients {
		payload.Skipped = append(payload.Skipped, cachedSkipped{
			ProductId: sk.ProductId,
			Unit:      sk.Unit,
			Reason:    sk.Reason,
		})
	}

	raw, err := msgpack.Marshal(&payload)
	if err != nil {
		config.LogError(logger, "workflow", "cacheDeductionResult", "marshal failed", referenceId, err)
		return
	}
	if err := config.SetRedisBytes(deductionCacheKey(restaurantId, referenceId), raw, deductionCacheTTL); err != nil {
		config.LogError(logger, "workflow", "cacheDeductionResult", "redis set failed", referenceId, err)
	}
}

func cachedDeductionResult(logger *logrus.Logger, restaurantId, referenceId string) (*DeductionResult, bool) {
	raw, found, err := config.GetRedisBytes(deductionCacheKey(restaurantId, referenceId))
	if err != nil {
		config.LogError(logger, "workflow", "cachedDeductionResult", "redis get failed", referenceId, err)
		return nil, false
	}
	if !found {
		return nil, false
	}

	var payload cachedDeduction
	if err := msgpack.Unmarshal(raw, &payload); err != nil {
		config.LogError(logger, "workflow", "cachedDeductionResult", "unmarshal failed", referenceId, err)
		return nil, false
	}

	result := emptyDeductionResult()
	result.RecipeName = payload.RecipeName
	totalCost, err := decimal.NewFromString(payload.TotalCost)
	if err != nil {
		return nil, false
	}
	result.TotalCost = totalCost
	for _, ing := range payload.Ingredients {
		qty, qerr := decimal.NewFromString(ing.Quantity)
		cost, cerr := decimal.NewFromString(ing.Cost)
		if qerr != nil || cerr != nil {
			return nil, false
		}
		result.IngredientsDeducted = append(result.IngredientsDeducted, DeductedIngredient{
			ProductId:        ing.ProductId,
			QuantityDeducted: qty,
			Unit:             ing.Unit,
			Cost:             cost,
		})
	}
	for _, sk := range payload.Skipped {
		result.SkippedIngredients = append(result.SkippedIngredients, SkippedIngredient{
			ProductId: sk.ProductId,
			Unit:      sk.Unit,
			Reason:    sk.Reason,
		})
	}
	return result, true
}

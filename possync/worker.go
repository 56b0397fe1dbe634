package possync

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/toyiyo/kitchenbooks_backend/config"
	"github.com/toyiyo/kitchenbooks_backend/utils"
	"github.com/toyiyo/kitchenbooks_backend/workflow"
)

var validate = validator.New()

// ProcessSaleBatch runs the deduction pipeline over one sync cycle's sale
// lines. Each line is its own atomic unit of work; a malformed or failing
// line is recorded and the batch keeps going. The whole batch holds the
// restaurant sync lock so overlapping cycles do not interleave.
func ProcessSaleBatch(ctx context.Context, db *gorm.DB, logger *logrus.Logger, restaurantId string, events []SaleEvent) ([]SaleLineOutcome, error) {
	release, err := utils.RestaurantLock(ctx, restaurantId, "posSyncLock", "possync", "ProcessSaleBatch")
	if err != nil {
		return nil, err
	}
	defer release()

	outcomes := make([]SaleLineOutcome, 0, len(events))
	for _, event := range events {
		outcomes = append(outcomes, processSaleLine(ctx, db, logger, restaurantId, event))
	}
	return outcomes, nil
}

func processSaleLine(ctx context.Context, db *gorm.DB, logger *logrus.Logger, restaurantId string, event SaleEvent) SaleLineOutcome {
	outcome := SaleLineOutcome{
		ExternalOrderId: event.ExternalOrderId,
		PosItemName:     event.PosItemName,
	}

	if err := validate.Struct(event); err != nil {
		outcome.Status = OutcomeFailed
		outcome.Error = err.Error()
		config.LogError(logger, "possync", "processSaleLine", "invalid sale event", event, err)
		return outcome
	}
	saleDate, err := parseSaleDate(event.SaleDate)
	if err != nil {
		outcome.Status = OutcomeFailed
		outcome.Error = err.Error()
		config.LogError(logger, "possync", "processSaleLine", "unparseable sale date", event, err)
		return outcome
	}

	result, err := workflow.ProcessSaleDeduction(ctx, db, logger, workflow.DeductionInput{
		RestaurantId:    restaurantId,
		PosItemName:     event.PosItemName,
		QuantitySold:    event.QuantitySold,
		SaleDate:        saleDate,
		ExternalOrderId: event.ExternalOrderId,
	})
	if err != nil {
		outcome.Status = OutcomeFailed
		outcome.Error = err.Error()
		return outcome
	}

	outcome.Result = result
	switch {
	case result.AlreadyProcessed:
		outcome.Status = OutcomeAlreadyProcessed
	case result.RecipeName == "":
		outcome.Status = OutcomeNoRecipe
	default:
		outcome.Status = OutcomeDeducted
	}
	return outcome
}

package utils

import (
	"context"

	"github.com/toyiyo/kitchenbooks_backend/appctx"
)

var (
	ContextKeyRestaurantId  = appctx.ContextKeyRestaurantId
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
)

func GetRestaurantIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyRestaurantId)
}

func SetRestaurantIdInContext(ctx context.Context, restaurantId string) context.Context {
	return appctx.Set(ctx, ContextKeyRestaurantId, restaurantId)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}

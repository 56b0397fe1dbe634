package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/toyiyo/kitchenbooks_backend/config"
)

func NewTrue() *bool {
	b := true
	return &b
}

func NewFalse() *bool {
	b := false
	return &b
}

// RestaurantLock serializes a section of work per restaurant across instances.
// It returns a release func that must be called when the work is done.
// When Redis is not configured (local dev, tests) it degrades to a no-op so a
// single-instance deployment keeps working; correctness inside one deduction
// does not depend on it (see workflow deduction lock).
func RestaurantLock(ctx context.Context, restaurantId string, lockType string, moduleName string, functionName string) (func(), error) {
	logger := config.GetLogger()
	locker := config.GetRedisLock()
	if locker == nil {
		return func() {}, nil
	}
	lockKey := fmt.Sprintf("%s:%s", lockType, restaurantId)
	lock, err := locker.Obtain(ctx, lockKey, 30*time.Second, nil)
	if err == redislock.ErrNotObtained {
		config.LogError(logger, moduleName, functionName, "Could not obtain lock for restaurantID", restaurantId, err)
		return nil, errors.New("could not obtain lock for restaurantID")
	} else if err != nil {
		config.LogError(logger, moduleName, functionName, "Error obtaining lock for restaurantID", restaurantId, err)
		return nil, err
	}
	return func() { _ = lock.Release(ctx) }, nil
}

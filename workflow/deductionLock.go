package workflow

import (
	"fmt"

	"gorm.io/gorm"
)

// AcquireRestaurantDeductionLock serializes deductions per restaurant across
// instances using MySQL advisory locks, so the processed-sale existence check
// and the stock writes cannot interleave between two workers.
// NOTE: GET_LOCK is connection-scoped, so this must be called on the same
// *gorm.DB transaction that performs the deduction. On dialects without
// advisory locks (the sqlite test driver) it is a no-op; sqlite serializes
// writers itself.
func AcquireRestaurantDeductionLock(tx *gorm.DB, restaurantId string) error {
	if tx.Dialector.Name() != "mysql" {
		return nil
	}
	lockName := fmt.Sprintf("deduction:%s", restaurantId)
	var ok int
	if err := tx.Raw("SELECT GET_LOCK(?, 30)", lockName).Scan(&ok).Error; err != nil {
		return err
	}
	if ok != 1 {
		return fmt.Errorf("could not acquire deduction lock for restaurant_id=%s", restaurantId)
	}
	return nil
}

func ReleaseRestaurantDeductionLock(tx *gorm.DB, restaurantId string) {
	if tx.Dialector.Name() != "mysql" {
		return
	}
	lockName := fmt.Sprintf("deduction:%s", restaurantId)
	var _ok int
	_ = tx.Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&_ok).Error
}

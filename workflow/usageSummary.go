package workflow

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/toyiyo/kitchenbooks_backend/config"
	"github.com/toyiyo/kitchenbooks_backend/models"
)

// LogUsageActivitySummary logs how much the deduction core wrote in the last
// 24 hours. Scheduled from main; purely observational.
func LogUsageActivitySummary(db *gorm.DB, logger *logrus.Logger) {
	since := time.Now().Add(-24 * time.Hour)

	var count int64
	if err := db.Model(&models.InventoryTransaction{}).
		Where("transaction_type = ? AND created_at >= ?", models.TransactionTypeUsage, since).
		Count(&count).Error; err != nil {
		config.LogError(logger, "workflow", "LogUsageActivitySummary", "count failed", nil, err)
		return
	}

	var rows []models.InventoryTransaction
	if err := db.Select("total_cost").
		Where("transaction_type = ? AND created_at >= ?", models.TransactionTypeUsage, since).
		Find(&rows).Error; err != nil {
		config.LogError(logger, "workflow", "LogUsageActivitySummary", "cost scan failed", nil, err)
		return
	}
	totalCost := decimal.Zero
	for _, row := range rows {
		totalCost = totalCost.Add(row.TotalCost.Neg())
	}

	logger.WithFields(logrus.Fields{
		"module":       "workflow",
		"window_hours": 24,
		"usage_rows":   count,
		"usage_cost":   totalCost.String(),
	}).Info("inventory usage summary")
}

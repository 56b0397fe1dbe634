package possync

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/toyiyo/kitchenbooks_backend/config"
	"github.com/toyiyo/kitchenbooks_backend/utils"
)

// RegisterRoutes mounts the POS-sync intake endpoints.
func RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", HealthHandler())
	r.POST("/possync/sales", SalesBatchHandler())
}

func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"status": "ok"}
		if config.GetDB() == nil {
			status["status"] = "starting"
			status["db"] = "not connected"
		}
		if config.GetRedisDB() == nil {
			status["redis"] = "not connected"
		}
		c.JSON(http.StatusOK, status)
	}
}

// SalesBatchHandler receives one sync cycle's sold line items and runs the
// deduction pipeline over them. The response always carries per-line
// outcomes; a failing line is a line-level outcome, not a request failure.
func SalesBatchHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SalesBatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if strings.TrimSpace(req.RestaurantId) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "restaurant_id is required"})
			return
		}

		db := config.GetDB()
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not ready"})
			return
		}
		logger := config.GetLogger()

		ctx := utils.SetRestaurantIdInContext(c.Request.Context(), req.RestaurantId)
		ctx = utils.SetCorrelationIdInContext(ctx, uuid.NewString())

		outcomes, err := ProcessSaleBatch(ctx, db.WithContext(ctx), logger, req.RestaurantId, req.Sales)
		if err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}

		resp := SalesBatchResponse{Outcomes: outcomes}
		for _, o := range outcomes {
			if o.Status == OutcomeFailed {
				resp.Failed++
			} else {
				resp.Processed++
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

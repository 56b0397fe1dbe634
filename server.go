package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/toyiyo/kitchenbooks_backend/config"
	"github.com/toyiyo/kitchenbooks_backend/models"
	"github.com/toyiyo/kitchenbooks_backend/possync"
	"github.com/toyiyo/kitchenbooks_backend/workflow"
)

const defaultPort = "8080"

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	possync.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Start listening first; DB/Redis connect in the background with retry
	// (Cloud Run requires the container to listen on $PORT quickly).
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	log.Printf("listening on :%s", port)

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("0 6 * * *", func() {
		workflow.LogUsageActivitySummary(config.GetDB(), config.GetLogger())
	}); err != nil {
		log.Printf("failed to schedule usage summary: %v", err)
	}
	scheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	scheduler.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}

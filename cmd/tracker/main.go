package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mobiles24/storefront/internal/backup"
	"github.com/mobiles24/storefront/internal/logging"
	"github.com/mobiles24/storefront/internal/tracker/database"
	"github.com/mobiles24/storefront/internal/tracker/server"
)

func main() {
	// A missing .env file is fine; the environment wins either way.
	godotenv.Load()

	logger := logging.Setup(os.Getenv("TRACKER_LOG_LEVEL"), os.Getenv("TRACKER_LOG_FORMAT"))

	port := os.Getenv("TRACKER_PORT")
	if port == "" {
		port = "8081"
	}

	dbPath := os.Getenv("TRACKER_DB_PATH")
	if dbPath == "" {
		dbPath = "tracker.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	backupCfg := backup.Config{
		S3: backup.S3Config{
			Endpoint:  os.Getenv("TRACKER_S3_ENDPOINT"),
			Bucket:    os.Getenv("TRACKER_S3_BUCKET"),
			Region:    os.Getenv("TRACKER_S3_REGION"),
			AccessKey: os.Getenv("TRACKER_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("TRACKER_S3_SECRET_KEY"),
		},
		DBPath: dbPath,
	}

	srv := server.New(db, backupCfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv.BackupManager().Start(ctx)
	defer srv.BackupManager().Stop()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Tracker running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	fmt.Println("\nShutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

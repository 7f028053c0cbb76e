package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"

	"github.com/mobiles24/storefront/internal/catalog"
	"github.com/mobiles24/storefront/internal/database"
	"github.com/mobiles24/storefront/internal/logging"
	"github.com/mobiles24/storefront/internal/server"
	"github.com/mobiles24/storefront/internal/upstream"
)

func main() {
	// A missing .env file is fine; the environment wins either way.
	godotenv.Load()

	logger := logging.Setup(os.Getenv("STOREFRONT_LOG_LEVEL"), os.Getenv("STOREFRONT_LOG_FORMAT"))

	port := os.Getenv("STOREFRONT_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("STOREFRONT_DB_PATH")
	if dbPath == "" {
		dbPath = "storefront.db"
	}

	slug := os.Getenv("STOREFRONT_STORE_SLUG")
	if slug == "" {
		slug = "mobiles24"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	client := upstream.NewClient(os.Getenv("STOREFRONT_UPSTREAM_URL"), slug)

	var cacheTTL time.Duration
	if s := os.Getenv("STOREFRONT_CACHE_TTL_SECONDS"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs > 0 {
			cacheTTL = time.Duration(secs) * time.Second
		}
	}
	loader := catalog.NewLoader(client, cacheTTL, logger.With("component", "loader"))

	sessionKey := []byte(os.Getenv("STOREFRONT_SESSION_KEY"))
	if len(sessionKey) == 0 {
		logger.Warn("STOREFRONT_SESSION_KEY not set; wishlist sessions reset on restart")
		sessionKey = []byte(fmt.Sprintf("dev-only-%d", time.Now().UnixNano()))
	}
	sessionStore := sessions.NewCookieStore(sessionKey)
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	sessionStore.Options.Path = "/"

	srv := server.New(db, loader, client, sessionStore, logger)

	// Periodic rate-limiter cleanup
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			srv.RateLimiter().Cleanup()
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Storefront running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

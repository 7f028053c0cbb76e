package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"

	"github.com/mobiles24/storefront/internal/catalog"
	"github.com/mobiles24/storefront/internal/handler"
	"github.com/mobiles24/storefront/internal/middleware"
	"github.com/mobiles24/storefront/internal/store"
	"github.com/mobiles24/storefront/internal/upstream"
)

type Server struct {
	db          *sql.DB
	catalogH    *handler.CatalogHandler
	proxyH      *handler.ProxyHandler
	wishlistH   *handler.WishlistHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, loader *catalog.Loader, client *upstream.Client, sessionStore sessions.Store, logger *slog.Logger) *Server {
	wishlistStore := store.NewWishlistStore(db)

	return &Server{
		db:          db,
		catalogH:    handler.NewCatalogHandler(loader, logger.With("component", "catalog")),
		proxyH:      handler.NewProxyHandler(client, logger.With("component", "proxy")),
		wishlistH:   handler.NewWishlistHandler(wishlistStore, sessionStore, logger.With("component", "wishlist")),
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Catalog API
	mux.HandleFunc("GET /api/catalog", s.catalogH.Catalog)
	mux.HandleFunc("GET /api/catalog/items", s.catalogH.Items)
	mux.HandleFunc("GET /api/catalog/items/{id}", s.catalogH.Item)
	mux.HandleFunc("GET /api/catalog/companies", s.catalogH.Companies)

	// Upstream passthrough proxies are rate limited since they hit a third party
	mux.HandleFunc("GET /api/accessories", s.rateLimitedHandler(s.proxyH.Accessories))
	mux.HandleFunc("GET /api/pd", s.rateLimitedHandler(s.proxyH.ProductDetail))

	// Wishlist API
	mux.HandleFunc("GET /api/wishlist", s.wishlistH.List)
	mux.HandleFunc("POST /api/wishlist", s.wishlistH.Add)
	mux.HandleFunc("POST /api/wishlist/toggle", s.wishlistH.Toggle)
	mux.HandleFunc("DELETE /api/wishlist/{id}", s.wishlistH.Remove)

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 30, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

// Package http provides the HTTP boundary for the URL shortener: request
// decoding, validation, status-code mapping, and routing.
package http

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	httpSwagger "github.com/swaggo/http-swagger"
)

// URLService defines the interface for the core URL shortening business logic.
type URLService interface {
	// ShortenURL returns the short code for the original URL, creating a
	// new record when the URL has never been shortened before.
	ShortenURL(ctx context.Context, originalURL string) (string, error)

	// ResolveShortCode returns the original URL for a short code and
	// records a click. It fails with database.ErrURLNotFound for unknown
	// codes and service.ErrURLExpired for expired records.
	ResolveShortCode(ctx context.Context, shortCode string) (string, error)

	// GetClickCount returns the flushed click count for a short code.
	GetClickCount(ctx context.Context, shortCode string) (int64, error)
}

// getValidate initializes a validator instance for incoming request payloads.
// It customizes tag name extraction from struct fields to match JSON tags.
func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

// NewRouter initializes and returns a new HTTP router with all routes and
// middleware configured.
func NewRouter(logger *httplog.Logger, urlSvc URLService) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"POST", "GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))

	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./docs/swagger.yml")
	})

	validate := getValidate()

	r.Get("/ping", handlePing)

	r.Route("/api", func(r chi.Router) {
		r.Post("/shorten", handleShortenURL(urlSvc, validate))
	})

	r.Route("/{shortCode}", func(r chi.Router) {
		r.Get("/", handleRedirect(urlSvc))
		r.Get("/stats", handleGetStats(urlSvc))
	})

	return r
}

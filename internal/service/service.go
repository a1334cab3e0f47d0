package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/akovalyov/url-shortener/internal/cache"
	"github.com/akovalyov/url-shortener/internal/database"
	"github.com/akovalyov/url-shortener/internal/models"
)

// ErrURLExpired is returned when a short code resolves to a record that is
// past its expiration timestamp. The record stays in the store until the
// next expiration sweep removes it.
var ErrURLExpired = errors.New("url expired")

// URLRepository defines the durable store operations the service relies on.
type URLRepository interface {
	// Create inserts a new shortened URL with the given expiration.
	// It fails with database.ErrDuplicateURL when either the original URL
	// or the short code already exists.
	Create(ctx context.Context, shortCode, originalURL string, expiresAt time.Time) (*models.URL, error)

	// GetByOriginalURL retrieves a record by exact original URL match.
	GetByOriginalURL(ctx context.Context, originalURL string) (*models.URL, error)

	// GetByShortCode retrieves a record by its short code.
	GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error)
}

// URLCache defines the cache operations the service relies on. Cache entries
// are an accelerator, never the source of truth; every method may fail
// without affecting correctness.
type URLCache interface {
	GetShortCode(ctx context.Context, originalURL string) (string, error)
	SetShortCode(ctx context.Context, originalURL, shortCode string, ttl time.Duration) error
	GetOriginalURL(ctx context.Context, shortCode string) (string, error)
	SetOriginalURL(ctx context.Context, shortCode, originalURL string, ttl time.Duration) error
	RegisterClick(ctx context.Context, shortCode string) error
}

// URLService implements the URL shortening logic on top of a durable store
// and a TTL cache. Clicks are buffered in the cache and flushed to the store
// by a background sweep rather than written per request.
type URLService struct {
	repo            URLRepository
	cache           URLCache
	logger          *slog.Logger
	cacheTTL        time.Duration
	retentionMonths int
	shortCodeLength int
}

func NewURLService(repo URLRepository, cache URLCache, logger *slog.Logger, cacheTTL time.Duration, retentionMonths, shortCodeLength int) *URLService {
	return &URLService{
		repo:            repo,
		cache:           cache,
		logger:          logger,
		cacheTTL:        cacheTTL,
		retentionMonths: retentionMonths,
		shortCodeLength: shortCodeLength,
	}
}

// ShortenURL returns the short code for the given original URL, consulting
// the cache, then the store, and finally creating a new record. When two
// concurrent calls race to create the same URL, the loser re-reads the store
// and returns the winner's code.
func (s *URLService) ShortenURL(ctx context.Context, originalURL string) (string, error) {
	const op = "service.URLService.ShortenURL"

	shortCode, err := s.cache.GetShortCode(ctx, originalURL)
	if err == nil {
		return shortCode, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("forward cache lookup failed", slog.Any("err", err))
	}

	url, err := s.repo.GetByOriginalURL(ctx, originalURL)
	if err == nil {
		s.cacheShortCode(ctx, originalURL, url.ShortCode)
		return url.ShortCode, nil
	}
	if !errors.Is(err, database.ErrURLNotFound) {
		return "", fmt.Errorf("%s: failed to look up url: %w", op, err)
	}

	shortCode, err = generateShortCode(originalURL, s.shortCodeLength)
	if err != nil {
		return "", fmt.Errorf("%s: failed to generate short code: %w", op, err)
	}

	expiresAt := time.Now().AddDate(0, s.retentionMonths, 0)

	url, err = s.repo.Create(ctx, shortCode, originalURL, expiresAt)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateURL) {
			// Lost a race against a concurrent shorten of the same URL.
			// The winner's record is authoritative.
			winner, readErr := s.repo.GetByOriginalURL(ctx, originalURL)
			if readErr == nil {
				s.cacheShortCode(ctx, originalURL, winner.ShortCode)
				return winner.ShortCode, nil
			}
		}

		return "", fmt.Errorf("%s: failed to shorten url: %w", op, err)
	}

	s.cacheShortCode(ctx, originalURL, url.ShortCode)

	if err := s.cache.SetOriginalURL(ctx, url.ShortCode, originalURL, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache reverse entry", slog.Any("err", err))
	}

	return url.ShortCode, nil
}

// ResolveShortCode returns the original URL for a short code and records a
// click. The cache is consulted first; on a miss the store is the source of
// truth for existence and expiration, and the reverse entry is re-cached
// with a TTL capped at the record's remaining validity.
func (s *URLService) ResolveShortCode(ctx context.Context, shortCode string) (string, error) {
	const op = "service.URLService.ResolveShortCode"

	originalURL, err := s.cache.GetOriginalURL(ctx, shortCode)
	if err == nil {
		s.registerClick(ctx, shortCode)
		return originalURL, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("reverse cache lookup failed", slog.Any("err", err))
	}

	url, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return "", fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	now := time.Now()
	if url.Expired(now) {
		return "", fmt.Errorf("%s: %w", op, ErrURLExpired)
	}

	// Never cache an entry that outlives its record.
	ttl := s.cacheTTL
	if remaining := url.ExpiresAt.Sub(now); remaining < ttl {
		ttl = remaining
	}

	if err := s.cache.SetOriginalURL(ctx, shortCode, url.OriginalURL, ttl); err != nil {
		s.logger.Warn("failed to cache reverse entry", slog.Any("err", err))
	}

	s.registerClick(ctx, shortCode)

	return url.OriginalURL, nil
}

// GetClickCount returns the flushed click count for a short code. It reads
// the store only, so pending clicks still buffered in the cache are not
// reflected until the next flush sweep.
func (s *URLService) GetClickCount(ctx context.Context, shortCode string) (int64, error) {
	const op = "service.URLService.GetClickCount"

	url, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to get click count: %w", op, err)
	}

	return url.ClickCount, nil
}

func (s *URLService) cacheShortCode(ctx context.Context, originalURL, shortCode string) {
	if err := s.cache.SetShortCode(ctx, originalURL, shortCode, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache forward entry", slog.Any("err", err))
	}
}

func (s *URLService) registerClick(ctx context.Context, shortCode string) {
	if err := s.cache.RegisterClick(ctx, shortCode); err != nil {
		s.logger.Warn("failed to register click", slog.String("short_code", shortCode), slog.Any("err", err))
	}
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/akovalyov/url-shortener/internal/database"
	"github.com/akovalyov/url-shortener/internal/models"
)

type urlRecord struct {
	ID          int64     `db:"id"`
	ShortCode   string    `db:"short_code"`
	OriginalURL string    `db:"original_url"`
	ClickCount  int64     `db:"click_count"`
	CreatedAt   time.Time `db:"created_at"`
	ExpiresAt   time.Time `db:"expires_at"`
}

func (r *urlRecord) ToURL() *models.URL {
	return &models.URL{
		ID:          r.ID,
		ShortCode:   r.ShortCode,
		OriginalURL: r.OriginalURL,
		ClickCount:  r.ClickCount,
		CreatedAt:   r.CreatedAt,
		ExpiresAt:   r.ExpiresAt,
	}
}

// URLRepository provides access to the urls table.
type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{
		db: db,
	}
}

// Create inserts a new url record. Both the short code and the original URL
// carry unique constraints; a violation of either is reported as
// database.ErrDuplicateURL.
func (r *URLRepository) Create(ctx context.Context, shortCode, originalURL string, expiresAt time.Time) (*models.URL, error) {
	const op = "database.postgres.URLRepository.Create"

	rec := new(urlRecord)
	query := `INSERT INTO urls(short_code, original_url, expires_at)
		VALUES ($1, $2, $3)
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, shortCode, originalURL, expiresAt)
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrDuplicateURL)
		}

		return nil, fmt.Errorf("%s: failed to create url record: %w", op, err)
	}

	return rec.ToURL(), nil
}

// GetByOriginalURL retrieves a record by exact original URL match.
func (r *URLRepository) GetByOriginalURL(ctx context.Context, originalURL string) (*models.URL, error) {
	const op = "database.postgres.URLRepository.GetByOriginalURL"

	rec := new(urlRecord)
	query := `SELECT * FROM urls WHERE original_url = $1`

	err := r.db.GetContext(ctx, rec, query, originalURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get url record: %w", op, err)
	}

	return rec.ToURL(), nil
}

// GetByShortCode retrieves a record by its short code.
func (r *URLRepository) GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "database.postgres.URLRepository.GetByShortCode"

	rec := new(urlRecord)
	query := `SELECT * FROM urls WHERE short_code = $1`

	err := r.db.GetContext(ctx, rec, query, shortCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get url record: %w", op, err)
	}

	return rec.ToURL(), nil
}

// DeleteExpiredBefore removes every record whose expiration timestamp is
// before t. It returns the number of deleted records.
func (r *URLRepository) DeleteExpiredBefore(ctx context.Context, t time.Time) (int64, error) {
	const op = "database.postgres.URLRepository.DeleteExpiredBefore"

	query := `DELETE FROM urls WHERE expires_at < $1`

	res, err := r.db.ExecContext(ctx, query, t)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to delete expired url records: %w", op, err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}

	return deleted, nil
}

// IncrementClickCount atomically adds delta to the click count of the record
// with the given short code.
func (r *URLRepository) IncrementClickCount(ctx context.Context, shortCode string, delta int64) error {
	const op = "database.postgres.URLRepository.IncrementClickCount"

	query := `UPDATE urls
		SET click_count = click_count + $2
		WHERE short_code = $1`

	res, err := r.db.ExecContext(ctx, query, shortCode, delta)
	if err != nil {
		return fmt.Errorf("%s: failed to increment click count: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
	}

	return nil
}

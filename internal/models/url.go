package models

import "time"

// URL represents a shortened URL record and its associated metadata.
type URL struct {
	// ID is the unique identifier for the shortened URL record.
	ID int64
	// ShortCode is the token derived from the original URL.
	ShortCode string
	// OriginalURL is the original, full-length URL that the short code points to.
	OriginalURL string
	// ClickCount tracks the number of flushed clicks for the shortened URL.
	ClickCount int64
	// CreatedAt is the timestamp indicating when the record was created.
	CreatedAt time.Time
	// ExpiresAt is the timestamp after which the record is no longer served.
	ExpiresAt time.Time
}

// Expired reports whether the record is past its expiration timestamp.
func (u *URL) Expired(now time.Time) bool {
	return !now.Before(u.ExpiresAt)
}

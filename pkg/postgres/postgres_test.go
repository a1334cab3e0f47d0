package postgres

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()

	mockDB, _, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}

	db := sqlx.NewDb(mockDB, "sqlmock")
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestOptions(t *testing.T) {
	t.Run("apply pool tunings", func(t *testing.T) {
		db := setupDB(t)

		WithConnMaxIdleTime(time.Minute)(db)
		WithConnMaxLifetime(time.Hour)(db)
		WithMaxIdleConns(3)(db)
		WithMaxOpenConns(9)(db)

		assert.Equal(t, 9, db.Stats().MaxOpenConnections)
	})

	t.Run("no options leave driver defaults", func(t *testing.T) {
		db := setupDB(t)

		assert.Zero(t, db.Stats().MaxOpenConnections)
	})
}

package internal

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapStoreErr(t *testing.T) {
	assert.NoError(t, mapStoreErr(nil))

	assert.ErrorIs(t, mapStoreErr(pgx.ErrNoRows), ErrNotFound)

	assert.ErrorIs(t, mapStoreErr(&pgconn.PgError{Code: pgUniqueViolation}), ErrConflict)
	assert.ErrorIs(t, mapStoreErr(&pgconn.PgError{Code: pgForeignKeyViolation}), ErrInvalidRef)

	// Unknown SQLSTATEs and plain errors pass through untouched.
	other := &pgconn.PgError{Code: "57014"}
	assert.Equal(t, error(other), mapStoreErr(other))
	plain := errors.New("boom")
	assert.Equal(t, plain, mapStoreErr(plain))
}

package internal

import (
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

var (
	pgErrUnique     = pgconn.PgError{Code: pgUniqueViolation}
	pgErrForeignKey = pgconn.PgError{Code: pgForeignKeyViolation}
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock new: %v", err)
	}
	t.Cleanup(mock.Close)
	return NewStore(mock), mock
}

func userRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "nickname", "level", "experience", "points",
		"total_points", "streak", "last_login", "is_admin",
	})
}

func questRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "title", "description", "difficulty", "points", "category", "icon", "created_by",
	})
}

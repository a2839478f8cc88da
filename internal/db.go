package internal

import (
	"context"
	"embed"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// DB is the slice of pgxpool.Pool the store needs. Keeping it an interface lets
// tests substitute a mock pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// psql builds the dynamic statements (sparse updates, optional filters).
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

/* ===================== CONNECT ===================== */

func MustDB(url string) *pgxpool.Pool {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		log.Fatal().Err(err).Msg("bad DATABASE_URL")
	}
	cfg.MaxConns = 10

	var pool *pgxpool.Pool

	deadline := time.Now().Add(30 * time.Second)
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		pool, err = pgxpool.NewWithConfig(ctx, cfg)
		if err == nil {
			err = pool.Ping(ctx)
			if err == nil {
				cancel()
				break
			}
			pool.Close()
		}
		cancel()

		if time.Now().After(deadline) {
			log.Fatal().Err(err).Msg("failed to connect DB after retries")
		}
		time.Sleep(1 * time.Second)
	}

	return pool
}

/* ===================== MIGRATIONS ===================== */

func Migrate(fs embed.FS, dbURL string) error {
	src, err := iofs.New(fs, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		return srcErr
	}
	return dbErr
}

/* ===================== STORE ===================== */

// Store wraps a DB handle with all query/mutation methods. Constructed once in
// main and passed into the handlers.
type Store struct {
	db DB
}

func NewStore(db DB) *Store {
	return &Store{db: db}
}

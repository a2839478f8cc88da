package internal

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

// Domain error kinds. The storage layer translates driver errors into these so
// handlers never inspect SQLSTATE codes or error text.
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrInvalidRef         = errors.New("invalid reference")
	ErrInsufficientPoints = errors.New("not enough points")
	ErrAlreadyInTeam      = errors.New("already a member of a team")
	ErrTeamFull           = errors.New("team is full")
	ErrNotMember          = errors.New("not a member of this team")
	ErrLeaderCannotLeave  = errors.New("leader cannot leave while the team has other members")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// mapStoreErr translates pgx-level failures into domain error kinds.
func mapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrConflict
		case pgForeignKeyViolation:
			return ErrInvalidRef
		}
	}
	return err
}

// fail writes the JSON error response for a domain error. Anything outside the
// taxonomy is a 500 with a generic body, logged server-side.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidRef),
		errors.Is(err, ErrInsufficientPoints),
		errors.Is(err, ErrAlreadyInTeam),
		errors.Is(err, ErrTeamFull),
		errors.Is(err, ErrNotMember),
		errors.Is(err, ErrLeaderCannotLeave):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	}
}

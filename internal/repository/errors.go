package repository

import (
	"errors"
	"fmt"
	"strings"

	"kommshop-catalog/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error classes relevant to the catalog taxonomy.
const (
	pgUniqueViolation = "23505"
	pgDataExceptions  = "22" // class 22: invalid text representation, bad casts
)

// classify re-maps a driver error into the catalog taxonomy before it
// leaves the repository. Raw driver errors never cross this boundary.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation:
			return domain.NewError(domain.KindConflict, domain.OriginRepository,
				fmt.Sprintf("%s: duplicate key", op), err)
		case strings.HasPrefix(pgErr.Code, pgDataExceptions):
			return domain.NewError(domain.KindCastError, domain.OriginRepository,
				fmt.Sprintf("%s: %s", op, pgErr.Message), err)
		}
	}
	return domain.NewError(domain.KindUnexpected, domain.OriginRepository, op, err)
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/morphodict-backend/internal/domain"
)

// pgCodeErrors maps the constraint violations the schema can raise.
var pgCodeErrors = map[string]error{
	"23505": domain.ErrAlreadyExists, // unique_violation: duplicate slug or keyword
	"23503": domain.ErrNotFound,      // foreign_key_violation: unknown source or lemma
	"23514": domain.ErrValidation,    // check_violation: text length limits
}

// MapError converts pgx/pgconn errors to domain errors and prefixes the
// message with entity and key (an id, a text, an analysis). Context errors
// and unknown database errors keep their original chain.
func MapError(err error, entity string, key any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s %v: %w", entity, key, domainError(err))
}

func domainError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if mapped, ok := pgCodeErrors[pgErr.Code]; ok {
			if pgErr.ConstraintName == "" {
				return mapped
			}
			return fmt.Errorf("%w (%s)", mapped, pgErr.ConstraintName)
		}
	}
	return err
}

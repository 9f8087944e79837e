package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/koustreak/pgmeta/internal/errs"
)

// PostgreSQL SQLSTATE codes and classes the driver distinguishes.
// Full list: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgClassConnection        = "08"
	pgClassInvalidAuth       = "28"
	pgErrInsufficientPrivilege = "42501"
)

// mapError translates pgx / pgconn native errors into *errs.Error.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		kind := errs.ErrKindQueryFailed
		switch {
		case pgErr.Code == pgErrInsufficientPrivilege, sqlClass(pgErr.Code) == pgClassInvalidAuth:
			kind = errs.ErrKindPermissionDenied
		case sqlClass(pgErr.Code) == pgClassConnection:
			kind = errs.ErrKindConnectionFailed
		}
		return errs.Wrap(kind, fmt.Sprintf("%s: %s", msg, pgErr.Message), err)
	}

	// Network, TLS and handshake failures carry no SQLSTATE.
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

func sqlClass(code string) string {
	if len(code) < 2 {
		return ""
	}
	return code[:2]
}

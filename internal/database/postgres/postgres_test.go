package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/pgmeta/internal/database"
	"github.com/koustreak/pgmeta/internal/errs"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.ErrKind
	}{
		{"deadline", context.DeadlineExceeded, errs.ErrKindTimeout},
		{"canceled wrapped", fmt.Errorf("acquire: %w", context.Canceled), errs.ErrKindTimeout},
		{"no rows", pgx.ErrNoRows, errs.ErrKindNotFound},
		{"connection class", &pgconn.PgError{Code: "08006"}, errs.ErrKindConnectionFailed},
		{"privilege", &pgconn.PgError{Code: "42501"}, errs.ErrKindPermissionDenied},
		{"auth", &pgconn.PgError{Code: "28P01"}, errs.ErrKindPermissionDenied},
		{"syntax", &pgconn.PgError{Code: "42601", Message: "syntax error"}, errs.ErrKindQueryFailed},
		{"network", errors.New("dial tcp: connection refused"), errs.ErrKindConnectionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapError(tt.err, "op")
			assert.Equal(t, tt.want, errs.KindOf(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
	assert.NoError(t, mapError(nil, "op"))
}

func TestPoolConfig(t *testing.T) {
	cfg := database.DefaultConfig("postgres://u:p@localhost:5432/db")
	cfg.MaxConns = 7
	cfg.ConnectTimeout = 3 * time.Second

	pc, err := poolConfig(cfg)
	require.NoError(t, err)
	assert.EqualValues(t, 7, pc.MaxConns)
	assert.Equal(t, 3*time.Second, pc.ConnConfig.ConnectTimeout)
	assert.Equal(t, "on", pc.ConnConfig.RuntimeParams["default_transaction_read_only"])
	assert.Equal(t, "db", pc.ConnConfig.Database)

	_, err = poolConfig(database.DefaultConfig("postgres://%zz"))
	assert.True(t, errs.IsInvalidInput(err))
}

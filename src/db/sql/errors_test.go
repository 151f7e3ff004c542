package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestIsUniqueViolation(t *testing.T) {
	require.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	require.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	require.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	require.False(t, isUniqueViolation(errors.New("boom")))
}

func TestNotFound(t *testing.T) {
	require.ErrorIs(t, notFound(pgx.ErrNoRows), ErrNotFound)
	other := errors.New("boom")
	require.Equal(t, other, notFound(other))
	require.NoError(t, notFound(nil))
}

func TestMustAffect(t *testing.T) {
	require.ErrorIs(t, mustAffect(pgconn.NewCommandTag("DELETE 0")), ErrNotFound)
	require.NoError(t, mustAffect(pgconn.NewCommandTag("UPDATE 1")))
}

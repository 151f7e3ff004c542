package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestValidators(t *testing.T) {
	require.True(t, ValidateEmail("ana.souza@example.com.br"))
	require.False(t, ValidateEmail("ana@"))
	require.True(t, ValidateUsername("ana"))
	require.False(t, ValidateUsername("an"))
	require.True(t, ValidatePassword("Secr3t!pass"))
	require.False(t, ValidatePassword("secretpass"))
	require.True(t, ValidateColor("#8884d8"))
	require.True(t, ValidateColor("#fff"))
	require.False(t, ValidateColor("red"))
	require.Equal(t, "ana@example.com", NormalizeEmail("  Ana@Example.COM "))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("2023-02-29")
	require.Error(t, err)
	_, err = ParseDate("29/02/2024")
	require.Error(t, err)

	_, err = ParseDate("0001-01-02")
	require.ErrorIs(t, err, ErrDateOutOfRange)
	_, err = ParseDate("2200-01-01")
	require.ErrorIs(t, err, ErrDateOutOfRange)
	d, err = ParseDate("2199-12-31")
	require.NoError(t, err)
	require.Equal(t, MaxDate, d)
	d, err = ParseDate("1900-01-01")
	require.NoError(t, err)
	require.Equal(t, MinDate, d)

	none, err := ParseOptionalDate(nil)
	require.NoError(t, err)
	require.Nil(t, none)
	empty := ""
	none, err = ParseOptionalDate(&empty)
	require.NoError(t, err)
	require.Nil(t, none)
}

func TestParseMonth(t *testing.T) {
	now := time.Date(2024, 7, 19, 15, 4, 0, 0, time.UTC)

	m, err := ParseMonth("", now)
	require.NoError(t, err)
	require.Equal(t, now, m)

	m, err = ParseMonth("2023-12", now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), m)

	_, err = ParseMonth("2023-13", now)
	require.Error(t, err)

	_, err = ParseMonth("0001-01", now)
	require.ErrorIs(t, err, ErrDateOutOfRange)
	_, err = ParseMonth("9999-12", now)
	require.ErrorIs(t, err, ErrDateOutOfRange)
}

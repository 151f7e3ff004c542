package db

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTripAndClear(t *testing.T) {
	InitCache()
	t.Cleanup(func() { Cache.Close(); Cache = nil })

	household := uuid.New()
	require.True(t, SetCategoryCache(household, CategoryCacheVersion(), []string{"Mercado"}))
	require.True(t, SetRecurringCache(household, RecurringCacheVersion(), []string{"Aluguel"}))

	v, ok := GetCategoryCache(household)
	require.True(t, ok)
	require.Equal(t, []string{"Mercado"}, v)

	n, ok := ClearCacheByName("categories")
	require.True(t, ok)
	require.Equal(t, 1, n)
	_, ok = GetCategoryCache(household)
	require.False(t, ok)

	_, ok = GetRecurringCache(household)
	require.True(t, ok)
	DelRecurringCache(household)
	_, ok = GetRecurringCache(household)
	require.False(t, ok)
}

func TestStaleFillIsDropped(t *testing.T) {
	InitCache()
	t.Cleanup(func() { Cache.Close(); Cache = nil })

	household := uuid.New()
	version := CategoryCacheVersion()
	// a write lands between the read and the fill
	DelCategoryCache(household)
	require.False(t, SetCategoryCache(household, version, []string{"stale"}))
	_, ok := GetCategoryCache(household)
	require.False(t, ok)

	version = RecurringCacheVersion()
	ClearCacheByName("all")
	require.False(t, SetRecurringCache(household, version, []string{"stale"}))

	require.True(t, SetCategoryCache(household, CategoryCacheVersion(), []string{"fresh"}))
	v, ok := GetCategoryCache(household)
	require.True(t, ok)
	require.Equal(t, []string{"fresh"}, v)
}

func TestClearUnknownCache(t *testing.T) {
	_, ok := ClearCacheByName("accounts")
	require.False(t, ok)
}

func TestCacheDisabledIsSafe(t *testing.T) {
	Cache = nil
	household := uuid.New()
	require.False(t, SetCategoryCache(household, CategoryCacheVersion(), 1))
	_, ok := GetCategoryCache(household)
	require.False(t, ok)
	DelCategoryCache(household)
	n, ok := ClearCacheByName("all")
	require.True(t, ok)
	require.Equal(t, 0, n)
}

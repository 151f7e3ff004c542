package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"domus-server/src/finance"
)

// LoadLedger fetches categories, transactions dated up to until and recurring
// rules in parallel. Any failure fails the whole load.
func LoadLedger(ctx context.Context, pool *pgxpool.Pool, householdID uuid.UUID, until time.Time) (finance.Ledger, error) {
	var l finance.Ledger
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		categories, err := GetCategories(gctx, pool, householdID)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		l.Categories = categories
		return nil
	})
	g.Go(func() error {
		transactions, err := GetTransactionsUntil(gctx, pool, householdID, until)
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		l.Transactions = transactions
		return nil
	})
	g.Go(func() error {
		rules, err := GetRecurringTransactions(gctx, pool, householdID)
		if err != nil {
			return fmt.Errorf("load recurring transactions: %w", err)
		}
		l.Rules = rules
		return nil
	})

	if err := g.Wait(); err != nil {
		return finance.Ledger{}, err
	}
	return l, nil
}

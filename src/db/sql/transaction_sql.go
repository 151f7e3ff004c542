package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"domus-server/src/models"
)

const transactionColumns = `id, household_id, created_by, description, amount, kind, category_id, date, created_at, updated_at`

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.HouseholdID, &t.CreatedBy, &t.Description, &t.Amount, &t.Kind,
		&t.CategoryID, &t.Date, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func queryTransactions(ctx context.Context, pool *pgxpool.Pool, query string, args ...any) ([]models.Transaction, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *t)
	}
	return transactions, rows.Err()
}

// GetTransactions lists one-off transactions dated in [from, to], newest first.
func GetTransactions(ctx context.Context, pool *pgxpool.Pool, householdID uuid.UUID, from, to time.Time) ([]models.Transaction, error) {
	return queryTransactions(ctx, pool, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE household_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date DESC, created_at DESC
	`, householdID, from, to)
}

// GetTransactionsUntil lists every transaction dated on or before until.
func GetTransactionsUntil(ctx context.Context, pool *pgxpool.Pool, householdID uuid.UUID, until time.Time) ([]models.Transaction, error) {
	return queryTransactions(ctx, pool, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE household_id = $1 AND date <= $2
		ORDER BY date
	`, householdID, until)
}

func GetTransactionByID(ctx context.Context, pool *pgxpool.Pool, householdID, transactionID uuid.UUID) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND household_id = $2`
	return scanTransaction(pool.QueryRow(ctx, query, transactionID, householdID))
}

func CreateTransaction(ctx context.Context, pool *pgxpool.Pool, t *models.Transaction) (*models.Transaction, error) {
	query := `
		INSERT INTO transactions (id, household_id, created_by, description, amount, kind, category_id, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + transactionColumns
	created, err := scanTransaction(pool.QueryRow(ctx, query, uuid.New(), t.HouseholdID, t.CreatedBy,
		t.Description, t.Amount, t.Kind, t.CategoryID, t.Date))
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return created, nil
}

func UpdateTransaction(ctx context.Context, pool *pgxpool.Pool, t *models.Transaction) (*models.Transaction, error) {
	query := `
		UPDATE transactions
		SET description = $3, amount = $4, kind = $5, category_id = $6, date = $7, updated_at = now()
		WHERE id = $1 AND household_id = $2
		RETURNING ` + transactionColumns
	return scanTransaction(pool.QueryRow(ctx, query, t.ID, t.HouseholdID, t.Description, t.Amount, t.Kind, t.CategoryID, t.Date))
}

func DeleteTransaction(ctx context.Context, pool *pgxpool.Pool, householdID, transactionID uuid.UUID) error {
	tag, err := pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND household_id = $2`, transactionID, householdID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return mustAffect(tag)
}

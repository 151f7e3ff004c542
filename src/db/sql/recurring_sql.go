package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"domus-server/src/db"
	"domus-server/src/models"
)

const recurringColumns = `id, household_id, description, amount, kind, category_id, frequency, day_of_month, day_of_week, start_date, end_date, created_at, updated_at`

func scanRecurring(row pgx.Row) (*models.RecurringTransaction, error) {
	var r models.RecurringTransaction
	err := row.Scan(&r.ID, &r.HouseholdID, &r.Description, &r.Amount, &r.Kind, &r.CategoryID, &r.Frequency,
		&r.DayOfMonth, &r.DayOfWeek, &r.StartDate, &r.EndDate, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func GetRecurringTransactions(ctx context.Context, pool *pgxpool.Pool, householdID uuid.UUID) ([]models.RecurringTransaction, error) {
	if cached, ok := db.GetRecurringCache(householdID); ok {
		if rules, ok := cached.([]models.RecurringTransaction); ok {
			return append([]models.RecurringTransaction(nil), rules...), nil
		}
	}

	version := db.RecurringCacheVersion()
	rows, err := pool.Query(ctx, `
		SELECT `+recurringColumns+`
		FROM recurring_transactions
		WHERE household_id = $1
		ORDER BY start_date, description
	`, householdID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := []models.RecurringTransaction{}
	for rows.Next() {
		r, err := scanRecurring(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	db.SetRecurringCache(householdID, version, rules)
	return append([]models.RecurringTransaction(nil), rules...), nil
}

func GetRecurringTransactionByID(ctx context.Context, pool *pgxpool.Pool, householdID, ruleID uuid.UUID) (*models.RecurringTransaction, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_transactions WHERE id = $1 AND household_id = $2`
	return scanRecurring(pool.QueryRow(ctx, query, ruleID, householdID))
}

func CreateRecurringTransaction(ctx context.Context, pool *pgxpool.Pool, r *models.RecurringTransaction) (*models.RecurringTransaction, error) {
	query := `
		INSERT INTO recurring_transactions
			(id, household_id, description, amount, kind, category_id, frequency, day_of_month, day_of_week, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + recurringColumns
	created, err := scanRecurring(pool.QueryRow(ctx, query, uuid.New(), r.HouseholdID, r.Description, r.Amount, r.Kind,
		r.CategoryID, r.Frequency, r.DayOfMonth, r.DayOfWeek, r.StartDate, r.EndDate))
	if err != nil {
		return nil, fmt.Errorf("failed to create recurring transaction: %w", err)
	}
	db.DelRecurringCache(r.HouseholdID)
	return created, nil
}

func UpdateRecurringTransaction(ctx context.Context, pool *pgxpool.Pool, r *models.RecurringTransaction) (*models.RecurringTransaction, error) {
	query := `
		UPDATE recurring_transactions
		SET description = $3, amount = $4, kind = $5, category_id = $6, frequency = $7,
			day_of_month = $8, day_of_week = $9, start_date = $10, end_date = $11, updated_at = now()
		WHERE id = $1 AND household_id = $2
		RETURNING ` + recurringColumns
	updated, err := scanRecurring(pool.QueryRow(ctx, query, r.ID, r.HouseholdID, r.Description, r.Amount, r.Kind,
		r.CategoryID, r.Frequency, r.DayOfMonth, r.DayOfWeek, r.StartDate, r.EndDate))
	if err != nil {
		return nil, err
	}
	db.DelRecurringCache(r.HouseholdID)
	return updated, nil
}

func DeleteRecurringTransaction(ctx context.Context, pool *pgxpool.Pool, householdID, ruleID uuid.UUID) error {
	tag, err := pool.Exec(ctx, `DELETE FROM recurring_transactions WHERE id = $1 AND household_id = $2`, ruleID, householdID)
	if err != nil {
		return fmt.Errorf("failed to delete recurring transaction: %w", err)
	}
	if err := mustAffect(tag); err != nil {
		return err
	}
	db.DelRecurringCache(householdID)
	return nil
}

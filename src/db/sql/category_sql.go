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

const categoryColumns = `id, household_id, name, kind, icon, color, budget, created_at`

func scanCategory(row pgx.Row) (*models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.HouseholdID, &c.Name, &c.Kind, &c.Icon, &c.Color, &c.Budget, &c.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// GetCategories returns every category of the household, served from the
// cache when possible.
func GetCategories(ctx context.Context, pool *pgxpool.Pool, householdID uuid.UUID) ([]models.Category, error) {
	if cached, ok := db.GetCategoryCache(householdID); ok {
		if categories, ok := cached.([]models.Category); ok {
			return append([]models.Category(nil), categories...), nil
		}
	}

	version := db.CategoryCacheVersion()
	rows, err := pool.Query(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE household_id = $1
		ORDER BY kind, name
	`, householdID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	db.SetCategoryCache(householdID, version, categories)
	return append([]models.Category(nil), categories...), nil
}

func GetCategoryByID(ctx context.Context, pool *pgxpool.Pool, householdID, categoryID uuid.UUID) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1 AND household_id = $2`
	return scanCategory(pool.QueryRow(ctx, query, categoryID, householdID))
}

func CreateCategory(ctx context.Context, pool *pgxpool.Pool, c *models.Category) (*models.Category, error) {
	query := `
		INSERT INTO categories (id, household_id, name, kind, icon, color, budget)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + categoryColumns
	created, err := scanCategory(pool.QueryRow(ctx, query, uuid.New(), c.HouseholdID, c.Name, c.Kind, c.Icon, c.Color, c.Budget))
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	db.DelCategoryCache(c.HouseholdID)
	return created, nil
}

// UpdateCategory changes everything but the kind, which is fixed at creation.
func UpdateCategory(ctx context.Context, pool *pgxpool.Pool, c *models.Category) (*models.Category, error) {
	query := `
		UPDATE categories SET name = $3, icon = $4, color = $5, budget = $6
		WHERE id = $1 AND household_id = $2
		RETURNING ` + categoryColumns
	updated, err := scanCategory(pool.QueryRow(ctx, query, c.ID, c.HouseholdID, c.Name, c.Icon, c.Color, c.Budget))
	if err != nil {
		return nil, err
	}
	db.DelCategoryCache(c.HouseholdID)
	return updated, nil
}

// DeleteCategory leaves transactions and rules that used it uncategorized.
func DeleteCategory(ctx context.Context, pool *pgxpool.Pool, householdID, categoryID uuid.UUID) error {
	tag, err := pool.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND household_id = $2`, categoryID, householdID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if err := mustAffect(tag); err != nil {
		return err
	}
	db.DelCategoryCache(householdID)
	db.DelRecurringCache(householdID)
	return nil
}

// CheckCategory verifies that categoryID belongs to the household and has the
// given kind.
func CheckCategory(ctx context.Context, pool *pgxpool.Pool, householdID, categoryID uuid.UUID, kind models.Kind) error {
	c, err := GetCategoryByID(ctx, pool, householdID, categoryID)
	if err != nil {
		return err
	}
	if c.Kind != kind {
		return ErrCategoryKind
	}
	return nil
}

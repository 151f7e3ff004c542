package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"domus-server/src/models"
)

func GetTaskCategories(ctx context.Context, pool *pgxpool.Pool, householdID uuid.UUID) ([]models.TaskCategory, error) {
	rows, err := pool.Query(ctx, `
		SELECT id, household_id, name, color
		FROM task_categories
		WHERE household_id = $1
		ORDER BY name
	`, householdID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.TaskCategory{}
	for rows.Next() {
		var c models.TaskCategory
		if err := rows.Scan(&c.ID, &c.HouseholdID, &c.Name, &c.Color); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func TaskCategoryExists(ctx context.Context, pool *pgxpool.Pool, householdID, categoryID uuid.UUID) (bool, error) {
	var ok bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM task_categories WHERE id = $1 AND household_id = $2)
	`, categoryID, householdID).Scan(&ok)
	return ok, err
}

func CreateTaskCategory(ctx context.Context, pool *pgxpool.Pool, c *models.TaskCategory) (*models.TaskCategory, error) {
	created := *c
	created.ID = uuid.New()
	_, err := pool.Exec(ctx, `
		INSERT INTO task_categories (id, household_id, name, color)
		VALUES ($1, $2, $3, $4)
	`, created.ID, created.HouseholdID, created.Name, created.Color)
	if err != nil {
		return nil, fmt.Errorf("failed to create task category: %w", err)
	}
	return &created, nil
}

func UpdateTaskCategory(ctx context.Context, pool *pgxpool.Pool, c *models.TaskCategory) error {
	tag, err := pool.Exec(ctx, `
		UPDATE task_categories SET name = $3, color = $4
		WHERE id = $1 AND household_id = $2
	`, c.ID, c.HouseholdID, c.Name, c.Color)
	if err != nil {
		return fmt.Errorf("failed to update task category: %w", err)
	}
	return mustAffect(tag)
}

func DeleteTaskCategory(ctx context.Context, pool *pgxpool.Pool, householdID, categoryID uuid.UUID) error {
	tag, err := pool.Exec(ctx, `DELETE FROM task_categories WHERE id = $1 AND household_id = $2`, categoryID, householdID)
	if err != nil {
		return fmt.Errorf("failed to delete task category: %w", err)
	}
	return mustAffect(tag)
}

package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"domus-server/src/models"
)

const taskSelect = `
	SELECT t.id, t.household_id, t.name, t.description, t.status, t.deadline,
		t.category_id, t.assignee_id, t.creator_id, t.created_at, t.updated_at,
		c.name, c.color, u.full_name, u.avatar_url
	FROM tasks t
	LEFT JOIN task_categories c ON c.id = t.category_id
	LEFT JOIN users u ON u.id = t.assignee_id
`

func scanTask(row pgx.Row) (*models.Task, error) {
	var (
		t                   models.Task
		catName, catColor   *string
		assigneeName, photo *string
	)
	err := row.Scan(&t.ID, &t.HouseholdID, &t.Name, &t.Description, &t.Status, &t.Deadline,
		&t.CategoryID, &t.AssigneeID, &t.CreatorID, &t.CreatedAt, &t.UpdatedAt,
		&catName, &catColor, &assigneeName, &photo)
	if err != nil {
		return nil, notFound(err)
	}
	if t.CategoryID != nil && catName != nil {
		t.Category = &models.TaskCategory{ID: *t.CategoryID, HouseholdID: t.HouseholdID, Name: *catName}
		if catColor != nil {
			t.Category.Color = *catColor
		}
	}
	if t.AssigneeID != nil {
		t.Assignee = &models.TaskAssignee{FullName: assigneeName, AvatarURL: photo}
	}
	return &t, nil
}

// GetTasks lists the household's tasks, nearest deadline first and undated
// tasks last.
func GetTasks(ctx context.Context, pool *pgxpool.Pool, householdID uuid.UUID) ([]models.Task, error) {
	rows, err := pool.Query(ctx, taskSelect+`
		WHERE t.household_id = $1
		ORDER BY t.deadline ASC NULLS LAST, t.created_at DESC
	`, householdID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func GetTaskByID(ctx context.Context, pool *pgxpool.Pool, householdID, taskID uuid.UUID) (*models.Task, error) {
	return scanTask(pool.QueryRow(ctx, taskSelect+`WHERE t.id = $1 AND t.household_id = $2`, taskID, householdID))
}

func CreateTask(ctx context.Context, pool *pgxpool.Pool, t *models.Task) (*models.Task, error) {
	id := uuid.New()
	_, err := pool.Exec(ctx, `
		INSERT INTO tasks (id, household_id, name, description, status, deadline, category_id, assignee_id, creator_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, id, t.HouseholdID, t.Name, t.Description, t.Status, t.Deadline, t.CategoryID, t.AssigneeID, t.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return GetTaskByID(ctx, pool, t.HouseholdID, id)
}

func UpdateTask(ctx context.Context, pool *pgxpool.Pool, t *models.Task) (*models.Task, error) {
	tag, err := pool.Exec(ctx, `
		UPDATE tasks
		SET name = $3, description = $4, status = $5, deadline = $6, category_id = $7, assignee_id = $8, updated_at = now()
		WHERE id = $1 AND household_id = $2
	`, t.ID, t.HouseholdID, t.Name, t.Description, t.Status, t.Deadline, t.CategoryID, t.AssigneeID)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if err := mustAffect(tag); err != nil {
		return nil, err
	}
	return GetTaskByID(ctx, pool, t.HouseholdID, t.ID)
}

func UpdateTaskStatus(ctx context.Context, pool *pgxpool.Pool, householdID, taskID uuid.UUID, status models.TaskStatus) error {
	tag, err := pool.Exec(ctx, `
		UPDATE tasks SET status = $3, updated_at = now()
		WHERE id = $1 AND household_id = $2
	`, taskID, householdID, status)
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}
	return mustAffect(tag)
}

func DeleteTask(ctx context.Context, pool *pgxpool.Pool, householdID, taskID uuid.UUID) error {
	tag, err := pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND household_id = $2`, taskID, householdID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return mustAffect(tag)
}

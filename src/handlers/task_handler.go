package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	db "domus-server/src/db/sql"
	"domus-server/src/events"
	"domus-server/src/middleware"
	"domus-server/src/models"
	"domus-server/src/util"
)

var (
	errAssigneeNotMember = errors.New("assignee must be a member of the household")
	errUnknownTaskCat    = errors.New("task category does not exist")
)

type taskRequest struct {
	Name        string            `json:"name"`
	Description *string           `json:"description"`
	Status      models.TaskStatus `json:"status"`
	Deadline    *string           `json:"deadline"`
	CategoryID  *uuid.UUID        `json:"category_id"`
	AssigneeID  *uuid.UUID        `json:"assignee_id"`
}

func (req taskRequest) task() (models.Task, error) {
	t := models.Task{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Status:      req.Status,
		CategoryID:  req.CategoryID,
		AssigneeID:  req.AssigneeID,
	}
	if t.Status == "" {
		t.Status = models.TaskTodo
	}
	deadline, err := util.ParseOptionalDate(req.Deadline)
	if err != nil {
		return t, err
	}
	t.Deadline = deadline
	return t, t.Validate()
}

// checkTaskRefs makes sure the assignee and category belong to the household.
// The returned error is safe to show to the client; store failures are
// reported separately.
func checkTaskRefs(ctx context.Context, pool *pgxpool.Pool, householdID uuid.UUID, t models.Task) (invalid, err error) {
	if t.AssigneeID != nil {
		ok, err := db.IsMember(ctx, pool, householdID, *t.AssigneeID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return errAssigneeNotMember, nil
		}
	}
	if t.CategoryID != nil {
		ok, err := db.TaskCategoryExists(ctx, pool, householdID, *t.CategoryID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return errUnknownTaskCat, nil
		}
	}
	return nil, nil
}

func GetTasks(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := middleware.HouseholdID(r.Context())

		tasks, err := db.GetTasks(r.Context(), pool, householdID)
		if err != nil {
			log.Printf("ERROR: Failed to get tasks for household %s: %v", householdID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, tasks)
	}
}

func CreateTask(pool *pgxpool.Pool, pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := middleware.HouseholdID(r.Context())
		userID := middleware.UserID(r.Context())

		var req taskRequest
		if err := decodeJSON(w, r, &req); err != nil {
			log.Printf("ERROR: Failed to decode create task request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		t, err := req.task()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		t.HouseholdID = householdID
		t.CreatorID = &userID

		invalid, err := checkTaskRefs(r.Context(), pool, householdID, t)
		if err != nil {
			log.Printf("ERROR: Failed to check task references for household %s: %v", householdID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if invalid != nil {
			http.Error(w, invalid.Error(), http.StatusBadRequest)
			return
		}

		created, err := db.CreateTask(r.Context(), pool, &t)
		if err != nil {
			log.Printf("ERROR: Failed to create task for household %s: %v", householdID, err)
			storeError(w, err, "task")
			return
		}

		log.Printf("INFO: Task created - ID: %s, Household: %s", created.ID, householdID)
		notify(pub, r, events.TaskCreated, &created.ID)
		writeJSON(w, http.StatusCreated, created)
	}
}

func UpdateTask(pool *pgxpool.Pool, pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := middleware.HouseholdID(r.Context())

		taskID, err := urlUUID(r, "task_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var req taskRequest
		if err := decodeJSON(w, r, &req); err != nil {
			log.Printf("ERROR: Failed to decode update task request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		t, err := req.task()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		t.ID = taskID
		t.HouseholdID = householdID

		invalid, err := checkTaskRefs(r.Context(), pool, householdID, t)
		if err != nil {
			log.Printf("ERROR: Failed to check task references for household %s: %v", householdID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if invalid != nil {
			http.Error(w, invalid.Error(), http.StatusBadRequest)
			return
		}

		updated, err := db.UpdateTask(r.Context(), pool, &t)
		if err != nil {
			log.Printf("ERROR: Failed to update task %s: %v", taskID, err)
			storeError(w, err, "task")
			return
		}

		notify(pub, r, events.TaskUpdated, &updated.ID)
		writeJSON(w, http.StatusOK, updated)
	}
}

func UpdateTaskStatus(pool *pgxpool.Pool, pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := middleware.HouseholdID(r.Context())

		taskID, err := urlUUID(r, "task_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var req struct {
			Status models.TaskStatus `json:"status"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			log.Printf("ERROR: Failed to decode task status request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if !req.Status.Valid() {
			http.Error(w, models.ErrInvalidStatus.Error(), http.StatusBadRequest)
			return
		}

		if err := db.UpdateTaskStatus(r.Context(), pool, householdID, taskID, req.Status); err != nil {
			log.Printf("ERROR: Failed to update status of task %s: %v", taskID, err)
			storeError(w, err, "task")
			return
		}

		notify(pub, r, events.TaskUpdated, &taskID)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id":     taskID,
			"status": req.Status,
		})
	}
}

func DeleteTask(pool *pgxpool.Pool, pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := middleware.HouseholdID(r.Context())

		taskID, err := urlUUID(r, "task_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := db.DeleteTask(r.Context(), pool, householdID, taskID); err != nil {
			log.Printf("ERROR: Failed to delete task %s: %v", taskID, err)
			storeError(w, err, "task")
			return
		}

		log.Printf("INFO: Task deleted - ID: %s, Household: %s", taskID, householdID)
		notify(pub, r, events.TaskDeleted, &taskID)
		w.WriteHeader(http.StatusNoContent)
	}
}

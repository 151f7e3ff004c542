package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	db "domus-server/src/db/sql"
	"domus-server/src/middleware"
	"domus-server/src/models"
	"domus-server/src/util"
)

type taskCategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (req taskCategoryRequest) taskCategory() (models.TaskCategory, error) {
	c := models.TaskCategory{
		Name:  strings.TrimSpace(req.Name),
		Color: strings.TrimSpace(req.Color),
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	if !util.ValidateColor(c.Color) {
		return c, errInvalidColor
	}
	return c, nil
}

func GetTaskCategories(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := middleware.HouseholdID(r.Context())

		categories, err := db.GetTaskCategories(r.Context(), pool, householdID)
		if err != nil {
			log.Printf("ERROR: Failed to get task categories for household %s: %v", householdID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, categories)
	}
}

func CreateTaskCategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := middleware.HouseholdID(r.Context())

		var req taskCategoryRequest
		if err := decodeJSON(w, r, &req); err != nil {
			log.Printf("ERROR: Failed to decode create task category request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		c, err := req.taskCategory()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		c.HouseholdID = householdID

		created, err := db.CreateTaskCategory(r.Context(), pool, &c)
		if err != nil {
			log.Printf("ERROR: Failed to create task category for household %s: %v", householdID, err)
			storeError(w, err, "task category")
			return
		}

		writeJSON(w, http.StatusCreated, created)
	}
}

func UpdateTaskCategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := middleware.HouseholdID(r.Context())

		categoryID, err := urlUUID(r, "category_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var req taskCategoryRequest
		if err := decodeJSON(w, r, &req); err != nil {
			log.Printf("ERROR: Failed to decode update task category request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		c, err := req.taskCategory()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		c.ID = categoryID
		c.HouseholdID = householdID

		if err := db.UpdateTaskCategory(r.Context(), pool, &c); err != nil {
			log.Printf("ERROR: Failed to update task category %s: %v", categoryID, err)
			storeError(w, err, "task category")
			return
		}

		writeJSON(w, http.StatusOK, c)
	}
}

// DeleteTaskCategory leaves the tasks that used it uncategorized.
func DeleteTaskCategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := middleware.HouseholdID(r.Context())

		categoryID, err := urlUUID(r, "category_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := db.DeleteTaskCategory(r.Context(), pool, householdID, categoryID); err != nil {
			log.Printf("ERROR: Failed to delete task category %s: %v", categoryID, err)
			storeError(w, err, "task category")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

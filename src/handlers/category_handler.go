package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	db "domus-server/src/db/sql"
	"domus-server/src/events"
	"domus-server/src/middleware"
	"domus-server/src/models"
	"domus-server/src/util"
)

type categoryRequest struct {
	Name   string           `json:"name"`
	Kind   models.Kind      `json:"kind"`
	Icon   *string          `json:"icon"`
	Color  *string          `json:"color"`
	Budget *decimal.Decimal `json:"budget"`
}

func (req categoryRequest) category() (models.Category, error) {
	c := models.Category{
		Name:   strings.TrimSpace(req.Name),
		Kind:   req.Kind,
		Icon:   req.Icon,
		Color:  req.Color,
		Budget: req.Budget,
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	if c.Color != nil && !util.ValidateColor(*c.Color) {
		return c, errInvalidColor
	}
	return c, nil
}

func GetCategories(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := middleware.HouseholdID(r.Context())

		categories, err := db.GetCategories(r.Context(), pool, householdID)
		if err != nil {
			log.Printf("ERROR: Failed to get categories for household %s: %v", householdID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, categories)
	}
}

func CreateCategory(pool *pgxpool.Pool, pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := middleware.HouseholdID(r.Context())

		var req categoryRequest
		if err := decodeJSON(w, r, &req); err != nil {
			log.Printf("ERROR: Failed to decode create category request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		c, err := req.category()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		c.HouseholdID = householdID

		created, err := db.CreateCategory(r.Context(), pool, &c)
		if err != nil {
			log.Printf("ERROR: Failed to create category for household %s: %v", householdID, err)
			storeError(w, err, "category")
			return
		}

		log.Printf("INFO: Category created - ID: %s, Household: %s", created.ID, householdID)
		notify(pub, r, events.CategoryChanged, &created.ID)
		writeJSON(w, http.StatusCreated, created)
	}
}

// UpdateCategory keeps the stored kind. A request that names a different kind
// is rejected.
func UpdateCategory(pool *pgxpool.Pool, pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := middleware.HouseholdID(r.Context())

		categoryID, err := urlUUID(r, "category_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		existing, err := db.GetCategoryByID(r.Context(), pool, householdID, categoryID)
		if err != nil {
			storeError(w, err, "category")
			return
		}

		var req categoryRequest
		if err := decodeJSON(w, r, &req); err != nil {
			log.Printf("ERROR: Failed to decode update category request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if req.Kind == "" {
			req.Kind = existing.Kind
		}
		if req.Kind != existing.Kind {
			http.Error(w, "category kind cannot be changed", http.StatusBadRequest)
			return
		}

		c, err := req.category()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		c.ID = categoryID
		c.HouseholdID = householdID

		updated, err := db.UpdateCategory(r.Context(), pool, &c)
		if err != nil {
			log.Printf("ERROR: Failed to update category %s: %v", categoryID, err)
			storeError(w, err, "category")
			return
		}

		notify(pub, r, events.CategoryChanged, &updated.ID)
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteCategory(pool *pgxpool.Pool, pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := middleware.HouseholdID(r.Context())

		categoryID, err := urlUUID(r, "category_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := db.DeleteCategory(r.Context(), pool, householdID, categoryID); err != nil {
			log.Printf("ERROR: Failed to delete category %s: %v", categoryID, err)
			storeError(w, err, "category")
			return
		}

		log.Printf("INFO: Category deleted - ID: %s, Household: %s", categoryID, householdID)
		notify(pub, r, events.CategoryChanged, &categoryID)
		w.WriteHeader(http.StatusNoContent)
	}
}

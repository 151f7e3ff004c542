package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	db "domus-server/src/db/sql"
	"domus-server/src/events"
	"domus-server/src/middleware"
	"domus-server/src/models"
	"domus-server/src/util"
)

type recurringRequest struct {
	Description string           `json:"description"`
	Amount      decimal.Decimal  `json:"amount"`
	Kind        models.Kind      `json:"kind"`
	CategoryID  *uuid.UUID       `json:"category_id"`
	Frequency   models.Frequency `json:"frequency"`
	DayOfMonth  *int             `json:"day_of_month"`
	DayOfWeek   *int             `json:"day_of_week"`
	StartDate   string           `json:"start_date"`
	EndDate     *string          `json:"end_date"`
}

func (req recurringRequest) rule() (models.RecurringTransaction, error) {
	rt := models.RecurringTransaction{
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		Kind:        req.Kind,
		CategoryID:  req.CategoryID,
		Frequency:   req.Frequency,
		DayOfMonth:  req.DayOfMonth,
		DayOfWeek:   req.DayOfWeek,
	}
	if req.StartDate != "" {
		start, err := util.ParseDate(req.StartDate)
		if err != nil {
			return rt, err
		}
		rt.StartDate = start
	}
	end, err := util.ParseOptionalDate(req.EndDate)
	if err != nil {
		return rt, err
	}
	rt.EndDate = end
	return rt, rt.Validate()
}

func GetRecurringTransactions(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := middleware.HouseholdID(r.Context())

		rules, err := db.GetRecurringTransactions(r.Context(), pool, householdID)
		if err != nil {
			log.Printf("ERROR: Failed to get recurring transactions for household %s: %v", householdID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, rules)
	}
}

func CreateRecurringTransaction(pool *pgxpool.Pool, pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := middleware.HouseholdID(r.Context())

		var req recurringRequest
		if err := decodeJSON(w, r, &req); err != nil {
			log.Printf("ERROR: Failed to decode create recurring request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		rt, err := req.rule()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rt.HouseholdID = householdID

		if err := checkCategory(r.Context(), pool, householdID, rt.CategoryID, rt.Kind); err != nil {
			storeError(w, err, "category")
			return
		}

		created, err := db.CreateRecurringTransaction(r.Context(), pool, &rt)
		if err != nil {
			log.Printf("ERROR: Failed to create recurring transaction for household %s: %v", householdID, err)
			storeError(w, err, "recurring transaction")
			return
		}

		log.Printf("INFO: Recurring transaction created - ID: %s, Frequency: %s, Household: %s", created.ID, created.Frequency, householdID)
		notify(pub, r, events.RecurringCreated, &created.ID)
		writeJSON(w, http.StatusCreated, created)
	}
}

func UpdateRecurringTransaction(pool *pgxpool.Pool, pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := middleware.HouseholdID(r.Context())

		ruleID, err := urlUUID(r, "recurring_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var req recurringRequest
		if err := decodeJSON(w, r, &req); err != nil {
			log.Printf("ERROR: Failed to decode update recurring request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		rt, err := req.rule()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rt.ID = ruleID
		rt.HouseholdID = householdID

		if err := checkCategory(r.Context(), pool, householdID, rt.CategoryID, rt.Kind); err != nil {
			storeError(w, err, "category")
			return
		}

		updated, err := db.UpdateRecurringTransaction(r.Context(), pool, &rt)
		if err != nil {
			log.Printf("ERROR: Failed to update recurring transaction %s: %v", ruleID, err)
			storeError(w, err, "recurring transaction")
			return
		}

		notify(pub, r, events.RecurringUpdated, &updated.ID)
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteRecurringTransaction(pool *pgxpool.Pool, pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := middleware.HouseholdID(r.Context())

		ruleID, err := urlUUID(r, "recurring_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := db.DeleteRecurringTransaction(r.Context(), pool, householdID, ruleID); err != nil {
			log.Printf("ERROR: Failed to delete recurring transaction %s: %v", ruleID, err)
			storeError(w, err, "recurring transaction")
			return
		}

		log.Printf("INFO: Recurring transaction deleted - ID: %s, Household: %s", ruleID, householdID)
		notify(pub, r, events.RecurringDeleted, &ruleID)
		w.WriteHeader(http.StatusNoContent)
	}
}

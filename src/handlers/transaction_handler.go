package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	db "domus-server/src/db/sql"
	"domus-server/src/events"
	"domus-server/src/finance"
	"domus-server/src/middleware"
	"domus-server/src/models"
	"domus-server/src/util"
)

type transactionRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        models.Kind     `json:"kind"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	Date        string          `json:"date"`
}

func (req transactionRequest) transaction() (models.Transaction, error) {
	t := models.Transaction{
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		Kind:        req.Kind,
		CategoryID:  req.CategoryID,
	}
	if req.Date != "" {
		date, err := util.ParseDate(req.Date)
		if err != nil {
			return t, err
		}
		t.Date = date
	}
	return t, t.Validate()
}

// checkCategory verifies an optional category against the household and the
// entry kind.
func checkCategory(ctx context.Context, pool *pgxpool.Pool, householdID uuid.UUID, categoryID *uuid.UUID, kind models.Kind) error {
	if categoryID == nil {
		return nil
	}
	return db.CheckCategory(ctx, pool, householdID, *categoryID, kind)
}

// dateRange reads the from and to query dates, defaulting to the current
// month.
func dateRange(r *http.Request) (time.Time, time.Time, error) {
	window := finance.MonthWindow(now())
	from, to := window.Start, window.End
	if raw := r.URL.Query().Get("from"); raw != "" {
		d, err := util.ParseDate(raw)
		if err != nil {
			return from, to, err
		}
		from = d
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		d, err := util.ParseDate(raw)
		if err != nil {
			return from, to, err
		}
		to = d
	}
	if to.Before(from) {
		return from, to, errors.New("to must not be before from")
	}
	return from, to, nil
}

func GetTransactions(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := middleware.HouseholdID(r.Context())

		from, to, err := dateRange(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		transactions, err := db.GetTransactions(r.Context(), pool, householdID, from, to)
		if err != nil {
			log.Printf("ERROR: Failed to get transactions for household %s: %v", householdID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, transactions)
	}
}

// GetDuplicateTransactions lists pairs of one-off transactions in the range
// that look like the same spending entered twice.
func GetDuplicateTransactions(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := middleware.HouseholdID(r.Context())

		from, to, err := dateRange(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		transactions, err := db.GetTransactions(r.Context(), pool, householdID, from, to)
		if err != nil {
			log.Printf("ERROR: Failed to get transactions for household %s: %v", householdID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, finance.FindDuplicates(transactions))
	}
}

func GetTransaction(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := middleware.HouseholdID(r.Context())

		transactionID, err := urlUUID(r, "transaction_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		t, err := db.GetTransactionByID(r.Context(), pool, householdID, transactionID)
		if err != nil {
			storeError(w, err, "transaction")
			return
		}

		writeJSON(w, http.StatusOK, t)
	}
}

func CreateTransaction(pool *pgxpool.Pool, pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := middleware.HouseholdID(r.Context())
		userID := middleware.UserID(r.Context())

		var req transactionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			log.Printf("ERROR: Failed to decode create transaction request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		t, err := req.transaction()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		t.HouseholdID = householdID
		t.CreatedBy = &userID

		if err := checkCategory(r.Context(), pool, householdID, t.CategoryID, t.Kind); err != nil {
			storeError(w, err, "category")
			return
		}

		created, err := db.CreateTransaction(r.Context(), pool, &t)
		if err != nil {
			log.Printf("ERROR: Failed to create transaction for household %s: %v", householdID, err)
			storeError(w, err, "transaction")
			return
		}

		log.Printf("INFO: Transaction created - ID: %s, Household: %s", created.ID, householdID)
		notify(pub, r, events.TransactionCreated, &created.ID)
		writeJSON(w, http.StatusCreated, created)
	}
}

func UpdateTransaction(pool *pgxpool.Pool, pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := middleware.HouseholdID(r.Context())

		transactionID, err := urlUUID(r, "transaction_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var req transactionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			log.Printf("ERROR: Failed to decode update transaction request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		t, err := req.transaction()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		t.ID = transactionID
		t.HouseholdID = householdID

		if err := checkCategory(r.Context(), pool, householdID, t.CategoryID, t.Kind); err != nil {
			storeError(w, err, "category")
			return
		}

		updated, err := db.UpdateTransaction(r.Context(), pool, &t)
		if err != nil {
			log.Printf("ERROR: Failed to update transaction %s: %v", transactionID, err)
			storeError(w, err, "transaction")
			return
		}

		notify(pub, r, events.TransactionUpdated, &updated.ID)
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteTransaction(pool *pgxpool.Pool, pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := middleware.HouseholdID(r.Context())

		transactionID, err := urlUUID(r, "transaction_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := db.DeleteTransaction(r.Context(), pool, householdID, transactionID); err != nil {
			log.Printf("ERROR: Failed to delete transaction %s: %v", transactionID, err)
			storeError(w, err, "transaction")
			return
		}

		log.Printf("INFO: Transaction deleted - ID: %s, Household: %s", transactionID, householdID)
		notify(pub, r, events.TransactionDeleted, &transactionID)
		w.WriteHeader(http.StatusNoContent)
	}
}

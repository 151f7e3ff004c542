package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	db "domus-server/src/db/sql"
	"domus-server/src/finance"
	"domus-server/src/middleware"
	"domus-server/src/util"
)

// now is read once per request; tests replace it.
var now = time.Now

// monthSummary loads the household ledger and aggregates the month selected
// by the "month" query parameter. It writes the error response itself and
// reports whether the caller may continue.
func monthSummary(w http.ResponseWriter, r *http.Request, pool *pgxpool.Pool, engine *finance.Engine) (finance.Summary, bool) {
	householdID := middleware.HouseholdID(r.Context())

	month, err := util.ParseMonth(r.URL.Query().Get("month"), now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return finance.Summary{}, false
	}
	window := finance.MonthWindow(month)

	ledger, err := db.LoadLedger(r.Context(), pool, householdID, window.End)
	if err != nil {
		log.Printf("ERROR: Failed to load ledger for household %s, month %s: %v", householdID, window.Key(), err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return finance.Summary{}, false
	}

	return engine.Summarize(ledger, window), true
}

func GetDashboard(pool *pgxpool.Pool, engine *finance.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, ok := monthSummary(w, r, pool, engine)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, engine.Dashboard(summary))
	}
}

func GetMonthTransactions(pool *pgxpool.Pool, engine *finance.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, ok := monthSummary(w, r, pool, engine)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, engine.Transactions(summary))
	}
}

func GetAnalysis(pool *pgxpool.Pool, engine *finance.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, ok := monthSummary(w, r, pool, engine)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, engine.Analysis(summary))
	}
}

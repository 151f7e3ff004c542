package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	dbcache "domus-server/src/db"
	db "domus-server/src/db/sql"
	"domus-server/src/middleware"
)

func GetAllUsers(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := db.GetAllUsers(r.Context(), pool)
		if err != nil {
			log.Printf("ERROR: Failed to list users: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, users)
	}
}

func LockUser(pool *pgxpool.Pool) http.HandlerFunc {
	return setLocked(pool, true)
}

func UnlockUser(pool *pgxpool.Pool) http.HandlerFunc {
	return setLocked(pool, false)
}

func setLocked(pool *pgxpool.Pool, locked bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := urlUUID(r, "user_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if locked && userID == middleware.UserID(r.Context()) {
			http.Error(w, "cannot lock your own account", http.StatusBadRequest)
			return
		}

		if err := db.SetUserLocked(r.Context(), pool, userID, locked); err != nil {
			log.Printf("ERROR: Failed to set locked=%t for user %s: %v", locked, userID, err)
			storeError(w, err, "user")
			return
		}

		log.Printf("INFO: User %s locked=%t by admin %s", userID, locked, middleware.UserID(r.Context()))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"user_id": userID,
			"locked":  locked,
		})
	}
}

// ClearCache empties the named cache: "categories", "recurring" or "all".
func ClearCache() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "cache_name")

		cleared, ok := dbcache.ClearCacheByName(name)
		if !ok {
			http.Error(w, "unknown cache", http.StatusBadRequest)
			return
		}

		log.Printf("INFO: Cache %s cleared by admin %s - %d entries", name, middleware.UserID(r.Context()), cleared)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"cache":   name,
			"cleared": cleared,
		})
	}
}

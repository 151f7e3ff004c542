package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	db "domus-server/src/db/sql"
	"domus-server/src/events"
	"domus-server/src/middleware"
)

const maxBodyBytes = 1 << 20

var errInvalidColor = errors.New("color must be a hex value like #aabbcc")

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: Failed to encode response: %v", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func urlUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

// storeError answers a failed store call. what names the resource in the
// response ("transaction", "task", ...).
func storeError(w http.ResponseWriter, err error, what string) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		http.Error(w, what+" not found", http.StatusNotFound)
	case errors.Is(err, db.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, db.ErrConflict):
		http.Error(w, what+" already exists", http.StatusConflict)
	case errors.Is(err, db.ErrCategoryKind):
		http.Error(w, "category kind does not match", http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// notify publishes a change event. Failures are logged and never reach the
// client.
func notify(pub events.Publisher, r *http.Request, t events.Type, entityID *uuid.UUID) {
	ctx := r.Context()
	publish(pub, r, events.New(t, middleware.HouseholdID(ctx), middleware.UserID(ctx), entityID))
}

func publish(pub events.Publisher, r *http.Request, e events.Event) {
	if err := pub.Publish(r.Context(), e); err != nil {
		log.Printf("WARN: Failed to publish %s for household %s: %v", e.Type, e.HouseholdID, err)
	}
}

func ptr[T any](v T) *T {
	return &v
}

package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	db "domus-server/src/db/sql"
	"domus-server/src/events"
	"domus-server/src/middleware"
	"domus-server/src/models"
	"domus-server/src/util"
)

type householdResponse struct {
	*models.Household
	Role models.Role `json:"role"`
}

func GetHousehold(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := middleware.HouseholdID(r.Context())

		h, err := db.GetHousehold(r.Context(), pool, householdID)
		if err != nil {
			log.Printf("ERROR: Failed to get household %s: %v", householdID, err)
			storeError(w, err, "household")
			return
		}

		writeJSON(w, http.StatusOK, householdResponse{Household: h, Role: middleware.Role(r.Context())})
	}
}

// RenameHousehold is mounted behind OwnerMiddleware.
func RenameHousehold(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := middleware.HouseholdID(r.Context())

		var req struct {
			Name string `json:"name"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			log.Printf("ERROR: Failed to decode rename household request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			http.Error(w, models.ErrEmptyName.Error(), http.StatusBadRequest)
			return
		}

		h, err := db.RenameHousehold(r.Context(), pool, householdID, name)
		if err != nil {
			log.Printf("ERROR: Failed to rename household %s: %v", householdID, err)
			storeError(w, err, "household")
			return
		}

		log.Printf("INFO: Household renamed - ID: %s", householdID)
		writeJSON(w, http.StatusOK, householdResponse{Household: h, Role: middleware.Role(r.Context())})
	}
}

// GetMembers lists members followed by pending invitations.
func GetMembers(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := middleware.HouseholdID(r.Context())

		var (
			members     []models.Member
			invitations []models.Invitation
		)
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			var err error
			members, err = db.ListMembers(ctx, pool, householdID)
			return err
		})
		g.Go(func() error {
			var err error
			invitations, err = db.ListPendingInvitations(ctx, pool, householdID)
			return err
		})
		if err := g.Wait(); err != nil {
			log.Printf("ERROR: Failed to list members of household %s: %v", householdID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, models.UnifyMembers(members, invitations))
	}
}

// InviteMember is mounted behind OwnerMiddleware.
func InviteMember(pool *pgxpool.Pool, pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := middleware.HouseholdID(r.Context())
		userID := middleware.UserID(r.Context())

		var req struct {
			Email string `json:"email"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			log.Printf("ERROR: Failed to decode invitation request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		email := util.NormalizeEmail(req.Email)
		if !util.ValidateEmail(email) {
			http.Error(w, "invalid email format", http.StatusBadRequest)
			return
		}

		inv, err := db.CreateInvitation(r.Context(), pool, householdID, userID, email)
		if err != nil {
			if errors.Is(err, db.ErrAlreadyMember) {
				http.Error(w, "user is already a member of this household", http.StatusConflict)
				return
			}
			if errors.Is(err, db.ErrConflict) {
				http.Error(w, "an invitation for this email is already pending", http.StatusConflict)
				return
			}
			log.Printf("ERROR: Failed to create invitation for household %s: %v", householdID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		log.Printf("INFO: Invitation created - ID: %s, Household: %s", inv.ID, householdID)
		notify(pub, r, events.InvitationCreated, &inv.ID)
		writeJSON(w, http.StatusCreated, inv)
	}
}

// CancelInvitation is mounted behind OwnerMiddleware.
func CancelInvitation(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := middleware.HouseholdID(r.Context())

		invitationID, err := urlUUID(r, "invitation_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := db.CancelInvitation(r.Context(), pool, householdID, invitationID); err != nil {
			log.Printf("ERROR: Failed to cancel invitation %s: %v", invitationID, err)
			storeError(w, err, "invitation")
			return
		}

		log.Printf("INFO: Invitation cancelled - ID: %s, Household: %s", invitationID, householdID)
		w.WriteHeader(http.StatusNoContent)
	}
}

package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	db "domus-server/src/db/sql"
	"domus-server/src/events"
	"domus-server/src/middleware"
)

// callerEmail reads the address from the database rather than the token, so
// an email change takes effect before the token is reissued.
func callerEmail(w http.ResponseWriter, r *http.Request, pool *pgxpool.Pool) (string, bool) {
	userID := middleware.UserID(r.Context())
	user, err := db.GetUserByID(r.Context(), pool, userID)
	if err != nil {
		log.Printf("ERROR: Failed to get user %s for invitations: %v", userID, err)
		storeError(w, err, "user")
		return "", false
	}
	return user.Email, true
}

// GetMyInvitations lists pending invitations addressed to the caller.
func GetMyInvitations(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, ok := callerEmail(w, r, pool)
		if !ok {
			return
		}

		invitations, err := db.ListInvitationsForEmail(r.Context(), pool, email)
		if err != nil {
			log.Printf("ERROR: Failed to list invitations for user %s: %v", middleware.UserID(r.Context()), err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, invitations)
	}
}

func AcceptInvitation(pool *pgxpool.Pool, pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		invitationID, err := urlUUID(r, "invitation_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		email, ok := callerEmail(w, r, pool)
		if !ok {
			return
		}

		householdID, err := db.AcceptInvitation(r.Context(), pool, invitationID, userID, email)
		if err != nil {
			if errors.Is(err, db.ErrAlreadyMember) {
				http.Error(w, "already a member of this household", http.StatusConflict)
				return
			}
			log.Printf("ERROR: Failed to accept invitation %s for user %s: %v", invitationID, userID, err)
			storeError(w, err, "invitation")
			return
		}

		log.Printf("INFO: Invitation accepted - ID: %s, User: %s, Household: %s", invitationID, userID, householdID)
		publish(pub, r, events.New(events.InvitationAccepted, householdID, userID, &invitationID))
		publish(pub, r, events.New(events.MemberJoined, householdID, userID, &userID))

		writeJSON(w, http.StatusOK, map[string]uuid.UUID{
			"household_id": householdID,
		})
	}
}

func DeclineInvitation(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invitationID, err := urlUUID(r, "invitation_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		email, ok := callerEmail(w, r, pool)
		if !ok {
			return
		}

		if err := db.DeclineInvitation(r.Context(), pool, invitationID, email); err != nil {
			log.Printf("ERROR: Failed to decline invitation %s: %v", invitationID, err)
			storeError(w, err, "invitation")
			return
		}

		log.Printf("INFO: Invitation declined - ID: %s, User: %s", invitationID, middleware.UserID(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	}
}

package handlers

import (
	"bufio"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	db "domus-server/src/db/sql"
	"domus-server/src/middleware"
	"domus-server/src/models"
	"domus-server/src/storage"
	"domus-server/src/util"
)

type profileResponse struct {
	User        *models.User `json:"user"`
	HouseholdID uuid.UUID    `json:"household_id"`
	Role        models.Role  `json:"role"`
}

func GetUser(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		user, err := db.GetUserByID(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to get user - user_id: %s: %v", userID, err)
			storeError(w, err, "user")
			return
		}

		writeJSON(w, http.StatusOK, profileResponse{
			User:        user,
			HouseholdID: middleware.HouseholdID(r.Context()),
			Role:        middleware.Role(r.Context()),
		})
	}
}

// UpdateUser changes the display name.
func UpdateUser(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		var req struct {
			FullName string `json:"full_name"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			log.Printf("ERROR: Failed to decode update user request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		fullName := strings.TrimSpace(req.FullName)
		if fullName == "" {
			http.Error(w, "full name is required", http.StatusBadRequest)
			return
		}

		user, err := db.UpdateUserFullName(r.Context(), pool, userID, fullName)
		if err != nil {
			log.Printf("ERROR: Failed to update user profile - user_id: %s: %v", userID, err)
			storeError(w, err, "user")
			return
		}

		log.Printf("INFO: User profile updated - User: %s", userID)
		writeJSON(w, http.StatusOK, user)
	}
}

func UpdateEmail(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		var req struct {
			Email string `json:"email"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			log.Printf("ERROR: Failed to decode update email request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		email := util.NormalizeEmail(req.Email)
		if !util.ValidateEmail(email) {
			log.Printf("ERROR: Email validation failed during user update - Email: %s, User: %s", email, userID)
			http.Error(w, "invalid email format", http.StatusBadRequest)
			return
		}

		user, err := db.UpdateUserEmail(r.Context(), pool, userID, email)
		if err != nil {
			log.Printf("ERROR: Failed to update email - user_id: %s: %v", userID, err)
			storeError(w, err, "email")
			return
		}

		log.Printf("INFO: User email updated - User: %s", userID)
		writeJSON(w, http.StatusOK, user)
	}
}

func ChangePassword(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		var req struct {
			CurrentPassword string `json:"current_password"`
			NewPassword     string `json:"new_password"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			log.Printf("ERROR: Failed to decode change password request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		user, err := db.GetUserByID(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to get user for password change - user_id: %s: %v", userID, err)
			storeError(w, err, "user")
			return
		}

		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.CurrentPassword)); err != nil {
			log.Printf("ERROR: Invalid current password attempt for user %s", userID)
			http.Error(w, "current password is incorrect", http.StatusUnauthorized)
			return
		}

		if !util.ValidatePassword(req.NewPassword) {
			log.Printf("ERROR: Password validation failed during change password - User: %s", userID)
			http.Error(w, "password must be at least 8 characters with uppercase, lowercase, digit, and special character", http.StatusBadRequest)
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("ERROR: Failed to hash new password for user %s: %v", userID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if err := db.UpdateUserPassword(r.Context(), pool, userID, hashedPassword); err != nil {
			log.Printf("ERROR: Failed to update user password - user_id: %s: %v", userID, err)
			storeError(w, err, "user")
			return
		}

		log.Printf("INFO: User password changed - User: %s", userID)
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "password changed successfully",
		})
	}
}

// UploadAvatar accepts a multipart "avatar" file. store may be nil when no
// bucket is configured.
func UploadAvatar(pool *pgxpool.Pool, store storage.AvatarStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		if store == nil {
			http.Error(w, "avatar uploads are disabled", http.StatusServiceUnavailable)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, storage.MaxAvatarSize+1<<10)
		file, header, err := r.FormFile("avatar")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, storage.ErrAvatarTooLarge.Error(), http.StatusRequestEntityTooLarge)
				return
			}
			log.Printf("ERROR: Failed to read avatar upload for user %s: %v", userID, err)
			http.Error(w, "avatar file is required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size > storage.MaxAvatarSize {
			http.Error(w, storage.ErrAvatarTooLarge.Error(), http.StatusRequestEntityTooLarge)
			return
		}

		buffered := bufio.NewReaderSize(file, 512)
		head, err := buffered.Peek(512)
		if err != nil && !errors.Is(err, io.EOF) {
			log.Printf("ERROR: Failed to read avatar header for user %s: %v", userID, err)
			http.Error(w, "invalid file", http.StatusBadRequest)
			return
		}
		contentType, ext, err := storage.DetectAvatarType(head)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
			return
		}

		url, err := store.Upload(r.Context(), userID, contentType, ext, io.LimitReader(buffered, storage.MaxAvatarSize))
		if err != nil {
			log.Printf("ERROR: Failed to store avatar for user %s: %v", userID, err)
			http.Error(w, "failed to store avatar", http.StatusBadGateway)
			return
		}

		user, err := db.UpdateUserAvatar(r.Context(), pool, userID, url)
		if err != nil {
			log.Printf("ERROR: Failed to save avatar url for user %s: %v", userID, err)
			storeError(w, err, "user")
			return
		}

		log.Printf("INFO: Avatar updated - User: %s", userID)
		writeJSON(w, http.StatusOK, user)
	}
}

func DeleteUser(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		log.Printf("INFO: DeleteUser called for user_id: %s", userID)

		// Only allow users to delete themselves
		var req struct {
			UserID uuid.UUID `json:"user_id"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			log.Printf("ERROR: Failed to decode delete user request body for user_id: %s: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if req.UserID != userID {
			log.Printf("ERROR: Forbidden delete attempt - Authenticated user: %s, Requested user: %s", userID, req.UserID)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		if err := db.DeleteUser(r.Context(), pool, userID); err != nil {
			log.Printf("ERROR: Failed to delete user %s: %v", userID, err)
			storeError(w, err, "user")
			return
		}

		log.Printf("INFO: User %s deleted successfully", userID)
		writeJSON(w, http.StatusOK, map[string]string{
			"message":  "user deleted",
			"redirect": "/register",
		})
	}
}

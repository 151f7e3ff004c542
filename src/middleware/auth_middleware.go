package middleware

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	db "domus-server/src/db/sql"
	"domus-server/src/models"
)

// ParseToken validates an HMAC signed token and returns its claims.
func ParseToken(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token claims")
}

// ParseTokenFromRequest extracts and validates the bearer token of r.
func ParseTokenFromRequest(r *http.Request, secret string) (jwt.MapClaims, error) {
	tokenString := r.Header.Get("Authorization")
	if tokenString == "" {
		return nil, fmt.Errorf("missing token")
	}
	return ParseToken(strings.TrimPrefix(tokenString, "Bearer "), secret)
}

func JWTAuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := ParseTokenFromRequest(r, secret)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			rawID, _ := claims["user_id"].(string)
			userID, err := uuid.Parse(rawID)
			if err != nil {
				http.Error(w, "invalid token claims", http.StatusUnauthorized)
				return
			}
			username, _ := claims["username"].(string)
			email, _ := claims["email"].(string)
			superAdmin, _ := claims["super_admin"].(bool)

			ctx := WithUser(r.Context(), userID, username, email, superAdmin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HouseholdMiddleware resolves the caller's current household on every
// request, so a membership change takes effect without a new token.
func HouseholdMiddleware(pool *pgxpool.Pool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := UserID(r.Context())
			m, err := db.GetMembership(r.Context(), pool, userID)
			if err != nil {
				if errors.Is(err, db.ErrNotFound) {
					log.Printf("ERROR: User %s has no household", userID)
					http.Error(w, "no household", http.StatusForbidden)
					return
				}
				log.Printf("ERROR: Failed to resolve household for user %s: %v", userID, err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}

			ctx := WithHousehold(r.Context(), m.HouseholdID, m.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func OwnerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Role(r.Context()) != models.RoleOwner {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func SuperAdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsSuperAdmin(r.Context()) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

package middleware

import (
	"context"

	"github.com/google/uuid"

	"domus-server/src/models"
)

type ctxKey int

const (
	userIDKey ctxKey = iota
	usernameKey
	emailKey
	superAdminKey
	householdKey
	roleKey
)

func UserID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(userIDKey).(uuid.UUID)
	return id
}

func Username(ctx context.Context) string {
	s, _ := ctx.Value(usernameKey).(string)
	return s
}

func Email(ctx context.Context) string {
	s, _ := ctx.Value(emailKey).(string)
	return s
}

func IsSuperAdmin(ctx context.Context) bool {
	ok, _ := ctx.Value(superAdminKey).(bool)
	return ok
}

// HouseholdID is set by HouseholdMiddleware.
func HouseholdID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(householdKey).(uuid.UUID)
	return id
}

func Role(ctx context.Context) models.Role {
	r, _ := ctx.Value(roleKey).(models.Role)
	return r
}

// WithUser stores the authenticated identity in ctx.
func WithUser(ctx context.Context, userID uuid.UUID, username, email string, superAdmin bool) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, usernameKey, username)
	ctx = context.WithValue(ctx, emailKey, email)
	return context.WithValue(ctx, superAdminKey, superAdmin)
}

func WithHousehold(ctx context.Context, householdID uuid.UUID, role models.Role) context.Context {
	ctx = context.WithValue(ctx, householdKey, householdID)
	return context.WithValue(ctx, roleKey, role)
}

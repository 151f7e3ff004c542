package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"domus-server/src/models"
)

var ErrAlreadyMember = errors.New("already a member")

// Membership is the household a user currently belongs to.
type Membership struct {
	HouseholdID uuid.UUID
	Role        models.Role
}

func GetMembership(ctx context.Context, pool *pgxpool.Pool, userID uuid.UUID) (*Membership, error) {
	var m Membership
	err := pool.QueryRow(ctx, `SELECT household_id, role FROM household_members WHERE user_id = $1`, userID).
		Scan(&m.HouseholdID, &m.Role)
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func GetHousehold(ctx context.Context, pool *pgxpool.Pool, householdID uuid.UUID) (*models.Household, error) {
	var h models.Household
	err := pool.QueryRow(ctx, `SELECT id, name, created_at, updated_at FROM households WHERE id = $1`, householdID).
		Scan(&h.ID, &h.Name, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &h, nil
}

func RenameHousehold(ctx context.Context, pool *pgxpool.Pool, householdID uuid.UUID, name string) (*models.Household, error) {
	var h models.Household
	err := pool.QueryRow(ctx, `
		UPDATE households SET name = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, name, created_at, updated_at
	`, householdID, name).Scan(&h.ID, &h.Name, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &h, nil
}

func ListMembers(ctx context.Context, pool *pgxpool.Pool, householdID uuid.UUID) ([]models.Member, error) {
	rows, err := pool.Query(ctx, `
		SELECT m.user_id, m.role, u.email, u.full_name, u.avatar_url
		FROM household_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.household_id = $1
		ORDER BY m.role = 'owner' DESC, m.joined_at
	`, householdID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.UserID, &m.Role, &m.Email, &m.FullName, &m.AvatarURL); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func IsMember(ctx context.Context, pool *pgxpool.Pool, householdID, userID uuid.UUID) (bool, error) {
	var ok bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM household_members WHERE household_id = $1 AND user_id = $2)
	`, householdID, userID).Scan(&ok)
	return ok, err
}

const invitationSelect = `
	SELECT i.id, i.household_id, i.inviter_id, i.invitee_email, i.status, h.name, u.full_name, i.created_at
	FROM household_invitations i
	JOIN households h ON h.id = i.household_id
	LEFT JOIN users u ON u.id = i.inviter_id
`

func scanInvitations(rows pgx.Rows) ([]models.Invitation, error) {
	defer rows.Close()
	invitations := []models.Invitation{}
	for rows.Next() {
		var inv models.Invitation
		err := rows.Scan(&inv.ID, &inv.HouseholdID, &inv.InviterID, &inv.InviteeEmail, &inv.Status,
			&inv.HouseholdName, &inv.InviterName, &inv.CreatedAt)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func ListPendingInvitations(ctx context.Context, pool *pgxpool.Pool, householdID uuid.UUID) ([]models.Invitation, error) {
	rows, err := pool.Query(ctx, invitationSelect+`
		WHERE i.household_id = $1 AND i.status = 'pending'
		ORDER BY i.created_at
	`, householdID)
	if err != nil {
		return nil, err
	}
	return scanInvitations(rows)
}

// ListInvitationsForEmail returns the pending invitations addressed to email.
func ListInvitationsForEmail(ctx context.Context, pool *pgxpool.Pool, email string) ([]models.Invitation, error) {
	rows, err := pool.Query(ctx, invitationSelect+`
		WHERE lower(i.invitee_email) = lower($1) AND i.status = 'pending'
		ORDER BY i.created_at DESC
	`, email)
	if err != nil {
		return nil, err
	}
	return scanInvitations(rows)
}

// CreateInvitation rejects addresses that already belong to a member of the
// household (ErrAlreadyMember) and a second pending invitation for the same
// address (ErrConflict).
func CreateInvitation(ctx context.Context, pool *pgxpool.Pool, householdID, inviterID uuid.UUID, email string) (*models.Invitation, error) {
	email = strings.TrimSpace(email)

	var member bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM household_members m
			JOIN users u ON u.id = m.user_id
			WHERE m.household_id = $1 AND lower(u.email) = lower($2)
		)
	`, householdID, email).Scan(&member)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if member {
		return nil, ErrAlreadyMember
	}

	inv := models.Invitation{
		ID:           uuid.New(),
		HouseholdID:  householdID,
		InviterID:    &inviterID,
		InviteeEmail: email,
		Status:       models.InvitationPending,
	}
	err = pool.QueryRow(ctx, `
		INSERT INTO household_invitations (id, household_id, inviter_id, invitee_email)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, inv.ID, householdID, inviterID, email).Scan(&inv.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("insert invitation: %w", err)
	}
	return &inv, nil
}

func CancelInvitation(ctx context.Context, pool *pgxpool.Pool, householdID, invitationID uuid.UUID) error {
	tag, err := pool.Exec(ctx, `
		DELETE FROM household_invitations
		WHERE id = $1 AND household_id = $2 AND status = 'pending'
	`, invitationID, householdID)
	if err != nil {
		return fmt.Errorf("failed to cancel invitation: %w", err)
	}
	return mustAffect(tag)
}

func DeclineInvitation(ctx context.Context, pool *pgxpool.Pool, invitationID uuid.UUID, email string) error {
	tag, err := pool.Exec(ctx, `
		UPDATE household_invitations SET status = 'declined'
		WHERE id = $1 AND lower(invitee_email) = lower($2) AND status = 'pending'
	`, invitationID, email)
	if err != nil {
		return fmt.Errorf("failed to decline invitation: %w", err)
	}
	return mustAffect(tag)
}

// AcceptInvitation moves the user out of their current household and into the
// inviting one as a member, all in one transaction. It returns the new
// household id.
func AcceptInvitation(ctx context.Context, pool *pgxpool.Pool, invitationID, userID uuid.UUID, email string) (uuid.UUID, error) {
	var householdID uuid.UUID
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			SELECT household_id FROM household_invitations
			WHERE id = $1 AND lower(invitee_email) = lower($2) AND status = 'pending'
			FOR UPDATE
		`, invitationID, email).Scan(&householdID)
		if err != nil {
			return notFound(err)
		}

		var previous *uuid.UUID
		err = tx.QueryRow(ctx, `SELECT household_id FROM household_members WHERE user_id = $1`, userID).Scan(&previous)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("lookup current household: %w", err)
		}
		if previous != nil && *previous == householdID {
			return ErrAlreadyMember
		}

		if previous != nil {
			if err := leaveHousehold(ctx, tx, *previous, userID); err != nil {
				return err
			}
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO household_members (household_id, user_id, role)
			VALUES ($1, $2, $3)
		`, householdID, userID, models.RoleMember)
		if err != nil {
			return fmt.Errorf("join household: %w", err)
		}
		_, err = tx.Exec(ctx, `UPDATE household_invitations SET status = 'accepted' WHERE id = $1`, invitationID)
		if err != nil {
			return fmt.Errorf("mark invitation accepted: %w", err)
		}

		if previous != nil {
			return settleHousehold(ctx, tx, *previous)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return householdID, nil
}

// leaveHousehold drops the membership and unassigns the user's tasks there,
// since assignees must belong to the task's household.
func leaveHousehold(ctx context.Context, tx pgx.Tx, householdID, userID uuid.UUID) error {
	_, err := tx.Exec(ctx, `DELETE FROM household_members WHERE household_id = $1 AND user_id = $2`, householdID, userID)
	if err != nil {
		return fmt.Errorf("leave household: %w", err)
	}
	_, err = tx.Exec(ctx, `
		UPDATE tasks SET assignee_id = NULL, updated_at = now()
		WHERE household_id = $1 AND assignee_id = $2
	`, householdID, userID)
	if err != nil {
		return fmt.Errorf("unassign tasks: %w", err)
	}
	return nil
}

// settleHousehold deletes a household nobody belongs to anymore, or promotes
// the longest standing member when the owner has left.
func settleHousehold(ctx context.Context, tx pgx.Tx, householdID uuid.UUID) error {
	tag, err := tx.Exec(ctx, `
		DELETE FROM households h
		WHERE h.id = $1
		AND NOT EXISTS (SELECT 1 FROM household_members m WHERE m.household_id = h.id)
	`, householdID)
	if err != nil {
		return fmt.Errorf("delete empty household: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	_, err = tx.Exec(ctx, `
		UPDATE household_members SET role = 'owner'
		WHERE household_id = $1
		AND user_id = (
			SELECT user_id FROM household_members
			WHERE household_id = $1
			ORDER BY joined_at
			LIMIT 1
		)
		AND NOT EXISTS (
			SELECT 1 FROM household_members WHERE household_id = $1 AND role = 'owner'
		)
	`, householdID)
	if err != nil {
		return fmt.Errorf("promote owner: %w", err)
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

type Household struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Member struct {
	UserID    uuid.UUID `json:"user_id"`
	Role      Role      `json:"role"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name"`
	AvatarURL *string   `json:"avatar_url"`
}

type Invitation struct {
	ID            uuid.UUID        `json:"id"`
	HouseholdID   uuid.UUID        `json:"household_id"`
	InviterID     *uuid.UUID       `json:"inviter_id"`
	InviteeEmail  string           `json:"invitee_email"`
	Status        InvitationStatus `json:"status"`
	HouseholdName *string          `json:"household_name,omitempty"`
	InviterName   *string          `json:"inviter_name,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// MemberListItem is one row of the settings member list: either an existing
// member or a pending invitation.
type MemberListItem struct {
	Type         string     `json:"type"`
	UserID       *uuid.UUID `json:"user_id,omitempty"`
	InvitationID *uuid.UUID `json:"invitation_id,omitempty"`
	Email        string     `json:"email"`
	FullName     *string    `json:"full_name,omitempty"`
	Role         Role       `json:"role,omitempty"`
}

// UnifyMembers lists members first, then pending invitations.
func UnifyMembers(members []Member, invitations []Invitation) []MemberListItem {
	items := make([]MemberListItem, 0, len(members)+len(invitations))
	for _, m := range members {
		userID := m.UserID
		items = append(items, MemberListItem{
			Type:     "member",
			UserID:   &userID,
			Email:    m.Email,
			FullName: m.FullName,
			Role:     m.Role,
		})
	}
	for _, inv := range invitations {
		if inv.Status != InvitationPending {
			continue
		}
		invID := inv.ID
		items = append(items, MemberListItem{
			Type:         "invitation",
			InvitationID: &invID,
			Email:        inv.InviteeEmail,
		})
	}
	return items
}

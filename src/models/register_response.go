package models

import "github.com/google/uuid"

type RegisterResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	SuperAdmin  bool      `json:"super_admin"`
	HouseholdID uuid.UUID `json:"household_id"`
}

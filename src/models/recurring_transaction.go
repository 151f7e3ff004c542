package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Frequency string

const (
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

var (
	ErrInvalidFrequency = errors.New("frequency must be weekly, monthly or yearly")
	ErrInvalidAnchor    = errors.New("anchor does not match frequency")
	ErrEndBeforeStart   = errors.New("end date must not be before start date")
)

// RecurringTransaction is a rule that produces dated occurrences. Monthly rules
// carry DayOfMonth (1-31), weekly rules carry DayOfWeek (1 = Sunday ... 7 = Saturday)
// and yearly rules repeat on the month and day of StartDate.
type RecurringTransaction struct {
	ID          uuid.UUID       `json:"id"`
	HouseholdID uuid.UUID       `json:"household_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        Kind            `json:"kind"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	Frequency   Frequency       `json:"frequency"`
	DayOfMonth  *int            `json:"day_of_month"`
	DayOfWeek   *int            `json:"day_of_week"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     *time.Time      `json:"end_date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (r RecurringTransaction) Validate() error {
	if strings.TrimSpace(r.Description) == "" {
		return ErrEmptyDescription
	}
	if err := checkAmount(r.Amount); err != nil {
		return err
	}
	if !r.Kind.Valid() {
		return ErrInvalidKind
	}
	if err := checkDate(r.StartDate); err != nil {
		return err
	}
	if r.EndDate != nil {
		if err := checkDate(*r.EndDate); err != nil {
			return err
		}
		if r.EndDate.Before(r.StartDate) {
			return ErrEndBeforeStart
		}
	}

	switch r.Frequency {
	case Monthly:
		if r.DayOfMonth == nil || r.DayOfWeek != nil || *r.DayOfMonth < 1 || *r.DayOfMonth > 31 {
			return ErrInvalidAnchor
		}
	case Weekly:
		if r.DayOfWeek == nil || r.DayOfMonth != nil || *r.DayOfWeek < 1 || *r.DayOfWeek > 7 {
			return ErrInvalidAnchor
		}
	case Yearly:
		if r.DayOfMonth != nil || r.DayOfWeek != nil {
			return ErrInvalidAnchor
		}
	default:
		return ErrInvalidFrequency
	}
	return nil
}

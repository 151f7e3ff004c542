package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"domus-server/src/util"
)

type Kind string

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

var (
	ErrInvalidKind      = errors.New("kind must be income or expense")
	ErrEmptyName        = errors.New("name is required")
	ErrNegativeBudget   = errors.New("budget must not be negative")
	ErrBudgetOnIncome   = errors.New("budget is only allowed on expense categories")
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrEmptyDescription = errors.New("description is required")
	ErrMissingDate      = errors.New("date is required")
	ErrAmountPrecision  = errors.New("amounts allow at most 2 decimal places")
	ErrAmountTooLarge   = errors.New("amount must be below 1000000000000")
	ErrDateOutOfRange   = util.ErrDateOutOfRange
)

// maxMoney is the first value NUMERIC(14, 2) cannot hold.
var maxMoney = decimal.New(1, 12)

// checkMoney rejects values the money columns would round or overflow.
func checkMoney(d decimal.Decimal) error {
	if !d.Equal(d.Round(2)) {
		return ErrAmountPrecision
	}
	if d.Abs().GreaterThanOrEqual(maxMoney) {
		return ErrAmountTooLarge
	}
	return nil
}

func checkAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrInvalidAmount
	}
	return checkMoney(d)
}

func checkDate(t time.Time) error {
	if t.IsZero() {
		return ErrMissingDate
	}
	if !util.DateInRange(t) {
		return ErrDateOutOfRange
	}
	return nil
}

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

type Category struct {
	ID          uuid.UUID        `json:"id"`
	HouseholdID uuid.UUID        `json:"household_id"`
	Name        string           `json:"name"`
	Kind        Kind             `json:"kind"`
	Icon        *string          `json:"icon"`
	Color       *string          `json:"color"`
	Budget      *decimal.Decimal `json:"budget"`
	CreatedAt   time.Time        `json:"created_at"`
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Kind.Valid() {
		return ErrInvalidKind
	}
	if c.Budget != nil {
		if c.Budget.IsNegative() {
			return ErrNegativeBudget
		}
		if c.Kind == Income && !c.Budget.IsZero() {
			return ErrBudgetOnIncome
		}
		if err := checkMoney(*c.Budget); err != nil {
			return err
		}
	}
	return nil
}

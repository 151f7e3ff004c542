package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func TestRecurringTransactionAnchors(t *testing.T) {
	base := RecurringTransaction{
		Description: "Academia",
		Amount:      decimal.NewFromInt(90),
		Kind:        Expense,
		StartDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name string
		freq Frequency
		dom  *int
		dow  *int
		want error
	}{
		{"monthly day 31", Monthly, intp(31), nil, nil},
		{"monthly without day", Monthly, nil, nil, ErrInvalidAnchor},
		{"monthly day 32", Monthly, intp(32), nil, ErrInvalidAnchor},
		{"monthly with weekday", Monthly, intp(1), intp(2), ErrInvalidAnchor},
		{"weekly sunday", Weekly, nil, intp(1), nil},
		{"weekly day 8", Weekly, nil, intp(8), ErrInvalidAnchor},
		{"yearly", Yearly, nil, nil, nil},
		{"yearly with day", Yearly, intp(3), nil, ErrInvalidAnchor},
		{"daily", "daily", nil, nil, ErrInvalidFrequency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			r.Frequency, r.DayOfMonth, r.DayOfWeek = tt.freq, tt.dom, tt.dow
			err := r.Validate()
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCategoryValidate(t *testing.T) {
	zero := decimal.Zero
	negative := decimal.NewFromInt(-1)

	require.NoError(t, Category{Name: "Salário", Kind: Income, Budget: &zero}.Validate())
	require.ErrorIs(t, Category{Name: " ", Kind: Expense}.Validate(), ErrEmptyName)
	require.ErrorIs(t, Category{Name: "Casa", Kind: "transfer"}.Validate(), ErrInvalidKind)
	require.ErrorIs(t, Category{Name: "Casa", Kind: Expense, Budget: &negative}.Validate(), ErrNegativeBudget)

	fine := decimal.RequireFromString("10.005")
	require.ErrorIs(t, Category{Name: "Casa", Kind: Expense, Budget: &fine}.Validate(), ErrAmountPrecision)
}

func TestTransactionValidateAmountAndDate(t *testing.T) {
	base := Transaction{
		Description: "Padaria",
		Amount:      decimal.RequireFromString("12.50"),
		Kind:        Expense,
		Date:        time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, base.Validate())

	trailing := base
	trailing.Amount = decimal.RequireFromString("12.500")
	require.NoError(t, trailing.Validate())

	tests := []struct {
		name   string
		amount string
		date   time.Time
		want   error
	}{
		{"below a cent", "0.001", base.Date, ErrAmountPrecision},
		{"three decimals", "10.005", base.Date, ErrAmountPrecision},
		{"overflows column", "1000000000000", base.Date, ErrAmountTooLarge},
		{"zero", "0", base.Date, ErrInvalidAmount},
		{"year one", "12.50", time.Date(1, 1, 2, 0, 0, 0, 0, time.UTC), ErrDateOutOfRange},
		{"far future", "12.50", time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC), ErrDateOutOfRange},
		{"missing date", "12.50", time.Time{}, ErrMissingDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := base
			tx.Amount = decimal.RequireFromString(tt.amount)
			tx.Date = tt.date
			require.ErrorIs(t, tx.Validate(), tt.want)
		})
	}
}

func TestRecurringTransactionDateRange(t *testing.T) {
	r := RecurringTransaction{
		Description: "Academia",
		Amount:      decimal.NewFromInt(90),
		Kind:        Expense,
		Frequency:   Weekly,
		DayOfWeek:   intp(2),
		StartDate:   time.Date(1, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	require.ErrorIs(t, r.Validate(), ErrDateOutOfRange)

	r.StartDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC)
	r.EndDate = &end
	require.ErrorIs(t, r.Validate(), ErrDateOutOfRange)

	r.Amount = decimal.RequireFromString("90.001")
	r.EndDate = nil
	require.ErrorIs(t, r.Validate(), ErrAmountPrecision)
}

func TestUnifyMembers(t *testing.T) {
	owner := Member{UserID: uuid.New(), Role: RoleOwner, Email: "ana@example.com"}
	pending := Invitation{ID: uuid.New(), InviteeEmail: "bia@example.com", Status: InvitationPending}
	declined := Invitation{ID: uuid.New(), InviteeEmail: "caio@example.com", Status: InvitationDeclined}

	items := UnifyMembers([]Member{owner}, []Invitation{pending, declined})
	require.Len(t, items, 2)

	require.Equal(t, "member", items[0].Type)
	require.Equal(t, owner.UserID, *items[0].UserID)
	require.Equal(t, RoleOwner, items[0].Role)

	require.Equal(t, "invitation", items[1].Type)
	require.Equal(t, pending.ID, *items[1].InvitationID)
	require.Nil(t, items[1].UserID)

	require.Empty(t, UnifyMembers(nil, nil))
}

package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	db "domus-server/src/db/sql"
	"domus-server/src/middleware"
	"domus-server/src/models"
	"domus-server/src/util"
)

func withParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func asUser(r *http.Request, userID uuid.UUID) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), userID, "ana", "ana@example.com", false))
}

func TestStoreError(t *testing.T) {
	tests := []struct {
		err  error
		code int
		body string
	}{
		{db.ErrNotFound, http.StatusNotFound, "task not found"},
		{fmt.Errorf("wrapped: %w", db.ErrNotFound), http.StatusNotFound, "task not found"},
		{db.ErrForbidden, http.StatusForbidden, "forbidden"},
		{db.ErrConflict, http.StatusConflict, "task already exists"},
		{db.ErrCategoryKind, http.StatusBadRequest, "category kind does not match"},
		{errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		storeError(rec, tt.err, "task")
		require.Equal(t, tt.code, rec.Code, tt.err.Error())
		require.Contains(t, rec.Body.String(), tt.body)
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ok"}`))
	require.NoError(t, decodeJSON(httptest.NewRecorder(), r, &v))
	require.Equal(t, "ok", v.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ok","extra":1}`))
	require.Error(t, decodeJSON(httptest.NewRecorder(), r, &v))
}

func TestURLUUID(t *testing.T) {
	id := uuid.New()
	r := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "task_id", id.String())
	got, err := urlUUID(r, "task_id")
	require.NoError(t, err)
	require.Equal(t, id, got)

	r = withParam(httptest.NewRequest(http.MethodGet, "/", nil), "task_id", "42")
	_, err = urlUUID(r, "task_id")
	require.Error(t, err)
}

func TestTransactionRequest(t *testing.T) {
	req := transactionRequest{
		Description: "  Mercado ",
		Amount:      decimal.RequireFromString("150.25"),
		Kind:        models.Expense,
		Date:        "2024-06-10",
	}
	tx, err := req.transaction()
	require.NoError(t, err)
	require.Equal(t, "Mercado", tx.Description)
	require.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), tx.Date)

	bad := req
	bad.Amount = decimal.Zero
	_, err = bad.transaction()
	require.ErrorIs(t, err, models.ErrInvalidAmount)

	bad = req
	bad.Date = ""
	_, err = bad.transaction()
	require.ErrorIs(t, err, models.ErrMissingDate)

	bad = req
	bad.Date = "10/06/2024"
	_, err = bad.transaction()
	require.Error(t, err)

	bad = req
	bad.Date = "0001-01-02"
	_, err = bad.transaction()
	require.ErrorIs(t, err, util.ErrDateOutOfRange)

	bad = req
	bad.Amount = decimal.RequireFromString("0.001")
	_, err = bad.transaction()
	require.ErrorIs(t, err, models.ErrAmountPrecision)
}

func TestRecurringRequest(t *testing.T) {
	day := 5
	end := "2024-12-31"
	req := recurringRequest{
		Description: "Aluguel",
		Amount:      decimal.NewFromInt(1200),
		Kind:        models.Expense,
		Frequency:   models.Monthly,
		DayOfMonth:  &day,
		StartDate:   "2024-01-01",
		EndDate:     &end,
	}
	rule, err := req.rule()
	require.NoError(t, err)
	require.NotNil(t, rule.EndDate)

	weekday := 2
	bad := req
	bad.DayOfWeek = &weekday
	_, err = bad.rule()
	require.ErrorIs(t, err, models.ErrInvalidAnchor)

	early := "2023-12-31"
	bad = req
	bad.EndDate = &early
	_, err = bad.rule()
	require.ErrorIs(t, err, models.ErrEndBeforeStart)

	ancient := req
	ancient.StartDate = "0001-01-02"
	_, err = ancient.rule()
	require.ErrorIs(t, err, util.ErrDateOutOfRange)

	far := "2200-01-01"
	bad = req
	bad.EndDate = &far
	_, err = bad.rule()
	require.ErrorIs(t, err, util.ErrDateOutOfRange)

	empty := ""
	open := req
	open.EndDate = &empty
	rule, err = open.rule()
	require.NoError(t, err)
	require.Nil(t, rule.EndDate)
}

func TestCategoryRequest(t *testing.T) {
	color := "#ff8800"
	c, err := categoryRequest{Name: " Casa ", Kind: models.Expense, Color: &color}.category()
	require.NoError(t, err)
	require.Equal(t, "Casa", c.Name)

	bad := "orange"
	_, err = categoryRequest{Name: "Casa", Kind: models.Expense, Color: &bad}.category()
	require.ErrorIs(t, err, errInvalidColor)

	budget := decimal.NewFromInt(100)
	_, err = categoryRequest{Name: "Salário", Kind: models.Income, Budget: &budget}.category()
	require.ErrorIs(t, err, models.ErrBudgetOnIncome)
}

func TestTaskRequestDefaultsToTodo(t *testing.T) {
	task, err := taskRequest{Name: "Lavar louça"}.task()
	require.NoError(t, err)
	require.Equal(t, models.TaskTodo, task.Status)
	require.Nil(t, task.Deadline)

	_, err = taskRequest{Name: "ab"}.task()
	require.ErrorIs(t, err, models.ErrTaskNameTooShort)

	_, err = taskRequest{Name: "Lavar louça", Status: "later"}.task()
	require.ErrorIs(t, err, models.ErrInvalidStatus)
}

func TestTaskCategoryRequestRequiresColor(t *testing.T) {
	_, err := taskCategoryRequest{Name: "Limpeza", Color: "#0af"}.taskCategory()
	require.NoError(t, err)

	_, err = taskCategoryRequest{Name: "Limpeza"}.taskCategory()
	require.ErrorIs(t, err, errInvalidColor)
}

func TestUploadAvatarWithoutStore(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_, err := mw.CreateFormFile("avatar", "me.png")
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/user/avatar", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	UploadAvatar(nil, nil)(rec, asUser(r, uuid.New()))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDeleteUserOnlySelf(t *testing.T) {
	r := httptest.NewRequest(http.MethodDelete, "/api/user", strings.NewReader(fmt.Sprintf(`{"user_id":%q}`, uuid.New())))
	rec := httptest.NewRecorder()
	DeleteUser(nil)(rec, asUser(r, uuid.New()))

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLockOwnAccountRejected(t *testing.T) {
	self := uuid.New()
	r := withParam(httptest.NewRequest(http.MethodPost, "/", nil), "user_id", self.String())
	rec := httptest.NewRecorder()
	LockUser(nil)(rec, asUser(r, self))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearCache(t *testing.T) {
	rec := httptest.NewRecorder()
	ClearCache()(rec, withParam(httptest.NewRequest(http.MethodPost, "/", nil), "cache_name", "all"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"cache":"all","cleared":0}`, rec.Body.String())

	rec = httptest.NewRecorder()
	ClearCache()(rec, withParam(httptest.NewRequest(http.MethodPost, "/", nil), "cache_name", "sessions"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMonthViewsRejectBadMonth(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/dashboard?month=june", nil)
	rec := httptest.NewRecorder()
	GetDashboard(nil, nil)(rec, r)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "YYYY-MM")
}

func TestDateRange(t *testing.T) {
	defer func(orig func() time.Time) { now = orig }(now)
	now = func() time.Time { return time.Date(2024, 2, 14, 9, 0, 0, 0, time.UTC) }

	from, to, err := dateRange(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), from)
	require.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), to)

	from, _, err = dateRange(httptest.NewRequest(http.MethodGet, "/?from=2024-01-15", nil))
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), from)

	_, _, err = dateRange(httptest.NewRequest(http.MethodGet, "/?from=2024-03-01&to=2024-02-01", nil))
	require.Error(t, err)

	_, _, err = dateRange(httptest.NewRequest(http.MethodGet, "/?to=yesterday", nil))
	require.Error(t, err)
}

func TestIssueToken(t *testing.T) {
	user := &models.User{ID: uuid.New(), Username: "ana", Email: "ana@example.com", SuperAdmin: true}
	token, err := issueToken(user, "secret")
	require.NoError(t, err)

	claims, err := middleware.ParseToken(token, "secret")
	require.NoError(t, err)
	require.Equal(t, user.ID.String(), claims["user_id"])
	require.Equal(t, true, claims["super_admin"])

	_, err = middleware.ParseToken(token, "other")
	require.Error(t, err)
}

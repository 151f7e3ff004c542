package db

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type execCall struct {
	sql  string
	args []any
}

// recordingTx records Exec calls. Any other pgx.Tx method panics.
type recordingTx struct {
	pgx.Tx
	calls  []execCall
	failOn string
}

func (tx *recordingTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	tx.calls = append(tx.calls, execCall{sql: strings.Join(strings.Fields(sql), " "), args: args})
	if tx.failOn != "" && strings.Contains(sql, tx.failOn) {
		return pgconn.CommandTag{}, errors.New("boom")
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func TestLeaveHouseholdUnassignsTasks(t *testing.T) {
	household, user := uuid.New(), uuid.New()
	tx := &recordingTx{}

	require.NoError(t, leaveHousehold(context.Background(), tx, household, user))
	require.Len(t, tx.calls, 2)
	require.Contains(t, tx.calls[0].sql, "DELETE FROM household_members")
	require.Equal(t, []any{household, user}, tx.calls[0].args)
	require.Contains(t, tx.calls[1].sql, "UPDATE tasks SET assignee_id = NULL")
	require.Contains(t, tx.calls[1].sql, "WHERE household_id = $1 AND assignee_id = $2")
	require.Equal(t, []any{household, user}, tx.calls[1].args)
}

func TestLeaveHouseholdStopsOnError(t *testing.T) {
	tx := &recordingTx{failOn: "household_members"}

	err := leaveHousehold(context.Background(), tx, uuid.New(), uuid.New())
	require.ErrorContains(t, err, "leave household")
	require.Len(t, tx.calls, 1)

	tx = &recordingTx{failOn: "UPDATE tasks"}
	err = leaveHousehold(context.Background(), tx, uuid.New(), uuid.New())
	require.ErrorContains(t, err, "unassign tasks")
}

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/waypoint/internal/llm"
	"github.com/alexanderramin/waypoint/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedHistory(t *testing.T, calls *SQLiteCallLogRepo, runs *SQLiteRunRepo, now time.Time) {
	t.Helper()
	ctx := context.Background()
	old := now.AddDate(0, 0, -60)

	require.NoError(t, calls.Create(ctx, testutil.NewTestCallEvent(llm.TaskRoadmap, testutil.WithCallAt(old))))
	require.NoError(t, calls.Create(ctx, testutil.NewTestCallEvent(llm.TaskRoadmap, testutil.WithCallAt(now))))
	require.NoError(t, runs.Create(ctx, newTestRun("old", old)))
	require.NoError(t, runs.Create(ctx, newTestRun("new", now)))
}

func TestPrune_RemovesOldRows(t *testing.T) {
	database := testutil.NewTestDB(t)
	calls := NewSQLiteCallLogRepo(database)
	runs := NewSQLiteRunRepo(database)
	now := time.Now().UTC()
	seedHistory(t, calls, runs, now)

	result, err := Prune(context.Background(), testutil.NewTestUoW(database), now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, PruneResult{Calls: 1, Runs: 1}, result)

	remaining, err := runs.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "new", remaining[0].Message)
}

func TestPrune_RollsBackOnFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	calls := NewSQLiteCallLogRepo(database)
	runs := NewSQLiteRunRepo(database)
	now := time.Now().UTC()
	seedHistory(t, calls, runs, now)

	uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: 2, Err: errors.New("injected")}
	_, err := Prune(context.Background(), uow, now.AddDate(0, 0, -30))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected")

	remainingCalls, err := calls.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, remainingCalls, 2, "call deletion must be rolled back")
}

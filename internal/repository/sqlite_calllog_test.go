package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/waypoint/internal/llm"
	"github.com/alexanderramin/waypoint/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallLogRepo_CreateAndListRecent(t *testing.T) {
	repo := NewSQLiteCallLogRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	older := testutil.NewTestCallEvent(llm.TaskGoalExtraction, testutil.WithCallAt(base))
	newer := testutil.NewTestCallEvent(llm.TaskRoadmap,
		testutil.WithCallAt(base.Add(time.Second)),
		testutil.WithCallFailure("timeout"),
		testutil.WithAttempts(3),
	)
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	calls, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, calls, 2)

	assert.Equal(t, newer.CallID, calls[0].CallID)
	assert.Equal(t, llm.TaskRoadmap, calls[0].Task)
	assert.Equal(t, llm.ProviderGemini, calls[0].Provider)
	assert.False(t, calls[0].Success)
	assert.Equal(t, "timeout", calls[0].ErrorCode)
	assert.Equal(t, 3, calls[0].Attempts)
	assert.True(t, calls[0].At.Equal(newer.At))

	assert.Equal(t, older.CallID, calls[1].CallID)
	assert.True(t, calls[1].Success)
}

func TestCallLogRepo_ListRecentHonorsLimit(t *testing.T) {
	repo := NewSQLiteCallLogRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, testutil.NewTestCallEvent(llm.TaskRoadmap)))
	}

	calls, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, calls, 2)
}

func TestCallLogRepo_SubSecondOrdering(t *testing.T) {
	repo := NewSQLiteCallLogRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := testutil.NewTestCallEvent(llm.TaskRoadmap, testutil.WithCallAt(base.Add(100*time.Millisecond)))
	second := testutil.NewTestCallEvent(llm.TaskRoadmap, testutil.WithCallAt(base.Add(120*time.Millisecond)))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, first))

	calls, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, second.CallID, calls[0].CallID)
}

func TestCallLogRepo_ListByRun(t *testing.T) {
	repo := NewSQLiteCallLogRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	goal := testutil.NewTestCallEvent(llm.TaskGoalExtraction, testutil.WithRunID("run-1"), testutil.WithCallAt(base))
	rm := testutil.NewTestCallEvent(llm.TaskRoadmap, testutil.WithRunID("run-1"), testutil.WithCallAt(base.Add(time.Second)))
	other := testutil.NewTestCallEvent(llm.TaskRoadmap, testutil.WithRunID("run-2"))
	for _, e := range []*llm.LLMCallEvent{rm, other, goal} {
		require.NoError(t, repo.Create(ctx, e))
	}

	calls, err := repo.ListByRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, llm.TaskGoalExtraction, calls[0].Task)
	assert.Equal(t, llm.TaskRoadmap, calls[1].Task)
}

func TestCallLogRepo_CreateDefaultsTimestamp(t *testing.T) {
	repo := NewSQLiteCallLogRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	e := testutil.NewTestCallEvent(llm.TaskRoadmap, testutil.WithCallAt(time.Time{}))
	require.NoError(t, repo.Create(ctx, e))

	calls, err := repo.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.WithinDuration(t, time.Now(), calls[0].At, time.Minute)
}

func TestCallLogRepo_DeleteBefore(t *testing.T) {
	repo := NewSQLiteCallLogRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, testutil.NewTestCallEvent(llm.TaskRoadmap, testutil.WithCallAt(now.AddDate(0, 0, -40)))))
	require.NoError(t, repo.Create(ctx, testutil.NewTestCallEvent(llm.TaskRoadmap, testutil.WithCallAt(now))))

	n, err := repo.DeleteBefore(ctx, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	calls, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, calls, 1)
}

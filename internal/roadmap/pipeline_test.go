package roadmap

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alexanderramin/waypoint/internal/llm"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunObserver struct {
	mu     sync.Mutex
	events []RunEvent
}

func (r *recordingRunObserver) ObserveRun(_ context.Context, e RunEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func newTestPipeline(gw llm.Gateway, observers ...RunObserver) Pipeline {
	return NewPipeline(NewGoalExtractor(gw), NewRoadmapGenerator(gw), observers...)
}

func TestPipeline_CalendarIntent(t *testing.T) {
	goal := GoalDescriptor{Goal: "Go", Known: []string{}, Timeframe: "6 weeks"}

	tests := []struct {
		name       string
		message    string
		wantSignal bool
	}{
		{"weekly reminders", "Make a 6-week plan to learn Go with weekly reminders", true},
		{"plain roadmap", "Give me a roadmap to learn TypeScript", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &mockGateway{respond: echoCalendarIntent(t, goal)}

			resp, err := newTestPipeline(gw).GenerateRoadmap(context.Background(), tt.message)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSignal, resp.ShouldTriggerCalendar)
			if tt.wantSignal {
				assert.NotEmpty(t, resp.CalendarIntentReason)
			} else {
				assert.Empty(t, resp.CalendarIntentReason)
			}
		})
	}
}

func TestPipeline_RunsStagesInOrder(t *testing.T) {
	goal := GoalDescriptor{Goal: "TypeScript", Known: []string{"JavaScript"}, ExperienceLevel: LevelIntermediate}
	gw := &mockGateway{respond: echoCalendarIntent(t, goal)}

	_, err := newTestPipeline(gw).GenerateRoadmap(context.Background(), "I know JS, teach me TypeScript")
	require.NoError(t, err)

	require.Len(t, gw.requests, 2)
	assert.Equal(t, llm.TaskGoalExtraction, gw.requests[0].Task)
	assert.Equal(t, llm.TaskRoadmap, gw.requests[1].Task)
	assert.Contains(t, gw.requests[1].Prompt, `- Goal: "TypeScript"`)
	assert.Contains(t, gw.requests[1].Prompt, `"I know JS, teach me TypeScript"`)
}

func TestPipeline_MatchesManualComposition(t *testing.T) {
	goal := GoalDescriptor{Goal: "Go", Known: []string{}}
	gw := &mockGateway{respond: echoCalendarIntent(t, goal)}
	ctx := context.Background()
	msg := "Schedule Go study every morning"

	extracted, err := NewGoalExtractor(gw).Extract(ctx, msg)
	require.NoError(t, err)
	manual, err := NewRoadmapGenerator(gw).Generate(ctx, *extracted, msg)
	require.NoError(t, err)

	composed, err := newTestPipeline(gw).GenerateRoadmap(ctx, msg)
	require.NoError(t, err)

	if diff := cmp.Diff(manual, composed); diff != "" {
		t.Errorf("pipeline differs from manual composition (-manual +pipeline):\n%s", diff)
	}
}

func TestPipeline_RepeatedRunsAreIdentical(t *testing.T) {
	goal := GoalDescriptor{Goal: "TypeScript", Known: []string{"JavaScript"}, Timeframe: "6 weeks"}
	gw := &mockGateway{responses: map[llm.TaskType]string{
		llm.TaskGoalExtraction: goalJSON(t, goal),
		llm.TaskRoadmap:        roadmapJSON(t, sampleRoadmap(), true, strPtr("The user asked for weekly reminders.")),
	}}
	p := newTestPipeline(gw)
	ctx := context.Background()
	msg := "Teach me TypeScript in 6 weeks with weekly reminders"

	first, err := p.GenerateRoadmap(ctx, msg)
	require.NoError(t, err)
	second, err := p.GenerateRoadmap(ctx, msg)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated runs differ (-first +second):\n%s", diff)
	}
	assert.Equal(t, 2, gw.calls(llm.TaskRoadmap))
}

func TestPipeline_EmptyMessage(t *testing.T) {
	for _, msg := range []string{"", "   ", "\n\t"} {
		gw := &mockGateway{}
		obs := &recordingRunObserver{}

		resp, err := newTestPipeline(gw, obs).GenerateRoadmap(context.Background(), msg)

		assert.Nil(t, resp)
		assert.ErrorIs(t, err, ErrEmptyMessage)
		assert.Empty(t, gw.requests, "no upstream call for %q", msg)
		require.Len(t, obs.events, 1)
		assert.ErrorIs(t, obs.events[0].Err, ErrEmptyMessage)
	}
}

func TestPipeline_GoalStageFailure(t *testing.T) {
	gw := &mockGateway{responses: map[llm.TaskType]string{llm.TaskGoalExtraction: "I cannot help with that."}}

	_, err := newTestPipeline(gw).GenerateRoadmap(context.Background(), "learn go")
	require.Error(t, err)

	var pErr *PipelineError
	require.True(t, errors.As(err, &pErr))
	assert.Equal(t, StageGoalExtraction, pErr.Stage)
	assert.NotEmpty(t, pErr.RunID)
	assert.ErrorIs(t, err, llm.ErrUnparsableResponse)
	assert.Contains(t, err.Error(), "goal extraction")
	assert.Equal(t, 0, gw.calls(llm.TaskRoadmap), "roadmap stage must not run")
}

func TestPipeline_RoadmapStageFailure(t *testing.T) {
	upstream := &llm.UpstreamError{Provider: "mock", Kind: llm.UpstreamUnavailable, Err: errors.New("connection refused")}
	gw := &mockGateway{
		responses: map[llm.TaskType]string{llm.TaskGoalExtraction: `{"goal":"Go","known":[]}`},
		errs:      map[llm.TaskType]error{llm.TaskRoadmap: upstream},
	}

	_, err := newTestPipeline(gw).GenerateRoadmap(context.Background(), "learn go")

	var pErr *PipelineError
	require.True(t, errors.As(err, &pErr))
	assert.Equal(t, StageRoadmapGeneration, pErr.Stage)
	assert.ErrorIs(t, err, llm.ErrUpstreamFailure)
	assert.ErrorIs(t, err, llm.ErrUnavailable)

	var uErr *llm.UpstreamError
	require.True(t, errors.As(err, &uErr))
	assert.Equal(t, llm.UpstreamUnavailable, uErr.Kind)
}

func TestPipeline_EmptyUpstreamText(t *testing.T) {
	gw := &mockGateway{responses: map[llm.TaskType]string{
		llm.TaskGoalExtraction: `{"goal":"Go","known":[]}`,
		llm.TaskRoadmap:        "",
	}}

	_, err := newTestPipeline(gw).GenerateRoadmap(context.Background(), "learn go")
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}

func TestPipeline_RunIDPropagates(t *testing.T) {
	gw := &mockGateway{respond: echoCalendarIntent(t, GoalDescriptor{Goal: "Go", Known: []string{}})}
	obs := &recordingRunObserver{}

	_, err := newTestPipeline(gw, obs).GenerateRoadmap(context.Background(), "learn go")
	require.NoError(t, err)

	require.Len(t, obs.events, 1)
	runID := obs.events[0].RunID
	assert.NotEmpty(t, runID)
	assert.Equal(t, []string{runID, runID}, gw.runIDs)
}

func TestPipeline_ObserverReceivesOutcome(t *testing.T) {
	goal := GoalDescriptor{Goal: "Go", Known: []string{}}
	gw := &mockGateway{respond: echoCalendarIntent(t, goal)}
	obs := &recordingRunObserver{}
	var logs bytes.Buffer

	resp, err := newTestPipeline(gw, obs, nil, NewLogRunObserver(&logs)).GenerateRoadmap(context.Background(), "learn go")
	require.NoError(t, err)

	require.Len(t, obs.events, 1)
	event := obs.events[0]
	assert.Equal(t, "learn go", event.Message)
	require.NotNil(t, event.Goal)
	assert.Equal(t, "Go", event.Goal.Goal)
	assert.Same(t, resp, event.Response)
	assert.NoError(t, event.Err)
	assert.False(t, event.StartedAt.IsZero())

	assert.Contains(t, logs.String(), "roadmap_run")
	assert.Contains(t, logs.String(), "stages=2")
	assert.Contains(t, logs.String(), "nodes=3")
}

func TestPipeline_ConcurrentRuns(t *testing.T) {
	gw := &mockGateway{respond: echoCalendarIntent(t, GoalDescriptor{Goal: "Go", Known: []string{}})}
	p := newTestPipeline(gw)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.GenerateRoadmap(context.Background(), "learn go")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 8, gw.calls(llm.TaskRoadmap))
}

func TestLogRunObserver_Failure(t *testing.T) {
	var logs bytes.Buffer
	obs := NewLogRunObserver(&logs)

	obs.ObserveRun(context.Background(), RunEvent{RunID: "r1", Err: ErrEmptyMessage})

	assert.Contains(t, logs.String(), "level=ERROR")
	assert.Contains(t, logs.String(), "run_id=r1")
	assert.Contains(t, logs.String(), "success=false")
}

func TestNewLogRunObserver_NilWriter(t *testing.T) {
	assert.IsType(t, NoopRunObserver{}, NewLogRunObserver(nil))
}

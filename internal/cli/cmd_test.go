package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/waypoint/internal/llm"
	"github.com/alexanderramin/waypoint/internal/repository"
	"github.com/alexanderramin/waypoint/internal/roadmap"
	"github.com/alexanderramin/waypoint/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cannedGateway answers each task with fixed text.
type cannedGateway struct {
	responses map[llm.TaskType]string
	err       error
	prompts   []string
}

func (g *cannedGateway) Complete(_ context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
	g.prompts = append(g.prompts, req.Prompt)
	if g.err != nil {
		return nil, g.err
	}
	return &llm.Completion{Text: g.responses[req.Task], Model: "canned"}, nil
}

func (g *cannedGateway) Available(context.Context) bool { return true }

func cannedRoadmapJSON() string {
	var nodes []string
	for n := 1; n <= 2; n++ {
		var res []string
		for r := 1; r <= roadmap.ResourcesPerNode; r++ {
			res = append(res, fmt.Sprintf(`{"type":"article","title":"Resource %d.%d","link":"https://example.com/%d/%d","description":"Read it."}`, n, r, n, r))
		}
		nodes = append(nodes, fmt.Sprintf(`{"id":"stage-1-node-%d","title":"Topic %d","description":"About topic %d.","resources":[%s]}`, n, n, n, strings.Join(res, ",")))
	}
	return `{"roadmap":[{"id":"stage-1","title":"Foundations","description":"Start here.","nodes":[` +
		strings.Join(nodes, ",") + `]}],"triggerCalendar":true,"calendarIntentReason":"The user asked for weekly reminders."}`
}

func newCannedGateway() *cannedGateway {
	return &cannedGateway{responses: map[llm.TaskType]string{
		llm.TaskGoalExtraction: `{"goal":"TypeScript","known":["JavaScript"],"experienceLevel":"intermediate","timeframe":"6 weeks"}`,
		llm.TaskRoadmap:        cannedRoadmapJSON(),
	}}
}

// testApp wires an App around gw with history backed by an in-memory DB.
func testApp(t *testing.T, gw llm.Gateway) *App {
	t.Helper()
	database := testutil.NewTestDB(t)
	runs := repository.NewSQLiteRunRepo(database)

	goals := roadmap.NewGoalExtractor(gw)
	return &App{
		Pipeline: roadmap.NewPipeline(goals, roadmap.NewRoadmapGenerator(gw), repository.NewRunRecorder(runs, nil)),
		Goals:    goals,
		Gateway:  gw,
		Calls:    repository.NewSQLiteCallLogRepo(database),
		Runs:     runs,
		UoW:      testutil.NewTestUoW(database),
	}
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestRootCmd_NoArgs_ShowsHelp(t *testing.T) {
	output, err := executeCmd(t, testApp(t, newCannedGateway()), "")
	require.NoError(t, err)
	assert.Contains(t, output, "waypoint")
	assert.Contains(t, output, "generate")
}

// --- generate ---

func TestGenerateCmd_Args(t *testing.T) {
	gw := newCannedGateway()
	app := testApp(t, gw)

	output, err := executeCmd(t, app, "", "generate", "I know JavaScript,", "teach me TypeScript with weekly reminders")
	require.NoError(t, err)

	assert.Contains(t, output, "Foundations")
	assert.Contains(t, output, "Topic 2")
	assert.Contains(t, output, "SCHEDULE REQUESTED")
	require.Len(t, gw.prompts, 2)
	assert.Contains(t, gw.prompts[0], `"I know JavaScript, teach me TypeScript with weekly reminders"`)
}

func TestGenerateCmd_JSON(t *testing.T) {
	app := testApp(t, newCannedGateway())

	output, err := executeCmd(t, app, "", "generate", "--json", "learn TypeScript")
	require.NoError(t, err)

	var resp roadmap.RoadmapResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.True(t, resp.ShouldTriggerCalendar)
	assert.Equal(t, "The user asked for weekly reminders.", resp.CalendarIntentReason)
	require.Len(t, resp.Roadmap, 1)
	assert.Len(t, resp.Roadmap[0].Nodes, 2)
}

func TestGenerateCmd_Stdin(t *testing.T) {
	gw := newCannedGateway()
	app := testApp(t, gw)

	_, err := executeCmd(t, app, "  teach me TypeScript\n", "generate")
	require.NoError(t, err)
	require.NotEmpty(t, gw.prompts)
	assert.Contains(t, gw.prompts[0], `"teach me TypeScript"`)
}

func TestGenerateCmd_EmptyStdin(t *testing.T) {
	gw := newCannedGateway()

	_, err := executeCmd(t, testApp(t, gw), "   ", "generate")
	assert.ErrorIs(t, err, roadmap.ErrEmptyMessage)
	assert.Empty(t, gw.prompts)
}

func TestGenerateCmd_UpstreamFailure(t *testing.T) {
	gw := newCannedGateway()
	gw.err = &llm.UpstreamError{Provider: "canned", Kind: llm.UpstreamUnavailable, Err: fmt.Errorf("connection refused")}

	_, err := executeCmd(t, testApp(t, gw), "", "generate", "learn go")
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrUpstreamFailure)
	assert.Contains(t, err.Error(), "goal extraction")
}

func TestGenerateCmd_RecoveredWarning(t *testing.T) {
	gw := newCannedGateway()
	full := cannedRoadmapJSON()
	start := strings.Index(full, "[")
	end := strings.LastIndex(full, "]")
	gw.responses[llm.TaskRoadmap] = "Here is your plan:\n" + full[start:end+1] + "\nEnjoy!"

	output, err := executeCmd(t, testApp(t, gw), "", "generate", "learn go")
	require.NoError(t, err)
	assert.Contains(t, output, "recovered")
	assert.Contains(t, output, "no scheduling")
}

func TestGenerateCmd_RecordsRun(t *testing.T) {
	app := testApp(t, newCannedGateway())

	_, err := executeCmd(t, app, "", "generate", "learn TypeScript")
	require.NoError(t, err)

	runs, err := app.Runs.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "TypeScript", runs[0].Goal)
	assert.Equal(t, 2, runs[0].Nodes)
	assert.True(t, runs[0].Calendar)
}

// --- extract ---

func TestExtractCmd(t *testing.T) {
	gw := newCannedGateway()

	output, err := executeCmd(t, testApp(t, gw), "", "extract", "I know JavaScript and want TypeScript")
	require.NoError(t, err)
	assert.Contains(t, output, "TypeScript")
	assert.Contains(t, output, "intermediate")
	assert.Len(t, gw.prompts, 1, "extract must not build a roadmap")
}

func TestExtractCmd_JSON(t *testing.T) {
	output, err := executeCmd(t, testApp(t, newCannedGateway()), "", "extract", "--json", "learn TypeScript")
	require.NoError(t, err)

	var goal roadmap.GoalDescriptor
	require.NoError(t, json.Unmarshal([]byte(output), &goal))
	assert.Equal(t, "TypeScript", goal.Goal)
	assert.Equal(t, []string{"JavaScript"}, goal.Known)
	assert.Equal(t, "6 weeks", goal.Timeframe)
}

func TestExtractCmd_NotConfigured(t *testing.T) {
	app := testApp(t, newCannedGateway())
	app.Goals = nil

	_, err := executeCmd(t, app, "", "extract", "learn go")
	assert.Error(t, err)
}

// --- history ---

func TestCallsCmd(t *testing.T) {
	app := testApp(t, newCannedGateway())
	ctx := context.Background()
	require.NoError(t, app.Calls.Create(ctx, testutil.NewTestCallEvent(llm.TaskGoalExtraction, testutil.WithRunID("run-1"))))
	require.NoError(t, app.Calls.Create(ctx, testutil.NewTestCallEvent(llm.TaskRoadmap, testutil.WithRunID("run-2"), testutil.WithCallFailure("timeout"))))

	output, err := executeCmd(t, app, "", "calls")
	require.NoError(t, err)
	assert.Contains(t, output, "goal_extraction")
	assert.Contains(t, output, "timeout")

	output, err = executeCmd(t, app, "", "calls", "--run", "run-1")
	require.NoError(t, err)
	assert.Contains(t, output, "goal_extraction")
	assert.NotContains(t, output, "timeout")
}

func TestCallsCmd_NoDatabase(t *testing.T) {
	app := testApp(t, newCannedGateway())
	app.Calls = nil

	_, err := executeCmd(t, app, "", "calls")
	assert.ErrorIs(t, err, errNoHistory)
}

func TestRunsCmd(t *testing.T) {
	app := testApp(t, newCannedGateway())
	_, err := executeCmd(t, app, "", "generate", "learn TypeScript")
	require.NoError(t, err)

	output, err := executeCmd(t, app, "", "runs")
	require.NoError(t, err)
	assert.Contains(t, output, "ROADMAP RUNS")
	assert.Contains(t, output, "TypeScript")
	assert.Contains(t, output, "1/2")
}

func TestPruneCmd(t *testing.T) {
	app := testApp(t, newCannedGateway())
	ctx := context.Background()
	old := time.Now().AddDate(0, 0, -90)
	require.NoError(t, app.Calls.Create(ctx, testutil.NewTestCallEvent(llm.TaskRoadmap, testutil.WithCallAt(old))))
	require.NoError(t, app.Calls.Create(ctx, testutil.NewTestCallEvent(llm.TaskRoadmap)))

	output, err := executeCmd(t, app, "", "prune", "--days", "30")
	require.NoError(t, err)
	assert.Contains(t, output, "Removed 1 calls and 0 runs")

	calls, err := app.Calls.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, calls, 1)
}

func TestPruneCmd_InvalidDays(t *testing.T) {
	_, err := executeCmd(t, testApp(t, newCannedGateway()), "", "prune", "--days", "0")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "--days")
}

// --- schema ---

func TestSchemaCmd(t *testing.T) {
	output, err := executeCmd(t, testApp(t, newCannedGateway()), "", "schema", "roadmap")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &doc))
	assert.Equal(t, "object", doc["type"])
	assert.Contains(t, doc["$comment"], roadmap.SchemaVersion)
	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "triggerCalendar")
}

func TestSchemaCmd_InvalidName(t *testing.T) {
	_, err := executeCmd(t, testApp(t, newCannedGateway()), "", "schema", "poem")
	assert.Error(t, err)
}

func TestGenerateCmd_ModelNotConfigured(t *testing.T) {
	app := testApp(t, newCannedGateway())
	app.ModelErr = llm.ErrMissingCredential

	_, err := executeCmd(t, app, "", "generate", "learn go")
	assert.ErrorIs(t, err, llm.ErrMissingCredential)

	// history still works without a model
	_, err = executeCmd(t, app, "", "runs")
	assert.NoError(t, err)
}

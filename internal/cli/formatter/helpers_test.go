package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHumanTimestampFrom(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input time.Time
		want  string
	}{
		{"just now", now.Add(-10 * time.Second), "Just now"},
		{"minutes", now.Add(-5 * time.Minute), "5m ago"},
		{"hours", now.Add(-3 * time.Hour), "3h ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HumanTimestampFrom(tt.input, now))
		})
	}
}

func TestHumanTimestampFrom_OlderUsesDate(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)
	old := now.AddDate(0, 0, -3)

	assert.Equal(t, old.Local().Format("Jan 2 15:04"), HumanTimestampFrom(old, now))
}

func TestFormatLatency(t *testing.T) {
	assert.Equal(t, "0ms", FormatLatency(0))
	assert.Equal(t, "850ms", FormatLatency(850))
	assert.Equal(t, "2.4s", FormatLatency(2400))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	assert.Equal(t, "日本…", Truncate("日本語のテキスト", 3))
}

func TestTruncID(t *testing.T) {
	assert.Equal(t, "12345678", stripANSI(TruncID("123456789abc")))
	assert.Equal(t, "abc", stripANSI(TruncID("abc")))
}

func TestRenderBox_Title(t *testing.T) {
	out := stripANSI(RenderBox("goal", "content"))
	assert.Contains(t, out, "GOAL")
	assert.Contains(t, out, "content")
	assert.Contains(t, out, "╭")
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := stripANSI(RenderTable([]string{"A", "LONG"}, [][]string{{"xyz", "1"}, {"q", "22"}}))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	assert.Equal(t, []string{
		"A    LONG",
		"───  ────",
		"xyz  1",
		"q    22",
	}, lines)
}

func TestRenderTable_NoHeaders(t *testing.T) {
	assert.Empty(t, RenderTable(nil, nil))
}

func TestStatusIndicator(t *testing.T) {
	assert.Equal(t, "✔ ok", stripANSI(StatusIndicator(true, "")))
	assert.Equal(t, "✖ timeout", stripANSI(StatusIndicator(false, "timeout")))
	assert.Equal(t, "✖ error", stripANSI(StatusIndicator(false, "")))
}

func TestRenderSuccessRate(t *testing.T) {
	assert.Equal(t, "[██████░░] 75% ok (6/8)", stripANSI(RenderSuccessRate(6, 8, 8)))
	assert.Equal(t, "[████] 100% ok (3/3)", stripANSI(RenderSuccessRate(3, 3, 4)))
	assert.Equal(t, "[░░░░] 0% ok (0/2)", stripANSI(RenderSuccessRate(0, 2, 4)))
	assert.Equal(t, "no data", stripANSI(RenderSuccessRate(0, 0, 4)))
}

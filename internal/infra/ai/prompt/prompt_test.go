package prompt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudscope/cloudscope/internal/domain/resources"
	"github.com/cloudscope/cloudscope/internal/domain/telemetry"
	"github.com/cloudscope/cloudscope/internal/domain/workflows"
)

func TestSplitRelatedQuestions(t *testing.T) {
	raw := "The stream is healthy.\n\n## Related questions:\n- What is the retention period?\n- How many shards are in use?\n"
	content, questions := SplitRelatedQuestions(raw)

	assert.Equal(t, "The stream is healthy.", content)
	require.Len(t, questions, 2)
	assert.Equal(t, "What is the retention period?", questions[0])
	assert.Equal(t, "How many shards are in use?", questions[1])
}

func TestSplitRelatedQuestionsCaseInsensitive(t *testing.T) {
	raw := "Body.\nRELATED QUESTIONS:\n1. First?\n2. Second?"
	content, questions := SplitRelatedQuestions(raw)
	assert.Equal(t, "Body.", content)
	assert.Equal(t, []string{"First?", "Second?"}, questions)
}

func TestSplitRelatedQuestionsAbsent(t *testing.T) {
	raw := "Just an answer with no follow-ups."
	content, questions := SplitRelatedQuestions(raw)
	assert.Equal(t, raw, content)
	assert.Nil(t, questions)
}

func TestUserPromptOmitsRawPoints(t *testing.T) {
	points := make([]telemetry.Point, 500)
	base := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	for i := range points {
		points[i] = telemetry.Point{Timestamp: base.Add(time.Duration(i) * time.Minute), Value: float64(i)}
	}
	s := telemetry.MetricSeries{MetricName: "CPUUtilization", Unit: "percent", Points: points}

	ref := resources.ResourceRef{ID: "i-1234", Type: resources.TypeEC2Instance, Region: "us-east-1"}
	wf := workflows.Workflow{ID: "performance", DisplayName: "Performance analysis"}
	out := User(ref, wf, []telemetry.MetricSeries{s})

	// summaries keep the prompt bounded regardless of sample count
	assert.Less(t, len(out), 1000)
	assert.Contains(t, out, "500 samples")
	assert.Contains(t, out, "i-1234")
}

func TestUserPromptCarriesQuestion(t *testing.T) {
	ref := resources.ResourceRef{ID: "i-1234", Type: resources.TypeEC2Instance}
	wf := workflows.Workflow{ID: "qna", DisplayName: "Follow-up question", Question: "Why is this slow?"}
	out := User(ref, wf, nil)
	assert.Contains(t, out, "Why is this slow?")
	assert.Contains(t, out, "no telemetry returned")
}

func TestSystemPromptFallsBackToGeneric(t *testing.T) {
	known := System("performance")
	generic := System("no-such-template")
	assert.NotEqual(t, known, generic)
	assert.True(t, strings.Contains(generic, "Related questions:"))
}

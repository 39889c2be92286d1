package prompt

import (
	"fmt"
	"strings"

	"github.com/cloudscope/cloudscope/internal/domain/resources"
	"github.com/cloudscope/cloudscope/internal/domain/telemetry"
	"github.com/cloudscope/cloudscope/internal/domain/workflows"
)

// System prompts keyed by workflow prompt_template_id. Unknown ids get the
// generic template.
var systemPrompts = map[string]string{
	"performance": `You are a senior cloud operations analyst. Review the resource and its metric summary and explain performance characteristics: latency, throughput, saturation and consumer lag. Respond in concise markdown. End with a section titled "Related questions:" containing 3 short follow-up questions as a bullet list.`,
	"cost": `You are a senior cloud cost analyst. Review the resource and its metric summary and explain current spend drivers and right-sizing opportunities. Respond in concise markdown. End with a section titled "Related questions:" containing 3 short follow-up questions as a bullet list.`,
	"unused": `You are a senior cloud operations analyst. Decide whether this resource looks unused or idle based on the metric summary, and say what evidence supports that. Respond in concise markdown. End with a section titled "Related questions:" containing 3 short follow-up questions as a bullet list.`,
	"errors": `You are a senior cloud reliability analyst. Interpret the error and throttling metrics, identify likely causes and remediation steps. Respond in concise markdown. End with a section titled "Related questions:" containing 3 short follow-up questions as a bullet list.`,
	"question": `You are a senior cloud operations analyst. Answer the operator's question about the resource using the metric summary as evidence. Respond in concise markdown. End with a section titled "Related questions:" containing 3 short follow-up questions as a bullet list.`,
}

const genericSystemPrompt = `You are a senior cloud operations analyst. Review the resource and its metric summary and report anything noteworthy about its health, cost or performance. Respond in concise markdown. End with a section titled "Related questions:" containing 3 short follow-up questions as a bullet list.`

// System returns the system prompt for a template id.
func System(templateID string) string {
	if p, ok := systemPrompts[templateID]; ok {
		return p
	}
	return genericSystemPrompt
}

// User renders the user message: resource attributes plus a compact textual
// summary of each series. Raw point arrays are excluded to keep the prompt
// bounded.
func User(resource resources.ResourceRef, wf workflows.Workflow, series []telemetry.MetricSeries) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Resource: %s\n", resource.Label())
	fmt.Fprintf(&b, "ID: %s\nType: %s\nRegion: %s\n", resource.ID, resource.Type, resource.Region)
	if resource.Account != "" {
		fmt.Fprintf(&b, "Account: %s\n", resource.Account)
	}
	fmt.Fprintf(&b, "\nAnalysis: %s\n", wf.DisplayName)
	if wf.Question != "" {
		fmt.Fprintf(&b, "\nOperator question: %s\n", wf.Question)
	}
	b.WriteString("\nMetric summary:\n")
	if len(series) == 0 {
		b.WriteString("(no telemetry returned for the requested window)\n")
	}
	for _, s := range series {
		b.WriteString(Summarize(s))
		b.WriteString("\n")
	}
	return b.String()
}

// Summarize renders one series as a single line of aggregate statistics.
func Summarize(s telemetry.MetricSeries) string {
	if len(s.Points) == 0 {
		return fmt.Sprintf("- %s: no data", s.MetricName)
	}
	unit := s.Unit
	if unit == "" {
		unit = "value"
	}
	return fmt.Sprintf("- %s: %d samples, min=%.2f max=%.2f avg=%.2f last=%.2f (%s)",
		s.MetricName, len(s.Points), s.Min(), s.Max(), s.Avg(), s.Last(), unit)
}

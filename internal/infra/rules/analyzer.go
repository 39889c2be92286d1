package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cloudscope/cloudscope/internal/domain/analysis"
	"github.com/cloudscope/cloudscope/internal/domain/resources"
	"github.com/cloudscope/cloudscope/internal/domain/telemetry"
	"github.com/cloudscope/cloudscope/internal/domain/workflows"
)

// Finding is one rule hit, ranked by severity.
type Finding struct {
	Title          string `json:"title"`
	Severity       string `json:"severity"`
	Summary        string `json:"summary"`
	Recommendation string `json:"recommendation"`
}

var severityRank = map[string]int{
	"critical": 0,
	"high":     1,
	"medium":   2,
	"low":      3,
	"info":     4,
}

// threshold rules evaluated against each series. Aggregation picks which
// statistic the bound applies to.
type rule struct {
	metric         string
	agg            string // max | avg | last
	above          bool   // true: fire when value > bound; false: when value < bound
	bound          float64
	severity       string
	title          string
	recommendation string
}

var thresholdRules = []rule{
	{"IteratorAgeMilliseconds", "max", true, 30000, "high", "High consumer lag",
		"Scale out consumers or increase processing throughput so the iterator age stays below 30s."},
	{"CPUUtilization", "avg", true, 90, "critical", "CPU saturated",
		"Move to a larger instance class or spread load across more instances."},
	{"CPUUtilization", "avg", true, 80, "high", "High CPU utilization",
		"Review recent load changes; consider scaling up before saturation."},
	{"CPUUtilization", "avg", false, 5, "low", "Possibly idle resource",
		"Utilization is under 5% on average; confirm the resource is still needed or downsize it."},
	{"MemoryUtilization", "max", true, 90, "high", "Memory pressure",
		"Increase memory or reduce working-set size; watch for evictions and OOM kills."},
	{"ReadLatency", "avg", true, 0.02, "medium", "Elevated read latency",
		"Check for missing indexes, hot partitions, or undersized storage throughput."},
	{"Errors", "max", true, 0, "high", "Errors observed",
		"Inspect recent error samples and correlate with deploys or quota changes."},
	{"ThrottledRequests", "max", true, 0, "medium", "Throttling observed",
		"Requests are being throttled; raise provisioned capacity or add backoff on callers."},
	{"NetworkIn", "avg", false, 1024, "low", "Negligible inbound traffic",
		"Inbound traffic is near zero; the resource may be unused."},
	{"IncomingRecords", "avg", false, 1, "low", "No incoming records",
		"The stream receives almost no records; consider retiring or merging it."},
}

// Analyzer is the deterministic strategy: fixed thresholds over the gathered
// series, no network calls, identical input always yields identical content.
type Analyzer struct{}

func NewAnalyzer() *Analyzer { return &Analyzer{} }

// Analyze applies the threshold rules and renders a markdown report.
func (a *Analyzer) Analyze(resource resources.ResourceRef, wf workflows.Workflow, series []telemetry.MetricSeries) analysis.Result {
	findings := evaluate(series)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %s\n\n", wf.DisplayName, resource.Label())
	fmt.Fprintf(&b, "Resource `%s` (%s, %s)\n\n", resource.ID, resource.Type, regionOrDash(resource.Region))

	b.WriteString("## Findings\n\n")
	if len(findings) == 0 {
		b.WriteString("No findings. All observed metrics are within normal bounds.\n\n")
	}
	for _, f := range findings {
		fmt.Fprintf(&b, "- **%s** (%s): %s\n  - Recommendation: %s\n", f.Title, f.Severity, f.Summary, f.Recommendation)
	}
	if len(findings) > 0 {
		b.WriteString("\n")
	}

	b.WriteString("## Metric summary\n\n")
	b.WriteString("| Metric | Avg | Max | Last | Unit |\n|---|---|---|---|---|\n")
	for _, s := range series {
		fmt.Fprintf(&b, "| %s | %.2f | %.2f | %.2f | %s |\n",
			s.MetricName, s.Avg(), s.Max(), s.Last(), unitOrDash(s.Unit))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Cost estimate\n\nEstimated monthly cost: $%.2f (flat-rate table, region %s).\n",
		monthlyEstimate(resource), regionOrDash(resource.Region))

	return analysis.Result{
		Content:          b.String(),
		Format:           analysis.FormatMarkdown,
		RelatedQuestions: relatedQuestions(findings),
		Metadata: analysis.Metadata{
			AnalyzerUsed: analysis.AnalyzerMetrics,
		},
	}
}

// evaluate runs every rule against its metric and returns findings ranked by
// severity, then title, so output order is stable.
func evaluate(series []telemetry.MetricSeries) []Finding {
	byName := make(map[string]telemetry.MetricSeries, len(series))
	for _, s := range series {
		byName[s.MetricName] = s
	}

	var findings []Finding
	fired := map[string]bool{}
	for _, r := range thresholdRules {
		s, ok := byName[r.metric]
		if !ok || len(s.Points) == 0 {
			continue
		}
		// one finding per metric, highest-priority rule wins (rules are
		// ordered strictest-first per metric)
		if fired[r.metric] {
			continue
		}
		var v float64
		switch r.agg {
		case "avg":
			v = s.Avg()
		case "last":
			v = s.Last()
		default:
			v = s.Max()
		}
		hit := (r.above && v > r.bound) || (!r.above && v < r.bound)
		if !hit {
			continue
		}
		fired[r.metric] = true
		findings = append(findings, Finding{
			Title:          r.title,
			Severity:       r.severity,
			Summary:        fmt.Sprintf("%s %s is %.2f (threshold %s %.2f)", r.metric, r.agg, v, cmpWord(r.above), r.bound),
			Recommendation: r.recommendation,
		})
	}

	sort.Slice(findings, func(i, j int) bool {
		if severityRank[findings[i].Severity] != severityRank[findings[j].Severity] {
			return severityRank[findings[i].Severity] < severityRank[findings[j].Severity]
		}
		return findings[i].Title < findings[j].Title
	})
	return findings
}

func relatedQuestions(findings []Finding) []string {
	var qs []string
	for _, f := range findings {
		qs = append(qs, fmt.Sprintf("How do I fix \"%s\"?", f.Title))
		if len(qs) == 3 {
			break
		}
	}
	return qs
}

func cmpWord(above bool) string {
	if above {
		return ">"
	}
	return "<"
}

func regionOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func unitOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

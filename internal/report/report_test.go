package report

import (
	"strings"
	"testing"
	"time"

	"workpulse/internal/alerts"
	"workpulse/internal/stats"
)

func sampleSummary() alerts.InsightSummary {
	return alerts.InsightSummary{
		Start:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC),
		GeneratedAt: time.Date(2024, 6, 16, 12, 0, 0, 0, time.UTC),
		KeyInsights: []alerts.Insight{
			{Category: "performance", Entity: "t1", Message: "Top performing team with a composite score of 84.2 (good)"},
		},
		TrendInsights: []alerts.Insight{
			{Category: "trend", Entity: "t1", Message: "Delivered capacity is increasing by 12.0 hours per sprint"},
		},
		RiskAssessment: stats.RiskScore{Score: 0.12, Confidence: 0.4,
			Recommendations: []string{"Review staffing for over-utilized teams"}},
	}
}

func TestRenderMarkdown(t *testing.T) {
	active := []alerts.Alert{
		{Type: alerts.TypeCapacityWarning, Severity: alerts.SeverityHigh, AffectedEntity: "t1",
			ExpirationDate:  time.Date(2024, 6, 23, 12, 0, 0, 0, time.UTC),
			Recommendations: []string{"Redistribute sprint work or extend the timeline"}},
	}

	out := RenderMarkdown(sampleSummary(), active)

	for _, want := range []string{
		"# Workforce Insight Report",
		"Period: 2024-03-01 to 2024-06-16",
		"Top performing team",
		"increasing by 12.0 hours per sprint",
		"Score: 0.12",
		"## Active Alerts (1)",
		"**[HIGH]** capacity_warning on `t1`",
		"Redistribute sprint work",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Markdown report missing %q", want)
		}
	}
}

func TestRenderMarkdownEmptySections(t *testing.T) {
	out := RenderMarkdown(alerts.InsightSummary{}, nil)

	if !strings.Contains(out, "## Outlook\n\nNone.") {
		t.Errorf("Expected empty sections to render as None, got:\n%s", out)
	}
	if !strings.Contains(out, "## Active Alerts (0)") {
		t.Errorf("Expected zero alert count, got:\n%s", out)
	}
}

func TestRenderHTMLEscapes(t *testing.T) {
	summary := sampleSummary()
	summary.KeyInsights = []alerts.Insight{
		{Entity: "t<script>", Message: "x & y"},
	}

	out := RenderHTML(summary, nil)

	if strings.Contains(out, "<script>") {
		t.Errorf("Expected entity to be escaped")
	}
	if !strings.Contains(out, "t&lt;script&gt;") || !strings.Contains(out, "x &amp; y") {
		t.Errorf("Expected escaped entity and message, got:\n%s", out)
	}
	if !strings.Contains(out, "<!DOCTYPE html>") {
		t.Errorf("Expected a standalone HTML document")
	}
}

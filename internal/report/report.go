// Package report renders insight summaries and alert listings as Markdown
// and HTML for dashboards and the CLI.
package report

import (
	"fmt"
	"html"
	"strings"

	"workpulse/internal/alerts"
)

// RenderMarkdown formats an insight summary as a Markdown report.
func RenderMarkdown(summary alerts.InsightSummary, active []alerts.Alert) string {
	var sb strings.Builder

	sb.WriteString("# Workforce Insight Report\n\n")
	sb.WriteString(fmt.Sprintf("Period: %s to %s\n\n",
		summary.Start.Format("2006-01-02"), summary.End.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", summary.GeneratedAt.Format("2006-01-02 15:04")))

	sb.WriteString("## Key Insights\n\n")
	writeInsights(&sb, summary.KeyInsights)

	sb.WriteString("## Trends\n\n")
	writeInsights(&sb, summary.TrendInsights)

	sb.WriteString("## Outlook\n\n")
	writeInsights(&sb, summary.PredictiveInsights)

	sb.WriteString("## Company Risk\n\n")
	sb.WriteString(fmt.Sprintf("Score: %.2f (confidence %.2f)\n\n", summary.RiskAssessment.Score, summary.RiskAssessment.Confidence))
	for _, rec := range summary.RiskAssessment.Recommendations {
		sb.WriteString(fmt.Sprintf("- %s\n", rec))
	}
	if len(summary.RiskAssessment.Recommendations) > 0 {
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("## Active Alerts (%d)\n\n", len(active)))
	if len(active) == 0 {
		sb.WriteString("None.\n")
	}
	for _, a := range active {
		sb.WriteString(fmt.Sprintf("- **[%s]** %s on `%s` (expires %s)\n",
			strings.ToUpper(a.Severity), a.Type, a.AffectedEntity, a.ExpirationDate.Format("2006-01-02 15:04")))
		for _, rec := range a.Recommendations {
			sb.WriteString(fmt.Sprintf("  - %s\n", rec))
		}
	}

	return sb.String()
}

func writeInsights(sb *strings.Builder, insights []alerts.Insight) {
	if len(insights) == 0 {
		sb.WriteString("None.\n\n")
		return
	}
	for _, in := range insights {
		if in.Entity != "" {
			sb.WriteString(fmt.Sprintf("- `%s`: %s\n", in.Entity, in.Message))
		} else {
			sb.WriteString(fmt.Sprintf("- %s\n", in.Message))
		}
	}
	sb.WriteString("\n")
}

// RenderHTML wraps the report in a minimal standalone HTML page, suitable
// for opening directly in a browser.
func RenderHTML(summary alerts.InsightSummary, active []alerts.Alert) string {
	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	sb.WriteString("<meta charset=\"utf-8\">\n<title>Workforce Insight Report</title>\n")
	sb.WriteString("<style>\n")
	sb.WriteString("body { font-family: sans-serif; max-width: 60rem; margin: 2rem auto; color: #222; }\n")
	sb.WriteString("h1, h2 { border-bottom: 1px solid #ddd; padding-bottom: .3rem; }\n")
	sb.WriteString(".severity-critical { color: #b00020; font-weight: bold; }\n")
	sb.WriteString(".severity-high { color: #d2691e; font-weight: bold; }\n")
	sb.WriteString(".severity-medium { color: #b8860b; }\n")
	sb.WriteString(".severity-low { color: #555; }\n")
	sb.WriteString("</style>\n</head>\n<body>\n")

	sb.WriteString("<h1>Workforce Insight Report</h1>\n")
	sb.WriteString(fmt.Sprintf("<p>Period: %s to %s</p>\n",
		summary.Start.Format("2006-01-02"), summary.End.Format("2006-01-02")))

	writeHTMLSection(&sb, "Key Insights", summary.KeyInsights)
	writeHTMLSection(&sb, "Trends", summary.TrendInsights)
	writeHTMLSection(&sb, "Outlook", summary.PredictiveInsights)

	sb.WriteString("<h2>Company Risk</h2>\n")
	sb.WriteString(fmt.Sprintf("<p>Score: %.2f (confidence %.2f)</p>\n",
		summary.RiskAssessment.Score, summary.RiskAssessment.Confidence))

	sb.WriteString(fmt.Sprintf("<h2>Active Alerts (%d)</h2>\n<ul>\n", len(active)))
	for _, a := range active {
		sb.WriteString(fmt.Sprintf("<li><span class=\"severity-%s\">[%s]</span> %s on %s</li>\n",
			html.EscapeString(a.Severity), html.EscapeString(strings.ToUpper(a.Severity)),
			html.EscapeString(a.Type), html.EscapeString(a.AffectedEntity)))
	}
	sb.WriteString("</ul>\n</body>\n</html>\n")

	return sb.String()
}

func writeHTMLSection(sb *strings.Builder, title string, insights []alerts.Insight) {
	sb.WriteString(fmt.Sprintf("<h2>%s</h2>\n<ul>\n", html.EscapeString(title)))
	for _, in := range insights {
		if in.Entity != "" {
			sb.WriteString(fmt.Sprintf("<li><code>%s</code>: %s</li>\n",
				html.EscapeString(in.Entity), html.EscapeString(in.Message)))
		} else {
			sb.WriteString(fmt.Sprintf("<li>%s</li>\n", html.EscapeString(in.Message)))
		}
	}
	sb.WriteString("</ul>\n")
}

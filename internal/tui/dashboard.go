package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/staccato/internal/analyzer"
	"github.com/verte-zerg/staccato/internal/model"
	"github.com/verte-zerg/staccato/internal/report"
)

// renderDashboard draws the hygiene dashboard: overall score, severity
// breakdown, and the worst offending key pairs.
func renderDashboard(metrics model.SessionMetrics, hotspots []model.KeyInteraction, recent *model.KeyInteraction, an *analyzer.Analyzer) string {
	score := panelStyle.Render(renderScore(metrics))
	breakdown := panelStyle.Render(renderBreakdown(metrics))
	offenders := panelStyle.Render(renderOffenders(hotspots, recent, an))
	return lipgloss.JoinHorizontal(lipgloss.Top, score, breakdown, offenders)
}

func renderScore(metrics model.SessionMetrics) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render("SIGNAL HYGIENE"))
	b.WriteString("\n")
	if metrics.TotalKeypresses == 0 {
		b.WriteString(textStyle.Render("--"))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Waiting..."))
		return b.String()
	}
	grade := report.Grade(metrics.HygieneScore)
	b.WriteString(textStyle.Render(fmt.Sprintf("%.0f", metrics.HygieneScore)))
	b.WriteString("\n")
	b.WriteString(gradeStyle(grade).Render(grade))
	return b.String()
}

func renderBreakdown(metrics model.SessionMetrics) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render("SIGNAL QUALITY"))
	b.WriteString("\n")
	if metrics.TotalKeypresses == 0 {
		b.WriteString(dimStyle.Render("Waiting for data..."))
		return b.String()
	}
	cleanPct := metrics.CleanKeypresses * 100 / metrics.TotalKeypresses
	filled := cleanPct / 10
	bar := strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
	b.WriteString(barStyle.Render(bar))
	b.WriteString(textStyle.Render(fmt.Sprintf(" %d%% clean", cleanPct)))
	b.WriteString("\n")
	b.WriteString(cleanStyle.Render(fmt.Sprintf("Independent: %d", metrics.CleanKeypresses)))
	b.WriteString("\n")
	b.WriteString(minorStyle.Render(fmt.Sprintf("Minor:       %d", metrics.MinorAdhesions)))
	b.WriteString("\n")
	b.WriteString(moderateStyle.Render(fmt.Sprintf("Moderate:    %d", metrics.ModerateAdhesions)))
	b.WriteString("\n")
	b.WriteString(severeStyle.Render(fmt.Sprintf("Severe:      %d", metrics.SevereAdhesions)))
	return b.String()
}

func renderOffenders(hotspots []model.KeyInteraction, recent *model.KeyInteraction, an *analyzer.Analyzer) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render("WORST OFFENDERS"))
	b.WriteString("\n")
	if len(hotspots) == 0 {
		b.WriteString(dimStyle.Render("No data yet..."))
		return b.String()
	}
	for i, h := range hotspots {
		sev := an.InteractionSeverity(h.OverlapDuration)
		line := fmt.Sprintf("%d. [%s]+[%s]: %.0fms ", i+1, strings.ToUpper(h.Key1), strings.ToUpper(h.Key2), h.OverlapDuration*1000)
		b.WriteString(textStyle.Render(line))
		b.WriteString(severityStyle(sev).Render(strings.ToUpper(sev.String())))
		b.WriteString("\n")
	}
	if recent != nil {
		b.WriteString(dimStyle.Render(fmt.Sprintf("Last: %s+%s %.0fms (%.0f%%)",
			recent.Key1, recent.Key2, recent.OverlapDuration*1000, recent.OverlapPct)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func severityStyle(s analyzer.Severity) lipgloss.Style {
	switch s {
	case analyzer.Minor:
		return minorStyle
	case analyzer.Moderate:
		return moderateStyle
	case analyzer.Severe:
		return severeStyle
	default:
		return cleanStyle
	}
}

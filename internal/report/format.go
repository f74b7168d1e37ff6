package report

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/soulsync-ai/soulsync/internal/store"
)

// ANSI escape codes for terminal formatting.
const (
	bold   = "\033[1m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	reset  = "\033[0m"
)

// colorForStability maps a stability score to a color: >=70 green,
// 40-70 yellow, <40 red.
func colorForStability(s float64) string {
	switch {
	case s >= 70:
		return green
	case s >= 40:
		return yellow
	default:
		return red
	}
}

// FormatStatus formats a StatusReport as a terminal-friendly string.
func FormatStatus(r *StatusReport) string {
	var b strings.Builder

	b.WriteString(bold + "SoulSync - Emotion Log" + reset + "\n")
	b.WriteString(strings.Repeat("=", 40) + "\n\n")

	b.WriteString(fmt.Sprintf("Database:  %s (%.1f KB)\n", r.DBPath, float64(r.DBSizeBytes)/1024.0))
	b.WriteString(fmt.Sprintf("Events:    %d\n", r.Events))
	b.WriteString(fmt.Sprintf("Alerts:    %d\n", r.Alerts))
	if r.LastEmotion != "" {
		b.WriteString(fmt.Sprintf("Last seen: %s (%s)\n", r.LastEmotion, r.LastSeen))
	}
	b.WriteString(fmt.Sprintf("Stability: %s%s%.2f%%%s\n",
		bold, colorForStability(r.Stability), r.Stability, reset))

	return b.String()
}

// FormatStability formats a StabilityReport.
func FormatStability(r *StabilityReport) string {
	var b strings.Builder

	m := r.Metrics
	b.WriteString(bold + "Emotional Stability" + reset + "\n")
	b.WriteString(strings.Repeat("-", 35) + "\n")
	b.WriteString(fmt.Sprintf("Window:          %d events\n", r.Window))
	b.WriteString(fmt.Sprintf("Stability:       %s%.2f%%%s\n", colorForStability(m.Stability), m.Stability, reset))
	b.WriteString(fmt.Sprintf("Average drift:   %.3f\n", m.AvgDrift))
	b.WriteString(fmt.Sprintf("Avg confidence:  %.2f%%\n", m.AvgConfidence))
	b.WriteString(fmt.Sprintf("Drift events:    %d\n", len(m.DriftEvents)))

	if len(m.DriftEvents) > 0 {
		b.WriteString("\n" + bold + "Drift Transitions" + reset + "\n")
		b.WriteString(strings.Repeat("-", 35) + "\n")
		for _, ev := range m.DriftEvents {
			b.WriteString(fmt.Sprintf("%-10s -> %-10s magnitude %d\n", ev.From, ev.To, ev.Magnitude))
		}
	}

	return b.String()
}

// FormatHistory renders events newest-first as a fixed-width table.
func FormatHistory(events []store.EmotionEvent) string {
	if len(events) == 0 {
		return "no events recorded\n"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-6s %-20s %-7s %-10s %6s  %s\n",
		"ID", "Timestamp", "Source", "Emotion", "Conf", "Action"))
	b.WriteString(strings.Repeat("-", 80) + "\n")
	for _, e := range events {
		b.WriteString(fmt.Sprintf("%-6d %-20s %-7s %-10s %5.1f%%  %s\n",
			e.ID,
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.SourceType,
			e.Emotion,
			e.Confidence,
			e.Action))
	}
	return b.String()
}

// FormatAlerts renders drift alerts newest-first.
func FormatAlerts(alerts []store.DriftAlert) string {
	if len(alerts) == 0 {
		return "no alerts recorded\n"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-6s %-20s %-24s %4s\n", "ID", "Timestamp", "Transition", "Mag"))
	b.WriteString(strings.Repeat("-", 60) + "\n")
	for _, a := range alerts {
		transition := fmt.Sprintf("%s -> %s", a.FromEmotion, a.ToEmotion)
		b.WriteString(fmt.Sprintf("%-6d %-20s %-24s %4d\n",
			a.ID,
			a.Timestamp.Format("2006-01-02 15:04:05"),
			transition,
			a.Magnitude))
	}
	return b.String()
}

// FormatJSON marshals any value as indented JSON for --json output.
func FormatJSON(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(data)
}

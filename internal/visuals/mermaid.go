package visuals

import (
	"fmt"
	"math"
	"strings"

	"milecast/internal/forecast"
)

// GenerateContributionChart creates a Mermaid xychart-beta bar chart showing
// the ranked delay contributions behind a forecast.
func GenerateContributionChart(result *forecast.Result) string {
	if result == nil || len(result.Contributions) == 0 {
		return ""
	}

	var labels []string
	var values []string
	maxVal := 0.0

	// Limit to 12 contributors to avoid overwhelming the text chart context
	limit := len(result.Contributions)
	if limit > 12 {
		limit = 12
	}

	for i := 0; i < limit; i++ {
		c := result.Contributions[i]
		labels = append(labels, fmt.Sprintf("\"%s\"", safeLabel(c.Cause)))
		values = append(values, fmt.Sprintf("%.1f", c.Days))
		if c.Days > maxVal {
			maxVal = c.Days
		}
	}
	if maxVal == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"Delay Contributions (%s)\"\n", result.MilestoneID))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Days\" 0 --> %d\n", int(math.Ceil(maxVal*1.2))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateForecastBands creates a Mermaid bar chart showing the target, P50
// and P80 completion offsets of a milestone in days from the target.
func GenerateForecastBands(result *forecast.Result) string {
	if result == nil {
		return ""
	}

	labels := []string{
		"\"Target\"",
		"\"P50 (Coin Toss)\"",
		"\"P80 (Likely)\"",
	}
	values := []string{
		"0",
		fmt.Sprintf("%d", result.DeltaP50Days),
		fmt.Sprintf("%d", result.DeltaP80Days),
	}

	maxVal := result.DeltaP80Days
	if result.DeltaP50Days > maxVal {
		maxVal = result.DeltaP50Days
	}
	if maxVal <= 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"Forecast Bands (%s)\"\n", result.MilestoneID))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Days Past Target\" 0 --> %d\n", int(math.Ceil(float64(maxVal)*1.2))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// safeLabel strips characters that break Mermaid's x-axis label parsing.
func safeLabel(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	s = strings.ReplaceAll(s, "[", "(")
	s = strings.ReplaceAll(s, "]", ")")
	if len(s) > 40 {
		s = s[:37] + "..."
	}
	return s
}

package legal

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"
)

const disclaimer = "This tool provides AI-assisted analysis for informational purposes only. Always consult qualified legal professionals."

// ResultStats summarizes a result for list views and reports.
type ResultStats struct {
	ClausesByRisk     map[RiskLevel]int `json:"clausesByRisk"`
	Compliant         int               `json:"compliant"`
	NonCompliant      int               `json:"nonCompliant"`
	HighSeverityRisks int               `json:"highSeverityRisks"`
	Entities          int               `json:"entities"`
}

// Stats counts clauses per risk level, compliance outcomes and high-severity risks.
func Stats(r AnalysisResult) ResultStats {
	stats := ResultStats{ClausesByRisk: make(map[RiskLevel]int, len(RiskLevels))}
	for _, level := range RiskLevels {
		stats.ClausesByRisk[level] = 0
	}
	for _, c := range r.Clauses {
		stats.ClausesByRisk[c.RiskLevel]++
	}
	for _, c := range r.Compliance {
		if c.Compliant {
			stats.Compliant++
		} else {
			stats.NonCompliant++
		}
	}
	for _, item := range r.RiskItems {
		if item.Severity == RiskHigh {
			stats.HighSeverityRisks++
		}
	}
	stats.Entities = len(r.Entities)
	return stats
}

// RenderText writes a human readable report of r.
func RenderText(w io.Writer, r AnalysisResult) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "ANALYSIS SUMMARY")
	fmt.Fprintln(bw, r.Summary)
	fmt.Fprintf(bw, "Processing time: %.2fs | %s RISK\n", r.ProcessingTime, strings.ToUpper(string(r.OverallRisk)))

	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "EXTRACTED CLAUSES (%d)\n", len(r.Clauses))
	for i, c := range r.Clauses {
		fmt.Fprintf(bw, "%d. %s [%s] %d%% confidence\n", i+1, c.ClauseType, c.RiskLevel, confidencePercent(c.Confidence))
		fmt.Fprintf(bw, "   %s\n", c.Content)
	}

	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "RISK ASSESSMENT (%d)\n", len(r.RiskItems))
	for i, item := range r.RiskItems {
		fmt.Fprintf(bw, "%d. [%s] %s\n", i+1, strings.ToUpper(string(item.Severity)), item.Issue)
		fmt.Fprintf(bw, "   Recommendation: %s\n", item.Recommendation)
	}

	stats := Stats(r)
	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "COMPLIANCE (%d of %d compliant)\n", stats.Compliant, len(r.Compliance))
	for _, c := range r.Compliance {
		mark := "[x]"
		if c.Compliant {
			mark = "[ok]"
		}
		fmt.Fprintf(bw, "%s %s - %s\n", mark, c.Law, c.Section)
		fmt.Fprintf(bw, "   %s\n", c.Notes)
	}

	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "KEY ENTITIES (%d)\n", len(r.Entities))
	for _, e := range r.Entities {
		fmt.Fprintf(bw, "- %s: %s (%s)\n", e.Type, e.Value, e.Context)
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, disclaimer)
	return bw.Flush()
}

func confidencePercent(v float64) int {
	return int(math.Round(v * 100))
}

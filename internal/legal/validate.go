package legal

import (
	"fmt"
	"math"
	"strings"
)

// FieldError describes a single invalid field.
type FieldError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// ValidationError collects every violated constraint of a result.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Issue)
	}
	return "invalid analysis result: " + strings.Join(parts, "; ")
}

// Validate checks the value constraints of a result. It does not judge content.
func (r AnalysisResult) Validate() error {
	var fields []FieldError
	add := func(field, issue string) {
		fields = append(fields, FieldError{Field: field, Issue: issue})
	}

	if !r.OverallRisk.Valid() {
		add("overall_risk", fmt.Sprintf("must be low, medium or high, got %q", r.OverallRisk))
	}
	if math.IsNaN(r.ProcessingTime) || math.IsInf(r.ProcessingTime, 0) || r.ProcessingTime < 0 {
		add("processing_time", "must be a non-negative number of seconds")
	}
	for i, c := range r.Clauses {
		if math.IsNaN(c.Confidence) || c.Confidence < 0 || c.Confidence > 1 {
			add(fmt.Sprintf("clauses[%d].confidence", i), "must be within [0,1]")
		}
		if !c.RiskLevel.Valid() {
			add(fmt.Sprintf("clauses[%d].risk_level", i), fmt.Sprintf("must be low, medium or high, got %q", c.RiskLevel))
		}
	}
	for i, item := range r.RiskItems {
		if !item.Severity.Valid() {
			add(fmt.Sprintf("risk_items[%d].severity", i), fmt.Sprintf("must be low, medium or high, got %q", item.Severity))
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

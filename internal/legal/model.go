package legal

// AnalysisResult is the outcome of analysing one document. Field names are a
// wire contract shared with existing consumers and must not change.
type AnalysisResult struct {
	Summary        string            `json:"summary"`
	OverallRisk    RiskLevel         `json:"overall_risk"`
	Clauses        []Clause          `json:"clauses"`
	RiskItems      []RiskItem        `json:"risk_items"`
	Compliance     []ComplianceCheck `json:"compliance"`
	Entities       []Entity          `json:"entities"`
	ProcessingTime float64           `json:"processing_time"`
}

// Clause is a span of contract text classified by type.
type Clause struct {
	ClauseType string    `json:"clause_type"`
	Content    string    `json:"content"`
	Confidence float64   `json:"confidence"`
	RiskLevel  RiskLevel `json:"risk_level"`
}

// RiskItem is a flagged concern with a suggested remediation.
type RiskItem struct {
	Issue          string    `json:"issue"`
	Severity       RiskLevel `json:"severity"`
	Recommendation string    `json:"recommendation"`
}

// ComplianceCheck asserts conformance with a statute section.
type ComplianceCheck struct {
	Law       string `json:"law"`
	Section   string `json:"section"`
	Compliant bool   `json:"compliant"`
	Notes     string `json:"notes"`
}

// Entity is a structured fact extracted from the document.
type Entity struct {
	Type    string `json:"type"`
	Value   string `json:"value"`
	Context string `json:"context"`
}

// Clone returns a deep copy of r.
func (r AnalysisResult) Clone() AnalysisResult {
	out := r
	out.Clauses = cloneSlice(r.Clauses)
	out.RiskItems = cloneSlice(r.RiskItems)
	out.Compliance = cloneSlice(r.Compliance)
	out.Entities = cloneSlice(r.Entities)
	return out
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

// Normalize replaces nil sequences with empty ones so they encode as [] rather than null.
func (r *AnalysisResult) Normalize() {
	if r.Clauses == nil {
		r.Clauses = []Clause{}
	}
	if r.RiskItems == nil {
		r.RiskItems = []RiskItem{}
	}
	if r.Compliance == nil {
		r.Compliance = []ComplianceCheck{}
	}
	if r.Entities == nil {
		r.Entities = []Entity{}
	}
}

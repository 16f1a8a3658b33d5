package demo

import "legal-backend/internal/legal"

// foundersAgreement is the canned result served in demo mode.
var foundersAgreement = legal.AnalysisResult{
	Summary:     "This Founder Agreement establishes equity split, vesting schedules, and IP assignment for a two-founder startup. Key terms include 50-50 equity split with 4-year vesting and 1-year cliff, comprehensive IP assignment to the company, and standard non-compete provisions.",
	OverallRisk: legal.RiskMedium,
	Clauses: []legal.Clause{
		{
			ClauseType: "Equity Distribution",
			Content:    "The Founders agree to an equal 50-50 equity split, with each Founder receiving 5,000,000 shares of common stock.",
			Confidence: 0.95,
			RiskLevel:  legal.RiskLow,
		},
		{
			ClauseType: "Vesting Schedule",
			Content:    "All equity shall vest over a 4-year period with a 1-year cliff. If a Founder leaves before the cliff, all shares are forfeited.",
			Confidence: 0.92,
			RiskLevel:  legal.RiskMedium,
		},
		{
			ClauseType: "IP Assignment",
			Content:    "All intellectual property created by the Founders in connection with the Company's business shall be automatically assigned to the Company.",
			Confidence: 0.88,
			RiskLevel:  legal.RiskLow,
		},
		{
			ClauseType: "Non-Compete",
			Content:    "Founders agree not to engage in competing business activities for 2 years following termination.",
			Confidence: 0.85,
			RiskLevel:  legal.RiskHigh,
		},
		{
			ClauseType: "Termination",
			Content:    "Either Founder may terminate this agreement with 90 days written notice. Unvested shares shall be forfeited upon termination.",
			Confidence: 0.79,
			RiskLevel:  legal.RiskMedium,
		},
		{
			ClauseType: "Confidentiality",
			Content:    "Founders shall maintain strict confidentiality of all Company proprietary information during and after their tenure.",
			Confidence: 0.91,
			RiskLevel:  legal.RiskLow,
		},
	},
	RiskItems: []legal.RiskItem{
		{
			Issue:          "Non-compete clause may violate Section 27 of Indian Contract Act (restraint of trade)",
			Severity:       legal.RiskHigh,
			Recommendation: "Limit non-compete to reasonable scope and duration (typically 6-12 months) or remove entirely for Indian jurisdiction",
		},
		{
			Issue:          "No acceleration clause for vesting in case of company sale or acquisition",
			Severity:       legal.RiskMedium,
			Recommendation: "Add single or double-trigger acceleration provisions to protect founders",
		},
		{
			Issue:          "90-day termination notice period is lengthy",
			Severity:       legal.RiskMedium,
			Recommendation: "Consider reducing to 30-60 days which is more standard",
		},
	},
	Compliance: []legal.ComplianceCheck{
		{
			Law:       "Indian Contract Act 1872",
			Section:   "Section 27 - Restraint of Trade",
			Compliant: false,
			Notes:     "Non-compete clause may be unenforceable in India. Section 27 voids agreements in restraint of trade.",
		},
		{
			Law:       "Indian Contract Act 1872",
			Section:   "Section 10 - Free Consent",
			Compliant: true,
			Notes:     "Agreement appears to be entered with free consent of both parties.",
		},
		{
			Law:       "Companies Act 2013",
			Section:   "Share Capital Requirements",
			Compliant: true,
			Notes:     "Equity split and vesting schedule comply with Companies Act provisions.",
		},
		{
			Law:       "Indian Stamp Act",
			Section:   "Stamp Duty",
			Compliant: true,
			Notes:     "Agreement should be stamped as per state-specific stamp duty requirements.",
		},
	},
	Entities: []legal.Entity{
		{Type: "Equity Percentage", Value: "50%", Context: "Each founder receives 50% equity"},
		{Type: "Share Count", Value: "5,000,000", Context: "shares per founder"},
		{Type: "Vesting Period", Value: "4 years", Context: "Standard vesting schedule"},
		{Type: "Cliff Period", Value: "1 year", Context: "Minimum commitment before vesting begins"},
		{Type: "Non-Compete Duration", Value: "2 years", Context: "Post-termination restriction period"},
		{Type: "Notice Period", Value: "90 days", Context: "Required notice for termination"},
		{Type: "Jurisdiction", Value: "India", Context: "Governing law and jurisdiction"},
	},
	ProcessingTime: 1.24,
}

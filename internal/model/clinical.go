package model

// ClinicalAssessment is the clinical validator's view of one referral.
// MissingDocumentation is computed even when the indication fails, so a
// single deferred or denied response can carry every applicable reason.
type ClinicalAssessment struct {
	IndicationAccepted   bool                `json:"indication_accepted"`
	MatchedRule          string              `json:"matched_rule,omitempty"`
	PreventiveOnly       bool                `json:"preventive_only"`
	MissingDocumentation []DocumentationItem `json:"missing_documentation,omitempty"`
	Emergency            bool                `json:"emergency"`
}

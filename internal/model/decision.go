package model

// Outcome is the terminal classification of an adjudicated referral.
type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeDenied   Outcome = "denied"
	OutcomeDeferred Outcome = "deferred"
	// OutcomeEmergencyRedirect routes the caller to emergency care. It
	// bypasses every other validator and never books a slot.
	OutcomeEmergencyRedirect Outcome = "emergency_redirect"
)

// ReasonCode is a machine-readable cause attached to a non-approved decision.
// The conversation layer turns these into follow-up questions; the engine
// never produces prose.
type ReasonCode string

const (
	ReasonEmergencyRedirect      ReasonCode = "emergency-redirect"
	ReasonMissingField           ReasonCode = "missing-field"
	ReasonProviderNotVerified    ReasonCode = "provider-not-verified"
	ReasonProviderLookupFailed   ReasonCode = "provider-verification-unavailable"
	ReasonInsuranceNotAccepted   ReasonCode = "insurance-not-accepted"
	ReasonIndicationNotAccepted  ReasonCode = "indication-not-accepted"
	ReasonPreventiveOnlyExcluded ReasonCode = "preventive-only-excluded"
	ReasonMissingDocumentation   ReasonCode = "missing-documentation"
	ReasonNoAvailability         ReasonCode = "no-availability"
)

// Reason pairs a code with an optional detail, e.g. the missing field or
// documentation item it refers to.
type Reason struct {
	Code   ReasonCode `json:"code"`
	Detail string     `json:"detail,omitempty"`
}

// Decision is the single, immutable result of adjudicating one referral.
// Appointment is non-nil iff Outcome is approved.
type Decision struct {
	Outcome     Outcome      `json:"outcome"`
	Reasons     []Reason     `json:"reasons,omitempty"`
	Appointment *Appointment `json:"appointment,omitempty"`
}

// HasReason reports whether the decision carries the given code.
func (d *Decision) HasReason(code ReasonCode) bool {
	for _, r := range d.Reasons {
		if r.Code == code {
			return true
		}
	}
	return false
}

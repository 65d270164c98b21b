package adjudication

import (
	"github.com/walterreed/referral-api/internal/model"
)

// ComposeInput carries every validator output the composer aggregates. Nil
// fields mean the step never ran because an earlier step was terminal.
type ComposeInput struct {
	Emergency           bool
	MissingFields       []string
	Provider            *model.ProviderVerificationResult
	InsuranceChecked    bool
	InsuranceAccepted   bool
	Clinical            *model.ClinicalAssessment
	Appointment         *model.Appointment
	SchedulingExhausted bool
}

// Compose reduces validator outputs to exactly one Decision. Pure function.
// Precedence, first applicable wins: emergency redirect, incomplete input,
// provider unverified or indeterminate, insurance not accepted, clinical
// rejection or incomplete documentation, scheduling exhausted, approved.
func Compose(in ComposeInput) *model.Decision {
	if in.Emergency {
		return &model.Decision{
			Outcome: model.OutcomeEmergencyRedirect,
			Reasons: []model.Reason{{Code: model.ReasonEmergencyRedirect}},
		}
	}

	if len(in.MissingFields) > 0 {
		d := &model.Decision{Outcome: model.OutcomeDeferred}
		for _, f := range in.MissingFields {
			d.Reasons = append(d.Reasons, model.Reason{Code: model.ReasonMissingField, Detail: f})
		}
		return d
	}

	if in.Provider != nil {
		if in.Provider.LookupFailed {
			return &model.Decision{
				Outcome: model.OutcomeDeferred,
				Reasons: []model.Reason{{Code: model.ReasonProviderLookupFailed}},
			}
		}
		if !in.Provider.Verified {
			return &model.Decision{
				Outcome: model.OutcomeDenied,
				Reasons: []model.Reason{{Code: model.ReasonProviderNotVerified}},
			}
		}
	}

	if in.InsuranceChecked && !in.InsuranceAccepted {
		return &model.Decision{
			Outcome: model.OutcomeDenied,
			Reasons: []model.Reason{{Code: model.ReasonInsuranceNotAccepted}},
		}
	}

	if in.Clinical != nil {
		if d := composeClinical(in.Clinical); d != nil {
			return d
		}
	}

	if in.SchedulingExhausted {
		return &model.Decision{
			Outcome: model.OutcomeDeferred,
			Reasons: []model.Reason{{Code: model.ReasonNoAvailability}},
		}
	}

	return &model.Decision{
		Outcome:     model.OutcomeApproved,
		Appointment: in.Appointment,
	}
}

// composeClinical returns nil when the assessment passes. A rejected
// indication denies; preventive-only exclusion and missing documentation
// defer. All applicable reasons are carried so the caller can ask one
// precise follow-up instead of discovering gaps one at a time.
func composeClinical(a *model.ClinicalAssessment) *model.Decision {
	var reasons []model.Reason

	switch {
	case a.PreventiveOnly:
		reasons = append(reasons, model.Reason{Code: model.ReasonPreventiveOnlyExcluded})
	case !a.IndicationAccepted:
		reasons = append(reasons, model.Reason{Code: model.ReasonIndicationNotAccepted})
	}
	for _, item := range a.MissingDocumentation {
		reasons = append(reasons, model.Reason{Code: model.ReasonMissingDocumentation, Detail: string(item)})
	}

	if len(reasons) == 0 {
		return nil
	}

	outcome := model.OutcomeDeferred
	if !a.PreventiveOnly && !a.IndicationAccepted {
		outcome = model.OutcomeDenied
	}
	return &model.Decision{Outcome: outcome, Reasons: reasons}
}

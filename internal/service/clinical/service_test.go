package clinical

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/walterreed/referral-api/internal/model"
	"github.com/walterreed/referral-api/internal/rules"
	"github.com/walterreed/referral-api/pkg/logger"
)

func newService() *Service {
	return NewService(rules.Defaults(), logger.NewLogger(nil))
}

func fullDocs() model.DocumentationFlags {
	return model.DocumentationFlags{
		ECG:                true,
		Labs:               true,
		MedicationList:     true,
		PrimaryCareSummary: true,
	}
}

func TestAssessIndicationByCode(t *testing.T) {
	svc := newService()

	a := svc.Assess(&model.ReferralRequest{
		DiagnosisCodes: []string{"I48.91"},
		Documentation:  fullDocs(),
	})

	assert.True(t, a.IndicationAccepted)
	assert.Equal(t, "arrhythmia", a.MatchedRule)
	assert.Empty(t, a.MissingDocumentation)
}

func TestAssessIndicationByKeyword(t *testing.T) {
	svc := newService()

	a := svc.Assess(&model.ReferralRequest{
		Indication:    "new systolic murmur heard at annual visit follow-up",
		Documentation: fullDocs(),
	})

	assert.True(t, a.IndicationAccepted)
	assert.Equal(t, "valvular-disease", a.MatchedRule)
}

func TestAssessFirstMatchingRuleWins(t *testing.T) {
	svc := newService()

	// Codes matching both ischemic-symptoms (R07) and syncope (R55): the
	// table order decides.
	a := svc.Assess(&model.ReferralRequest{
		DiagnosisCodes: []string{"R07.9", "R55"},
		Documentation:  fullDocs(),
	})

	assert.True(t, a.IndicationAccepted)
	assert.Equal(t, "ischemic-symptoms", a.MatchedRule)
}

func TestAssessNoMatch(t *testing.T) {
	svc := newService()

	a := svc.Assess(&model.ReferralRequest{
		Indication:    "chronic knee pain",
		Documentation: fullDocs(),
	})

	assert.False(t, a.IndicationAccepted)
	assert.Empty(t, a.MatchedRule)
	assert.False(t, a.PreventiveOnly)
}

func TestAssessPreventiveOnlyExcluded(t *testing.T) {
	svc := newService()

	a := svc.Assess(&model.ReferralRequest{
		Indication:    "annual checkup, no complaints",
		Documentation: fullDocs(),
	})

	assert.True(t, a.PreventiveOnly)
	assert.False(t, a.IndicationAccepted, "preventive exclusion runs before rule matching")
}

func TestAssessPreventiveCodeExcluded(t *testing.T) {
	svc := newService()

	a := svc.Assess(&model.ReferralRequest{
		Indication:     "yearly visit",
		DiagnosisCodes: []string{"Z00.00"},
		Documentation:  fullDocs(),
	})

	assert.True(t, a.PreventiveOnly)
}

func TestAssessPreventiveWithComplicationStaysInScope(t *testing.T) {
	svc := newService()

	a := svc.Assess(&model.ReferralRequest{
		Indication:     "annual checkup, found atrial fibrillation",
		DiagnosisCodes: []string{"Z00.00", "I48.0"},
		Documentation:  fullDocs(),
	})

	assert.False(t, a.PreventiveOnly)
	assert.True(t, a.IndicationAccepted)
	assert.Equal(t, "arrhythmia", a.MatchedRule)
}

func TestAssessMissingDocumentation(t *testing.T) {
	svc := newService()

	a := svc.Assess(&model.ReferralRequest{
		DiagnosisCodes: []string{"I50.9"},
		Documentation: model.DocumentationFlags{
			MedicationList:     true,
			PrimaryCareSummary: true,
		},
	})

	assert.True(t, a.IndicationAccepted)
	assert.Equal(t,
		[]model.DocumentationItem{model.DocECG, model.DocLabs},
		a.MissingDocumentation)
}

func TestAssessEchoReportRequiredOnlyWhenPerformed(t *testing.T) {
	svc := newService()

	withoutEcho := svc.Assess(&model.ReferralRequest{
		DiagnosisCodes: []string{"I50.9"},
		Documentation:  fullDocs(),
	})
	assert.Empty(t, withoutEcho.MissingDocumentation)

	flags := fullDocs()
	flags.EchoPerformed = true
	withEcho := svc.Assess(&model.ReferralRequest{
		DiagnosisCodes: []string{"I50.9"},
		Documentation:  flags,
	})
	assert.Equal(t,
		[]model.DocumentationItem{model.DocEchoReport},
		withEcho.MissingDocumentation)
}

func TestAssessDocumentationCheckedEvenWhenIndicationFails(t *testing.T) {
	svc := newService()

	a := svc.Assess(&model.ReferralRequest{
		Indication:    "chronic knee pain",
		Documentation: model.DocumentationFlags{},
	})

	assert.False(t, a.IndicationAccepted)
	assert.NotEmpty(t, a.MissingDocumentation)
}

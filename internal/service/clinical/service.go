// Package clinical matches the referral indication against the acceptance
// table and checks documentation completeness.
package clinical

import (
	"github.com/walterreed/referral-api/internal/model"
	"github.com/walterreed/referral-api/internal/rules"
	"github.com/walterreed/referral-api/pkg/logger"
)

type Service struct {
	rules *rules.Set
	log   *logger.Logger
}

func NewService(ruleSet *rules.Set, log *logger.Logger) *Service {
	return &Service{
		rules: ruleSet,
		log:   log.WithComponent("clinical"),
	}
}

// Assess evaluates indication acceptance and documentation completeness.
// Documentation is checked even when the indication fails, so one deferred
// or denied response can carry every applicable reason. Preventive-care-only
// requests are excluded before rule matching runs.
func (s *Service) Assess(req *model.ReferralRequest) *model.ClinicalAssessment {
	assessment := &model.ClinicalAssessment{
		MissingDocumentation: s.missingDocumentation(req.Documentation),
	}

	if s.isPreventiveOnly(req) {
		assessment.PreventiveOnly = true
		return assessment
	}

	if id, label := s.matchIndication(req); id != "" {
		assessment.IndicationAccepted = true
		assessment.MatchedRule = id
		s.log.Debug("indication accepted", "rule", id, "label", label)
	}

	return assessment
}

// isPreventiveOnly reports whether the request is preventive care with no
// complication: a preventive term or code is present and nothing in the
// request matches an acceptance pattern.
func (s *Service) isPreventiveOnly(req *model.ReferralRequest) bool {
	preventive := false
	for _, term := range s.rules.PreventiveTerms {
		if rules.ContainsTerm(req.Indication, term) {
			preventive = true
			break
		}
	}
	if !preventive {
		for _, code := range req.DiagnosisCodes {
			for _, pattern := range s.rules.PreventiveCodes {
				if rules.MatchCode(code, pattern) {
					preventive = true
					break
				}
			}
		}
	}
	if !preventive {
		return false
	}

	// A complication alongside the preventive visit keeps the referral in
	// scope for rule matching.
	for _, code := range req.DiagnosisCodes {
		for _, rule := range s.rules.Acceptance {
			for _, pattern := range rule.CodePatterns {
				if rules.MatchCode(code, pattern) {
					return false
				}
			}
		}
	}
	return true
}

// matchIndication walks the ordered acceptance table; first match wins.
func (s *Service) matchIndication(req *model.ReferralRequest) (id, label string) {
	for _, rule := range s.rules.Acceptance {
		for _, pattern := range rule.CodePatterns {
			for _, code := range req.DiagnosisCodes {
				if rules.MatchCode(code, pattern) {
					return rule.ID, rule.Label
				}
			}
		}
		for _, keyword := range rule.Keywords {
			if rules.ContainsTerm(req.Indication, keyword) {
				return rule.ID, rule.Label
			}
		}
	}
	return "", ""
}

// missingDocumentation is the set difference between the required set and
// the supplied flags. The echo report is required only when an echo was
// performed.
func (s *Service) missingDocumentation(flags model.DocumentationFlags) []model.DocumentationItem {
	var missing []model.DocumentationItem
	for _, item := range s.rules.RequiredDocs {
		if item == model.DocEchoReport && !flags.EchoPerformed {
			continue
		}
		if !flags.Has(item) {
			missing = append(missing, item)
		}
	}
	return missing
}

// Package triage screens referrals for emergent presentations before any
// other validation runs.
package triage

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
		log:   log.WithComponent("triage"),
	}
}

// IsAcute reports whether the referral describes an emergent presentation.
// Matching is deliberately conservative: any emergency term in the
// indication text or any emergency code flags the request. A false positive
// costs one clarifying turn; a false negative risks the patient.
func (s *Service) IsAcute(req *model.ReferralRequest) bool {
	for _, term := range s.rules.EmergencyTerms {
		if rules.ContainsTerm(req.Indication, term) {
			s.log.Info("emergency term matched", "term", term)
			return true
		}
	}

	for _, code := range req.DiagnosisCodes {
		for _, pattern := range s.rules.EmergencyCodes {
			if rules.MatchCode(code, pattern) {
				s.log.Info("emergency code matched", "code", code)
				return true
			}
		}
	}

	return false
}

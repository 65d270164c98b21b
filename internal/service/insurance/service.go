// Package insurance checks patient coverage against the payer allow-list.
package insurance

import (
	"strings"

	"github.com/walterreed/referral-api/internal/rules"
)

type Service struct {
	rules *rules.Set
}

func NewService(ruleSet *rules.Set) *Service {
	return &Service{rules: ruleSet}
}

// Accepts reports whether the named payer is on the allow-list, matching
// case-insensitively against payer names and their aliases. Pure function,
// no failure mode beyond "not found".
func (s *Service) Accepts(payer string) bool {
	_, ok := s.Match(payer)
	return ok
}

// Match resolves a stated payer name to its canonical allow-list entry.
func (s *Service) Match(payer string) (string, bool) {
	normalized := normalize(payer)
	if normalized == "" {
		return "", false
	}

	for _, p := range s.rules.Payers {
		if normalize(p.Name) == normalized {
			return p.Name, true
		}
		for _, alias := range p.Aliases {
			if normalize(alias) == normalized {
				return p.Name, true
			}
		}
	}
	return "", false
}

func normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

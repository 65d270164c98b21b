// Package rules holds the swappable policy data the adjudication engine
// runs against: the payer allow-list, the ordered indication acceptance
// table, the emergency term list and the required documentation set. Policy
// changes ship as data, not code.
package rules

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/walterreed/referral-api/internal/model"
)

// Payer is one accepted insurance payer with its spoken aliases.
type Payer struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases,omitempty"`
}

// AcceptanceRule matches a referral indication. Rules are evaluated in
// order; the first match wins and its ID is recorded on the assessment.
type AcceptanceRule struct {
	ID           string   `yaml:"id"`
	Label        string   `yaml:"label"`
	CodePatterns []string `yaml:"code_patterns,omitempty"`
	Keywords     []string `yaml:"keywords,omitempty"`
}

// Set is the complete loaded rule set.
type Set struct {
	Payers          []Payer                   `yaml:"payers"`
	Acceptance      []AcceptanceRule          `yaml:"acceptance"`
	EmergencyTerms  []string                  `yaml:"emergency_terms"`
	EmergencyCodes  []string                  `yaml:"emergency_codes"`
	PreventiveTerms []string                  `yaml:"preventive_terms"`
	PreventiveCodes []string                  `yaml:"preventive_codes"`
	RequiredDocs    []model.DocumentationItem `yaml:"required_docs"`
}

// Load reads a rule set from a YAML file. An empty path returns the embedded
// defaults.
func Load(path string) (*Set, error) {
	if path == "" {
		return Defaults(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var set Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules file %s: %w", path, err)
	}

	return &set, nil
}

// Validate rejects rule sets that would silently approve or deny everything.
func (s *Set) Validate() error {
	if len(s.Payers) == 0 {
		return fmt.Errorf("payer allow-list is empty")
	}
	if len(s.Acceptance) == 0 {
		return fmt.Errorf("acceptance table is empty")
	}
	seen := make(map[string]bool, len(s.Acceptance))
	for _, r := range s.Acceptance {
		if r.ID == "" {
			return fmt.Errorf("acceptance rule without id")
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate acceptance rule id %q", r.ID)
		}
		seen[r.ID] = true
		if len(r.CodePatterns) == 0 && len(r.Keywords) == 0 {
			return fmt.Errorf("acceptance rule %q has no patterns", r.ID)
		}
	}
	if len(s.EmergencyTerms) == 0 && len(s.EmergencyCodes) == 0 {
		return fmt.Errorf("emergency term list is empty")
	}
	if len(s.RequiredDocs) == 0 {
		return fmt.Errorf("required documentation set is empty")
	}
	return nil
}

// MatchCode reports whether an ICD-10 style code matches a pattern. Patterns
// are prefixes: "I50" matches "I50.9".
func MatchCode(code, pattern string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	pattern = strings.ToUpper(strings.TrimSpace(pattern))
	if code == "" || pattern == "" {
		return false
	}
	return strings.HasPrefix(code, pattern)
}

// ContainsTerm reports whether text contains the term, case-insensitively.
func ContainsTerm(text, term string) bool {
	if term == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(term))
}

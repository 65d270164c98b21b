// Package provider verifies the referring clinician against the national
// registry.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/walterreed/referral-api/internal/model"
	"github.com/walterreed/referral-api/internal/registry"
	"github.com/walterreed/referral-api/pkg/logger"
)

type Service struct {
	lookup registry.Lookup
	log    *logger.Logger
}

func NewService(lookup registry.Lookup, log *logger.Logger) *Service {
	return &Service{
		lookup: lookup,
		log:    log.WithComponent("provider"),
	}
}

// Verify resolves the referring clinician against the registry. Verified is
// true only for an active matching record. A supplied NPI must match exactly
// and takes precedence over name matching. Registry unavailability yields
// LookupFailed=true (indeterminate, fail-closed), never an error; only a
// broken registry contract returns an error.
func (s *Service) Verify(ctx context.Context, p model.Provider) (*model.ProviderVerificationResult, error) {
	records, err := s.lookup.Search(ctx, registry.Query{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		City:      p.City,
		State:     p.State,
	})
	if err != nil {
		if errors.Is(err, registry.ErrMalformedResponse) {
			return nil, fmt.Errorf("registry contract violation: %w", err)
		}
		s.log.Warn("registry lookup failed", "provider", p.LastName, "error", err.Error())
		return &model.ProviderVerificationResult{LookupFailed: true}, nil
	}

	match := s.selectMatch(p, records)
	if match == nil {
		return &model.ProviderVerificationResult{}, nil
	}

	return &model.ProviderVerificationResult{
		Verified: match.Active,
		Record:   match,
	}, nil
}

// selectMatch picks the registry record for the stated provider. With an NPI
// the identifier decides; otherwise the first active name match wins, then
// any name match (an inactive record still informs the denial reason).
func (s *Service) selectMatch(p model.Provider, records []model.RegistryRecord) *model.RegistryRecord {
	if npi := strings.TrimSpace(p.NPI); npi != "" {
		for i := range records {
			if records[i].NPI == npi {
				return &records[i]
			}
		}
		return nil
	}

	var inactive *model.RegistryRecord
	for i := range records {
		if !namesMatch(p, records[i]) {
			continue
		}
		if records[i].Active {
			return &records[i]
		}
		if inactive == nil {
			inactive = &records[i]
		}
	}
	return inactive
}

// namesMatch compares stated and registry names case-insensitively,
// tolerating middle names, credentials and generational suffixes.
func namesMatch(p model.Provider, rec model.RegistryRecord) bool {
	first := normalizeName(p.FirstName)
	last := stripSuffix(normalizeName(p.LastName))
	recFirst := normalizeName(rec.FirstName)
	recLast := stripSuffix(normalizeName(rec.LastName))

	if first == "" || last == "" || recFirst == "" || recLast == "" {
		return false
	}
	if last != recLast {
		return false
	}
	if first == recFirst {
		return true
	}
	// Tolerate an initial on either side.
	if len(first) == 1 || len(recFirst) == 1 {
		return first[0] == recFirst[0]
	}
	return false
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.Trim(name, ".,")))
}

var suffixes = []string{" jr", " sr", " ii", " iii", " iv", " md", " do"}

func stripSuffix(name string) string {
	for _, suffix := range suffixes {
		name = strings.TrimSuffix(name, suffix)
	}
	return strings.TrimSpace(name)
}

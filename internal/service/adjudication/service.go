// Package adjudication sequences the validators and composes their outputs
// into one Decision per referral. It is the only entry point the
// conversation layer calls.
package adjudication

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/walterreed/referral-api/internal/model"
	"github.com/walterreed/referral-api/internal/service/scheduler"
	"github.com/walterreed/referral-api/pkg/logger"
	"github.com/walterreed/referral-api/pkg/metrics"
)

// Validator capabilities the orchestrator sequences. Satisfied by the
// concrete services; faked in tests.
type TriageService interface {
	IsAcute(req *model.ReferralRequest) bool
}

type ProviderService interface {
	Verify(ctx context.Context, p model.Provider) (*model.ProviderVerificationResult, error)
}

type InsuranceService interface {
	Accepts(payer string) bool
}

type ClinicalService interface {
	Assess(req *model.ReferralRequest) *model.ClinicalAssessment
}

type SchedulerService interface {
	ReserveNextSlot(ctx context.Context, after time.Time, patientMRN string) (*model.Appointment, error)
}

type Service struct {
	triage    TriageService
	provider  ProviderService
	insurance InsuranceService
	clinical  ClinicalService
	scheduler SchedulerService
	log       *logger.Logger
	metrics   *metrics.Metrics

	// now is swapped in tests for a fixed clock.
	now func() time.Time
}

func NewService(
	triage TriageService,
	provider ProviderService,
	insurance InsuranceService,
	clinical ClinicalService,
	sched SchedulerService,
	log *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		triage:    triage,
		provider:  provider,
		insurance: insurance,
		clinical:  clinical,
		scheduler: sched,
		log:       log.WithComponent("adjudication"),
		metrics:   m,
		now:       time.Now,
	}
}

// Adjudicate runs the full pipeline for one referral and yields exactly one
// Decision. Validators run leaves-first and short-circuit on the first
// terminal failure; only a broken integration contract returns an error
// instead of a Decision.
func (s *Service) Adjudicate(ctx context.Context, req *model.ReferralRequest) (*model.Decision, error) {
	started := s.now()

	decision, err := s.adjudicate(ctx, req)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.DecisionsTotal.WithLabelValues(string(decision.Outcome)).Inc()
		s.metrics.AdjudicationLatency.Observe(time.Since(started).Seconds())
	}
	s.log.Info("referral adjudicated",
		"outcome", string(decision.Outcome),
		"reasons", len(decision.Reasons),
	)
	return decision, nil
}

func (s *Service) adjudicate(ctx context.Context, req *model.ReferralRequest) (*model.Decision, error) {
	// Emergency triage runs before everything, including completeness: an
	// acute presentation redirects no matter what else is missing.
	if s.triage.IsAcute(req) {
		return Compose(ComposeInput{Emergency: true}), nil
	}

	if missing := req.MissingFields(); len(missing) > 0 {
		return Compose(ComposeInput{MissingFields: missing}), nil
	}

	verification, err := s.provider.Verify(ctx, req.Provider)
	if err != nil {
		return nil, fmt.Errorf("provider verification: %w", err)
	}
	if verification.LookupFailed || !verification.Verified {
		return Compose(ComposeInput{Provider: verification}), nil
	}

	if !s.insurance.Accepts(req.Payer) {
		return Compose(ComposeInput{
			Provider:         verification,
			InsuranceChecked: true,
		}), nil
	}

	assessment := s.clinical.Assess(req)
	if assessment.PreventiveOnly || !assessment.IndicationAccepted || len(assessment.MissingDocumentation) > 0 {
		return Compose(ComposeInput{
			Provider:          verification,
			InsuranceChecked:  true,
			InsuranceAccepted: true,
			Clinical:          assessment,
		}), nil
	}

	appt, err := s.scheduler.ReserveNextSlot(ctx, s.now(), req.Patient.MRN)
	if err != nil {
		if errors.Is(err, scheduler.ErrNoSlotAvailable) {
			return Compose(ComposeInput{
				Provider:            verification,
				InsuranceChecked:    true,
				InsuranceAccepted:   true,
				Clinical:            assessment,
				SchedulingExhausted: true,
			}), nil
		}
		return nil, fmt.Errorf("slot reservation: %w", err)
	}

	return Compose(ComposeInput{
		Provider:          verification,
		InsuranceChecked:  true,
		InsuranceAccepted: true,
		Clinical:          assessment,
		Appointment:       appt,
	}), nil
}

package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walterreed/referral-api/internal/model"
	"github.com/walterreed/referral-api/internal/registry"
	"github.com/walterreed/referral-api/pkg/logger"
)

// fakeLookup is a deterministic registry for tests.
type fakeLookup struct {
	records []model.RegistryRecord
	err     error
	calls   int
}

func (f *fakeLookup) Search(ctx context.Context, q registry.Query) ([]model.RegistryRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func activeReed() model.RegistryRecord {
	return model.RegistryRecord{
		NPI:       "1234567890",
		FirstName: "WALTER",
		LastName:  "REED",
		Active:    true,
	}
}

func newService(lookup registry.Lookup) *Service {
	return NewService(lookup, logger.NewLogger(nil))
}

func TestVerifyActiveNameMatch(t *testing.T) {
	svc := newService(&fakeLookup{records: []model.RegistryRecord{activeReed()}})

	res, err := svc.Verify(context.Background(), model.Provider{FirstName: "walter", LastName: "reed"})
	require.NoError(t, err)
	assert.True(t, res.Verified)
	assert.False(t, res.LookupFailed)
	require.NotNil(t, res.Record)
	assert.Equal(t, "1234567890", res.Record.NPI)
}

func TestVerifyInactiveRecordIsNotVerified(t *testing.T) {
	rec := activeReed()
	rec.Active = false
	svc := newService(&fakeLookup{records: []model.RegistryRecord{rec}})

	res, err := svc.Verify(context.Background(), model.Provider{FirstName: "Walter", LastName: "Reed"})
	require.NoError(t, err)
	assert.False(t, res.Verified)
	assert.False(t, res.LookupFailed)
	assert.NotNil(t, res.Record, "inactive match still reported")
}

func TestVerifyNoMatch(t *testing.T) {
	svc := newService(&fakeLookup{records: []model.RegistryRecord{activeReed()}})

	res, err := svc.Verify(context.Background(), model.Provider{FirstName: "John", LastName: "Smith"})
	require.NoError(t, err)
	assert.False(t, res.Verified)
	assert.False(t, res.LookupFailed)
	assert.Nil(t, res.Record)
}

func TestVerifyNPIMatchTakesPrecedence(t *testing.T) {
	other := model.RegistryRecord{NPI: "9999999999", FirstName: "WALTER", LastName: "REED", Active: true}
	svc := newService(&fakeLookup{records: []model.RegistryRecord{other, activeReed()}})

	res, err := svc.Verify(context.Background(), model.Provider{
		FirstName: "Walter",
		LastName:  "Reed",
		NPI:       "1234567890",
	})
	require.NoError(t, err)
	assert.True(t, res.Verified)
	assert.Equal(t, "1234567890", res.Record.NPI)
}

func TestVerifySuppliedNPIMustMatchExactly(t *testing.T) {
	svc := newService(&fakeLookup{records: []model.RegistryRecord{activeReed()}})

	res, err := svc.Verify(context.Background(), model.Provider{
		FirstName: "Walter",
		LastName:  "Reed",
		NPI:       "1111111111",
	})
	require.NoError(t, err)
	assert.False(t, res.Verified, "name match does not rescue a wrong NPI")
	assert.Nil(t, res.Record)
}

func TestVerifyToleratesMiddleNameAndSuffix(t *testing.T) {
	rec := model.RegistryRecord{
		NPI:        "1234567890",
		FirstName:  "WALTER",
		MiddleName: "EVERETT",
		LastName:   "REED III",
		Active:     true,
	}
	svc := newService(&fakeLookup{records: []model.RegistryRecord{rec}})

	res, err := svc.Verify(context.Background(), model.Provider{FirstName: "Walter", LastName: "Reed"})
	require.NoError(t, err)
	assert.True(t, res.Verified)
}

func TestVerifyToleratesFirstNameInitial(t *testing.T) {
	svc := newService(&fakeLookup{records: []model.RegistryRecord{activeReed()}})

	res, err := svc.Verify(context.Background(), model.Provider{FirstName: "W", LastName: "Reed"})
	require.NoError(t, err)
	assert.True(t, res.Verified)
}

func TestVerifyPrefersActiveRecordOverInactive(t *testing.T) {
	inactive := activeReed()
	inactive.Active = false
	inactive.NPI = "2222222222"
	svc := newService(&fakeLookup{records: []model.RegistryRecord{inactive, activeReed()}})

	res, err := svc.Verify(context.Background(), model.Provider{FirstName: "Walter", LastName: "Reed"})
	require.NoError(t, err)
	assert.True(t, res.Verified)
	assert.Equal(t, "1234567890", res.Record.NPI)
}

func TestVerifyLookupUnavailableIsIndeterminate(t *testing.T) {
	svc := newService(&fakeLookup{err: registry.ErrUnavailable})

	res, err := svc.Verify(context.Background(), model.Provider{FirstName: "Walter", LastName: "Reed"})
	require.NoError(t, err, "unavailability is a deferred outcome, not an engine failure")
	assert.False(t, res.Verified)
	assert.True(t, res.LookupFailed)
}

func TestVerifyMalformedResponseEscalates(t *testing.T) {
	svc := newService(&fakeLookup{err: registry.ErrMalformedResponse})

	_, err := svc.Verify(context.Background(), model.Provider{FirstName: "Walter", LastName: "Reed"})
	require.ErrorIs(t, err, registry.ErrMalformedResponse)
}

package insurance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/walterreed/referral-api/internal/rules"
)

func TestAccepts(t *testing.T) {
	svc := NewService(rules.Defaults())

	tests := []struct {
		payer string
		want  bool
	}{
		{"Aetna", true},
		{"aetna", true},
		{"  AETNA  ", true},
		{"Blue Cross Blue Shield", true},
		{"BCBS", true},
		{"blue  cross", true},
		{"UnitedHealthcare", true},
		{"United Healthcare", true},
		{"UHC", true},
		{"Medicare", true},
		{"Medicaid", false},
		{"Kaiser Permanente", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.payer, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.Accepts(tt.payer))
		})
	}
}

func TestMatchReturnsCanonicalName(t *testing.T) {
	svc := NewService(rules.Defaults())

	name, ok := svc.Match("bcbs")
	assert.True(t, ok)
	assert.Equal(t, "Blue Cross Blue Shield", name)

	_, ok = svc.Match("medicaid")
	assert.False(t, ok)
}

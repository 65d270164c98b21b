package triage

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

func TestIsAcute(t *testing.T) {
	tests := []struct {
		name       string
		indication string
		codes      []string
		want       bool
	}{
		{
			name:       "acute chest pain with diaphoresis and hypotension",
			indication: "acute chest pain with diaphoresis and hypotension",
			want:       true,
		},
		{
			name:       "hemodynamic instability",
			indication: "active chest pain, hemodynamic instability",
			want:       true,
		},
		{
			name:       "acute decompensated heart failure",
			indication: "acute decompensated heart failure",
			want:       true,
		},
		{
			name:       "term match is case insensitive",
			indication: "CRUSHING CHEST PAIN radiating to left arm",
			want:       true,
		},
		{
			name:  "acute MI code",
			codes: []string{"I21.3"},
			want:  true,
		},
		{
			name:  "cardiogenic shock code",
			codes: []string{"R57.0"},
			want:  true,
		},
		{
			name:       "stable angina is not acute",
			indication: "stable angina on exertion, resolved with rest",
			codes:      []string{"I20.9"},
			want:       false,
		},
		{
			name:       "routine referral is not acute",
			indication: "palpitations for two weeks",
			codes:      []string{"R00.2"},
			want:       false,
		},
		{
			name: "empty request is not acute",
			want: false,
		},
	}

	svc := newService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &model.ReferralRequest{Indication: tt.indication, DiagnosisCodes: tt.codes}
			assert.Equal(t, tt.want, svc.IsAcute(req))
		})
	}
}

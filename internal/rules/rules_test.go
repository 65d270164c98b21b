package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	set := Defaults()
	require.NoError(t, set.Validate())

	assert.NotEmpty(t, set.Payers)
	assert.NotEmpty(t, set.Acceptance)
	assert.NotEmpty(t, set.EmergencyTerms)
	assert.NotEmpty(t, set.RequiredDocs)

	for _, p := range set.Payers {
		assert.NotEqual(t, "medicaid", p.Name, "Medicaid is not on the allow-list")
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	set, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), set)
}

func TestLoadFromFile(t *testing.T) {
	content := `
payers:
  - name: Aetna
acceptance:
  - id: test-rule
    label: Test rule
    code_patterns: ["I50"]
emergency_terms:
  - cardiac arrest
required_docs:
  - ecg
`
	path := filepath.Join(t.TempDir(), "rules.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	set, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, set.Payers, 1)
	assert.Equal(t, "test-rule", set.Acceptance[0].ID)
}

func TestLoadRejectsInvalidSet(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "empty payers",
			content: "acceptance:\n  - id: r\n    label: l\n    keywords: [x]\nemergency_terms: [a]\nrequired_docs: [ecg]\n",
		},
		{
			name:    "rule without patterns",
			content: "payers:\n  - name: Aetna\nacceptance:\n  - id: r\n    label: l\nemergency_terms: [a]\nrequired_docs: [ecg]\n",
		},
		{
			name:    "duplicate rule ids",
			content: "payers:\n  - name: Aetna\nacceptance:\n  - id: r\n    label: l\n    keywords: [x]\n  - id: r\n    label: l2\n    keywords: [y]\nemergency_terms: [a]\nrequired_docs: [ecg]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "rules.yml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestMatchCode(t *testing.T) {
	assert.True(t, MatchCode("I50.9", "I50"))
	assert.True(t, MatchCode(" i48 ", "I48"))
	assert.False(t, MatchCode("I5", "I50"))
	assert.False(t, MatchCode("", "I50"))
	assert.False(t, MatchCode("I50.9", ""))
}

func TestContainsTerm(t *testing.T) {
	assert.True(t, ContainsTerm("Acute Chest Pain with Diaphoresis", "diaphoresis"))
	assert.False(t, ContainsTerm("stable angina", "diaphoresis"))
	assert.False(t, ContainsTerm("anything", ""))
}

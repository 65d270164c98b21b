package model

import (
	"strings"
	"time"
)

// DocumentationItem identifies one piece of supporting documentation a
// referral can carry.
type DocumentationItem string

const (
	DocECG                DocumentationItem = "ecg"
	DocEchoReport         DocumentationItem = "echo_report"
	DocLabs               DocumentationItem = "labs"
	DocMedicationList     DocumentationItem = "medication_list"
	DocPrimaryCareSummary DocumentationItem = "primary_care_summary"
)

// DocumentationFlags records which documents accompany the referral. The
// conversation layer sets these from what the caller states; the engine never
// inspects document contents.
type DocumentationFlags struct {
	ECG                bool `json:"ecg"`
	EchoReport         bool `json:"echo_report"`
	EchoPerformed      bool `json:"echo_performed"`
	Labs               bool `json:"labs"`
	MedicationList     bool `json:"medication_list"`
	PrimaryCareSummary bool `json:"primary_care_summary"`
}

// Has reports whether the named item was supplied.
func (f DocumentationFlags) Has(item DocumentationItem) bool {
	switch item {
	case DocECG:
		return f.ECG
	case DocEchoReport:
		return f.EchoReport
	case DocLabs:
		return f.Labs
	case DocMedicationList:
		return f.MedicationList
	case DocPrimaryCareSummary:
		return f.PrimaryCareSummary
	}
	return false
}

// Patient identifies the referred patient.
type Patient struct {
	FullName    string `json:"full_name" binding:"omitempty,max=200"`
	DateOfBirth string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	MRN         string `json:"mrn" binding:"omitempty,max=64"`
}

// Provider identifies the referring clinician as stated by the caller.
type Provider struct {
	FirstName string `json:"first_name" binding:"omitempty,max=100"`
	LastName  string `json:"last_name" binding:"omitempty,max=100"`
	NPI       string `json:"npi,omitempty" binding:"omitempty,len=10,numeric"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
}

// ReferralRequest is one structured referral extracted by the conversation
// layer. It is immutable once submitted; corrected data arrives as a new
// request, never as a mutation.
type ReferralRequest struct {
	Patient        Patient            `json:"patient"`
	Provider       Provider           `json:"provider"`
	Payer          string             `json:"payer"`
	Indication     string             `json:"indication"`
	DiagnosisCodes []string           `json:"diagnosis_codes,omitempty" binding:"omitempty,dive,icd10"`
	Documentation  DocumentationFlags `json:"documentation"`
	Notes          string             `json:"notes,omitempty"`
	SubmittedAt    time.Time          `json:"submitted_at,omitempty"`
}

// MissingFields returns the required fields the request does not carry.
// Partial requests are legal input; the engine defers on them instead of
// rejecting the call.
func (r *ReferralRequest) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(r.Patient.FullName) == "" {
		missing = append(missing, "patient.full_name")
	}
	if strings.TrimSpace(r.Patient.DateOfBirth) == "" {
		missing = append(missing, "patient.date_of_birth")
	}
	if strings.TrimSpace(r.Patient.MRN) == "" {
		missing = append(missing, "patient.mrn")
	}
	if strings.TrimSpace(r.Provider.FirstName) == "" {
		missing = append(missing, "provider.first_name")
	}
	if strings.TrimSpace(r.Provider.LastName) == "" {
		missing = append(missing, "provider.last_name")
	}
	if strings.TrimSpace(r.Payer) == "" {
		missing = append(missing, "payer")
	}
	if strings.TrimSpace(r.Indication) == "" && len(r.DiagnosisCodes) == 0 {
		missing = append(missing, "indication")
	}
	return missing
}

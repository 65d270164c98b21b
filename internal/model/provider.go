package model

// RegistryRecord is one provider record returned by the national registry.
type RegistryRecord struct {
	NPI        string `json:"npi"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name,omitempty"`
	LastName   string `json:"last_name"`
	Credential string `json:"credential,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	Active     bool   `json:"active"`
}

// ProviderVerificationResult is the outcome of one registry verification.
// LookupFailed distinguishes "registry unreachable" (indeterminate, defer)
// from "no matching record" (a legitimate denial).
type ProviderVerificationResult struct {
	Verified     bool            `json:"verified"`
	Record       *RegistryRecord `json:"record,omitempty"`
	LookupFailed bool            `json:"lookup_failed"`
}

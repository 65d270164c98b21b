package rules

import "github.com/walterreed/referral-api/internal/model"

// Defaults returns the built-in cardiology rule set used when no rules file
// is configured. Kept deliberately conservative on the emergency side: a
// false positive costs one clarifying turn, a false negative risks the
// patient.
func Defaults() *Set {
	return &Set{
		Payers: []Payer{
			{Name: "Aetna", Aliases: []string{"Aetna Health"}},
			{Name: "Blue Cross Blue Shield", Aliases: []string{"BCBS", "Blue Cross", "Anthem"}},
			{Name: "Cigna", Aliases: []string{"Cigna Healthcare"}},
			{Name: "UnitedHealthcare", Aliases: []string{"United Healthcare", "United Health", "UHC"}},
			{Name: "Medicare", Aliases: []string{"Medicare Part B"}},
		},
		Acceptance: []AcceptanceRule{
			{
				ID:           "ischemic-symptoms",
				Label:        "Suspected ischemic heart disease",
				CodePatterns: []string{"I20", "I24", "I25", "R07"},
				Keywords:     []string{"angina", "exertional chest pain", "chest pain on exertion", "chest tightness"},
			},
			{
				ID:           "arrhythmia",
				Label:        "Arrhythmia or palpitations",
				CodePatterns: []string{"I47", "I48", "I49", "R00"},
				Keywords:     []string{"palpitations", "atrial fibrillation", "afib", "arrhythmia", "irregular heartbeat"},
			},
			{
				ID:           "heart-failure",
				Label:        "Heart failure or cardiomyopathy",
				CodePatterns: []string{"I50", "I42"},
				Keywords:     []string{"heart failure", "cardiomyopathy", "reduced ejection fraction", "dyspnea on exertion"},
			},
			{
				ID:           "valvular-disease",
				Label:        "Valvular heart disease or murmur",
				CodePatterns: []string{"I34", "I35", "I36", "I37", "I38", "I39"},
				Keywords:     []string{"murmur", "valve", "stenosis", "regurgitation"},
			},
			{
				ID:           "syncope",
				Label:        "Syncope of suspected cardiac origin",
				CodePatterns: []string{"R55"},
				Keywords:     []string{"syncope", "fainting", "passed out"},
			},
			{
				ID:           "complicated-hypertension",
				Label:        "Hypertensive heart disease",
				CodePatterns: []string{"I11", "I12", "I13"},
				Keywords:     []string{"resistant hypertension", "hypertensive heart"},
			},
			{
				ID:           "abnormal-cardiac-testing",
				Label:        "Abnormal cardiac test result",
				CodePatterns: []string{"R94.3"},
				Keywords:     []string{"abnormal ecg", "abnormal ekg", "abnormal stress test", "abnormal echocardiogram"},
			},
		},
		EmergencyTerms: []string{
			"hemodynamic instability",
			"hemodynamically unstable",
			"hypotension",
			"diaphoresis",
			"crushing chest pain",
			"chest pain at rest",
			"acute decompensated",
			"cardiac arrest",
			"stemi",
			"unresponsive",
			"cyanosis",
			"acute shortness of breath",
		},
		EmergencyCodes: []string{"I21", "I22", "I46", "R57"},
		PreventiveTerms: []string{
			"annual checkup",
			"annual check-up",
			"annual physical",
			"routine physical",
			"routine checkup",
			"wellness visit",
			"screening",
			"no complaints",
		},
		PreventiveCodes: []string{"Z00", "Z01", "Z13"},
		RequiredDocs: []model.DocumentationItem{
			model.DocECG,
			model.DocEchoReport,
			model.DocLabs,
			model.DocMedicationList,
			model.DocPrimaryCareSummary,
		},
	}
}

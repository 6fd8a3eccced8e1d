package schema

import "fmt"

// Preset is a named, ready-made field list for a common abstraction task.
type Preset struct {
	Key    string
	Name   string
	Fields []Field
}

// Loading a preset replaces the whole field list and activates custom mode.
var presets = []Preset{
	{
		Key:  "er_injury_surveillance",
		Name: "ER Injury Surveillance",
		Fields: []Field{
			{ID: "1", Key: "visit_date", Type: TypeString, Description: "Date of the hospital visit (YYYY-MM-DD)"},
			{ID: "2", Key: "visit_time", Type: TypeString, Description: "Time of arrival/visit"},
			{ID: "3", Key: "patient_age", Type: TypeString, Description: "Age of the patient"},
			{ID: "4", Key: "patient_gender", Type: TypeString, Description: "Gender of the patient"},
			{ID: "5", Key: "incident_location", Type: TypeString, Description: "Where the injury/incident occurred"},
			{ID: "6", Key: "injury_mechanism", Type: TypeString, Description: "How the injury happened (e.g. Fall, MVA)"},
			{ID: "7", Key: "intent", Type: TypeString, Description: "Intent of injury (Unintentional, Self-harm, Assault)"},
			{ID: "8", Key: "diagnoses", Type: TypeArray, Description: "List of clinical diagnoses found in the text"},
			{ID: "9", Key: "disposition", Type: TypeString, Description: "Discharge status"},
			{ID: "10", Key: "brief_summary", Type: TypeString, Description: "Concise 2-sentence summary of the clinical narrative"},
		},
	},
	{
		Key:  "medication_reconciliation",
		Name: "Meds Recon",
		Fields: []Field{
			{ID: "1", Key: "medications_list", Type: TypeArray, Description: "List of all current medications including dosage"},
			{ID: "2", Key: "allergies", Type: TypeArray, Description: "List of patient allergies"},
			{ID: "3", Key: "pharmacy_info", Type: TypeString, Description: "Patient preferred pharmacy details"},
			{ID: "4", Key: "compliance_issues", Type: TypeString, Description: "Any notes regarding medication non-compliance"},
			{ID: "5", Key: "changes_made", Type: TypeArray, Description: "List of medications changed or added during this visit"},
		},
	},
	{
		Key:  "billing_coding",
		Name: "Billing Support",
		Fields: []Field{
			{ID: "1", Key: "primary_diagnosis", Type: TypeString, Description: "Primary diagnosis for billing"},
			{ID: "2", Key: "cpt_codes", Type: TypeArray, Description: "Potential CPT codes supported by the documentation"},
			{ID: "3", Key: "mdm_level", Type: TypeString, Description: "Medical Decision Making level (Straightforward, Low, Moderate, High)"},
			{ID: "4", Key: "procedures_performed", Type: TypeArray, Description: "List of procedures performed during visit"},
			{ID: "5", Key: "critical_care_time", Type: TypeString, Description: "Total critical care time documented, if any"},
		},
	},
	{
		Key:  "discharge_summary",
		Name: "Discharge Summary",
		Fields: []Field{
			{ID: "1", Key: "admission_diagnosis", Type: TypeString, Description: "Diagnosis at time of admission"},
			{ID: "2", Key: "discharge_diagnosis", Type: TypeString, Description: "Final diagnosis at time of discharge"},
			{ID: "3", Key: "hospital_course", Type: TypeString, Description: "Brief narrative of the hospital stay"},
			{ID: "4", Key: "discharge_medications", Type: TypeArray, Description: "List of medications prescribed at discharge"},
			{ID: "5", Key: "follow_up_instructions", Type: TypeString, Description: "Instructions for follow-up appointments and care"},
		},
	},
}

// Presets returns all available field presets in display order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// LoadPreset returns a custom Config built from the named preset.
func LoadPreset(key string) (Config, error) {
	for _, p := range presets {
		if p.Key == key {
			fields := make([]Field, len(p.Fields))
			copy(fields, p.Fields)
			return Config{
				ID:       p.Key,
				Name:     p.Name,
				IsCustom: true,
				Fields:   fields,
			}, nil
		}
	}
	return Config{}, fmt.Errorf("unknown preset %q", key)
}

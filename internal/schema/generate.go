package schema

// MissingInformationKey is the reserved output property listing the keys the
// model could not confidently populate from the source text.
const MissingInformationKey = "missingInformation"

const (
	defaultMissingDescription = "List of the exact JSON property keys (e.g. 'patientAge', 'visitTime', 'intent') that were missing or could not be confidently extracted from the text."
	customMissingDescription  = "List of the exact JSON property keys that were missing or could not be confidently extracted."
)

// Generate builds an object schema from an ordered list of fields. It is a
// pure function: no I/O, and byte-identical output for identical input.
//
// Type mapping is total: array and boolean get their own schemas, everything
// else (string, date, unrecognized values) falls through to string. The
// missingInformation property is always appended after the user fields, and
// every property is required.
func Generate(fields []Field) *Object {
	obj := &Object{}
	for _, f := range fields {
		obj.Add(f.Key, propertyFor(f))
	}
	obj.Add(MissingInformationKey, Property{
		Type:        "array",
		ArrayItems:  "string",
		Description: customMissingDescription,
	})
	return obj
}

func propertyFor(f Field) Property {
	switch f.Type {
	case TypeArray:
		return Property{Type: "array", ArrayItems: "string", Description: f.Description}
	case TypeBoolean:
		return Property{Type: "boolean", Description: f.Description}
	default:
		// string, date, and anything unrecognized.
		return Property{Type: "string", Description: f.Description}
	}
}

// DefaultKeys is the property order of the built-in Injury Surveillance
// schema, excluding missingInformation.
var DefaultKeys = []string{
	"visitDate",
	"visitTime",
	"patientAge",
	"patientGender",
	"incidentLocation",
	"injuryMechanism",
	"intent",
	"diagnoses",
	"disposition",
	"briefSummary",
}

// DefaultSchema returns the hardcoded Injury Surveillance schema used when no
// custom fields are configured.
func DefaultSchema() *Object {
	obj := &Object{}
	obj.Add("visitDate", Property{Type: "string", Description: "Date of the hospital visit (YYYY-MM-DD) or 'Not Specified'"})
	obj.Add("visitTime", Property{Type: "string", Description: "Time of arrival/visit or 'Not Specified'"})
	obj.Add("patientAge", Property{Type: "string", Description: "Age of the patient or 'Not Specified'"})
	obj.Add("patientGender", Property{Type: "string", Description: "Gender of the patient or 'Not Specified'"})
	obj.Add("incidentLocation", Property{Type: "string", Description: "Where the injury/incident occurred (e.g. Home, Highway)"})
	obj.Add("injuryMechanism", Property{Type: "string", Description: "How the injury happened (e.g. Fall, MVA, Poisoning)"})
	obj.Add("intent", Property{Type: "string", Description: "Intent of injury (e.g. Unintentional, Self-harm, Assault, Undetermined)"})
	obj.Add("diagnoses", Property{Type: "array", ArrayItems: "string", Description: "List of confirmed clinical diagnoses for THIS ENCOUNTER only. Exclude past medical history."})
	obj.Add("disposition", Property{Type: "string", Description: "Discharge status (e.g. Discharged to home, Admitted, Transferred)"})
	obj.Add("briefSummary", Property{Type: "string", Description: "A concise 2-sentence summary of the clinical narrative for research coding purposes."})
	obj.Add(MissingInformationKey, Property{
		Type:        "array",
		ArrayItems:  "string",
		Description: defaultMissingDescription,
	})
	return obj
}

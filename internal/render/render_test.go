package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/zkjiang/autoabstract/internal/record"
	"github.com/zkjiang/autoabstract/internal/schema"
)

func mustDecode(t *testing.T, raw string) *record.Record {
	t.Helper()
	rec, err := record.Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return rec
}

func TestText_InjuryLayout(t *testing.T) {
	rec := mustDecode(t, `{
		"visitDate": "2024-01-01",
		"visitTime": "Not Specified",
		"patientAge": "12",
		"patientGender": "Male",
		"incidentLocation": "Street",
		"injuryMechanism": "Fall from bicycle",
		"intent": "Unintentional",
		"disposition": "Discharged",
		"diagnoses": ["Concussion"],
		"briefSummary": "Pediatric bicycle fall with LOC.",
		"missingInformation": ["intent"]
	}`)

	var buf bytes.Buffer
	if err := Text(&buf, rec, schema.DefaultConfig()); err != nil {
		t.Fatalf("Text() error = %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "Structured Output") {
		t.Error("missing default title")
	}
	if !strings.Contains(out, "could not be confidently extracted: intent") {
		t.Error("missing-information banner absent")
	}
	if !strings.Contains(out, "- Concussion") {
		t.Error("diagnosis line item absent")
	}
	if !strings.Contains(out, "Intent:      Unintentional [missing]") {
		t.Errorf("intent should carry the only missing marker, got:\n%s", out)
	}
	if strings.Count(out, "[missing]") != 1 {
		t.Errorf("expected exactly one missing marker, got:\n%s", out)
	}
}

func TestText_InjuryLayoutEmptyDiagnoses(t *testing.T) {
	rec := mustDecode(t, `{"diagnoses": [], "missingInformation": []}`)

	var buf bytes.Buffer
	if err := Text(&buf, rec, schema.DefaultConfig()); err != nil {
		t.Fatalf("Text() error = %v", err)
	}
	if !strings.Contains(buf.String(), "No specific diagnoses extracted.") {
		t.Error("empty diagnoses placeholder absent")
	}
	if strings.Contains(buf.String(), "MISSING INFORMATION") {
		t.Error("banner shown for empty missingInformation")
	}
}

func TestText_GenericLayout(t *testing.T) {
	cfg := schema.DefaultConfig().WithField(schema.Field{
		ID: "1", Key: "allergies", Description: "d", Type: schema.TypeArray,
	})
	rec := mustDecode(t, `{"allergies": ["Penicillin", "Latex"], "missingInformation": []}`)

	var buf bytes.Buffer
	if err := Text(&buf, rec, cfg); err != nil {
		t.Fatalf("Text() error = %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "Custom Abstraction") {
		t.Error("missing custom title")
	}
	if strings.Contains(out, "MISSING INFORMATION") {
		t.Error("banner shown despite empty missingInformation")
	}
	if !strings.Contains(out, "Allergies") {
		t.Error("complex block label absent")
	}
	if !strings.Contains(out, "- Penicillin") || !strings.Contains(out, "- Latex") {
		t.Errorf("list items absent:\n%s", out)
	}
}

func TestText_GenericScalars(t *testing.T) {
	cfg := schema.DefaultConfig().WithField(schema.Field{
		ID: "1", Key: "follow_up_required", Description: "d", Type: schema.TypeBoolean,
	})
	rec := mustDecode(t, `{
		"follow_up_required": true,
		"smoker": false,
		"referral": null,
		"meds": [],
		"missingInformation": []
	}`)

	var buf bytes.Buffer
	if err := Text(&buf, rec, cfg); err != nil {
		t.Fatalf("Text() error = %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "Follow Up Required: Yes") {
		t.Errorf("boolean true should render Yes:\n%s", out)
	}
	if !strings.Contains(out, "Smoker: No") {
		t.Error("boolean false should render No")
	}
	if !strings.Contains(out, "Referral: N/A") {
		t.Error("null scalar should render N/A")
	}
	if !strings.Contains(out, "None") {
		t.Error("empty list should render None")
	}
}

func TestExportJSON(t *testing.T) {
	rec := mustDecode(t, `{"b": 1, "a": 2}`)
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	data, name, err := ExportJSON(rec, now)
	if err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}
	if name != "abstraction-2024-03-15T10:30:00Z.json" {
		t.Errorf("filename = %q", name)
	}
	want := "{\n  \"b\": 1,\n  \"a\": 2\n}"
	if string(data) != want {
		t.Errorf("payload = %q, want %q", data, want)
	}
}

func TestExportCSV(t *testing.T) {
	rec := mustDecode(t, `{
		"visitDate": "2024-01-01",
		"quote": "He said \"hi\"",
		"diagnoses": ["Concussion", "Facial abrasion"],
		"nested": {"a": 1},
		"empty": null,
		"missingInformation": ["intent"]
	}`)
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	data, name, err := ExportCSV(rec, now)
	if err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}
	if name != "clinical_data_2024-03-15.csv" {
		t.Errorf("filename = %q", name)
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected exactly 2 rows, got %d", len(lines))
	}
	wantHeader := `"visitDate","quote","diagnoses","nested","empty","missingInformation"`
	if lines[0] != wantHeader {
		t.Errorf("header = %s", lines[0])
	}
	wantRow := `"2024-01-01","He said ""hi""","Concussion; Facial abrasion","{""a"":1}","","intent"`
	if lines[1] != wantRow {
		t.Errorf("row = %s\nwant   %s", lines[1], wantRow)
	}
}

func TestExportXLSX(t *testing.T) {
	rec := mustDecode(t, `{"visitDate": "2024-01-01", "diagnoses": ["Concussion"], "missingInformation": []}`)
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	data, name, err := ExportXLSX(rec, now)
	if err != nil {
		t.Fatalf("ExportXLSX() error = %v", err)
	}
	if name != "clinical_data_2024-03-15.xlsx" {
		t.Errorf("filename = %q", name)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("workbook does not parse: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Clinical Data")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "visitDate" || rows[1][0] != "2024-01-01" {
		t.Errorf("first column = %v / %v", rows[0][0], rows[1][0])
	}
	if rows[1][1] != "Concussion" {
		t.Errorf("diagnoses cell = %q", rows[1][1])
	}
}

func TestLabel(t *testing.T) {
	cases := map[string]string{
		"blood_pressure": "Blood Pressure",
		"visitDate":      "VisitDate",
		"meds":           "Meds",
	}
	for in, want := range cases {
		if got := label(in); got != want {
			t.Errorf("label(%q) = %q, want %q", in, got, want)
		}
	}
}

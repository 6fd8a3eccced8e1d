// Package notes ships example clinical notes that exercise the extraction
// pipeline without requiring real patient data. The samples come from
// mtsamples.com and are fully de-identified.
package notes

import (
	_ "embed"
	"fmt"
	"strings"
)

//go:embed samples/er_report.txt
var erReport string

//go:embed samples/discharge_summary.txt
var dischargeSummary string

// Preset is a named sample note.
type Preset struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Presets returns the sample notes in display order.
func Presets() []Preset {
	return []Preset{
		{Key: "er_report", Name: "ER Report", Content: strings.TrimRight(erReport, "\n")},
		{Key: "discharge_summary", Name: "Discharge Summary", Content: strings.TrimRight(dischargeSummary, "\n")},
	}
}

// LoadPreset returns the sample note for key.
func LoadPreset(key string) (Preset, error) {
	for _, p := range Presets() {
		if p.Key == key {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("unknown note preset: %s", key)
}

package notes

import (
	"strings"
	"testing"
)

func TestPresets(t *testing.T) {
	presets := Presets()
	if len(presets) != 2 {
		t.Fatalf("expected 2 presets, got %d", len(presets))
	}
	if presets[0].Name != "ER Report" || presets[1].Name != "Discharge Summary" {
		t.Errorf("unexpected preset names: %q, %q", presets[0].Name, presets[1].Name)
	}
	for _, p := range presets {
		if strings.TrimSpace(p.Content) == "" {
			t.Errorf("preset %s has empty content", p.Key)
		}
		if strings.HasSuffix(p.Content, "\n") {
			t.Errorf("preset %s content has trailing newline", p.Key)
		}
	}
}

func TestLoadPreset(t *testing.T) {
	p, err := LoadPreset("er_report")
	if err != nil {
		t.Fatalf("LoadPreset() error = %v", err)
	}
	if !strings.Contains(p.Content, "fell off his bicycle") {
		t.Error("ER report content does not match the sample")
	}

	if _, err := LoadPreset("nope"); err == nil {
		t.Fatal("expected error for unknown preset")
	}
}

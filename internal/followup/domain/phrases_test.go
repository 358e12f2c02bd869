package domain

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPhrasesNonEmpty(t *testing.T) {
	p := DefaultPhrases()
	if len(p.Disengagement) == 0 || len(p.ExplicitNo) == 0 || len(p.Guilt) == 0 ||
		len(p.Urgency) == 0 || len(p.Acceptable) == 0 || len(p.Bad) == 0 {
		t.Fatalf("default phrase lists must all be populated: %+v", p)
	}
}

func TestLoadPhrasesEmptyPathReturnsDefaults(t *testing.T) {
	p, err := LoadPhrases("")
	if err != nil {
		t.Fatalf("LoadPhrases: %v", err)
	}
	if len(p.Guilt) != len(DefaultPhrases().Guilt) {
		t.Errorf("empty path should return the defaults unchanged")
	}
}

func TestLoadPhrasesMergesPerList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "phrases.yaml")
	content := []byte("guilt:\n  - \"only you can save this deal\"\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	p, err := LoadPhrases(path)
	if err != nil {
		t.Fatalf("LoadPhrases: %v", err)
	}
	if len(p.Guilt) != 1 || p.Guilt[0] != "only you can save this deal" {
		t.Errorf("Guilt = %v, want the file's single entry", p.Guilt)
	}
	// Lists absent from the file keep their defaults.
	if len(p.Disengagement) != len(DefaultPhrases().Disengagement) {
		t.Errorf("Disengagement should fall back to defaults, got %v", p.Disengagement)
	}
	if len(p.Acceptable) == 0 || len(p.Bad) == 0 {
		t.Errorf("tone lists should fall back to defaults")
	}
}

func TestLoadPhrasesMissingFile(t *testing.T) {
	if _, err := LoadPhrases(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}

func TestContainsAnyPhraseCaseInsensitive(t *testing.T) {
	phrases := []string{"Not Interested", "stop"}

	tests := []struct {
		text string
		want bool
	}{
		{"I'm NOT INTERESTED anymore", true},
		{"please STOP", true},
		{"sounds great, send it over", false},
		{"", false},
	}

	for _, tc := range tests {
		if got := containsAnyPhrase(tc.text, phrases); got != tc.want {
			t.Errorf("containsAnyPhrase(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestContainsAnyPhraseSkipsEmptyEntries(t *testing.T) {
	if containsAnyPhrase("anything at all", []string{""}) {
		t.Errorf("an empty phrase must never match")
	}
}

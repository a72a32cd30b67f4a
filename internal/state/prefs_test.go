package state

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPrefsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	p, err := OpenPrefs(path)
	if err != nil {
		t.Fatalf("OpenPrefs() error = %v", err)
	}
	if err := p.HideBudgetType("household"); err != nil {
		t.Fatalf("HideBudgetType() error = %v", err)
	}
	if err := p.HideBudgetType("vacation"); err != nil {
		t.Fatalf("HideBudgetType() error = %v", err)
	}

	reloaded, err := OpenPrefs(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	if !reloaded.IsBudgetTypeHidden("household") || !reloaded.IsBudgetTypeHidden("vacation") {
		t.Errorf("hidden keys lost on reload: %v", reloaded.HiddenBudgetTypes())
	}
	if reloaded.IsBudgetTypeHidden("travel") {
		t.Error("travel hidden without being set")
	}

	if err := reloaded.UnhideBudgetType("vacation"); err != nil {
		t.Fatalf("UnhideBudgetType() error = %v", err)
	}
	final, err := OpenPrefs(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	got := final.HiddenBudgetTypes()
	if len(got) != 1 || got[0] != "household" {
		t.Errorf("HiddenBudgetTypes() = %v, want [household]", got)
	}
}

func TestPrefsMissingFileStartsEmpty(t *testing.T) {
	p, err := OpenPrefs(filepath.Join(t.TempDir(), "nope", "prefs.json"))
	if err != nil {
		t.Fatalf("OpenPrefs() error = %v", err)
	}
	if len(p.HiddenBudgetTypes()) != 0 {
		t.Errorf("new prefs not empty: %v", p.HiddenBudgetTypes())
	}
}

func TestPrefsCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	if err := os.WriteFile(path, []byte("not json at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := OpenPrefs(path)
	if err != nil {
		t.Fatalf("OpenPrefs() error = %v", err)
	}
	if len(p.HiddenBudgetTypes()) != 0 {
		t.Errorf("corrupt prefs not reset: %v", p.HiddenBudgetTypes())
	}
}

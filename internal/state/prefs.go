package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Prefs is the small local preference store. It holds per-user settings
// the server does not track, currently the hidden budget type keys, in a
// single JSON file.
type Prefs struct {
	path string

	mu     sync.Mutex
	hidden map[string]bool
}

type prefsFile struct {
	HiddenBudgetTypes []string `json:"hidden_budget_types"`
}

// OpenPrefs loads (or initializes) the preference file at path.
func OpenPrefs(path string) (*Prefs, error) {
	p := &Prefs{path: path, hidden: make(map[string]bool)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read prefs: %w", err)
	}
	var f prefsFile
	if err := json.Unmarshal(data, &f); err != nil {
		// A corrupt file is not worth failing startup over.
		return p, nil
	}
	for _, key := range f.HiddenBudgetTypes {
		p.hidden[key] = true
	}
	return p, nil
}

// IsBudgetTypeHidden reports whether the user hid the given tag key.
func (p *Prefs) IsBudgetTypeHidden(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hidden[key]
}

// HideBudgetType hides a tag key and persists the change.
func (p *Prefs) HideBudgetType(key string) error {
	p.mu.Lock()
	p.hidden[key] = true
	p.mu.Unlock()
	return p.save()
}

// UnhideBudgetType un-hides a tag key and persists the change.
func (p *Prefs) UnhideBudgetType(key string) error {
	p.mu.Lock()
	delete(p.hidden, key)
	p.mu.Unlock()
	return p.save()
}

// HiddenBudgetTypes returns the hidden keys in sorted order.
func (p *Prefs) HiddenBudgetTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.hidden))
	for k := range p.hidden {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p *Prefs) save() error {
	f := prefsFile{HiddenBudgetTypes: p.HiddenBudgetTypes()}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	if err := os.WriteFile(p.path, data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

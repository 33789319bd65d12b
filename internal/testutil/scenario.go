// Package testutil provides shared test helpers for scorex tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Scenario is one conformance case loaded from a scenarios JSON file.
type Scenario struct {
	Name     string             `json:"name"`
	Expr     string             `json:"expr"`
	Bindings map[string]float64 `json:"bindings,omitempty"`
	Want     *float64           `json:"want,omitempty"`
	WantNaN  bool               `json:"wantNaN,omitempty"`
	WantErr  string             `json:"wantErr,omitempty"`
}

// LoadScenarios loads a JSON array of scenarios from path.
func LoadScenarios(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var scenarios []Scenario
	if err := json.Unmarshal(data, &scenarios); err != nil {
		return nil, err
	}
	return scenarios, nil
}

// ListScenarioFiles returns the scenario files under root in sorted order.
func ListScenarioFiles(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			files = append(files, filepath.Join(root, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

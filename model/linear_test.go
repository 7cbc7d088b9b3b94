package model

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rushteam/eventrec/feature"
)

func TestLinearModel_Explain(t *testing.T) {
	m := NewLinearModel(feature.Weights{"distance": 0.3, "interest": 0.3, "bonus": 1})

	score, breakdown := m.Explain(map[string]float64{
		"host":     0.8,
		"interest": 0.5,
		"distance": 1,
		"bonus":    0.1234,
	})
	if score != 0.5734 {
		t.Errorf("score = %v, want 0.5734", score)
	}

	want := []Contribution{
		{Feature: "distance", Value: 1, Weight: 0.3, Contribution: 0.3},
		{Feature: "interest", Value: 0.5, Weight: 0.3, Contribution: 0.15},
		{Feature: "host", Value: 0.8, Weight: 0, Contribution: 0},
		{Feature: "bonus", Value: 0.1234, Weight: 1, Contribution: 0.1234},
	}
	if !reflect.DeepEqual(breakdown, want) {
		t.Errorf("breakdown = %+v, want %+v", breakdown, want)
	}
}

func TestLinearModel_Predict(t *testing.T) {
	tests := []struct {
		name     string
		weights  feature.Weights
		features map[string]float64
		want     float64
	}{
		{"empty features", feature.Weights{"distance": 1}, nil, 0},
		{"no weights", nil, map[string]float64{"distance": 1}, 0},
		{"request defaults", feature.RequestDefaultWeights(), map[string]float64{
			"distance": 1, "interest": 1, "time": 1, "host": 1,
			"trust": 1, "popularity": 1, "collab": 1, "engagement": 1,
		}, 1.15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewLinearModel(tt.weights).Predict(tt.features)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Predict() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadLinearModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learned_weights.json")
	if err := os.WriteFile(path, []byte(`{"popularity":0.4,"engagement":0.4,"collab":0.2}`), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := LoadLinearModel(path)
	if err != nil {
		t.Fatalf("LoadLinearModel() error = %v", err)
	}
	if m.Weights["collab"] != 0.2 || m.Name() != "linear" {
		t.Errorf("LoadLinearModel() = %+v", m)
	}
	if _, err := LoadLinearModel(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("LoadLinearModel(missing) expected error")
	}
}

// internal/scenario/scenario.go
//
// Scenario loading: the search areas, drift matrix, and turn budget a game
// is played with.
//
// Initialization behavior (Init):
//   1. If SCENARIO_FILE is set, parse that YAML file.
//   2. Otherwise fall back to the embedded Cape Python scenario.
//
// Environment variables:
//   SCENARIO_FILE=/path/to/scenario.yaml
//
// Constraints:
//   • Exactly three regions with positive grids and ranges inside [0,1].
//   • Three drift rows of three non-negative numbers, each with a positive sum
//     (rows are normalized on load).
//   • Initialization is run once (sync.Once).

package scenario

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/robalobadob/searchrescue/assets"
	"github.com/robalobadob/searchrescue/internal/game"
	"github.com/robalobadob/searchrescue/internal/rescue"
)

// Region is the YAML shape of one search area.
type Region struct {
	Width            int     `yaml:"width" json:"width"`
	Height           int     `yaml:"height" json:"height"`
	MinEffectiveness float64 `yaml:"min_effectiveness" json:"minEffectiveness"`
	MaxEffectiveness float64 `yaml:"max_effectiveness" json:"maxEffectiveness"`
}

// Scenario is the YAML document.
type Scenario struct {
	Name    string      `yaml:"name" json:"name"`
	Turns   int         `yaml:"turns" json:"turns"`
	Regions []Region    `yaml:"regions" json:"regions"`
	Drift   [][]float64 `yaml:"drift" json:"drift"`
}

var (
	initOnce sync.Once
	current  *Scenario
	currentC game.Config
	initErr  error
)

// Init loads the process-wide scenario exactly once.
func Init() error {
	initOnce.Do(func() {
		var (
			sc  *Scenario
			err error
		)
		if path := os.Getenv("SCENARIO_FILE"); path != "" {
			sc, err = Load(path)
		} else {
			sc, err = Default()
		}
		if err != nil {
			initErr = err
			return
		}
		cfg, err := sc.Config()
		if err != nil {
			initErr = err
			return
		}
		current, currentC = sc, cfg
	})
	return initErr
}

// Current returns the scenario loaded by Init and its validated config.
// It panics if Init has not succeeded.
func Current() (*Scenario, game.Config) {
	if current == nil {
		panic("scenario: Current called before a successful Init")
	}
	return current, currentC
}

// Default parses the embedded default scenario.
func Default() (*Scenario, error) {
	data, err := assets.Scenario(assets.DefaultScenarioName)
	if err != nil {
		return nil, fmt.Errorf("read embedded scenario: %w", err)
	}
	return Parse(data)
}

// Load parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML, rejecting unknown keys.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	return &sc, nil
}

// Config converts the document into a validated game.Config.
// Shape and value problems come back as *rescue.ConfigurationError.
func (s *Scenario) Config() (game.Config, error) {
	var cfg game.Config
	if len(s.Regions) != rescue.NumRegions {
		return cfg, &rescue.ConfigurationError{Field: "regions", Reason: fmt.Sprintf("need %d, got %d", rescue.NumRegions, len(s.Regions))}
	}
	if len(s.Drift) != rescue.NumRegions {
		return cfg, &rescue.ConfigurationError{Field: "drift", Reason: fmt.Sprintf("need %d rows, got %d", rescue.NumRegions, len(s.Drift))}
	}
	for i, r := range s.Regions {
		cfg.Regions[i] = rescue.Region{
			Width:            r.Width,
			Height:           r.Height,
			MinEffectiveness: r.MinEffectiveness,
			MaxEffectiveness: r.MaxEffectiveness,
		}
	}
	var rows [rescue.NumRegions][rescue.NumRegions]float64
	for i, row := range s.Drift {
		if len(row) != rescue.NumRegions {
			return cfg, &rescue.ConfigurationError{Field: fmt.Sprintf("drift[%d]", i), Reason: fmt.Sprintf("need %d entries, got %d", rescue.NumRegions, len(row))}
		}
		copy(rows[i][:], row)
	}
	cfg.Drift = rows
	cfg.Turns = s.Turns
	cfg.Name = s.Name
	if cfg.Name == "" {
		cfg.Name = "unnamed"
	}
	return cfg.Validate()
}

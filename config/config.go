// Package config loads the tuning file that parameterises the agents and the
// reference host. Defaults are embedded; a user file overlays them.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/nstehr/tidewatch/tidewatch-core/channel"
	"github.com/nstehr/tidewatch/tidewatch-core/intel"
	"github.com/nstehr/tidewatch/tidewatch-core/nav"
	"github.com/nstehr/tidewatch/tidewatch-core/rules"
	"github.com/nstehr/tidewatch/tidewatch-core/sim"
)

//go:embed tuning.yaml
var defaultTuning []byte

//go:embed tuning.schema.json
var tuningSchema string

// Tuning is every knob of a match.
type Tuning struct {
	Costs      intel.Costs    `yaml:"costs"`
	Navigation nav.Config     `yaml:"navigation"`
	Channel    channel.Layout `yaml:"channel"`
	Doctrine   rules.Doctrine `yaml:"doctrine"`
	Sim        sim.Params     `yaml:"sim"`
}

// Default returns the embedded tuning.
func Default() (Tuning, error) {
	return Parse(nil)
}

// Load reads a tuning file and overlays it on the defaults. An empty path
// yields the defaults.
func Load(path string) (Tuning, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, err
	}
	return Parse(raw)
}

// Parse overlays raw YAML on the defaults, validates the result and clamps
// the doctrine. A unit entry under sim.units replaces that unit entirely.
func Parse(raw []byte) (Tuning, error) {
	var t Tuning
	if err := yaml.Unmarshal(defaultTuning, &t); err != nil {
		return t, fmt.Errorf("embedded tuning: %w", err)
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := validate(raw); err != nil {
			return t, fmt.Errorf("tuning.yaml: %w", err)
		}
		if err := yaml.Unmarshal(raw, &t); err != nil {
			return t, fmt.Errorf("tuning.yaml: %w", err)
		}
	}

	if err := t.Channel.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: channel: %w", err)
	}
	if err := t.Sim.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: sim: %w", err)
	}
	if zones := 2 * t.Sim.Map.ZonesPerSide; zones > t.Channel.Zones.Len() {
		return t, fmt.Errorf("tuning.yaml: %d zones do not fit %d zone slots", zones, t.Channel.Zones.Len())
	}
	t.Doctrine.Validate()
	return t, nil
}

// validate checks a YAML document against the embedded schema. The document
// is re-encoded as JSON first since the schema validator works on decoded
// JSON values.
func validate(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("re-encode: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(js))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("re-decode: %w", err)
	}

	schema, err := jsonschema.CompileString("tuning.schema.json", tuningSchema)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	return schema.Validate(v)
}

// Package seed births voices from YAML persona definitions.
package seed

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"voiceloom/internal/voice"
)

// Definition is one persona entry in the voices YAML file. The free-text
// fields pass through to prompt assembly untouched.
type Definition struct {
	Name          string   `yaml:"name"`
	Arcana        string   `yaml:"arcana"`
	Personality   string   `yaml:"personality"`
	SpeakingStyle string   `yaml:"speaking_style"`
	Chattiness    int      `yaml:"chattiness"`
	Themes        []string `yaml:"themes"`
	Resolution    *struct {
		Type      string `yaml:"type"`
		Condition string `yaml:"condition"`
	} `yaml:"resolution"`
}

// Load reads persona definitions from a YAML file.
func Load(path string) ([]Definition, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read voices file: %w", err)
	}
	var defs []Definition
	if err := yaml.Unmarshal(b, &defs); err != nil {
		return nil, fmt.Errorf("parse voices file: %w", err)
	}
	return defs, nil
}

// Birth creates a voice from a definition: curious by default, influence
// from the birth heuristic, active until the lifecycle says otherwise.
func Birth(def Definition) (*voice.Voice, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("voice definition missing name")
	}

	v := &voice.Voice{
		ID:            uuid.NewString(),
		Name:          def.Name,
		Arcana:        def.Arcana,
		Personality:   def.Personality,
		SpeakingStyle: def.SpeakingStyle,
		Influence:     birthInfluence(def),
		Relationship:  voice.Curious,
		State:         voice.StateActive,
		Chattiness:    def.Chattiness,
		Themes:        def.Themes,
		CreatedAt:     time.Now(),
	}

	if def.Resolution != nil {
		t := voice.ResolutionType(def.Resolution.Type)
		if !voice.KnownResolutionType(t) {
			return nil, fmt.Errorf("voice %s: unknown resolution type %q", def.Name, def.Resolution.Type)
		}
		v.Resolution = &voice.Resolution{Type: t, Condition: def.Resolution.Condition}
	}

	return v, nil
}

// birthInfluence: a talkative persona enters a little louder, clamped so no
// voice is born dormant or dominant.
func birthInfluence(def Definition) int {
	n := 35 + 2*def.Chattiness
	if n < 25 {
		n = 25
	}
	if n > 60 {
		n = 60
	}
	return n
}

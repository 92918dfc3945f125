package llm

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PillarSpec describes one content pillar from the voice spec file.
type PillarSpec struct {
	Goal string   `yaml:"goal"`
	Tone string   `yaml:"tone"`
	Days []string `yaml:"days"`
}

// VoiceSpec is the brand voice definition loaded from prompts/voice.yaml.
// It feeds every generation prompt and the relevance keyword fast-filter.
type VoiceSpec struct {
	Profile  string                `yaml:"profile"`
	Pillars  map[string]PillarSpec `yaml:"pillars"`
	Keywords []string              `yaml:"keywords"`
	Pairs    []string              `yaml:"pairs"`
}

func LoadVoiceSpec(path string) (*VoiceSpec, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var spec VoiceSpec
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse voice spec: %w", err)
	}
	if spec.Profile == "" {
		return nil, fmt.Errorf("voice spec %s has no profile section", path)
	}
	return &spec, nil
}

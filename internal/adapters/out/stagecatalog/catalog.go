// Package stagecatalog loads the stage registry from YAML. The catalogue compiled into
// the binary is used unless a file path is configured.
package stagecatalog

import (
	_ "embed"
	"fmt"
	"os"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/stage"

	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

type fileDTO struct {
	Categories []categoryDTO `yaml:"categories"`
}

type categoryDTO struct {
	ID               string     `yaml:"id"`
	CancellableUntil string     `yaml:"cancellableUntil"`
	Stages           []stageDTO `yaml:"stages"`
}

type stageDTO struct {
	Key           string `yaml:"key"`
	Order         int    `yaml:"order"`
	Label         string `yaml:"label"`
	Description   string `yaml:"description"`
	DrivenBy      string `yaml:"drivenBy"`
	AssignsWorker bool   `yaml:"assignsWorker"`
	Terminal      bool   `yaml:"terminal"`
}

// Load reads the catalogue at path, or the built-in one when path is empty.
func Load(path string) (*stage.Registry, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stage catalog: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in catalogue.
func Default() (*stage.Registry, error) {
	return Parse(defaultCatalog)
}

// Parse decodes a catalogue document and validates every sequence in it.
func Parse(data []byte) (*stage.Registry, error) {
	var file fileDTO
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode stage catalog: %w", err)
	}

	sequences := make([]*stage.Sequence, 0, len(file.Categories))
	for _, c := range file.Categories {
		seq, err := c.toSequence()
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", c.ID, err)
		}
		sequences = append(sequences, seq)
	}
	return stage.NewRegistry(sequences...)
}

func (c categoryDTO) toSequence() (*stage.Sequence, error) {
	defs := make([]stage.Definition, 0, len(c.Stages))
	for _, s := range c.Stages {
		def, err := s.toDefinition()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	boundary, err := stage.ParseKey(c.CancellableUntil)
	if err != nil {
		return nil, fmt.Errorf("cancellableUntil: %w", err)
	}
	return stage.NewSequence(c.ID, defs, boundary)
}

func (s stageDTO) toDefinition() (stage.Definition, error) {
	key, err := stage.ParseKey(s.Key)
	if err != nil {
		return stage.Definition{}, err
	}
	role, err := kernel.ParseRole(s.DrivenBy)
	if err != nil {
		return stage.Definition{}, fmt.Errorf("stage %s: %w", key, err)
	}

	return stage.NewDefinition(stage.DefinitionSpec{
		Key:           key,
		Order:         s.Order,
		Label:         s.Label,
		Description:   s.Description,
		Terminal:      s.Terminal,
		DrivenBy:      role,
		AssignsWorker: s.AssignsWorker,
	})
}

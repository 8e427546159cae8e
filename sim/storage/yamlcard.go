package storage

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileSource loads a racecard from a YAML file.
type FileSource struct {
	Path string
}

// NewFileSource creates a source for the racecard file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Racecard reads and minimally checks the racecard. Full entrant and table
// validation happens in the engine before the tick loop starts.
func (s *FileSource) Racecard(_ context.Context) (*Racecard, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read racecard: %w", err)
	}
	var card Racecard
	if err := yaml.Unmarshal(data, &card); err != nil {
		return nil, fmt.Errorf("parse racecard: %w", err)
	}
	if card.Definition.Name == "" {
		return nil, fmt.Errorf("racecard %s: race has no name", s.Path)
	}
	if len(card.Entrants) == 0 {
		return nil, fmt.Errorf("racecard %s: no entrants", s.Path)
	}
	return &card, nil
}

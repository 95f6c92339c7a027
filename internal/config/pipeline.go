package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Competition is one league the pipeline syncs.
type Competition struct {
	// Code is the football-data.org competition code (PL, BL1, ...).
	Code string `yaml:"code"`
	Name string `yaml:"name"`
	// Season overrides the pipeline season; 0 inherits it.
	Season int `yaml:"season"`
	// FBrefID is FBref's numeric competition id; empty skips the FBref fetch.
	FBrefID string `yaml:"fbref_id"`
}

// ArchiveSeason names one StatsBomb open-data competition season.
type ArchiveSeason struct {
	CompetitionID int `yaml:"competition_id"`
	SeasonID      int `yaml:"season_id"`
}

// Pipeline is the YAML pipeline file.
type Pipeline struct {
	// Season is the starting year; 0 means each provider's current season.
	Season       int             `yaml:"season"`
	Competitions []Competition   `yaml:"competitions"`
	Archive      []ArchiveSeason `yaml:"archive"`
	// Rivals pairs player ids for head-to-head callouts on the leaderboard.
	Rivals map[string]string `yaml:"rivals"`
}

// SeasonFor resolves a competition's effective season.
func (p Pipeline) SeasonFor(c Competition) int {
	if c.Season != 0 {
		return c.Season
	}
	return p.Season
}

// DefaultPipeline covers the football-data.org free tier leagues.
func DefaultPipeline() Pipeline {
	return Pipeline{
		Competitions: []Competition{
			{Code: "PL", Name: "Premier League", FBrefID: "9"},
			{Code: "PD", Name: "Primera Division", FBrefID: "12"},
			{Code: "BL1", Name: "Bundesliga", FBrefID: "20"},
			{Code: "SA", Name: "Serie A", FBrefID: "11"},
			{Code: "FL1", Name: "Ligue 1", FBrefID: "13"},
			{Code: "ELC", Name: "Championship", FBrefID: "10"},
		},
		Archive: []ArchiveSeason{
			{CompetitionID: 43, SeasonID: 106}, // FIFA World Cup 2022
			{CompetitionID: 55, SeasonID: 282}, // UEFA Euro 2024
		},
		Rivals: map[string]string{},
	}
}

// LoadPipeline reads and validates a pipeline file.
func LoadPipeline(path string) (Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("read %s: %w", path, err)
	}
	return ParsePipeline(data)
}

// ParsePipeline decodes pipeline YAML. Unknown keys are rejected so typos
// surface instead of silently disabling a competition.
func ParsePipeline(data []byte) (Pipeline, error) {
	var p Pipeline
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return Pipeline{}, fmt.Errorf("decode pipeline: %w", err)
	}
	if err := p.validate(); err != nil {
		return Pipeline{}, err
	}
	if p.Rivals == nil {
		p.Rivals = map[string]string{}
	}
	return p, nil
}

func (p *Pipeline) validate() error {
	if len(p.Competitions) == 0 {
		return errors.New("pipeline lists no competitions")
	}
	seen := make(map[string]bool, len(p.Competitions))
	for i := range p.Competitions {
		c := &p.Competitions[i]
		c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
		if c.Code == "" {
			return fmt.Errorf("competition %d: code is required", i)
		}
		if seen[c.Code] {
			return fmt.Errorf("competition %s listed twice", c.Code)
		}
		seen[c.Code] = true
	}
	for i, a := range p.Archive {
		if a.CompetitionID <= 0 || a.SeasonID <= 0 {
			return fmt.Errorf("archive entry %d: competition_id and season_id are required", i)
		}
	}
	return nil
}

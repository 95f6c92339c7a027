package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pipelineYAML = `
season: 2024
competitions:
  - code: pl
    name: Premier League
    fbref_id: "9"
  - code: ELC
    name: Championship
    season: 2023
archive:
  - competition_id: 43
    season_id: 106
rivals:
  bukayo-saka: phil-foden
`

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PIPELINE_FILE", "")
	t.Setenv("DATA_DIR", "")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "")
	t.Setenv("CORS_ALLOW_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Len(t, cfg.CORSAllowOrigins, 3)
	assert.NotEmpty(t, cfg.Pipeline.Competitions)
}

func TestLoadFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(pipelineYAML), 0o644))

	t.Setenv("PIPELINE_FILE", path)
	t.Setenv("DATA_DIR", "/srv/site-data")
	t.Setenv("FOOTBALL_DATA_RPM", "not-a-number")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "5")
	t.Setenv("CORS_ALLOW_ORIGINS", " https://scoracle.com , ,https://www.scoracle.com")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("SYNC_CRON", "0 */6 * * *")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/site-data", cfg.DataDir)
	assert.Equal(t, 10, cfg.FootballDataRPM, "unparsable ints fall back")
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, []string{"https://scoracle.com", "https://www.scoracle.com"}, cfg.CORSAllowOrigins)
	assert.False(t, cfg.RateLimitEnabled)
	assert.Equal(t, "0 */6 * * *", cfg.SyncCron)

	p := cfg.Pipeline
	require.Len(t, p.Competitions, 2)
	assert.Equal(t, "PL", p.Competitions[0].Code)
	assert.Equal(t, 2024, p.SeasonFor(p.Competitions[0]))
	assert.Equal(t, 2023, p.SeasonFor(p.Competitions[1]))
	assert.Equal(t, []ArchiveSeason{{CompetitionID: 43, SeasonID: 106}}, p.Archive)
	assert.Equal(t, "phil-foden", p.Rivals["bukayo-saka"])
}

func TestLoadMissingPipelineFile(t *testing.T) {
	t.Setenv("PIPELINE_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline file")
}

func TestParsePipelineRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "season: 2024\n"},
		{"unknown key", "competitions:\n  - code: PL\n    fbref: 9\n"},
		{"blank code", "competitions:\n  - name: Nameless\n"},
		{"duplicate", "competitions:\n  - code: PL\n  - code: pl\n"},
		{"bad archive", "competitions:\n  - code: PL\narchive:\n  - competition_id: 43\n"},
		{"malformed", "competitions: [\n"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParsePipeline([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

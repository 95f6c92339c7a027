package ingest

import "fmt"

// Result tracks counts and errors from a pipeline run. Upstream failures land
// in Errors; they never abort the run.
type Result struct {
	RowsFetched     int
	PlayersInOutput int
	Competitions    int
	Matches         int
	LeaderboardRows int
	FilesWritten    int
	Errors          []string
}

// Add merges another Result into this one. Output sizes take the latest
// non-zero value since they describe a file, not a delta.
func (r *Result) Add(other Result) {
	r.RowsFetched += other.RowsFetched
	r.Competitions += other.Competitions
	r.Matches += other.Matches
	r.FilesWritten += other.FilesWritten
	if other.PlayersInOutput > 0 {
		r.PlayersInOutput = other.PlayersInOutput
	}
	if other.LeaderboardRows > 0 {
		r.LeaderboardRows = other.LeaderboardRows
	}
	r.Errors = append(r.Errors, other.Errors...)
}

// AddError records an error message.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// AddErrorf records a formatted error message.
func (r *Result) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"rows=%d players=%d competitions=%d matches=%d leaderboard=%d files_written=%d errors=%d",
		r.RowsFetched, r.PlayersInOutput, r.Competitions, r.Matches,
		r.LeaderboardRows, r.FilesWritten, len(r.Errors),
	)
}

package traversal

import (
	"sync"
	"sync/atomic"
)

// ListFailure records one directory that could not be listed.
type ListFailure struct {
	Path  string `yaml:"path"`
	Error string `yaml:"error"`
}

// Stats accumulates counters for a single search. It is safe for concurrent use.
type Stats struct {
	dirsListed atomic.Int64
	filesSeen  atomic.Int64
	matches    atomic.Int64
	listErrors atomic.Int64
	skipped    atomic.Int64

	mu       sync.Mutex
	failures []ListFailure
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	DirectoriesListed int64         `yaml:"directories_listed"`
	FilesExamined     int64         `yaml:"files_examined"`
	Matches           int64         `yaml:"matches"`
	ListErrors        int64         `yaml:"list_errors"`
	SkippedEntries    int64         `yaml:"skipped_entries"`
	Failures          []ListFailure `yaml:"failures,omitempty"`
}

func (s *Stats) recordFailure(path string, err error) {
	s.listErrors.Add(1)
	s.mu.Lock()
	s.failures = append(s.failures, ListFailure{Path: path, Error: err.Error()})
	s.mu.Unlock()
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	var failures []ListFailure
	if len(s.failures) > 0 {
		failures = append(failures, s.failures...)
	}
	s.mu.Unlock()

	return Snapshot{
		DirectoriesListed: s.dirsListed.Load(),
		FilesExamined:     s.filesSeen.Load(),
		Matches:           s.matches.Load(),
		ListErrors:        s.listErrors.Load(),
		SkippedEntries:    s.skipped.Load(),
		Failures:          failures,
	}
}

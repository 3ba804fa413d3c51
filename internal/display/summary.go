package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/harrison/stemfind/internal/traversal"
)

// Summary is the end-of-run block written to stderr with --summary.
type Summary struct {
	Snapshot traversal.Snapshot
	Duration time.Duration
	// Color enables ANSI colors on the counters
	Color bool
}

// Display writes the summary. Matches are green, listing failures red and
// skipped entries yellow when color is enabled.
func (s Summary) Display(out io.Writer) {
	paint := func(attr color.Attribute, v interface{}) string {
		if !s.Color {
			return fmt.Sprint(v)
		}
		c := color.New(attr)
		c.EnableColor()
		return c.Sprint(v)
	}

	var b strings.Builder
	b.WriteString("\nSearch Summary:\n")
	b.WriteString(fmt.Sprintf("  Directories listed: %d\n", s.Snapshot.DirectoriesListed))
	b.WriteString(fmt.Sprintf("  Files examined: %d\n", s.Snapshot.FilesExamined))
	b.WriteString(fmt.Sprintf("  Matches: %s\n", paint(color.FgGreen, s.Snapshot.Matches)))

	if s.Snapshot.SkippedEntries > 0 {
		b.WriteString(fmt.Sprintf("  Skipped entries: %s\n", paint(color.FgYellow, s.Snapshot.SkippedEntries)))
	}

	if s.Snapshot.ListErrors > 0 {
		b.WriteString(fmt.Sprintf("  Unreadable directories: %s\n", paint(color.FgRed, s.Snapshot.ListErrors)))
		for i, f := range s.Snapshot.Failures {
			b.WriteString(fmt.Sprintf("    %d. %s\n", i+1, f.Path))
		}
	}

	b.WriteString(fmt.Sprintf("  Duration: %s\n", s.Duration.Round(time.Millisecond)))

	fmt.Fprint(out, b.String())
}

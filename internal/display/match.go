package display

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/stemfind/internal/traversal"
)

// Banner announces the directory being searched.
func Banner(w io.Writer, dir string) {
	fmt.Fprintf(w, "Searching in: %s\n", dir)
}

// ShouldHighlight resolves a color mode (auto, always, never) against w.
// In auto mode only a terminal without NO_COLOR gets highlighting.
func ShouldHighlight(w io.Writer, mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}

	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// MatchPrinter writes matching paths one per line. It is safe for concurrent use.
type MatchPrinter struct {
	writer    io.Writer
	term      string
	highlight *color.Color
	mu        sync.Mutex
}

// NewMatchPrinter creates a printer for term. When highlight is false paths
// are written verbatim.
func NewMatchPrinter(w io.Writer, term string, highlight bool) *MatchPrinter {
	p := &MatchPrinter{writer: w, term: term}
	if highlight && term != "" {
		p.highlight = color.New(color.FgRed, color.Bold)
		p.highlight.EnableColor()
	}
	return p
}

// Print writes path followed by a newline in a single Write call.
func (p *MatchPrinter) Print(path string) {
	line := path
	if p.highlight != nil {
		line = p.colorize(path)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	io.WriteString(p.writer, line+"\n")
}

// colorize highlights the first occurrence of the term inside the stem.
func (p *MatchPrinter) colorize(path string) string {
	name := filepath.Base(path)
	idx := strings.Index(traversal.Stem(name), p.term)
	if idx < 0 {
		return path
	}

	prefix := path[:len(path)-len(name)]
	end := idx + len(p.term)
	return prefix + name[:idx] + p.highlight.Sprint(name[idx:end]) + name[end:]
}

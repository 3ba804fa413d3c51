package traversal

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Mode selects how Search schedules subdirectories.
type Mode string

const (
	// ModeParallel walks subdirectories on a bounded pool of goroutines.
	ModeParallel Mode = "parallel"
	// ModeSequential walks depth-first on the calling goroutine.
	ModeSequential Mode = "sequential"
)

// Options configures a search
type Options struct {
	// Mode selects sequential or parallel traversal (default parallel)
	Mode Mode
	// Workers bounds the number of walker goroutines in parallel mode (0 = runtime.NumCPU())
	Workers int
	// NoFollowSymlinks treats symbolic links as neither file nor directory
	NoFollowSymlinks bool
	// OnMatch receives the full path of every matching file
	OnMatch func(path string)
	// OnListError receives every subdirectory that could not be listed
	OnListError func(dir string, err error)
	// ReadDir lists one directory in name order (default os.ReadDir)
	ReadDir func(dir string) ([]os.DirEntry, error)
}

type entryKind int

const (
	kindOther entryKind = iota
	kindFile
	kindDir
)

type walker struct {
	term  string
	opts  Options
	stats *Stats
}

// Search walks root and reports every regular file whose stem contains term.
// It returns once every reachable entry has been visited.
func Search(ctx context.Context, root, term string, opts Options) (*Stats, error) {
	if opts.Mode == "" {
		opts.Mode = ModeParallel
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.ReadDir == nil {
		opts.ReadDir = os.ReadDir
	}

	w := &walker{term: term, opts: opts, stats: &Stats{}}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return w.stats, nil
	}

	entries, err := opts.ReadDir(root)
	if err != nil {
		if len(entries) == 0 {
			w.stats.recordFailure(root, err)
			return w.stats, fmt.Errorf("failed to list directory %s: %w", root, err)
		}
		w.reportListError(root, err)
	}
	w.stats.dirsListed.Add(1)

	switch opts.Mode {
	case ModeSequential:
		err = w.walkSequential(ctx, root, entries)
	case ModeParallel:
		err = w.walkParallel(ctx, root, entries)
	default:
		return w.stats, fmt.Errorf("unknown search mode %q", opts.Mode)
	}

	return w.stats, err
}

// list reads dir, reporting a failure through OnListError. Entries read before
// the failure are still returned.
func (w *walker) list(dir string) []os.DirEntry {
	entries, err := w.opts.ReadDir(dir)
	if err != nil {
		w.reportListError(dir, err)
	}
	if err == nil || len(entries) > 0 {
		w.stats.dirsListed.Add(1)
	}
	return entries
}

func (w *walker) reportListError(dir string, err error) {
	w.stats.recordFailure(dir, err)
	if w.opts.OnListError != nil {
		w.opts.OnListError(dir, err)
	}
}

// classify resolves the kind of an entry, following symbolic links unless
// disabled. Anything that cannot be resolved is kindOther.
func (w *walker) classify(path string, d fs.DirEntry) entryKind {
	mode := d.Type()
	if mode&fs.ModeSymlink != 0 {
		if w.opts.NoFollowSymlinks {
			return kindOther
		}
		info, err := os.Stat(path)
		if err != nil {
			return kindOther
		}
		mode = info.Mode().Type()
	}

	switch {
	case mode.IsRegular():
		return kindFile
	case mode.IsDir():
		return kindDir
	default:
		return kindOther
	}
}

func (w *walker) visitFile(path, name string) {
	w.stats.filesSeen.Add(1)
	if !MatchesStem(name, w.term) {
		return
	}
	w.stats.matches.Add(1)
	if w.opts.OnMatch != nil {
		w.opts.OnMatch(path)
	}
}

func (w *walker) walkSequential(ctx context.Context, dir string, entries []os.DirEntry) error {
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := filepath.Join(dir, entry.Name())
		switch w.classify(path, entry) {
		case kindFile:
			w.visitFile(path, entry.Name())
		case kindDir:
			if err := w.walkSequential(ctx, path, w.list(path)); err != nil {
				return err
			}
		default:
			w.stats.skipped.Add(1)
		}
	}
	return nil
}

func (w *walker) walkParallel(ctx context.Context, root string, rootEntries []os.DirEntry) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.opts.Workers)

	var visit func(dir string, entries []os.DirEntry) error
	visit = func(dir string, entries []os.DirEntry) error {
		for _, entry := range entries {
			if err := gctx.Err(); err != nil {
				return err
			}

			path := filepath.Join(dir, entry.Name())
			switch w.classify(path, entry) {
			case kindFile:
				w.visitFile(path, entry.Name())
			case kindDir:
				task := func() error {
					return visit(path, w.list(path))
				}
				// Walk inline when the pool is full; blocking here would deadlock
				// once every worker waits on a slot.
				if !g.TryGo(task) {
					if err := task(); err != nil {
						return err
					}
				}
			default:
				w.stats.skipped.Add(1)
			}
		}
		return nil
	}

	g.Go(func() error {
		return visit(root, rootEntries)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	// errgroup cancels gctx on return; report the caller's cancellation only.
	return ctx.Err()
}

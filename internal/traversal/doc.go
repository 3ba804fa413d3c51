// Package traversal implements the recursive directory walk behind stemfind.
//
// Search lists a root directory, emits every regular file whose stem contains
// the search term, and descends into every subdirectory it finds. Failure to
// list one subdirectory is reported and skips only that subtree.
//
// # Matching
//
// The stem of a file is its name with the trailing extension removed:
//
//	report_final.txt  -> report_final
//	archive.tar.gz    -> archive.tar
//	.bashrc           -> .bashrc
//	Makefile          -> Makefile
//
// A file matches when its stem contains the term as a case-sensitive
// substring. The empty term matches every file.
//
// # Modes
//
// ModeSequential walks depth-first on the calling goroutine, so matches are
// emitted in pre-order with entries of each directory in name order.
//
// ModeParallel hands subdirectories to a bounded errgroup. A subdirectory is
// walked on a fresh goroutine when a slot is free and inline otherwise, so the
// number of walker goroutines never exceeds Options.Workers no matter how wide
// or deep the tree is. Matches are emitted in no particular order.
//
// # Usage
//
//	stats, err := traversal.Search(ctx, root, "report", traversal.Options{
//	    Mode:    traversal.ModeParallel,
//	    Workers: 8,
//	    OnMatch: func(path string) { fmt.Println(path) },
//	    OnListError: func(dir string, err error) {
//	        fmt.Fprintf(os.Stderr, "Error searching directory %s: %v\n", dir, err)
//	    },
//	})
//
// Both callbacks may be invoked concurrently in parallel mode.
//
// # Errors
//
// Search returns an error only when the root itself cannot be listed or the
// context is cancelled. A root that does not exist or is not a directory is
// a no-op. Entries that are neither regular files nor directories, including
// dangling symbolic links, are skipped and counted in Stats.
package traversal

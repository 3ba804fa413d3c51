// Package display formats everything stemfind writes for the user: the
// startup banner, one line per matching file, and the optional end-of-run
// summary.
//
// # Matches
//
// MatchPrinter serializes writes so that concurrent walkers never interleave
// two paths on one line:
//
//	printer := display.NewMatchPrinter(os.Stdout, term, display.ShouldHighlight(os.Stdout, "auto"))
//	printer.Print("/home/me/docs/report_final.txt")
//
// When highlighting is on, the first occurrence of the term inside the file
// stem is colored; the directory part and the extension are never colored.
//
// # Summary
//
//	display.Summary{Snapshot: stats.Snapshot(), Duration: elapsed}.Display(os.Stderr)
package display

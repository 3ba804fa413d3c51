package cmd

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/harrison/stemfind/internal/report"
	"github.com/harrison/stemfind/internal/traversal"
)

// runCLI executes the root command in dir with an isolated HOME and returns
// stdout, stderr and the error from Execute.
func runCLI(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")

	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// makeTree creates the given relative files (and their parents) under a temp
// dir and returns the directory as the process will report it after Chdir.
func makeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		t.Fatal(err)
	}
	return resolved
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	if cmd == nil {
		t.Fatal("Root command should not be nil")
	}

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("--help returned error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "stemfind [flags] [--] <search_term>") {
		t.Errorf("Help text should contain usage line, got: %s", output)
	}
	for _, flag := range []string{"--sequential", "--workers", "--no-follow-symlinks", "--report", "--metrics-file"} {
		if !strings.Contains(output, flag) {
			t.Errorf("Help text should list %s", flag)
		}
	}
}

func TestVersionFlag(t *testing.T) {
	cmd := NewRootCommand()

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("--version returned error: %v", err)
	}
	if !strings.Contains(buf.String(), Version) {
		t.Errorf("Expected version %q in output, got: %s", Version, buf.String())
	}
}

func TestWrongArgumentCountPrintsUsage(t *testing.T) {
	dir := makeTree(t, "report.txt")

	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"two arguments", []string{"report", "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := runCLI(t, dir, tt.args...)
			if err != nil {
				t.Fatalf("expected nil error, got %v", err)
			}
			if stdout != "" {
				t.Errorf("expected no stdout, got %q", stdout)
			}
			want := "Usage: " + filepath.Base(os.Args[0]) + " <search_term>\n"
			if stderr != want {
				t.Errorf("stderr = %q, want %q", stderr, want)
			}
		})
	}
}

func TestSearchPrintsBannerAndMatches(t *testing.T) {
	dir := makeTree(t,
		"report_final.txt",
		"notes.txt",
		"docs/report_draft.md",
		"docs/summary.report",
	)

	stdout, stderr, err := runCLI(t, dir, "--sequential", "report")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stderr != "" {
		t.Errorf("expected no diagnostics, got %q", stderr)
	}

	want := "Searching in: " + dir + "\n" +
		filepath.Join(dir, "docs", "report_draft.md") + "\n" +
		filepath.Join(dir, "report_final.txt") + "\n"
	if stdout != want {
		t.Errorf("stdout =\n%s\nwant\n%s", stdout, want)
	}
}

func TestSearchParallelFindsSameFiles(t *testing.T) {
	dir := makeTree(t, "a/x_hit.go", "b/c/hit.txt", "b/miss.txt", "hit")

	stdout, _, err := runCLI(t, dir, "--workers", "2", "hit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	if lines[0] != "Searching in: "+dir {
		t.Errorf("first line = %q", lines[0])
	}
	if len(lines) != 4 {
		t.Fatalf("expected banner plus 3 matches, got %d lines: %q", len(lines), lines)
	}
	for _, rel := range []string{"a/x_hit.go", "b/c/hit.txt", "hit"} {
		if !strings.Contains(stdout, filepath.Join(dir, filepath.FromSlash(rel))+"\n") {
			t.Errorf("missing match %s", rel)
		}
	}
}

func TestUnreadableDirectoryIsReportedButNotFatal(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}

	dir := makeTree(t, "open/report.txt", "locked/report.txt")
	locked := filepath.Join(dir, "locked")
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	stdout, stderr, err := runCLI(t, dir, "--summary", "report")
	if err != nil {
		t.Fatalf("expected exit 0, got %v", err)
	}
	if !strings.Contains(stdout, filepath.Join(dir, "open", "report.txt")) {
		t.Errorf("readable match missing from %q", stdout)
	}
	if !strings.Contains(stderr, "[ERROR] Error searching directory "+locked+": ") {
		t.Errorf("expected listing diagnostic, got %q", stderr)
	}
	if !strings.Contains(stderr, "Unreadable directories: 1") {
		t.Errorf("expected summary, got %q", stderr)
	}
}

func TestListFailureIsReportedAndSearchContinues(t *testing.T) {
	dir := makeTree(t, "locked/report.txt", "open/report.txt")
	locked := filepath.Join(dir, "locked")

	orig := searchTree
	t.Cleanup(func() { searchTree = orig })
	searchTree = func(ctx context.Context, root, term string, opts traversal.Options) (*traversal.Stats, error) {
		opts.ReadDir = func(d string) ([]os.DirEntry, error) {
			if d == locked {
				return nil, &fs.PathError{Op: "open", Path: d, Err: fs.ErrPermission}
			}
			return os.ReadDir(d)
		}
		return orig(ctx, root, term, opts)
	}

	stdout, stderr, err := runCLI(t, dir, "--sequential", "--summary", "report")
	if err != nil {
		t.Fatalf("expected exit 0, got %v", err)
	}

	want := "Searching in: " + dir + "\n" + filepath.Join(dir, "open", "report.txt") + "\n"
	if stdout != want {
		t.Errorf("stdout =\n%s\nwant\n%s", stdout, want)
	}
	if !strings.Contains(stderr, "[ERROR] Error searching directory "+locked+": open "+locked+": permission denied\n") {
		t.Errorf("expected listing diagnostic, got %q", stderr)
	}
	if !strings.Contains(stderr, "Unreadable directories: 1") {
		t.Errorf("expected summary, got %q", stderr)
	}
}

func TestDashTermAfterDoubleDash(t *testing.T) {
	dir := makeTree(t, "my-draft.txt", "draft.txt", "notes/re-draft.md")

	stdout, _, err := runCLI(t, dir, "--sequential", "--", "-draft")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Searching in: " + dir + "\n" +
		filepath.Join(dir, "my-draft.txt") + "\n" +
		filepath.Join(dir, "notes", "re-draft.md") + "\n"
	if stdout != want {
		t.Errorf("stdout =\n%s\nwant\n%s", stdout, want)
	}
}

func TestDashTermWithoutDoubleDashExplainsFix(t *testing.T) {
	dir := makeTree(t, "my-draft.txt")

	stdout, _, err := runCLI(t, dir, "-draft")
	if err == nil {
		t.Fatal("expected a flag parse error")
	}
	if !strings.Contains(err.Error(), `use "--" before a search term`) {
		t.Errorf("error should explain the -- separator, got: %v", err)
	}
	if stdout != "" {
		t.Errorf("search should not start, got %q", stdout)
	}
}

func TestInvalidConfigFails(t *testing.T) {
	dir := makeTree(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("mode: sideways\n"), 0644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := runCLI(t, dir, "--config", cfgPath, "x")
	if err == nil {
		t.Fatal("expected error for invalid mode")
	}
	if !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("unexpected error: %v", err)
	}
	if stdout != "" {
		t.Errorf("search should not start, got %q", stdout)
	}
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	dir := makeTree(t, "a/hit.txt", "hit.txt")
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("mode: parallel\nworkers: 3\nsummary: true\n"), 0644); err != nil {
		t.Fatal(err)
	}

	// --sequential wins over the file; summary from the file still applies.
	stdout, stderr, err := runCLI(t, dir, "--config", cfgPath, "--sequential", "hit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Searching in: " + dir + "\n" +
		filepath.Join(dir, "a", "hit.txt") + "\n" +
		filepath.Join(dir, "hit.txt") + "\n"
	if stdout != want {
		t.Errorf("stdout =\n%s\nwant\n%s", stdout, want)
	}
	if !strings.Contains(stderr, "Search Summary:") {
		t.Errorf("summary from config file missing: %q", stderr)
	}
}

func TestReportAndMetricsOutputs(t *testing.T) {
	dir := makeTree(t, "report.txt", "sub/other.txt")
	out := t.TempDir()
	reportPath := filepath.Join(out, "run.yaml")
	metricsPath := filepath.Join(out, "stemfind.prom")

	_, _, err := runCLI(t, dir, "--report", reportPath, "--metrics-file", metricsPath, "report")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r, err := report.Read(reportPath)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	if r.Root != dir || r.Term != "report" || r.Mode != "parallel" {
		t.Errorf("unexpected report header: %+v", r)
	}
	if r.RunID == "" {
		t.Error("run ID should be set")
	}
	if r.Stats.Matches != 1 || r.Stats.DirectoriesListed != 2 || r.Stats.FilesExamined != 2 {
		t.Errorf("unexpected stats: %+v", r.Stats)
	}

	data, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("failed to read metrics: %v", err)
	}
	if !strings.Contains(string(data), "stemfind_matches_total 1") {
		t.Errorf("metrics missing match counter:\n%s", data)
	}
}

func TestLogDirCreatesRunLog(t *testing.T) {
	dir := makeTree(t, "x.txt")
	logDir := filepath.Join(t.TempDir(), "logs")

	if _, _, err := runCLI(t, dir, "--log-dir", logDir, "--verbose", "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(logDir, "latest.log"))
	if err != nil {
		t.Fatalf("latest.log not readable: %v", err)
	}
	if !strings.Contains(string(data), "=== stemfind Run Log ===") {
		t.Errorf("unexpected log header:\n%s", data)
	}
	if !strings.Contains(string(data), "[DEBUG] Search finished") {
		t.Errorf("debug diagnostics missing from log file:\n%s", data)
	}
}

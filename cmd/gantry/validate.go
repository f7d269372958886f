package main

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"gantry"
	"gantry/diag"
	"gantry/internal/cache"
	"gantry/internal/config"
	"gantry/internal/observ"
)

var validateCmd = &cobra.Command{
	Use:   "validate [paths...]",
	Short: "Validate workflow files",
	Long: `Validate runs the full rule set over each workflow file and reports
diagnostics. Paths may be files, directories (searched recursively for
*.yml and *.yaml), glob patterns, or "-" for stdin.`,
	Args:         cobra.MinimumNArgs(1),
	RunE:         runValidate,
	SilenceUsage: true,
}

func init() {
	validateCmd.Flags().Bool("json", false, "emit machine-readable JSON")
	validateCmd.Flags().String("severity", "info", "minimum severity to report (error|warning|info)")
	validateCmd.Flags().Int("jobs", 4, "number of files validated in parallel")
	validateCmd.Flags().Bool("cache", false, "reuse cached results for unchanged files")
	validateCmd.Flags().Bool("ui", false, "show interactive progress for multi-file runs")
}

// fileReport is one file's outcome, for both text and JSON rendering.
type fileReport struct {
	File        string            `json:"file"`
	Valid       bool              `json:"valid"`
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
	DurationMS  float64           `json:"duration_ms"`
	Metadata    fileMetadata      `json:"metadata"`
}

type fileMetadata struct {
	FileSize int `json:"file_size"`
	Lines    int `json:"lines"`
}

type validateOptions struct {
	jsonOut  bool
	quiet    bool
	timings  bool
	ui       bool
	minSev   diag.Severity
	jobs     int
	useCache bool
}

func runValidate(cmd *cobra.Command, args []string) error {
	opts, err := readValidateOptions(cmd)
	if err != nil {
		return err
	}

	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no workflow files matched")
	}

	cfg, err := config.Discover(startDirFor(files))
	if err != nil {
		return fmt.Errorf("%w: %v", errIO, err)
	}
	kept := files[:0]
	for _, f := range files {
		if f != "-" && cfg.Ignored(f) {
			slog.Debug("skipping ignored file", "path", f)
			continue
		}
		kept = append(kept, f)
	}
	files = kept
	if len(files) == 0 {
		return nil
	}

	var store *cache.Cache
	if opts.useCache {
		store, err = cache.Open("gantry")
		if err != nil {
			slog.Warn("cache unavailable", "error", err)
		}
	}

	engine := gantry.New()
	timer := observ.NewTimer()

	reports, err := validateFiles(engine, files, cfg, store, opts, timer)
	if err != nil {
		return err
	}

	stop := timer.Track(observ.PhaseRender)
	if opts.jsonOut {
		if err := writeJSONReports(cmd, reports); err != nil {
			stop()
			return err
		}
	} else if !opts.quiet {
		printReports(cmd, reports)
	}
	stop()
	if opts.timings {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}

	for _, r := range reports {
		if !r.Valid {
			return errValidationFailed
		}
	}
	return nil
}

func readValidateOptions(cmd *cobra.Command) (validateOptions, error) {
	var opts validateOptions
	var err error
	if opts.jsonOut, err = cmd.Flags().GetBool("json"); err != nil {
		return opts, fmt.Errorf("failed to get json flag: %w", err)
	}
	if opts.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return opts, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if opts.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if opts.ui, err = cmd.Flags().GetBool("ui"); err != nil {
		return opts, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if opts.jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
		return opts, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if opts.jobs < 1 {
		opts.jobs = 1
	}
	if opts.useCache, err = cmd.Flags().GetBool("cache"); err != nil {
		return opts, fmt.Errorf("failed to get cache flag: %w", err)
	}
	sev, err := cmd.Flags().GetString("severity")
	if err != nil {
		return opts, fmt.Errorf("failed to get severity flag: %w", err)
	}
	if opts.minSev, err = diag.ParseSeverity(sev); err != nil {
		return opts, err
	}
	return opts, nil
}

// collectFiles expands paths into a sorted, deduplicated file list.
func collectFiles(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
	}

	for _, arg := range args {
		if arg == "-" {
			add("-")
			continue
		}
		info, err := os.Stat(arg)
		switch {
		case err == nil && info.IsDir():
			walkErr := filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && isWorkflowFile(path) {
					add(path)
				}
				return nil
			})
			if walkErr != nil {
				return nil, fmt.Errorf("%w: %v", errIO, walkErr)
			}
		case err == nil:
			add(arg)
		default:
			// Not a plain path: try it as a glob before giving up.
			matches, globErr := doublestar.FilepathGlob(arg)
			if globErr != nil || len(matches) == 0 {
				return nil, fmt.Errorf("%w: %s: %v", errIO, arg, err)
			}
			for _, m := range matches {
				if isWorkflowFile(m) {
					add(m)
				}
			}
		}
	}

	sort.Strings(out)
	return out, nil
}

func isWorkflowFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yml" || ext == ".yaml"
}

func startDirFor(files []string) string {
	for _, f := range files {
		if f != "-" {
			return filepath.Dir(f)
		}
	}
	return "."
}

// validateFiles fans the file list out over a bounded worker group.
// Reports come back in input order regardless of completion order.
func validateFiles(engine *gantry.Engine, files []string, cfg config.Config, store *cache.Cache, opts validateOptions, timer *observ.Timer) ([]fileReport, error) {
	reports := make([]fileReport, len(files))
	progress := newProgressSink(opts, files)
	defer progress.close()

	var g errgroup.Group
	g.SetLimit(opts.jobs)
	var firstErr error
	var mu sync.Mutex
	for i, file := range files {
		g.Go(func() error {
			progress.checking(file)
			report, err := validateOne(engine, file, cfg, store, opts, timer)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				progress.done(file, false, 0)
				return err
			}
			reports[i] = report
			progress.done(file, report.Valid, len(report.Diagnostics))
			return nil
		})
	}
	err := g.Wait()
	progress.wait()
	if err != nil {
		return nil, firstErr
	}
	return reports, nil
}

func validateOne(engine *gantry.Engine, file string, cfg config.Config, store *cache.Cache, opts validateOptions, timer *observ.Timer) (fileReport, error) {
	start := time.Now()
	stopRead := timer.Track(observ.PhaseRead)
	source, err := readSource(file)
	stopRead()
	if err != nil {
		return fileReport{}, err
	}

	key := cache.KeyFor([]byte(source))
	diagnostics, hit, err := store.Get(key, engine.Rules())
	if err != nil {
		slog.Warn("cache read failed", "path", file, "error", err)
	}
	if !hit {
		stopAnalyze := timer.Track(observ.PhaseAnalyze)
		result, err := engine.Analyze(source)
		stopAnalyze()
		if err != nil {
			return fileReport{}, fmt.Errorf("%s: %w", file, err)
		}
		diagnostics = result.Diagnostics
		if putErr := store.Put(key, diagnostics, engine.Rules()); putErr != nil {
			slog.Warn("cache write failed", "path", file, "error", putErr)
		}
	} else {
		slog.Debug("cache hit", "path", file)
	}

	diagnostics = cfg.Apply(diagnostics)
	diagnostics = filterSeverity(diagnostics, opts.minSev)

	valid := true
	for _, d := range diagnostics {
		if d.Severity == diag.SevError {
			valid = false
			break
		}
	}
	return fileReport{
		File:        file,
		Valid:       valid,
		Diagnostics: diagnostics,
		DurationMS:  float64(time.Since(start)) / float64(time.Millisecond),
		Metadata:    fileMetadata{FileSize: len(source), Lines: countLines(source)},
	}, nil
}

// filterSeverity keeps diagnostics at or above the floor. Severities
// order Error < Warning < Info, so "at or above" is numerically <=.
func filterSeverity(ds []diag.Diagnostic, floor diag.Severity) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(ds))
	for _, d := range ds {
		if d.Severity <= floor {
			out = append(out, d)
		}
	}
	return out
}

func printReports(cmd *cobra.Command, reports []fileReport) {
	out := cmd.OutOrStdout()
	okMark := color.New(color.FgGreen).Sprint("✓")
	failMark := color.New(color.FgRed).Sprint("✗")

	for _, r := range reports {
		mark := okMark
		if !r.Valid {
			mark = failMark
		}
		fmt.Fprintf(out, "%s %s\n", mark, r.File)
		for _, d := range r.Diagnostics {
			fmt.Fprintf(out, "  %s\n", renderDiagnostic(d))
		}
	}
}

func renderDiagnostic(d diag.Diagnostic) string {
	label := d.Severity.String()
	switch d.Severity {
	case diag.SevError:
		label = color.New(color.FgRed).Sprint(label)
	case diag.SevWarning:
		label = color.New(color.FgYellow).Sprint(label)
	default:
		label = color.New(color.FgCyan).Sprint(label)
	}
	return fmt.Sprintf("[%s] %s (%d..%d)", label, d.Message, d.Span.Start, d.Span.End)
}

func writeJSONReports(cmd *cobra.Command, reports []fileReport) error {
	for i := range reports {
		if reports[i].Diagnostics == nil {
			reports[i].Diagnostics = []diag.Diagnostic{}
		}
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

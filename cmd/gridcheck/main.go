// Command gridcheck runs the registered grid regression cases, either writing
// their reference snapshots (generation mode) or verifying the live grids
// against them.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/gridcheck/internal/config"
	"github.com/banshee-data/gridcheck/internal/monitoring"
	"github.com/banshee-data/gridcheck/internal/refstore"
	"github.com/banshee-data/gridcheck/internal/refstore/sqlite"
	"github.com/banshee-data/gridcheck/internal/regress"
	"github.com/banshee-data/gridcheck/internal/scenario"
	"github.com/banshee-data/gridcheck/internal/version"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailed  = 1
	exitUsage   = 2
	exitRuntime = 3
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, os.LookupEnv))
}

type flags struct {
	configPath string
	generate   bool
	store      string
	dir        string
	dbPath     string
	cases      string
	parallel   int
	list       bool
	runs       bool
	quiet      bool
	version    bool
}

func parseFlags(args []string, stderr io.Writer) (*flags, map[string]bool, error) {
	f := &flags{}
	fs := flag.NewFlagSet("gridcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.configPath, "config", "", "Path to a JSON harness config file")
	fs.BoolVar(&f.generate, "gen", false, "Generate reference snapshots instead of verifying (also "+config.EnvGenerateReference+"=1)")
	fs.StringVar(&f.store, "store", "", "Reference store backend: file or sqlite")
	fs.StringVar(&f.dir, "dir", "", "Reference directory for the file store")
	fs.StringVar(&f.dbPath, "db", "", "Database path for the sqlite store")
	fs.StringVar(&f.cases, "case", "", "Comma-separated case IDs to run (default all)")
	fs.IntVar(&f.parallel, "parallel", runtime.NumCPU(), "Maximum cases run concurrently")
	fs.BoolVar(&f.list, "list", false, "List registered cases and exit")
	fs.BoolVar(&f.runs, "runs", false, "List generation runs recorded in the sqlite store and exit")
	fs.BoolVar(&f.quiet, "quiet", false, "Suppress per-grid log output")
	fs.BoolVar(&f.version, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() > 0 {
		return nil, nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	set := map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return f, set, nil
}

// resolveConfig layers the config file, the environment and explicit flags,
// in increasing precedence.
func resolveConfig(f *flags, set map[string]bool, lookupEnv func(string) (string, bool)) (*config.HarnessConfig, error) {
	cfg := config.EmptyHarnessConfig()
	if f.configPath != "" {
		var err error
		if cfg, err = config.LoadHarnessConfig(f.configPath); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(lookupEnv); err != nil {
		return nil, err
	}
	if set["gen"] {
		cfg.GenerateReference = &f.generate
	}
	if set["store"] {
		cfg.Store = &f.store
	}
	if set["dir"] {
		cfg.ReferenceDir = &f.dir
	}
	if set["db"] {
		cfg.DatabasePath = &f.dbPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func selectCases(ids string) ([]scenario.Case, error) {
	if ids == "" {
		return scenario.All(), nil
	}
	var out []scenario.Case
	for _, id := range strings.Split(ids, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		c, ok := scenario.Lookup(id)
		if !ok {
			return nil, fmt.Errorf("unknown case %q", id)
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, errors.New("no cases selected")
	}
	return out, nil
}

// openStore returns the configured reference store and a func releasing it.
func openStore(cfg *config.HarnessConfig) (refstore.Store, *sqlite.ReferenceStore, func(), error) {
	switch cfg.GetStore() {
	case config.StoreSQLite:
		db, err := sqlite.Open(cfg.GetDatabasePath())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open reference database: %w", err)
		}
		rs := sqlite.NewReferenceStore(db)
		return rs, rs, func() { db.Close() }, nil
	default:
		return refstore.NewFileStore(cfg.GetReferenceDir()), nil, func() {}, nil
	}
}

func run(args []string, stdout, stderr io.Writer, lookupEnv func(string) (string, bool)) int {
	f, set, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	if f.version {
		fmt.Fprintln(stdout, version.String())
		return exitOK
	}
	if f.list {
		for _, c := range scenario.All() {
			fmt.Fprintf(stdout, "%-12s %dD (%d,%d,%d)  %s\n", c.ID, c.Dims, c.Size.X, c.Size.Y, c.Size.Z, c.Description)
		}
		return exitOK
	}

	cfg, err := resolveConfig(f, set, lookupEnv)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	cases, err := selectCases(f.cases)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	if f.quiet {
		monitoring.SetLogger(nil)
	}

	store, sqlStore, closeStore, err := openStore(cfg)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitRuntime
	}
	defer closeStore()

	if f.runs {
		if sqlStore == nil {
			fmt.Fprintln(stderr, "-runs requires the sqlite store")
			return exitUsage
		}
		runs, err := sqlStore.Runs()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitRuntime
		}
		for _, r := range runs {
			fmt.Fprintf(stdout, "%s\t%d entries\n", r.RunID, r.Entries)
		}
		return exitOK
	}

	harnessCfg := regress.Config{
		GenerateReference: cfg.GetGenerateReference(),
		RunID:             uuid.NewString(),
		LogPasses:         cfg.GetLogPasses(),
	}
	h := regress.New(store, harnessCfg)
	reports, caseErrs := runCases(cases, h, cfg.GetThresholds, f.parallel)

	failed := false
	for i, c := range cases {
		fmt.Fprintf(stdout, "== %s\n", c.ID)
		if caseErrs[i] != nil {
			fmt.Fprintf(stdout, "ABORTED   %v\n", caseErrs[i])
			failed = true
			continue
		}
		fmt.Fprint(stdout, reports[i].Summary())
		if reports[i].Failed() {
			failed = true
		}
	}

	mode := "verify"
	if harnessCfg.GenerateReference {
		mode = "generate"
	}
	if err := h.Err(); err != nil {
		fmt.Fprintf(stdout, "gridcheck %s: ERROR (run %s)\n", mode, harnessCfg.RunID)
		fmt.Fprintln(stderr, err)
		return exitRuntime
	}
	if failed {
		fmt.Fprintf(stdout, "gridcheck %s: FAILED (run %s)\n", mode, harnessCfg.RunID)
		return exitFailed
	}
	fmt.Fprintf(stdout, "gridcheck %s: ok (run %s)\n", mode, harnessCfg.RunID)
	return exitOK
}

// runCases executes the cases concurrently, up to parallel at a time, on
// one shared harness. A persistence failure in any case aborts the rest.
func runCases(cases []scenario.Case, h *regress.Harness, adjust scenario.ThresholdFunc, parallel int) ([]*regress.Report, []error) {
	errs := make([]error, len(cases))

	var g errgroup.Group
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i, c := range cases {
		g.Go(func() error {
			_, err := c.Execute(h, adjust)
			errs[i] = err
			return err
		})
	}
	// Case errors are returned in errs.
	_ = g.Wait()

	all := h.Report()
	reports := make([]*regress.Report, len(cases))
	for i, c := range cases {
		reports[i] = all.ForTest(c.ID)
	}
	return reports, errs
}

// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"srat/internal/appcore"
	"srat/internal/cmdutil"
	"srat/internal/config"
	"srat/internal/telemetry"
	"srat/internal/version"
)

// usageError marks failures that map to the usage exit code.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// globals holds the persistent flags and per-run state shared by subcommands.
type globals struct {
	configPath  string
	quiet       bool
	verbose     bool
	traceFile   string
	metricsFile string

	runID       string
	log         *slog.Logger
	shutdown    func(context.Context) error
	setupFailed bool
	ran         bool
	code        int
}

func newRootCmd(g *globals, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "srat",
		Short: "Exact-match small-RNA read aligner",
		Long: `srat aligns short reads to a single reference genome by exact matching
over k-mer lengths 20-50, forward strand first, and discards reads that map
to more than three genomic sites.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			g.runID = cmdutil.NewRunID()
			g.log = cmdutil.NewLogger(stderr, g.quiet, g.verbose, g.runID)
			shutdown, err := telemetry.Setup(g.traceFile)
			if err != nil {
				g.setupFailed = true
				return err
			}
			g.shutdown = shutdown
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "YAML config file (defaults apply when omitted)")
	pf.BoolVarP(&g.quiet, "quiet", "q", false, "only log warnings and errors")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "log debug details")
	pf.StringVar(&g.traceFile, "trace-file", "", "write OpenTelemetry spans as JSON to this file")
	pf.StringVar(&g.metricsFile, "metrics-file", "", "write Prometheus metrics in text format to this file")

	root.AddCommand(newAlignCmd(g, stdout, stderr), newIndexCmd(g, stdout), newVersionCmd(g, stdout))
	return root
}

// loadConfig reads --config, then applies explicitly set flags.
func loadConfig(g *globals, override func(*config.Config)) (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return cfg, usageError{err}
	}
	override(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, usageError{err}
	}
	return cfg, nil
}

func newAlignCmd(g *globals, stdout, stderr io.Writer) *cobra.Command {
	var (
		o        appcore.Options
		format   string
		threads  int
		header   bool
		noMatch  int
		minK     int
		maxK     int
		window   int
		maxSites int
	)
	cmd := &cobra.Command{
		Use:     "align --genome FASTA --reads FASTA|FASTQ",
		Short:   "Align reads to a genome and write the hit report",
		Example: `  # xlsx report in ./results/sample_chr1.xlsx
  srat align -g chr1.fa -r sample.fq.gz -o results

  # TSV to stdout, reusing a persisted index
  srat align -g chr1.fa -r sample.fa --store idx -f tsv -o - | head`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g.ran = true
			f := cmd.Flags()
			cfg, err := loadConfig(g, func(c *config.Config) {
				if f.Changed("format") {
					c.Format = format
				}
				if f.Changed("threads") {
					c.Threads = threads
				}
				if f.Changed("header") {
					c.Header = header
				}
				if f.Changed("no-match-exit-code") {
					c.NoMatchExitCode = noMatch
				}
				if f.Changed("min-k") {
					c.MinK = minK
				}
				if f.Changed("max-k") {
					c.MaxK = maxK
				}
				if f.Changed("window") {
					c.Window = window
				}
				if f.Changed("max-sites") {
					c.MaxSites = maxSites
				}
			})
			if err != nil {
				return err
			}
			o.Config = cfg
			o.MetricsFile = g.metricsFile
			o.RunID = g.runID
			g.code = appcore.Run(cmd.Context(), stdout, stderr, o, g.log)
			return nil
		},
	}
	def := config.Default()
	f := cmd.Flags()
	f.StringVarP(&o.GenomePath, "genome", "g", "", "reference genome FASTA (one record, may be gzipped)")
	f.StringVarP(&o.ReadsPath, "reads", "r", "", `reads FASTA/FASTQ (may be gzipped, "-" for stdin)`)
	f.StringVarP(&o.OutDir, "out", "o", "out", `output directory, or "-" for stdout`)
	f.StringVar(&o.StorePath, "store", "", "index store directory (built on first use, reused after)")
	f.BoolVar(&o.Progress, "progress", false, "show a progress bar on stderr")
	f.StringVar(&o.SummaryFile, "summary", "", "write the per-run outcome counts as JSON to this file")
	f.StringVarP(&format, "format", "f", def.Format, "report format: xlsx, tsv, json, jsonl")
	f.IntVarP(&threads, "threads", "t", def.Threads, "worker goroutines (0 = all CPUs)")
	f.BoolVar(&header, "header", def.Header, "write the TSV header row")
	f.IntVar(&noMatch, "no-match-exit-code", def.NoMatchExitCode, "exit code when no read matched")
	f.IntVar(&minK, "min-k", def.MinK, "shortest match length")
	f.IntVar(&maxK, "max-k", def.MaxK, "longest indexed k-mer length")
	f.IntVar(&window, "window", def.Window, "middle window width")
	f.IntVar(&maxSites, "max-sites", def.MaxSites, "discard reads mapping to more sites than this")
	_ = cmd.MarkFlagRequired("genome")
	_ = cmd.MarkFlagRequired("reads")
	return cmd
}

func newIndexCmd(g *globals, stdout io.Writer) *cobra.Command {
	var (
		o          appcore.IndexOptions
		minK, maxK int
	)
	cmd := &cobra.Command{
		Use:     "index --genome FASTA --store DIR",
		Short:   "Build and persist the k-mer index of a genome",
		Example: `  srat index -g chr1.fa --store idx`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g.ran = true
			f := cmd.Flags()
			cfg, err := loadConfig(g, func(c *config.Config) {
				if f.Changed("min-k") {
					c.MinK = minK
				}
				if f.Changed("max-k") {
					c.MaxK = maxK
				}
			})
			if err != nil {
				return err
			}
			o.Config = cfg
			g.code = appcore.Index(cmd.Context(), stdout, o, g.log)
			return nil
		},
	}
	def := config.Default()
	f := cmd.Flags()
	f.StringVarP(&o.GenomePath, "genome", "g", "", "reference genome FASTA (one record, may be gzipped)")
	f.StringVar(&o.StorePath, "store", "", "index store directory")
	f.BoolVar(&o.Rebuild, "rebuild", false, "rebuild even when the store already holds this index")
	f.IntVar(&minK, "min-k", def.MinK, "shortest indexed k-mer length")
	f.IntVar(&maxK, "max-k", def.MaxK, "longest indexed k-mer length")
	_ = cmd.MarkFlagRequired("genome")
	_ = cmd.MarkFlagRequired("store")
	return cmd
}

func newVersionCmd(g *globals, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			g.ran = true
			_, err := fmt.Fprintf(stdout, "srat version %s\n", version.Version)
			return err
		},
	}
}

// RunContext executes the command line and returns the process exit code.
func RunContext(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	g := &globals{}
	root := newRootCmd(g, stdout, stderr)
	root.SetArgs(argv)

	err := root.ExecuteContext(ctx)
	if g.shutdown != nil {
		if serr := g.shutdown(context.Background()); serr != nil && err == nil {
			err = serr
		}
	}
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		// Errors raised before a command body runs are flag, argument or
		// required-flag problems.
		var ue usageError
		if errors.As(err, &ue) || (!g.ran && !g.setupFailed) {
			return appcore.ExitUsage
		}
		return appcore.ExitIO
	}
	return g.code
}

// Run is RunContext without cancellation.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

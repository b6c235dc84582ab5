package main

import (
	"context"
	"fmt"
	"os"
	"io"
	"os/signal"
	"sort"

	"gpgam/adapters/excel"
	"gpgam/adapters/ledger"
	"gpgam/app"
	"gpgam/domain/grid"
	"gpgam/domain/run"
	"gpgam/internal"
	"gpgam/internal/config"
	"gpgam/internal/errors"
	"gpgam/ports"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[%s] %v\n", errors.GetCode(err), err)
		os.Exit(1)
	}
}

type rootOptions struct {
	root string
}

func newRootCmd() *cobra.Command {
	var opts rootOptions
	var lat, lon float64
	var month, samples, dsn string
	var top int

	cmd := &cobra.Command{
		Use:   "gam",
		Short: "GAM sensitivity of emulated H2SO4 to the 37 perturbed parameters",
		Long: `Fit an additive model to GP-emulated H2SO4 against the LHC parameter sample
for one grid point and month, then write per-parameter variance importance and
gradient sign files.

Example: gam --ilat 34.375 --ilon -10.3125 --month jan`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSensitivity(cmd.Context(), opts, grid.Point{Lat: lat, Lon: lon}, month, samples, dsn, top)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.root, "root", "", "Repository root holding examples/ (overrides GAM_ROOT)")
	cmd.Flags().Float64Var(&lat, "ilat", 0, "Grid-cell latitude")
	cmd.Flags().Float64Var(&lon, "ilon", 0, "Grid-cell longitude")
	cmd.Flags().StringVar(&month, "month", "", "Month token, e.g. jan")
	cmd.Flags().StringVar(&samples, "samples", "", "Raw LHC sample file (overrides GAM_SAMPLES)")
	cmd.Flags().StringVar(&dsn, "ledger", "", "Run ledger DSN (overrides GAM_LEDGER_DSN)")
	cmd.Flags().IntVar(&top, "top", 0, "Print the N most important parameters")
	_ = cmd.MarkFlagRequired("ilat")
	_ = cmd.MarkFlagRequired("ilon")
	_ = cmd.MarkFlagRequired("month")

	cmd.AddCommand(
		newCompareCmd(&opts),
		newManifestCmd(&opts),
		newRunsCmd(&opts),
	)
	return cmd
}

func newCompareCmd(root *rootOptions) *cobra.Command {
	var points, month, baseline, optimised string
	var xlsx bool

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Time baseline and optimised GAM runs per grid point",
		Long: `Run the baseline (this binary) and the optimised command for each point,
one after the other, and save a timing table to
<gam-out>/comparison/timing_compare.csv.

The optimised command is a template: {lat}, {lon} and {month} are substituted.

Example: gam compare --points points.csv --optimised "Rscript GAM_optimised.R {lat} {lon} {month}" --xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd.Context(), *root, points, month, baseline, optimised, xlsx)
		},
	}

	cmd.Flags().StringVar(&points, "points", "", "CSV or XLSX with lat,lon[,month] rows (default: the four demo points)")
	cmd.Flags().StringVar(&month, "month", "jan", "Month for points that do not name one")
	cmd.Flags().StringVar(&baseline, "baseline", "", "Baseline command template (default: this binary)")
	cmd.Flags().StringVar(&optimised, "optimised", "", "Optimised command template (overrides GAM_OPTIMISED_CMD)")
	cmd.Flags().BoolVar(&xlsx, "xlsx", false, "Also write timing_compare.xlsx")
	return cmd
}

func newManifestCmd(root *rootOptions) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Checksum the demo inputs for a month and write manifest.csv",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManifest(cmd.Context(), *root, month)
		},
	}

	cmd.Flags().StringVar(&month, "month", "jan", "Month token")
	return cmd
}

func newRunsCmd(root *rootOptions) *cobra.Command {
	var lat, lon float64
	var month, dsn, id string
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List sensitivity runs recorded in the run ledger",
		Long: `List recorded runs newest first, optionally filtered by grid point and
month, or show one run with its output checksums.

Example: gam runs --ledger gam.db --ilat 34.375 --ilon -10.3125 --month jan`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var point *grid.Point
			if cmd.Flags().Changed("ilat") || cmd.Flags().Changed("ilon") {
				if !cmd.Flags().Changed("ilat") || !cmd.Flags().Changed("ilon") {
					return errors.InvalidInput("--ilat and --ilon must be given together")
				}
				point = &grid.Point{Lat: lat, Lon: lon}
			}
			filters := ports.RunFilters{Point: point, Month: month, Limit: limit}
			return runRuns(cmd.Context(), cmd.OutOrStdout(), *root, dsn, id, filters)
		},
	}

	cmd.Flags().Float64Var(&lat, "ilat", 0, "Only runs for this grid-cell latitude")
	cmd.Flags().Float64Var(&lon, "ilon", 0, "Only runs for this grid-cell longitude")
	cmd.Flags().StringVar(&month, "month", "", "Only runs for this month")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list (0 lists all)")
	cmd.Flags().StringVar(&id, "id", "", "Show a single run")
	cmd.Flags().StringVar(&dsn, "ledger", "", "Run ledger DSN (overrides GAM_LEDGER_DSN)")
	return cmd
}

// loadConfig reads the environment and applies the shared flag overrides
func loadConfig(root rootOptions, override func(*config.Config)) (*config.Config, *internal.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if root.root != "" {
		cfg.Paths.Root = root.root
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)), nil
}

func runSensitivity(ctx context.Context, root rootOptions, p grid.Point, month, samples, dsn string, top int) error {
	cfg, logger, err := loadConfig(root, func(c *config.Config) {
		if samples != "" {
			c.Paths.Samples = samples
		}
		if dsn != "" {
			c.Ledger.DSN = dsn
		}
	})
	if err != nil {
		return err
	}
	defer logger.Sync()

	var runLedger ports.RunLedgerWriter
	if cfg.Ledger.DSN != "" {
		l, err := ledger.Open(ctx, cfg.Ledger.Driver, cfg.Ledger.DSN)
		if err != nil {
			return errors.LedgerError("failed to open run ledger", err)
		}
		defer l.Close()
		runLedger = l
	}

	svc := app.NewSensitivityService(cfg, runLedger, logger)
	res, err := svc.Run(ctx, app.SensitivityRequest{Point: p, Month: month})
	if err != nil {
		return err
	}

	fmt.Printf("Saved: %s\n", res.Outputs.Variance)
	fmt.Printf("Saved: %s\n", res.Outputs.Sign)
	if res.Run != nil {
		fmt.Printf("Run: %s\n", res.Run.RunID)
	}
	if top > 0 {
		ranked := res.Record.Named()
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Importance > ranked[j].Importance })
		if top > len(ranked) {
			top = len(ranked)
		}
		for _, r := range ranked[:top] {
			fmt.Printf("%-20s %14.6e %+d\n", r.Name, r.Importance, r.Sign)
		}
	}
	return nil
}

func runCompare(ctx context.Context, root rootOptions, points, month, baseline, optimised string, xlsx bool) error {
	cfg, logger, err := loadConfig(root, func(c *config.Config) {
		if optimised != "" {
			c.Compare.OptimisedCmd = optimised
		}
	})
	if err != nil {
		return err
	}
	defer logger.Sync()

	targets := run.DefaultTargets()
	if points != "" {
		targets, err = excel.NewPointsReader(points, month).ReadTargets()
		if err != nil {
			return errors.Wrap(errors.InvalidInput(err.Error()), "failed to read points")
		}
	} else {
		for i := range targets {
			targets[i].Month = month
		}
	}

	if baseline == "" {
		self, err := os.Executable()
		if err != nil {
			return errors.Wrap(err, "cannot locate the gam binary for the baseline run")
		}
		baseline = self + " --ilat {lat} --ilon {lon} --month {month} --root " + cfg.Paths.Root
	}

	svc := app.NewCompareService(cfg.Paths, app.CompareOptions{
		BaselineCmd:  baseline,
		OptimisedCmd: cfg.Compare.OptimisedCmd,
		Dir:          cfg.Paths.Root,
		XLSX:         xlsx,
	}, os.Stdout, logger)
	_, err = svc.Run(ctx, targets)
	return err
}

func runManifest(ctx context.Context, root rootOptions, month string) error {
	cfg, logger, err := loadConfig(root, nil)
	if err != nil {
		return err
	}
	defer logger.Sync()

	m, err := app.NewManifestService(cfg.Paths, os.Stdout, logger).Build(ctx, month)
	if err != nil {
		return err
	}
	fmt.Printf("\nOK (%d inputs checksummed; %s written)\n", len(m.Entries), m.Path)
	return nil
}

func runRuns(ctx context.Context, out io.Writer, root rootOptions, dsn, id string, filters ports.RunFilters) error {
	cfg, logger, err := loadConfig(root, func(c *config.Config) {
		if dsn != "" {
			c.Ledger.DSN = dsn
		}
	})
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Ledger.DSN == "" {
		return errors.InvalidInput("no run ledger configured (set --ledger or GAM_LEDGER_DSN)")
	}
	l, err := ledger.Open(ctx, cfg.Ledger.Driver, cfg.Ledger.DSN)
	if err != nil {
		return errors.LedgerError("failed to open run ledger", err)
	}
	defer l.Close()

	svc := app.NewRunHistoryService(l, out)
	if id != "" {
		_, err = svc.Show(ctx, id)
		return err
	}
	_, err = svc.List(ctx, filters)
	return err
}

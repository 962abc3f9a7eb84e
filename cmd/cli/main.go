package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"gopermute/adapters/excel"
	"gopermute/adapters/postgres"
	"gopermute/adapters/report"
	"gopermute/adapters/rng"
	"gopermute/app"
	"gopermute/domain/permutation"
	"gopermute/internal/config"
	"gopermute/internal/engine"
)

func main() {
	// Best effort; the CLI works without a .env file
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "gopermute",
		Short: "Permutation hypothesis testing: exact enumeration and Monte Carlo sampling",
	}

	rootCmd.AddCommand(
		newExactCmd(),
		newSampleCmd(),
		newPlanCmd(),
		newRunsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runFlags are shared by the exact and sample commands
type runFlags struct {
	file         string
	responseCol  string
	groupCol     string
	covariateCol string
	statistic    string
	tail         string
	persist      bool
	reportPath   string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "file", "", "xlsx or csv data file (required)")
	cmd.Flags().StringVar(&f.responseCol, "response-col", "response", "response column name")
	cmd.Flags().StringVar(&f.groupCol, "group-col", "", "group column name (two-sample test)")
	cmd.Flags().StringVar(&f.covariateCol, "covariate-col", "", "covariate column name (regression test)")
	cmd.Flags().StringVar(&f.statistic, "statistic", "", "mean_difference|welch_t|regression_slope|pearson_correlation (default per dataset kind)")
	cmd.Flags().StringVar(&f.tail, "tail", string(permutation.TailTwoSidedBothTails), "upper|two_sided_doubled|two_sided_both_tails")
	cmd.Flags().BoolVar(&f.persist, "persist", false, "persist the run record (requires DATABASE_URL)")
	cmd.Flags().StringVar(&f.reportPath, "report", "", "write a markdown report to this path")
	_ = cmd.MarkFlagRequired("file")
}

func newExactCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "exact",
		Short: "Exact permutation test over every distinct label assignment",
		Long: `Enumerates every distinct label assignment and evaluates the test statistic
on each: all C(N,k) partitions for a two-sample dataset, all N! response
orderings for a regression dataset. Rejects datasets above the configured
ceilings; use "sample" for those.

Example: gopermute exact --file ants.csv --response-col count --group-col habitat`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRun(cmd.Context(), flags, app.RunRequest{
				Method: app.MethodExact,
				Tail:   permutation.TailMode(flags.tail),
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newSampleCmd() *cobra.Command {
	flags := &runFlags{}
	var draws int
	var seed int64
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Monte Carlo permutation test with a deterministic seed",
		Long: `Draws independent uniformly-random shuffles of the response vector and
evaluates the test statistic on each. The same seed and draw count always
reproduce the same distribution.

Example: gopermute sample --file rates.xlsx --response-col rate --covariate-col year --draws 10000 --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRun(cmd.Context(), flags, app.RunRequest{
				Method: app.MethodMonteCarlo,
				Draws:  draws,
				Seed:   seed,
				Tail:   permutation.TailMode(flags.tail),
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&draws, "draws", 0, "Monte Carlo draw count (0 uses the configured default)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "RNG seed")
	return cmd
}

func newPlanCmd() *cobra.Command {
	var p, cv float64
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan the Monte Carlo draw count for a target p-value precision",
		Long: `Estimates the draw count needed so the coefficient of variation of a
p-value estimate near p stays at or below cv, using n = (1-p)/(p*cv^2).

Example: gopermute plan --p 0.05 --cv 0.05`,
		RunE: func(cmd *cobra.Command, args []string) error {
			draws, err := engine.RequiredDraws(p, cv)
			if err != nil {
				return err
			}
			return printJSON(map[string]interface{}{
				"target_p":                 p,
				"coefficient_of_variation": cv,
				"required_draws":           draws,
			})
		},
	}
	cmd.Flags().Float64Var(&p, "p", 0.05, "target p-value estimate")
	cmd.Flags().Float64Var(&cv, "cv", 0.05, "desired coefficient of variation of the estimate")
	return cmd
}

func newRunsCmd() *cobra.Command {
	var limit int
	var runID string
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List or fetch persisted run records (requires DATABASE_URL)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.Database.Enabled {
				return fmt.Errorf("runs requires DATABASE_URL to be set")
			}
			db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.URL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			repo := postgres.NewRunRepository(db)
			if runID != "" {
				record, err := repo.GetRun(ctx, runID)
				if err != nil {
					return err
				}
				return printJSON(record)
			}
			records, err := repo.ListRuns(ctx, limit)
			if err != nil {
				return err
			}
			return printJSON(records)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	cmd.Flags().StringVar(&runID, "id", "", "fetch a single run by ID")
	return cmd
}

func executeRun(ctx context.Context, flags *runFlags, req app.RunRequest) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ds, err := loadDataset(ctx, flags)
	if err != nil {
		return err
	}

	stat, err := buildStatistic(flags.statistic, ds)
	if err != nil {
		return err
	}

	service, cleanup, err := buildService(ctx, cfg, flags.persist)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := service.Run(ctx, ds, stat, req)
	if err != nil {
		return err
	}

	if flags.reportPath != "" {
		md, err := report.NewGenerator().Markdown(result.Record, result.Distribution)
		if err != nil {
			return err
		}
		if err := os.WriteFile(flags.reportPath, []byte(md), 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	return printJSON(result.Record)
}

func loadDataset(ctx context.Context, flags *runFlags) (permutation.Dataset, error) {
	reader := excel.NewDataReader(flags.file)
	switch {
	case flags.groupCol != "" && flags.covariateCol != "":
		return permutation.Dataset{}, fmt.Errorf("--group-col and --covariate-col are mutually exclusive")
	case flags.groupCol != "":
		return reader.ReadTwoSample(ctx, flags.responseCol, flags.groupCol)
	case flags.covariateCol != "":
		return reader.ReadRegression(ctx, flags.responseCol, flags.covariateCol)
	}
	return permutation.Dataset{}, fmt.Errorf("one of --group-col or --covariate-col is required")
}

func buildStatistic(name string, ds permutation.Dataset) (permutation.Statistic, error) {
	if name == "" {
		if ds.IsGrouped() {
			name = "mean_difference"
		} else {
			name = "regression_slope"
		}
	}

	if ds.IsGrouped() {
		levelA, levelB, err := ds.GroupLevels()
		if err != nil {
			return nil, err
		}
		switch name {
		case "mean_difference":
			return permutation.MeanDifference{LevelA: levelA, LevelB: levelB}, nil
		case "welch_t":
			return permutation.WelchT{LevelA: levelA, LevelB: levelB}, nil
		}
		return nil, fmt.Errorf("statistic %q does not apply to a two-sample dataset", name)
	}

	switch name {
	case "regression_slope":
		return permutation.RegressionSlope{}, nil
	case "pearson_correlation":
		return permutation.Correlation{}, nil
	}
	return nil, fmt.Errorf("statistic %q does not apply to a regression dataset", name)
}

func buildService(ctx context.Context, cfg *config.Config, persist bool) (*app.TestService, func(), error) {
	eng := engine.New(rng.New(), cfg.Engine)
	cleanup := func() {}

	if !persist {
		return app.NewTestService(eng, nil, cfg.Engine.DefaultDraws), cleanup, nil
	}

	if !cfg.Database.Enabled {
		return nil, nil, fmt.Errorf("--persist requires DATABASE_URL to be set")
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	cleanup = func() { db.Close() }

	repo := postgres.NewRunRepository(db)
	if impl, ok := repo.(*postgres.RunRepositoryImpl); ok {
		if err := impl.EnsureSchema(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	return app.NewTestService(eng, repo, cfg.Engine.DefaultDraws), cleanup, nil
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

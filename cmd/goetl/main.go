package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"goetl/adapters/tabular"
	"goetl/app"
	"goetl/domain/run"
	"goetl/internal"
	"goetl/internal/config"
	"goetl/internal/errors"
	"goetl/internal/preprocess"
	"goetl/internal/profiling"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit status
func execute(args []string, stdout, stderr io.Writer) int {
	return executeCommand(newRootCmd(), args, stdout, stderr)
}

// executeCommand runs cmd, reporting failures and panics the same way
func executeCommand(cmd *cobra.Command, args []string, stdout, stderr io.Writer) (code int) {
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	defer func() {
		if r := recover(); r != nil {
			err := errors.InternalError(fmt.Sprintf("unexpected panic: %v", r))
			app.ReportFailure(stderr, err)
			code = errors.ExitCode(err)
		}
	}()

	if err := cmd.Execute(); err != nil {
		app.ReportFailure(stderr, err)
		return errors.ExitCode(err)
	}
	return 0
}

// pipelineFlags are shared by every subcommand; set flags override the environment
type pipelineFlags struct {
	input             string
	output            string
	params            string
	manifest          string
	exclude           string
	numericImpute     string
	numericFill       string
	categoricalImpute string
	categoricalFill   string
	unknownCategories string
	logLevel          string
}

func newRootCmd() *cobra.Command {
	flags := &pipelineFlags{}

	rootCmd := &cobra.Command{
		Use:   "goetl",
		Short: "Prepare a tabular listings export for modeling",
		Long: `goetl reads a CSV or XLSX file, imputes and standard-scales numerical
columns, imputes and one-hot encodes categorical columns, drops excluded
columns, and writes the result as CSV or XLSX.

Configuration is read from the environment (and .env) and overridden by flags:
  ETL_INPUT_PATH, ETL_OUTPUT_PATH, ETL_PARAMS_PATH, ETL_MANIFEST_PATH,
  ETL_EXCLUDED_COLUMNS, ETL_NUMERIC_IMPUTE, ETL_NUMERIC_FILL,
  ETL_CATEGORICAL_IMPUTE, ETL_CATEGORICAL_FILL, ETL_UNKNOWN_CATEGORIES, LOG_LEVEL`,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, flags)
		},
	}
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.ConfigInvalid(err.Error())
	})

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.input, "input", "i", "", "Input file (.csv, .xlsx)")
	pf.StringVarP(&flags.output, "output", "o", "", "Output file (.csv, .xlsx)")
	pf.StringVar(&flags.params, "params", "", "Fitted parameters file (fit writes it, apply reads it)")
	pf.StringVar(&flags.manifest, "manifest", "", "Write the run manifest as JSON to this path")
	pf.StringVar(&flags.exclude, "exclude", "", "Comma separated columns to drop (default name,host_name)")
	pf.StringVar(&flags.numericImpute, "numeric-impute", "", "Numerical imputation: mean|median|constant")
	pf.StringVar(&flags.numericFill, "numeric-fill", "", "Fill value for --numeric-impute constant")
	pf.StringVar(&flags.categoricalImpute, "categorical-impute", "", "Categorical imputation: most_frequent|constant")
	pf.StringVar(&flags.categoricalFill, "categorical-fill", "", "Fill value for --categorical-impute constant")
	pf.StringVar(&flags.unknownCategories, "unknown-categories", "", "Unseen categories at apply time: ignore|error")
	pf.StringVar(&flags.logLevel, "log-level", "", "ERROR|WARN|INFO|DEBUG|TRACE")

	rootCmd.AddCommand(
		newRunCmd(flags),
		newFitCmd(flags),
		newApplyCmd(flags),
		newInspectCmd(flags),
	)
	return rootCmd
}

func newRunCmd(flags *pipelineFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Extract, transform and load in one pass",
		Long: `Fit the preprocessing on the input and write the transformed dataset.

Example: goetl run --input AB_NYC_2019.csv --output processed_data.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, flags)
		},
	}
}

func newFitCmd(flags *pipelineFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "fit",
		Short: "Learn preprocessing parameters and save them",
		Long: `Learn imputation, scaling and encoding parameters from the input and save
them as JSON without writing transformed data.

Example: goetl fit --input train.csv --params params.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := resolveConfig(cmd, flags)
			if err != nil {
				return err
			}
			if cfg.Paths.ParamsPath == "" {
				return errors.ConfigInvalid("fit requires --params or ETL_PARAMS_PATH")
			}

			manifest, err := newService(cfg, logger).Fit(cmd.Context(), app.Paths{
				Input:  cfg.Paths.InputPath,
				Params: cfg.Paths.ParamsPath,
			})
			writeManifest(cfg, manifest, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Parameters saved to %s\n", cfg.Paths.ParamsPath)
			return nil
		},
	}
}

func newApplyCmd(flags *pipelineFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Transform the input with previously fitted parameters",
		Long: `Transform the input using parameters saved by fit and write the result.

Example: goetl apply --input new_listings.csv --params params.json --output scored.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := resolveConfig(cmd, flags)
			if err != nil {
				return err
			}
			if cfg.Paths.ParamsPath == "" {
				return errors.ConfigInvalid("apply requires --params or ETL_PARAMS_PATH")
			}

			manifest, err := newService(cfg, logger).Apply(cmd.Context(), app.Paths{
				Input:  cfg.Paths.InputPath,
				Output: cfg.Paths.OutputPath,
				Params: cfg.Paths.ParamsPath,
			})
			writeManifest(cfg, manifest, logger)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ETL process completed successfully!")
			return nil
		},
	}
}

func newInspectCmd(flags *pipelineFlags) *cobra.Command {
	var topN int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Profile the input columns without transforming them",
		Long: `Show how each input column would be treated, with counts, missing
values and summary statistics.

Example: goetl inspect --input AB_NYC_2019.csv --top 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := resolveConfig(cmd, flags)
			if err != nil {
				return err
			}
			profiles, err := newService(cfg, logger).Inspect(cmd.Context(), cfg.Paths.InputPath, topN)
			if err != nil {
				return err
			}
			if asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(profiles)
			}
			printProfiles(cmd.OutOrStdout(), profiles)
			return nil
		},
	}

	cmd.Flags().IntVar(&topN, "top", 5, "Most frequent categories to show per column")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print profiles as JSON")
	return cmd
}

func runPipeline(cmd *cobra.Command, flags *pipelineFlags) error {
	cfg, logger, err := resolveConfig(cmd, flags)
	if err != nil {
		return err
	}

	manifest, err := newService(cfg, logger).Run(cmd.Context(), app.Paths{
		Input:  cfg.Paths.InputPath,
		Output: cfg.Paths.OutputPath,
	})
	writeManifest(cfg, manifest, logger)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "ETL process completed successfully!")
	return nil
}

// resolveConfig loads env configuration and applies the flags that were set
func resolveConfig(cmd *cobra.Command, flags *pipelineFlags) (*config.Config, *internal.Logger, error) {
	config.LoadDotenv()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	set := cmd.Flags().Changed
	if set("input") {
		cfg.Paths.InputPath = flags.input
	}
	if set("output") {
		cfg.Paths.OutputPath = flags.output
	}
	if set("params") {
		cfg.Paths.ParamsPath = flags.params
	}
	if set("manifest") {
		cfg.Paths.ManifestPath = flags.manifest
	}
	if set("exclude") {
		cfg.Preprocess.ExcludedColumns = config.ParseList(flags.exclude)
	}
	if set("numeric-impute") {
		cfg.Preprocess.NumericStrategy = preprocess.NumericStrategy(flags.numericImpute)
	}
	if set("numeric-fill") {
		fill, err := strconv.ParseFloat(strings.TrimSpace(flags.numericFill), 64)
		if err != nil {
			return nil, nil, errors.ConfigInvalid("--numeric-fill must be a number")
		}
		cfg.Preprocess.NumericFill = fill
	}
	if set("categorical-impute") {
		cfg.Preprocess.CategoricalStrategy = preprocess.CategoricalStrategy(flags.categoricalImpute)
	}
	if set("categorical-fill") {
		cfg.Preprocess.CategoricalFill = flags.categoricalFill
	}
	if set("unknown-categories") {
		cfg.Preprocess.UnknownCategories = preprocess.UnknownPolicy(flags.unknownCategories)
	}
	if set("log-level") {
		cfg.Logging.Level = internal.ParseLogLevel(flags.logLevel)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, internal.NewLoggerTo(cmd.ErrOrStderr(), cfg.Logging.Level), nil
}

func newService(cfg *config.Config, logger *internal.Logger) *app.ETLService {
	return app.NewETLService(tabular.NewDataReader(logger), tabular.NewDataWriter(logger), cfg.Preprocess, logger)
}

func writeManifest(cfg *config.Config, manifest *run.Manifest, logger *internal.Logger) {
	if cfg.Paths.ManifestPath == "" || manifest == nil {
		return
	}
	if err := app.WriteManifest(manifest, cfg.Paths.ManifestPath); err != nil {
		logger.Warn("failed to write manifest: %v", err)
		return
	}
	logger.Debug("manifest written to %s", cfg.Paths.ManifestPath)
}

func printProfiles(w io.Writer, profiles []profiling.ColumnProfile) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tROLE\tTYPE\tCOUNT\tMISSING\tDISTINCT\tDETAIL")
	for _, p := range profiles {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			p.Name, p.Role, p.Type, p.Count, p.Missing, p.Distinct, profileDetail(p))
	}
	tw.Flush()
}

func profileDetail(p profiling.ColumnProfile) string {
	if p.Summary != nil {
		return fmt.Sprintf("mean=%.4g std=%.4g min=%.4g median=%.4g max=%.4g",
			p.Summary.Mean, p.Summary.StdDev, p.Summary.Min, p.Summary.Median, p.Summary.Max)
	}
	parts := make([]string, 0, len(p.TopValues))
	for _, v := range p.TopValues {
		parts = append(parts, fmt.Sprintf("%s(%d)", v.Value, v.Count))
	}
	return strings.Join(parts, " ")
}

package app

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"goetl/domain/core"
	"goetl/domain/dataset"
	"goetl/domain/run"
	"goetl/internal"
	"goetl/internal/errors"
	"goetl/internal/preprocess"
	"goetl/internal/profiling"
	"goetl/ports"
)

// Pipeline stages, used to tag errors
const (
	StageExtract   = "extract"
	StageTransform = "transform"
	StageLoad      = "load"
)

var _ ports.Transformer = (*preprocess.Pipeline)(nil)

// Paths names the files one invocation touches
type Paths struct {
	Input  string
	Output string
	Params string
}

// ETLService sequences extract, transform and load. It holds no state
// between calls.
type ETLService struct {
	reader ports.DatasetReader
	writer ports.DatasetWriter
	opts   preprocess.Options
	logger *internal.Logger
}

// NewETLService creates the orchestrator
func NewETLService(reader ports.DatasetReader, writer ports.DatasetWriter, opts preprocess.Options, logger *internal.Logger) *ETLService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ETLService{
		reader: reader,
		writer: writer,
		opts:   opts,
		logger: logger,
	}
}

// Extract loads the input file
func (s *ETLService) Extract(ctx context.Context, path string) (*dataset.Dataset, error) {
	s.logger.Info("Extracting data...")
	ds, err := s.reader.Read(ctx, path)
	if err != nil {
		return nil, errors.InStage(StageExtract, err)
	}
	s.logger.Info("Data extracted successfully. Shape: %s", ds.Shape())
	return ds, nil
}

// Transform fits the preprocessing pipeline on ds and applies it
func (s *ETLService) Transform(ds *dataset.Dataset) (*dataset.Dataset, *preprocess.Fitted, error) {
	s.logger.Info("Transforming data...")
	out, fitted, err := preprocess.NewPipeline(s.opts, s.logger).FitTransform(ds)
	if err != nil {
		return nil, nil, errors.InStage(StageTransform, err)
	}
	s.logger.Info("Data transformed successfully. Shape: %s", out.Shape())
	return out, fitted, nil
}

// Load writes the transformed dataset
func (s *ETLService) Load(ctx context.Context, ds *dataset.Dataset, path string) error {
	s.logger.Info("Loading data...")
	if err := s.writer.Write(ctx, ds, path); err != nil {
		return errors.InStage(StageLoad, err)
	}
	return nil
}

// Run executes extract -> transform -> load. The returned manifest is
// populated on failure too.
func (s *ETLService) Run(ctx context.Context, paths Paths) (*run.Manifest, error) {
	manifest := run.NewManifest("run", paths.Input, paths.Output, s.opts.Settings())

	ds, err := s.Extract(ctx, paths.Input)
	if err != nil {
		return s.fail(manifest, err)
	}
	s.recordInput(manifest, ds)

	out, fitted, err := s.Transform(ds)
	if err != nil {
		return s.fail(manifest, err)
	}
	manifest.Numerical = fitted.Classification.Numerical
	manifest.Categorical = fitted.Classification.Categorical
	manifest.Excluded = fitted.Classification.Excluded

	if err := s.Load(ctx, out, paths.Output); err != nil {
		return s.fail(manifest, err)
	}
	return s.complete(manifest, out)
}

// Fit learns the preprocessing parameters from the input and saves them
// without writing transformed data.
func (s *ETLService) Fit(ctx context.Context, paths Paths) (*run.Manifest, error) {
	manifest := run.NewManifest("fit", paths.Input, "", s.opts.Settings())

	ds, err := s.Extract(ctx, paths.Input)
	if err != nil {
		return s.fail(manifest, err)
	}
	s.recordInput(manifest, ds)

	s.logger.Info("Fitting preprocessing parameters...")
	fitted, err := preprocess.NewPipeline(s.opts, s.logger).Fit(ds)
	if err != nil {
		return s.fail(manifest, errors.InStage(StageTransform, err))
	}
	manifest.Numerical = fitted.Classification.Numerical
	manifest.Categorical = fitted.Classification.Categorical
	manifest.Excluded = fitted.Classification.Excluded

	if err := fitted.Save(paths.Params); err != nil {
		return s.fail(manifest, errors.InStage(StageLoad, err))
	}
	s.logger.Info("Fitted parameters saved to %s (%d output columns)", paths.Params, len(fitted.FeatureNames()))
	manifest.Complete()
	return manifest, nil
}

// Apply transforms the input with parameters saved by Fit and writes the result
func (s *ETLService) Apply(ctx context.Context, paths Paths) (*run.Manifest, error) {
	manifest := run.NewManifest("apply", paths.Input, paths.Output, s.opts.Settings())

	fitted, err := preprocess.LoadFitted(paths.Params)
	if err != nil {
		return s.fail(manifest, errors.InStage(StageExtract, err))
	}
	manifest.SettingsHash = core.ComputeSettingsHash(fitted.Options.Settings())

	ds, err := s.Extract(ctx, paths.Input)
	if err != nil {
		return s.fail(manifest, err)
	}
	s.recordInput(manifest, ds)

	s.logger.Info("Transforming data with fitted parameters from %s...", paths.Params)
	out, err := fitted.ApplyWith(ds, s.logger)
	if err != nil {
		return s.fail(manifest, errors.InStage(StageTransform, err))
	}
	s.logger.Info("Data transformed successfully. Shape: %s", out.Shape())
	manifest.Numerical = fitted.Classification.Numerical
	manifest.Categorical = fitted.Classification.Categorical
	manifest.Excluded = fitted.Classification.Excluded

	if err := s.Load(ctx, out, paths.Output); err != nil {
		return s.fail(manifest, err)
	}
	return s.complete(manifest, out)
}

// Inspect profiles the input columns without transforming them
func (s *ETLService) Inspect(ctx context.Context, path string, topN int) ([]profiling.ColumnProfile, error) {
	ds, err := s.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	return profiling.NewDataProfiler(topN).ProfileDataset(ds, s.opts.ExcludedColumns), nil
}

func (s *ETLService) recordInput(manifest *run.Manifest, ds *dataset.Dataset) {
	manifest.InputShape = ds.Shape()
	if hash, err := core.HashFile(manifest.InputPath); err == nil {
		manifest.InputHash = hash
	} else {
		s.logger.Warn("could not hash input %s: %v", manifest.InputPath, err)
	}
}

func (s *ETLService) complete(manifest *run.Manifest, out *dataset.Dataset) (*run.Manifest, error) {
	manifest.OutputShape = out.Shape()
	if hash, err := core.HashFile(manifest.OutputPath); err == nil {
		manifest.OutputHash = hash
	} else {
		s.logger.Warn("could not hash output %s: %v", manifest.OutputPath, err)
	}
	manifest.Complete()
	s.logger.Debug("run %s completed in %dms (fingerprint %s, output %s)",
		manifest.RunID, manifest.DurationMs, manifest.Fingerprint().Short(), manifest.OutputHash.Short())
	return manifest, nil
}

func (s *ETLService) fail(manifest *run.Manifest, err error) (*run.Manifest, error) {
	manifest.Fail(err)
	return manifest, err
}

// WriteManifest saves a manifest as indented JSON. Incomplete manifests are
// rejected and nothing is written.
func WriteManifest(manifest *run.Manifest, path string) error {
	if err := manifest.Validate(); err != nil {
		return errors.Wrapf(core.NewSaveError(path, err), "manifest for run %s is incomplete", manifest.RunID)
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return core.NewSaveError(path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return core.NewSaveError(path, err)
	}
	return nil
}

// ReportFailure prints a failed run the way the console expects it:
// the message, the stage and code, then the full trace.
func ReportFailure(w io.Writer, err error) {
	fmt.Fprintf(w, "Pipeline Error: %v\n", err)
	if stage := failedStage(err); stage != "" {
		fmt.Fprintf(w, "Stage: %s, code: %s, exit status: %d\n", stage, errors.GetCode(err), errors.ExitCode(err))
	}
	if core.IsNotFoundError(err) {
		fmt.Fprintln(w, "Check the --input/--params paths or ETL_INPUT_PATH/ETL_PARAMS_PATH.")
	}
	fmt.Fprintf(w, "%+v\n", err)
}

// failedStage is the stage recorded on err, or the one its kind belongs to
func failedStage(err error) string {
	if stage := errors.GetStage(err); stage != "" {
		return stage
	}
	switch {
	case core.IsInputError(err):
		return StageExtract
	case core.IsTransformError(err):
		return StageTransform
	case stderrors.Is(err, core.ErrSave):
		return StageLoad
	}
	return ""
}

package preprocess

import (
	"fmt"
	"math"
	"strconv"

	"github.com/pkg/errors"

	"goetl/domain/core"
	"goetl/domain/dataset"
	"goetl/internal"
)

// NumericParams holds what the numerical branch learned for one column
type NumericParams struct {
	Column string         `json:"column"`
	Fill   float64        `json:"fill"`
	Scaler StandardScaler `json:"scaler"`
}

// CategoricalParams holds what the categorical branch learned for one column
type CategoricalParams struct {
	Column  string        `json:"column"`
	Fill    string        `json:"fill"`
	Encoder OneHotEncoder `json:"encoder"`
}

// Fitted is a pipeline whose statistics have been learned and can be applied
// to the same or to new data.
type Fitted struct {
	Options        Options             `json:"options"`
	Classification Classification      `json:"classification"`
	Numerical      []NumericParams     `json:"numerical"`
	Categorical    []CategoricalParams `json:"categorical"`
}

// Pipeline is the two-branch preprocessing pipeline:
// numerical columns are imputed then standardized,
// categorical columns are imputed then one-hot encoded.
type Pipeline struct {
	opts   Options
	logger *internal.Logger
}

// NewPipeline creates a pipeline; a nil logger falls back to the default logger
func NewPipeline(opts Options, logger *internal.Logger) *Pipeline {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Pipeline{opts: opts, logger: logger}
}

// Transform fits the pipeline on ds and applies it to ds in one pass
func (p *Pipeline) Transform(ds *dataset.Dataset) (*dataset.Dataset, error) {
	out, _, err := p.FitTransform(ds)
	return out, err
}

// FitTransform fits on ds, applies to ds, and also returns the fitted parameters
func (p *Pipeline) FitTransform(ds *dataset.Dataset) (*dataset.Dataset, *Fitted, error) {
	fitted, err := p.Fit(ds)
	if err != nil {
		return nil, nil, err
	}
	out, err := p.apply(fitted, ds)
	if err != nil {
		return nil, nil, err
	}
	return out, fitted, nil
}

// Fit classifies the columns of ds and learns imputation, scaling and encoding parameters
func (p *Pipeline) Fit(ds *dataset.Dataset) (fitted *Fitted, err error) {
	if err := p.opts.Validate(); err != nil {
		return nil, err
	}
	if ds.IsEmpty() {
		return nil, errors.Wrapf(core.ErrEmptyInput, "input has shape %s", shapeOf(ds))
	}

	classes, err := Classify(ds, p.opts.ExcludedColumns)
	p.logger.Info("Numerical Features: %v", classes.Numerical)
	p.logger.Info("Categorical Features (Processed): %v", classes.Categorical)
	if len(classes.Excluded) > 0 {
		p.logger.Debug("Excluded Features: %v", classes.Excluded)
	}
	if err != nil {
		return nil, errors.Wrap(err, "no valid numerical or categorical columns found")
	}

	defer p.recoverAsTransformError(&err)

	fitted = &Fitted{Options: p.opts, Classification: classes}
	for _, name := range classes.Numerical {
		col, _ := ds.Column(name)
		params, err := p.fitNumeric(col)
		if err != nil {
			return nil, p.reportFailure(err)
		}
		fitted.Numerical = append(fitted.Numerical, params)
	}
	for _, name := range classes.Categorical {
		col, _ := ds.Column(name)
		params, err := p.fitCategorical(col)
		if err != nil {
			return nil, p.reportFailure(err)
		}
		fitted.Categorical = append(fitted.Categorical, params)
	}
	return fitted, nil
}

func (p *Pipeline) fitNumeric(col *dataset.Column) (NumericParams, error) {
	observed := col.ObservedNumbers()
	for _, v := range observed {
		if math.IsInf(v, 0) {
			return NumericParams{}, core.NewTransformError(col.Name, core.ErrNonFiniteValue, "input contains infinity")
		}
	}
	fill, err := fitNumericFill(col.Name, p.opts.NumericStrategy, p.opts.NumericFill, observed)
	if err != nil {
		return NumericParams{}, err
	}
	scaler, err := FitStandardScaler(col.Name, imputeNumbers(col, fill))
	if err != nil {
		return NumericParams{}, err
	}
	p.logger.Trace("fitted %s: fill=%g mean=%g scale=%g", col.Name, fill, scaler.Mean, scaler.Scale)
	return NumericParams{Column: col.Name, Fill: fill, Scaler: scaler}, nil
}

func (p *Pipeline) fitCategorical(col *dataset.Column) (CategoricalParams, error) {
	values := stringValues(col)
	fill := fitCategoricalFill(p.opts.CategoricalStrategy, p.opts.CategoricalFill, observedOf(values, col.Missing))
	encoder := FitOneHotEncoder(col.Name, imputeStrings(values, col.Missing, fill))
	p.logger.Trace("fitted %s: fill=%q categories=%d", col.Name, fill, len(encoder.Categories))
	return CategoricalParams{Column: col.Name, Fill: fill, Encoder: encoder}, nil
}

// Apply runs already fitted parameters against ds
func (f *Fitted) Apply(ds *dataset.Dataset) (*dataset.Dataset, error) {
	return NewPipeline(f.Options, nil).apply(f, ds)
}

// ApplyWith is Apply with an explicit logger
func (f *Fitted) ApplyWith(ds *dataset.Dataset, logger *internal.Logger) (*dataset.Dataset, error) {
	return NewPipeline(f.Options, logger).apply(f, ds)
}

func (p *Pipeline) apply(f *Fitted, ds *dataset.Dataset) (out *dataset.Dataset, err error) {
	if ds.IsEmpty() {
		return nil, errors.Wrapf(core.ErrEmptyInput, "input has shape %s", shapeOf(ds))
	}
	defer p.recoverAsTransformError(&err)

	p.logger.Info("Applying transformations...")
	names := f.FeatureNames()
	columns := make([]*dataset.Column, 0, len(names))

	for _, params := range f.Numerical {
		col, ok := ds.Column(params.Column)
		if !ok {
			return nil, p.reportFailure(core.NewTransformError(params.Column, core.ErrMissingColumn, "numerical column not found"))
		}
		if !col.IsNumeric() {
			return nil, p.reportFailure(core.NewTransformError(params.Column, core.ErrIncompatibleType, "expected numerical values, found text"))
		}
		values := imputeNumbers(col, params.Fill)
		for _, v := range values {
			if math.IsInf(v, 0) {
				return nil, p.reportFailure(core.NewTransformError(params.Column, core.ErrNonFiniteValue, "input contains infinity"))
			}
		}
		params.Scaler.Apply(values)
		columns = append(columns, dataset.NewNumericColumn(names[len(columns)], values))
	}

	for _, params := range f.Categorical {
		col, ok := ds.Column(params.Column)
		if !ok {
			return nil, p.reportFailure(core.NewTransformError(params.Column, core.ErrMissingColumn, "categorical column not found"))
		}
		values := imputeStrings(stringValues(col), col.Missing, params.Fill)
		indicators, err := params.Encoder.Encode(values, f.Options.UnknownCategories)
		if err != nil {
			return nil, p.reportFailure(err)
		}
		for _, indicator := range indicators {
			columns = append(columns, dataset.NewNumericColumn(names[len(columns)], indicator))
		}
	}

	p.logger.Info("Transformation successful! Output shape: (%d, %d)", ds.Rows(), len(columns))

	out, err = dataset.New(columns...)
	if err != nil {
		return nil, p.reportFailure(errors.WithStack(fmt.Errorf("%w: assembling output: %v", core.ErrTransform, err)))
	}
	return out, nil
}

// FeatureNames lists output columns: numerical names first, then indicators
// grouped by source column.
func (f *Fitted) FeatureNames() []string {
	var names []string
	for _, params := range f.Numerical {
		names = append(names, params.Column)
	}
	for _, params := range f.Categorical {
		names = append(names, params.Encoder.FeatureNames()...)
	}
	return names
}

func (p *Pipeline) reportFailure(err error) error {
	p.logger.Error("Error during transformation: %+v", err)
	return err
}

// recoverAsTransformError turns a panic inside the pipeline into a TransformError
func (p *Pipeline) recoverAsTransformError(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	*errp = p.reportFailure(errors.WithStack(fmt.Errorf("%w: panic: %v", core.ErrTransform, r)))
}

// stringValues views a column as text; numbers are rendered in their shortest form
func stringValues(col *dataset.Column) []string {
	if !col.IsNumeric() {
		return col.Strings
	}
	out := make([]string, col.Len())
	for i, v := range col.Numbers {
		if !col.IsMissing(i) {
			out[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return out
}

func observedOf(values []string, missing []bool) []string {
	out := make([]string, 0, len(values))
	for i, v := range values {
		if !missing[i] {
			out = append(out, v)
		}
	}
	return out
}

func shapeOf(ds *dataset.Dataset) dataset.Shape {
	if ds == nil {
		return dataset.Shape{}
	}
	return ds.Shape()
}

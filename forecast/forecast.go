// Package forecast fits a linear model of growth, changepoint, seasonality and event features to
// a univariate time series and predicts it at arbitrary time points.
package forecast

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/aouyang1/go-forecaster-server/feature"
	"github.com/aouyang1/go-forecaster-server/forecast/options"
	"github.com/aouyang1/go-forecaster-server/linearmodel"
	mat_ "github.com/aouyang1/go-forecaster-server/mat"
	"github.com/aouyang1/go-forecaster-server/timedataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrUninitializedForecast    = errors.New("uninitialized forecast")
	ErrInsufficientTrainingData = errors.New("insufficient training data after removing Nans")
	ErrNoModelCoefficients      = errors.New("no model coefficients from fit")
	ErrUntrainedForecast        = errors.New("forecast has not been trained yet")
	ErrMissingFeature           = errors.New("trained feature missing from generated features")
)

// Forecast represents a single forecast model of a time series. This is a linear model solved
// with ordinary least squares which decomposes the series into an intercept, trend components
// (growth and changepoints), seasonal components and events.
type Forecast struct {
	inputOpt *options.Options
	opt      *options.Options // resolved against the training data on fit
	scores   *Scores          // score calculations after training

	// model coefficients
	fLabels *feature.Labels

	trainStartTime  time.Time
	trainEndTime    time.Time
	residual        []float64
	trainComponents Components

	coef      []float64
	intercept float64
	trained   bool
}

// New creates a new forecast instance with the given options. If none are provided, a default
// is used
func New(opt *options.Options) (*Forecast, error) {
	if opt == nil {
		opt = options.NewDefaultOptions()
	}
	if err := opt.Validate(); err != nil {
		return nil, fmt.Errorf("unable to validate forecast options, %w", err)
	}

	return &Forecast{inputOpt: opt, opt: opt}, nil
}

// NewFromModel creates a new forecast instance given a forecast Model to initialize. This
// instance can be used for inference immediately and does not need to be trained again. This is
// the reload path for models dumped with predict --model-out.
func NewFromModel(model Model) (*Forecast, error) {
	labels, err := model.Weights.FeatureLabels()
	if err != nil {
		return nil, err
	}

	opt := model.Options
	if opt == nil {
		opt = options.NewDefaultOptions()
	}
	opt.MarkResolved()

	f := &Forecast{
		inputOpt:       opt,
		opt:            opt,
		fLabels:        feature.NewLabels(labels),
		trainStartTime: model.TrainStartTime,
		trainEndTime:   model.TrainEndTime,
		intercept:      model.Weights.Intercept,
		coef:           model.Weights.Coefficients(),
		scores:         model.Scores,
		trained:        true,
	}
	return f, nil
}

// Fit takes the input training data and fits a forecast model for possible changepoints,
// seasonal components, events and intercept. Time must be strictly increasing and NaN values
// are skipped.
func (f *Forecast) Fit(t []time.Time, y []float64) error {
	if f == nil {
		return ErrUninitializedForecast
	}

	trainingData, err := timedataset.NewUnivariateDataset(t, y)
	if err != nil {
		return fmt.Errorf("unable to create training dataset, %w", err)
	}

	// remove any NaNs from training set
	trainingSet := trainingData.DropNan()
	if len(trainingSet.T) <= 1 {
		return ErrInsufficientTrainingData
	}

	f.trainStartTime = trainingSet.T[0]
	f.trainEndTime = trainingSet.T[len(trainingSet.T)-1]
	f.opt = f.inputOpt.Resolve(trainingSet.T)

	x, err := f.opt.GenerateFeatures(trainingSet.T, f.trainStartTime, f.trainEndTime)
	if err != nil {
		return fmt.Errorf("unable to generate training features, %w", err)
	}
	dropUnobservedEvents(x)
	dropExcessFeatures(x, len(trainingSet.T))

	f.fLabels = x.Labels()

	if x.Len() == 0 {
		f.intercept = stat.Mean(trainingSet.Y, nil)
		f.coef = nil
	} else {
		if err := f.fitOLS(x, trainingSet.Y); err != nil {
			return err
		}
	}
	f.trained = true

	// use input training to include NaNs
	predicted, comp, err := f.Predict(trainingData.T)
	if err != nil {
		return err
	}
	f.trainComponents = comp

	scores, err := NewScores(predicted, trainingData.Y)
	if err != nil {
		return err
	}
	f.scores = scores

	residual := make([]float64, len(trainingData.T))
	floats.SubTo(residual, trainingData.Y, predicted)
	f.residual = residual

	return nil
}

func (f *Forecast) fitOLS(x *feature.Set, y []float64) error {
	features, err := x.Matrix()
	if err != nil {
		return fmt.Errorf("unable to build design matrix, %w", err)
	}
	observations := mat.NewDense(len(y), 1, y)

	model, err := linearmodel.NewOLSRegression(&linearmodel.OLSOptions{
		FitIntercept:  true,
		RankTolerance: f.opt.RankTolerance,
	})
	if err != nil {
		return err
	}
	if err := model.Fit(features, observations); err != nil {
		return fmt.Errorf("unable to fit least squares model, %w", err)
	}
	f.intercept = model.Intercept()
	f.coef = model.Coef()
	return nil
}

// dropUnobservedEvents removes event features that never occur in the training window since
// their weight cannot be estimated
func dropUnobservedEvents(x *feature.Set) {
	for _, feat := range x.Filter(feature.FeatureTypeEvent).Labels().Labels() {
		vals, _ := x.Get(feat)
		if floats.Max(vals) == 0 && floats.Min(vals) == 0 {
			x.Del(feat)
		}
	}
}

// dropExcessFeatures removes the most recently added features until the intercept and
// coefficients can be determined from the number of observations
func dropExcessFeatures(x *feature.Set, numObs int) {
	labels := x.Labels().Labels()
	for i := len(labels) - 1; i >= 0 && x.Len()+1 > numObs; i-- {
		slog.Debug("dropping feature with insufficient observations", "feature", labels[i].String(), "observations", numObs)
		x.Del(labels[i])
	}
}

// Predict takes a slice of times in any order and produces the predicted value for those
// times given a pre-trained model.
func (f *Forecast) Predict(t []time.Time) ([]float64, Components, error) {
	if f == nil {
		return nil, Components{}, ErrUninitializedForecast
	}

	if !f.trained {
		return nil, Components{}, ErrUntrainedForecast
	}

	// generate features
	x, err := f.opt.GenerateFeatures(t, f.trainStartTime, f.trainEndTime)
	if err != nil {
		return nil, Components{}, fmt.Errorf("unable to generate inference features, %w", err)
	}

	res, err := f.runInference(x, len(t))
	if err != nil {
		return nil, Components{}, err
	}

	trend := f.componentSum(x, len(t), feature.FeatureTypeGrowth, feature.FeatureTypeChangepoint)
	floats.AddConst(f.intercept, trend)
	comp := Components{
		Trend:       trend,
		Seasonality: f.componentSum(x, len(t), feature.FeatureTypeSeasonality),
		Event:       f.componentSum(x, len(t), feature.FeatureTypeEvent),
	}
	return res, comp, nil
}

// runInference multiplies the trained feature columns by their coefficients and adds the
// intercept
func (f *Forecast) runInference(x *feature.Set, n int) ([]float64, error) {
	res := make([]float64, n)
	for i := range res {
		res[i] = f.intercept
	}
	if f.fLabels.Len() == 0 || n == 0 {
		return res, nil
	}

	cols := make([][]float64, 0, f.fLabels.Len())
	for _, label := range f.fLabels.Labels() {
		vals, exists := x.Get(label)
		if !exists {
			return nil, fmt.Errorf("%s, %w", label, ErrMissingFeature)
		}
		cols = append(cols, vals)
	}
	featMx, err := mat_.NewDenseFromColumns(cols)
	if err != nil {
		return nil, err
	}

	coefVec := mat.NewVecDense(len(f.coef), f.coef)
	resVec := mat.NewVecDense(n, nil)
	resVec.MulVec(featMx, coefVec)
	floats.Add(res, resVec.RawVector().Data)
	return res, nil
}

func (f *Forecast) componentSum(x *feature.Set, n int, fTypes ...feature.FeatureType) []float64 {
	res := make([]float64, n)
	for _, label := range f.fLabels.Labels() {
		var match bool
		for _, ft := range fTypes {
			if label.Type() == ft {
				match = true
				break
			}
		}
		if !match {
			continue
		}
		idx, _ := f.fLabels.Index(label)
		if vals, exists := x.Get(label); exists {
			floats.AddScaled(res, f.coef[idx], vals)
		}
	}
	return res
}

// FeatureLabels returns the slice of feature labels in the order of the coefficients
func (f *Forecast) FeatureLabels() []feature.Feature {
	if f == nil {
		return nil
	}

	return f.fLabels.Labels()
}

// Coefficients returns a forecast model map of coefficients keyed by the string
// representation of each feature label
func (f *Forecast) Coefficients() (map[string]float64, error) {
	if f == nil {
		return nil, ErrUninitializedForecast
	}

	labels := f.fLabels.Labels()
	if len(labels) == 0 || len(f.coef) == 0 {
		return nil, ErrNoModelCoefficients
	}
	coef := make(map[string]float64)
	for i := 0; i < len(f.coef); i++ {
		coef[labels[i].String()] = f.coef[i]
	}
	return coef, nil
}

// Intercept returns the intercept of the forecast model
func (f *Forecast) Intercept() float64 {
	if f == nil {
		return 0
	}
	return f.intercept
}

// Model returns the serializeable format of the forecast model composing of the
// forecast options, intercept, coefficients with their feature labels, and the
// model fit scores
func (f *Forecast) Model() (Model, error) {
	if f == nil {
		return Model{}, ErrUninitializedForecast
	}
	if !f.trained {
		return Model{}, ErrUntrainedForecast
	}

	fws := make([]FeatureWeight, 0, len(f.coef))
	labels := f.fLabels.Labels()
	for i, c := range f.coef {
		fws = append(fws, NewFeatureWeight(labels[i], c))
	}
	m := Model{
		TrainStartTime: f.trainStartTime,
		TrainEndTime:   f.trainEndTime,
		Options:        f.opt,
		Weights: Weights{
			Intercept: f.intercept,
			Coef:      fws,
		},
		Scores: f.scores,
	}
	return m, nil
}

// ModelEq returns a string representation of the model linear equation in the format of
// y ~ b + m1x1 + m2x2 + ...
func (f *Forecast) ModelEq() (string, error) {
	if f == nil {
		return "", ErrUninitializedForecast
	}
	if !f.trained {
		return "", ErrUntrainedForecast
	}

	eq := fmt.Sprintf("y ~ %.2f", f.Intercept())
	labels := f.fLabels.Labels()
	for i, w := range f.coef {
		if w == 0 || math.IsNaN(w) {
			continue
		}
		eq += fmt.Sprintf("+%.2f*%s", w, labels[i])
	}
	return eq, nil
}

// Scores returns the fit scores for evaluating how well the resulting model
// fit the training data
func (f *Forecast) Scores() Scores {
	if f == nil || f.scores == nil {
		return Scores{}
	}
	return *f.scores
}

// Residuals returns a slice of values representing the difference between the
// training data and the fit data
func (f *Forecast) Residuals() []float64 {
	if f == nil {
		return nil
	}
	res := make([]float64, len(f.residual))
	copy(res, f.residual)
	return res
}

// TrendComponent represents the overall trend component of the model over the training data
// which is determined by the intercept, growth and changepoints.
func (f *Forecast) TrendComponent() []float64 {
	if f == nil {
		return nil
	}
	res := make([]float64, len(f.trainComponents.Trend))
	copy(res, f.trainComponents.Trend)
	return res
}

// SeasonalityComponent represents the overall seasonal component of the model over the
// training data
func (f *Forecast) SeasonalityComponent() []float64 {
	if f == nil {
		return nil
	}
	res := make([]float64, len(f.trainComponents.Seasonality))
	copy(res, f.trainComponents.Seasonality)
	return res
}

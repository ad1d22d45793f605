package linearmodel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DefaultRankTolerance is the relative pivot size below which a column of the design matrix is
// treated as linearly dependent on the columns before it and assigned a zero weight.
const DefaultRankTolerance = 1e-10

// OLSOptions represents input options to run the OLS Regression
type OLSOptions struct {
	// FitIntercept adds a constant 1.0 feature as the first column if set to true
	FitIntercept bool

	// RankTolerance is relative to the largest pivot of the R factor. Defaults to DefaultRankTolerance.
	RankTolerance float64
}

// Validate runs basic validation on OLS options
func (o *OLSOptions) Validate() (*OLSOptions, error) {
	if o == nil {
		o = NewDefaultOLSOptions()
	}
	if o.RankTolerance <= 0 {
		o.RankTolerance = DefaultRankTolerance
	}

	return o, nil
}

// NewDefaultOLSOptions returns a default set of OLS Regression options
func NewDefaultOLSOptions() *OLSOptions {
	return &OLSOptions{
		FitIntercept:  true,
		RankTolerance: DefaultRankTolerance,
	}
}

// OLSRegression computes ordinary least squares using QR factorization
type OLSRegression struct {
	opt       *OLSOptions
	coef      []float64
	intercept float64
	trained   bool
}

// NewOLSRegression initializes an ordinary least squares model ready for fitting
func NewOLSRegression(opt *OLSOptions) (*OLSRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &OLSRegression{
		opt: opt,
	}, nil
}

// Fit the model according to the given training data. x is an m by n design matrix and y is an
// m by 1 target matrix.
func (o *OLSRegression) Fit(x, y mat.Matrix) error {
	if o.opt == nil {
		return ErrNoOptions
	}
	if x == nil {
		return ErrNoTrainingMatrix
	}
	if y == nil {
		return ErrNoTargetMatrix
	}
	m, n := x.Dims()

	ym, _ := y.Dims()
	if ym != m {
		return fmt.Errorf("training data has %d rows and target has %d row, %w", m, ym, ErrTargetLenMismatch)
	}

	offset := 0
	if o.opt.FitIntercept {
		offset = 1
	}
	p := n + offset
	if m < p {
		return fmt.Errorf("got %d observations for %d coefficients, %w", m, p, ErrUnderdetermined)
	}

	// factorize [X | y] so the last column of R holds Q^T*y without materializing the m by m Q.
	// zero rows are appended when needed since QR requires at least as many rows as columns.
	rows := m
	if rows < p+1 {
		rows = p + 1
	}
	aug := mat.NewDense(rows, p+1, nil)
	for i := 0; i < m; i++ {
		if o.opt.FitIntercept {
			aug.Set(i, 0, 1.0)
		}
		for j := 0; j < n; j++ {
			aug.Set(i, j+offset, x.At(i, j))
		}
		aug.Set(i, p, y.At(i, 0))
	}

	qr := new(mat.QR)
	qr.Factorize(aug)

	r := new(mat.Dense)
	qr.RTo(r)

	var maxPivot float64
	for i := 0; i < p; i++ {
		maxPivot = math.Max(maxPivot, math.Abs(r.At(i, i)))
	}
	tol := maxPivot * o.opt.RankTolerance

	c := make([]float64, p)
	for i := p - 1; i >= 0; i-- {
		pivot := r.At(i, i)
		if math.Abs(pivot) <= tol {
			// linearly dependent or empty column
			c[i] = 0
			continue
		}
		c[i] = r.At(i, p)
		for j := i + 1; j < p; j++ {
			c[i] -= c[j] * r.At(i, j)
		}
		c[i] /= pivot
	}

	if o.opt.FitIntercept {
		o.intercept = c[0]
		o.coef = c[1:]
	} else {
		o.intercept = 0
		o.coef = c
	}
	o.trained = true

	return nil
}

// Predict using the OLS model
func (o *OLSRegression) Predict(x mat.Matrix) ([]float64, error) {
	if o.opt == nil {
		return nil, ErrNoOptions
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	if !o.trained {
		return nil, ErrUntrained
	}

	m, n := x.Dims()
	if n != len(o.coef) {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", n, len(o.coef), ErrFeatureLenMismatch)
	}

	res := make([]float64, m)
	if n > 0 {
		coefVec := mat.NewVecDense(n, o.Coef())
		resVec := mat.NewVecDense(m, res)
		resVec.MulVec(x, coefVec)
	}
	for i := range res {
		res[i] += o.intercept
	}
	return res, nil
}

// Score computes the coefficient of determination of the prediction
func (o *OLSRegression) Score(x, y mat.Matrix) (float64, error) {
	if o.opt == nil {
		return 0.0, ErrNoOptions
	}
	if x == nil {
		return 0.0, ErrNoDesignMatrix
	}
	if y == nil {
		return 0.0, ErrNoTargetMatrix
	}

	m, _ := x.Dims()

	ym, _ := y.Dims()
	if m != ym {
		return 0.0, fmt.Errorf("design matrix has %d rows and target has %d rows, %w", m, ym, ErrTargetLenMismatch)
	}

	res, err := o.Predict(x)
	if err != nil {
		return 0.0, err
	}

	ySlice := mat.Col(nil, 0, y)

	return stat.RSquaredFrom(res, ySlice, nil), nil
}

// Intercept returns the computed intercept if FitIntercept is set to true. Defaults to 0.0 if not set.
func (o *OLSRegression) Intercept() float64 {
	return o.intercept
}

// Coef returns a slice of the trained coefficients in the same order of the training feature Matrix by column.
func (o *OLSRegression) Coef() []float64 {
	c := make([]float64, len(o.coef))
	copy(c, o.coef)
	return c
}

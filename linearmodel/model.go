// Package linearmodel contains the linear regression solvers used to fit forecast models
package linearmodel

import "gonum.org/v1/gonum/mat"

// Model is a linear model that can be fit against a design matrix and target column
type Model interface {
	Fit(x, y mat.Matrix) error
	Predict(x mat.Matrix) ([]float64, error)
	Score(x, y mat.Matrix) (float64, error)
	Intercept() float64
	Coef() []float64
}

// Package mat contains helpers for building gonum dense matrices from row or column slices
package mat

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrColMismatch = errors.New("column size mismatch")
	ErrRowMismatch = errors.New("row size mismatch")
	ErrEmptyInput  = errors.New("no rows or columns in input")
)

// NewDenseFromArray converts a slice of rows into an m by n dense matrix.
func NewDenseFromArray(x [][]float64) (*mat.Dense, error) {
	m := len(x)
	if m == 0 {
		return nil, ErrEmptyInput
	}

	n := len(x[0])
	for i, row := range x {
		if len(row) != n {
			return nil, fmt.Errorf("at row %d, %w", i, ErrColMismatch)
		}
	}
	if n == 0 {
		return nil, ErrEmptyInput
	}

	// flatten to row order
	data := make([]float64, 0, m*n)
	for _, row := range x {
		data = append(data, row...)
	}
	return mat.NewDense(m, n, data), nil
}

// NewDenseFromColumns converts a slice of equal length columns into an m by n dense matrix where
// n is the number of columns and m is the length of each column.
func NewDenseFromColumns(cols [][]float64) (*mat.Dense, error) {
	n := len(cols)
	if n == 0 {
		return nil, ErrEmptyInput
	}

	m := len(cols[0])
	for j, col := range cols {
		if len(col) != m {
			return nil, fmt.Errorf("at column %d, %w", j, ErrRowMismatch)
		}
	}
	if m == 0 {
		return nil, ErrEmptyInput
	}

	data := make([]float64, m*n)
	for j, col := range cols {
		for i, val := range col {
			data[i*n+j] = val
		}
	}
	return mat.NewDense(m, n, data), nil
}

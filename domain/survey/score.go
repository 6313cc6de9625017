package survey

import (
	"gonum.org/v1/gonum/stat"

	"github.com/mbedward/invasive-grasses-models/domain/core"
)

// SignedComponent names one risk component column with the sign it
// contributes to a subset score. Sign is +1 or -1; components whose
// coefficients came out negative under variable selection enter with -1.
type SignedComponent struct {
	Column string
	Sign   float64
}

// DeriveSubsetScore returns a copy of the table with SummedRiskSubset set on
// every record to the signed sum of the listed component columns. The input
// table is not modified. A component column absent from any record is a
// MissingComponent error.
func DeriveSubsetScore(t *Table, components []SignedComponent) (*Table, error) {
	if t.Len() == 0 {
		return nil, core.ErrEmptyTable
	}

	out := &Table{Records: make([]Record, len(t.Records))}
	copy(out.Records, t.Records)

	for i := range out.Records {
		sum := 0.0
		for _, c := range components {
			v, ok := out.Records[i].Risk.Components[c.Column]
			if !ok {
				return nil, core.NewMissingComponentError(c.Column)
			}
			sum += c.Sign * v
		}
		out.Records[i].SummedRiskSubset = sum
		out.Records[i].HasSubset = true
	}

	return out, nil
}

// Center demeans a covariate column, returning the centered values and the
// mean that was subtracted. Callers must retain the mean to map new risk
// values onto the same scale at prediction time.
func Center(values []float64) ([]float64, float64) {
	if len(values) == 0 {
		return nil, 0
	}
	mean := stat.Mean(values, nil)
	centered := make([]float64, len(values))
	for i, v := range values {
		centered[i] = v - mean
	}
	return centered, mean
}

package posterior

import (
	"github.com/mbedward/invasive-grasses-models/domain/core"
)

// Samples is the pooled posterior sample matrix: one row per retained draw
// (after burn-in and thinning, chains row-concatenated in chain order) and
// one named column per monitored parameter. Immutable once built; all
// downstream analysis is pure read/aggregate over it.
type Samples struct {
	names []core.ParamName
	index map[core.ParamName]int
	draws [][]float64
}

// NewSamples builds a sample matrix. The draws slice is adopted, not copied;
// callers hand over ownership.
func NewSamples(names []core.ParamName, draws [][]float64) *Samples {
	index := make(map[core.ParamName]int, len(names))
	for i, n := range names {
		index[n] = i
	}
	return &Samples{names: names, index: index, draws: draws}
}

// Len returns the number of retained draws.
func (s *Samples) Len() int { return len(s.draws) }

// Names returns the monitored parameter names in column order.
func (s *Samples) Names() []core.ParamName { return s.names }

// Has reports whether a parameter was monitored.
func (s *Samples) Has(name core.ParamName) bool {
	_, ok := s.index[name]
	return ok
}

// Column returns all draws of a named parameter, in draw order.
func (s *Samples) Column(name core.ParamName) ([]float64, error) {
	j, ok := s.index[name]
	if !ok {
		return nil, core.NewUnknownParamError(name)
	}
	out := make([]float64, len(s.draws))
	for i, row := range s.draws {
		out[i] = row[j]
	}
	return out, nil
}

// Value returns draw i of a named parameter.
func (s *Samples) Value(i int, name core.ParamName) (float64, error) {
	j, ok := s.index[name]
	if !ok {
		return 0, core.NewUnknownParamError(name)
	}
	return s.draws[i][j], nil
}

// Mean returns the posterior mean of a named parameter.
func (s *Samples) Mean(name core.ParamName) (float64, error) {
	col, err := s.Column(name)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for _, v := range col {
		sum += v
	}
	return sum / float64(len(col)), nil
}

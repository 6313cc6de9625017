package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/mbedward/invasive-grasses-models/domain/core"
)

// Block is one parameter block laid out in the flat state vector.
type Block struct {
	Param
	Offset int
}

// Target is a Spec bound to observed data: a parameter layout plus log-prior,
// log-likelihood and log-posterior over a flat state vector. Samplers work
// against Targets and address parameters by name, never by raw column
// position.
type Target struct {
	Spec *Spec
	Data Data

	blocks []Block
	dim    int
	names  []core.ParamName
	index  map[core.ParamName]int
}

// Bind lays out a spec against observed data, validating the binding.
func Bind(spec *Spec, data Data) (*Target, error) {
	if len(data.NSites) == 0 {
		return nil, core.ErrInsufficientData
	}
	if data.Total <= 0 {
		return nil, fmt.Errorf("%w: total sites must be positive", core.ErrInsufficientData)
	}
	for i, k := range data.NSites {
		if k < 0 || k > data.Total {
			return nil, fmt.Errorf("%w: nsites[%d]=%d outside [0,%d]", core.ErrDimensionMismatch, i, k, data.Total)
		}
	}

	t := &Target{
		Spec:  spec,
		Data:  data,
		index: make(map[core.ParamName]int),
	}

	offset := 0
	for _, p := range spec.Params {
		size := p.Size
		if size < 1 {
			size = 1
		}
		p.Size = size
		t.blocks = append(t.blocks, Block{Param: p, Offset: offset})
		for i := 0; i < size; i++ {
			name := ElementName(p.Name, i, size)
			t.names = append(t.names, name)
			t.index[name] = offset + i
		}
		offset += size
	}
	t.dim = offset

	if err := t.validateData(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Target) validateData() error {
	n := len(t.Data.NSites)
	switch t.Spec.Likelihood {
	case LikBetaBinomial:
		if _, ok := t.Spec.Param(ParamSlope); ok {
			if len(t.Data.X) != n {
				return fmt.Errorf("%w: covariate length %d, counts length %d", core.ErrDimensionMismatch, len(t.Data.X), n)
			}
		}
	case LikBinomialLogit:
		slope, ok := t.Spec.Param(ParamSlope)
		if !ok {
			return fmt.Errorf("%w: selection model declares no slope vector", core.ErrBadOptions)
		}
		if len(t.Data.XMatrix) != n {
			return fmt.Errorf("%w: component matrix has %d rows, counts length %d", core.ErrDimensionMismatch, len(t.Data.XMatrix), n)
		}
		for i, row := range t.Data.XMatrix {
			if len(row) != slope.Size {
				return fmt.Errorf("%w: component matrix row %d has %d columns, want %d", core.ErrDimensionMismatch, i, len(row), slope.Size)
			}
		}
	default:
		return fmt.Errorf("%w: unknown likelihood %q", core.ErrBadOptions, t.Spec.Likelihood)
	}
	return nil
}

// ElementName renders the monitored name of one element of a parameter:
// the bare name for scalars, name[1]..name[size] for vectors.
func ElementName(param string, i, size int) core.ParamName {
	if size == 1 {
		return core.ParamName(param)
	}
	return core.ParamName(fmt.Sprintf("%s[%d]", param, i+1))
}

// Dim returns the flat state dimension.
func (t *Target) Dim() int { return t.dim }

// Blocks returns the parameter layout in declaration order.
func (t *Target) Blocks() []Block { return t.blocks }

// Names returns all flat element names in layout order.
func (t *Target) Names() []core.ParamName { return t.names }

// MonitoredNames returns the element names of parameters marked Monitor.
func (t *Target) MonitoredNames() []core.ParamName {
	var out []core.ParamName
	for _, b := range t.blocks {
		if !b.Monitor {
			continue
		}
		for i := 0; i < b.Size; i++ {
			out = append(out, ElementName(b.Name, i, b.Size))
		}
	}
	return out
}

// IndexOf returns the flat index of a named element.
func (t *Target) IndexOf(name core.ParamName) (int, error) {
	idx, ok := t.index[name]
	if !ok {
		return 0, core.NewUnknownParamError(name)
	}
	return idx, nil
}

// BlockOf returns the layout block for a parameter name.
func (t *Target) BlockOf(param string) (Block, bool) {
	for _, b := range t.blocks {
		if b.Name == param {
			return b, true
		}
	}
	return Block{}, false
}

// InitVector returns the declared starting state.
func (t *Target) InitVector() []float64 {
	v := make([]float64, t.dim)
	for _, b := range t.blocks {
		for i := 0; i < b.Size; i++ {
			v[b.Offset+i] = b.Init
		}
	}
	return v
}

// scalarValue reads the current value of a named scalar parameter.
func (t *Target) scalarValue(v []float64, param string) float64 {
	b, ok := t.BlockOf(param)
	if !ok {
		return math.NaN()
	}
	return v[b.Offset]
}

// LogPrior evaluates the joint log prior density at v, including
// hierarchical scale and inclusion-probability dependencies.
func (t *Target) LogPrior(v []float64) float64 {
	lp := 0.0
	for _, b := range t.blocks {
		for i := 0; i < b.Size; i++ {
			x := v[b.Offset+i]
			switch b.Prior.Kind {
			case PriorNormal:
				sigma := b.Prior.Sigma
				if b.Prior.SigmaParam != "" {
					sigma = t.scalarValue(v, b.Prior.SigmaParam)
				}
				if sigma <= 0 {
					return math.Inf(-1)
				}
				lp += distuv.Normal{Mu: b.Prior.Mu, Sigma: sigma}.LogProb(x)
			case PriorExponential:
				if x <= 0 {
					return math.Inf(-1)
				}
				lp += distuv.Exponential{Rate: b.Prior.Rate}.LogProb(x)
			case PriorBeta:
				if x <= 0 || x >= 1 {
					return math.Inf(-1)
				}
				lp += distuv.Beta{Alpha: b.Prior.A, Beta: b.Prior.B}.LogProb(x)
			case PriorBernoulli:
				prob := t.probOf(v, b.Prior.ProbParam, i)
				if prob <= 0 || prob >= 1 {
					return math.Inf(-1)
				}
				if x != 0 && x != 1 {
					return math.Inf(-1)
				}
				if x == 1 {
					lp += math.Log(prob)
				} else {
					lp += math.Log(1 - prob)
				}
			}
		}
	}
	return lp
}

// probOf reads element i of the vector parameter backing a Bernoulli prior.
func (t *Target) probOf(v []float64, param string, i int) float64 {
	b, ok := t.BlockOf(param)
	if !ok || i >= b.Size {
		return math.NaN()
	}
	return v[b.Offset+i]
}

// LogLikelihood evaluates the observation log likelihood at v.
func (t *Target) LogLikelihood(v []float64) float64 {
	switch t.Spec.Likelihood {
	case LikBetaBinomial:
		return t.logLikBetaBinomial(v)
	case LikBinomialLogit:
		return t.logLikBinomialLogit(v)
	}
	return math.Inf(-1)
}

func (t *Target) logLikBetaBinomial(v []float64) float64 {
	b0 := t.scalarValue(v, ParamIntercept)
	phi := t.scalarValue(v, ParamDispersion)
	if phi <= 0 {
		return math.Inf(-1)
	}
	slope, hasSlope := t.BlockOf(ParamSlope)

	ll := 0.0
	for i, k := range t.Data.NSites {
		eta := b0
		if hasSlope {
			eta += v[slope.Offset] * t.Data.X[i]
		}
		pmean := InvLogit(eta)
		a := pmean * phi
		bb := (1 - pmean) * phi
		ll += BetaBinomialLogPMF(k, t.Data.Total, a, bb)
		if math.IsInf(ll, -1) {
			return ll
		}
	}
	return ll
}

func (t *Target) logLikBinomialLogit(v []float64) float64 {
	b0 := t.scalarValue(v, ParamIntercept)
	slope, _ := t.BlockOf(ParamSlope)
	ind, hasInd := t.BlockOf(ParamIndicator)

	ll := 0.0
	for i, k := range t.Data.NSites {
		eta := b0
		for j := 0; j < slope.Size; j++ {
			w := 1.0
			if hasInd {
				w = v[ind.Offset+j]
			}
			eta += v[slope.Offset+j] * w * t.Data.XMatrix[i][j]
		}
		ll += float64(k)*eta - float64(t.Data.Total)*softplus(eta) + logChoose(t.Data.Total, k)
	}
	return ll
}

// LogPosterior evaluates the unnormalized joint log density at v.
func (t *Target) LogPosterior(v []float64) float64 {
	lp := t.LogPrior(v)
	if math.IsInf(lp, -1) {
		return lp
	}
	return lp + t.LogLikelihood(v)
}

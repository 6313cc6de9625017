package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbedward/invasive-grasses-models/domain/core"
	"github.com/mbedward/invasive-grasses-models/domain/posterior"
)

func fittedSamples(b0, b1, phi float64) *posterior.Samples {
	return posterior.NewSamples(
		[]core.ParamName{"b0", "b1", "phi"},
		[][]float64{{b0, b1, phi}},
	)
}

func nullSamples(b0, phi float64) *posterior.Samples {
	return posterior.NewSamples(
		[]core.ParamName{"b0", "phi"},
		[][]float64{{b0, phi}},
	)
}

func TestSaturatedLogLik_BoundaryCountsAreExact(t *testing.T) {
	// A species at zero sites or at all sites is predicted perfectly, so its
	// saturated contribution is log(1) = 0.
	assert.Equal(t, 0.0, SaturatedLogLik([]int{0}, 139))
	assert.Equal(t, 0.0, SaturatedLogLik([]int{139}, 139))
	assert.Equal(t, 0.0, SaturatedLogLik([]int{0, 139, 0}, 139))

	// Interior counts contribute strictly negative log likelihood.
	assert.Less(t, SaturatedLogLik([]int{70}, 139), 0.0)
}

func TestDevianceExplained(t *testing.T) {
	nsites := []int{5, 30, 80, 120}
	x := []float64{-1.5, -0.5, 0.5, 1.5}

	// Fitted model tracks the data; null model cannot.
	fitted := fittedSamples(0.0, 1.5, 50)
	null := nullSamples(0.0, 50)

	d, err := DevianceExplained(fitted, null, nsites, 139, x)
	require.NoError(t, err)

	assert.Greater(t, d.ResidualDeviance, 0.0)
	assert.Greater(t, d.NullDeviance, d.ResidualDeviance)
	assert.Greater(t, d.PercentExplained, 0.0)
	assert.Less(t, d.PercentExplained, 100.0)
	assert.InDelta(t,
		100*(1-d.ResidualDeviance/d.NullDeviance),
		d.PercentExplained, 1e-9)
}

func TestDevianceExplained_FittedEqualsNull(t *testing.T) {
	// A zero slope makes the fitted model identical to the null, so the
	// explained share must come out at exactly zero.
	nsites := []int{10, 40, 90}
	x := []float64{-1, 0, 1}

	d, err := DevianceExplained(fittedSamples(-0.3, 0, 8), nullSamples(-0.3, 8), nsites, 139, x)
	require.NoError(t, err)
	assert.InDelta(t, d.ResidualDeviance, d.NullDeviance, 1e-9)
	assert.InDelta(t, 0.0, d.PercentExplained, 1e-9)
}

func TestDevianceExplained_DegenerateNullDeviance(t *testing.T) {
	// A species observed at no sites, predicted at essentially zero by the
	// null model, leaves nothing for the null deviance to measure. The
	// undefined percent-explained must surface as an error, not a NaN.
	nsites := []int{0}
	x := []float64{0}

	d, err := DevianceExplained(fittedSamples(-700, 0, 1), nullSamples(-700, 1), nsites, 139, x)
	require.ErrorIs(t, err, core.ErrDegenerateDeviance)
	assert.True(t, core.IsDegenerateDeviance(err))

	// The decomposition itself is still returned for inspection.
	require.NotNil(t, d)
	assert.InDelta(t, 0.0, d.NullDeviance, 0.0)
	assert.False(t, math.IsNaN(d.PercentExplained))
	assert.Equal(t, 0.0, d.PercentExplained)
}

func TestDevianceExplained_InputErrors(t *testing.T) {
	fitted := fittedSamples(0, 1, 10)
	null := nullSamples(0, 10)

	_, err := DevianceExplained(fitted, null, nil, 139, nil)
	assert.ErrorIs(t, err, core.ErrEmptyTable)

	_, err = DevianceExplained(fitted, null, []int{1, 2}, 139, []float64{0})
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)

	_, err = DevianceExplained(nullSamples(0, 10), null, []int{1, 2}, 139, []float64{0, 1})
	assert.ErrorIs(t, err, core.ErrUnknownParam)
}

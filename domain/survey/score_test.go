package survey

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbedward/invasive-grasses-models/domain/core"
)

func subsetFixture() *Table {
	return &Table{Records: []Record{
		{
			Species: "Eragrostis curvula",
			NSites:  100,
			Risk: RiskAssessment{
				Species: "Eragrostis curvula",
				Components: map[string]float64{
					CompTradeOffSpecies:       3,
					CompLongTermSeedViability: 2,
					CompAllelopathy:           1,
					CompResourceCompetition:   4,
					CompChangesToEcosystem:    2,
				},
			},
		},
	}}
}

func TestDeriveSubsetScore_SignedAdditivity(t *testing.T) {
	table := subsetFixture()
	components := []SignedComponent{
		{Column: CompTradeOffSpecies, Sign: 1},
		{Column: CompLongTermSeedViability, Sign: 1},
		{Column: CompAllelopathy, Sign: 1},
		{Column: CompResourceCompetition, Sign: -1},
		{Column: CompChangesToEcosystem, Sign: -1},
	}

	out, err := DeriveSubsetScore(table, components)
	require.NoError(t, err)
	require.True(t, out.Records[0].HasSubset)

	// 3 + 2 + 1 - 4 - 2 = 0
	assert.Equal(t, 0.0, out.Records[0].SummedRiskSubset)

	// input table untouched
	assert.False(t, table.Records[0].HasSubset)
}

func TestDeriveSubsetScore_MissingComponent(t *testing.T) {
	table := subsetFixture()
	_, err := DeriveSubsetScore(table, []SignedComponent{{Column: CompFireRegimeChange, Sign: 1}})
	require.Error(t, err)
	assert.True(t, core.IsMissingComponent(err))
}

func TestDeriveSubsetScore_EmptyTable(t *testing.T) {
	_, err := DeriveSubsetScore(&Table{}, nil)
	assert.ErrorIs(t, err, core.ErrEmptyTable)
}

func TestCenter_MeanZero(t *testing.T) {
	values := []float64{68, 62, 57, 54, 51, 44, 49, 42, 38, 35, 27}

	centered, mean := Center(values)
	require.Len(t, centered, len(values))

	sum := 0.0
	for i, c := range centered {
		sum += c
		assert.InDelta(t, values[i]-mean, c, 1e-12)
	}
	assert.InDelta(t, 0, sum/float64(len(centered)), 1e-9, "centered column must have zero mean")
}

func TestCenter_RetainsMeanForPrediction(t *testing.T) {
	values := []float64{10, 20, 30}
	centered, mean := Center(values)
	assert.Equal(t, 20.0, mean)

	// Mapping a new value onto the centered scale must reproduce what the
	// fit saw for an identical training value.
	assert.Equal(t, centered[2], 30-mean)
}

func TestCenter_Empty(t *testing.T) {
	centered, mean := Center(nil)
	assert.Nil(t, centered)
	assert.True(t, mean == 0 && !math.IsNaN(mean))
}

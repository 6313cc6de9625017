package survey

// TotalSites is the number of roadside survey sites. Every occupancy count is
// out of this fixed total.
const TotalSites = 139

// Canonical risk component column names used by the weed risk assessment.
// These are the ten modelled components; SummedRisk additionally folds in the
// remaining assessment sub-items and is never recomputed from these columns.
const (
	CompTradeOffSpecies       = "trade_off_species"
	CompLongTermSeedViability = "long_term_seed_viability"
	CompAllelopathy           = "allelopathy"
	CompResourceCompetition   = "resource_competition"
	CompChangesToEcosystem    = "changes_to_ecosystem"
	CompFutureDistribution    = "future_distribution"
	CompGerminationRequire    = "germination_requirements"
	CompFireRegimeChange      = "fire_regime_change"
	CompGrazingResistance     = "grazing_resistance"
	CompPropagulePressure     = "propagule_pressure"
)

// ModelComponents lists the candidate components for the variable-selection
// model, in the column order used throughout the analysis.
var ModelComponents = []string{
	CompTradeOffSpecies,
	CompLongTermSeedViability,
	CompAllelopathy,
	CompResourceCompetition,
	CompChangesToEcosystem,
	CompFutureDistribution,
	CompGerminationRequire,
	CompFireRegimeChange,
	CompGrazingResistance,
	CompPropagulePressure,
}

// Occurrence is one species row from the roadside survey.
type Occurrence struct {
	Species    string
	CommonName string
	NSites     int
}

// PSites returns the observed occupancy proportion.
func (o Occurrence) PSites() float64 {
	return float64(o.NSites) / float64(TotalSites)
}

// RiskAssessment is one species row from the expert risk scoring table.
// Components holds the per-component ordinal scores by column name.
// SummedRisk is the precomputed total over all 32 assessment sub-items.
type RiskAssessment struct {
	Species    string
	Components map[string]float64
	SummedRisk float64
}

// clone deep-copies an assessment so joined tables never alias the source
// table's component maps.
func (r RiskAssessment) clone() RiskAssessment {
	comp := make(map[string]float64, len(r.Components))
	for k, v := range r.Components {
		comp[k] = v
	}
	return RiskAssessment{Species: r.Species, Components: comp, SummedRisk: r.SummedRisk}
}

// Record is one row of the joined analysis table: an occurrence row with its
// matched risk assessment and any derived scores.
type Record struct {
	Species    string
	CommonName string
	NSites     int
	PSites     float64
	Risk       RiskAssessment

	// SummedRiskSubset is set by DeriveSubsetScore; zero and HasSubset false
	// until then.
	SummedRiskSubset float64
	HasSubset        bool
}

// Table is the joined analysis table. It is produced once per analysis and
// treated as read-only afterwards.
type Table struct {
	Records []Record
}

// Len returns the number of analysis rows.
func (t *Table) Len() int { return len(t.Records) }

// NSites returns the occupancy counts in row order.
func (t *Table) NSites() []int {
	out := make([]int, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.NSites
	}
	return out
}

// SummedRisk returns the precomputed full risk scores in row order.
func (t *Table) SummedRisk() []float64 {
	out := make([]float64, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.Risk.SummedRisk
	}
	return out
}

// SubsetRisk returns the derived subset scores in row order, or false if
// DeriveSubsetScore has not been applied.
func (t *Table) SubsetRisk() ([]float64, bool) {
	out := make([]float64, len(t.Records))
	for i, r := range t.Records {
		if !r.HasSubset {
			return nil, false
		}
		out[i] = r.SummedRiskSubset
	}
	return out, true
}

// ComponentMatrix returns the raw component scores as a row-major matrix with
// one row per record and one column per name in columns. Missing columns are
// reported via error by the caller-facing wrappers in score.go.
func (t *Table) ComponentMatrix(columns []string) ([][]float64, error) {
	m := make([][]float64, len(t.Records))
	for i, r := range t.Records {
		row := make([]float64, len(columns))
		for j, col := range columns {
			v, ok := r.Risk.Components[col]
			if !ok {
				return nil, newMissingComponent(col)
			}
			row[j] = v
		}
		m[i] = row
	}
	return m, nil
}

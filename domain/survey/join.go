package survey

import (
	"strings"

	"github.com/mbedward/invasive-grasses-models/domain/core"
)

func newMissingComponent(column string) error {
	return core.NewMissingComponentError(column)
}

// GenusOverride configures genus-level match rules for the join. Species
// whose name contains the genus token are matched by the token alone, on both
// sides of the join. The survey records several Sporobolus species that share
// a single collective risk assessment, hence the default.
type GenusOverride struct {
	Tokens []string
}

// DefaultGenusOverride collapses all Sporobolus species to one risk row.
func DefaultGenusOverride() GenusOverride {
	return GenusOverride{Tokens: []string{"Sporobolus"}}
}

// key returns the match key for a species name: the genus token when one
// applies, otherwise the full name.
func (g GenusOverride) key(species string) string {
	for _, tok := range g.Tokens {
		if strings.Contains(species, tok) {
			return tok
		}
	}
	return species
}

// JoinReport records what the join did. Dropped rows are expected (some
// surveyed species lack a risk assessment) and are not an error.
type JoinReport struct {
	Matched        int
	Dropped        int
	DroppedSpecies []string
}

// Join left-matches occurrence rows onto risk assessment rows by species
// name, applying genus override rules, and drops occurrence rows with no
// match. Neither input is mutated. Every record in the returned table has a
// non-missing risk linkage.
func Join(occ []Occurrence, risk []RiskAssessment, override GenusOverride) (*Table, JoinReport) {
	byKey := make(map[string]RiskAssessment, len(risk))
	for _, r := range risk {
		byKey[override.key(r.Species)] = r
	}

	table := &Table{Records: make([]Record, 0, len(occ))}
	report := JoinReport{}

	for _, o := range occ {
		r, ok := byKey[override.key(o.Species)]
		if !ok {
			report.Dropped++
			report.DroppedSpecies = append(report.DroppedSpecies, o.Species)
			continue
		}
		report.Matched++
		table.Records = append(table.Records, Record{
			Species:    o.Species,
			CommonName: o.CommonName,
			NSites:     o.NSites,
			PSites:     o.PSites(),
			Risk:       r.clone(),
		})
	}

	return table, report
}

package survey

import (
	"testing"
)

func testRisk(species string, summed float64) RiskAssessment {
	comp := make(map[string]float64, len(ModelComponents))
	for i, name := range ModelComponents {
		comp[name] = float64(i % 5)
	}
	return RiskAssessment{Species: species, Components: comp, SummedRisk: summed}
}

func TestJoin_MatchesByExactName(t *testing.T) {
	occ := []Occurrence{
		{Species: "Eragrostis curvula", CommonName: "African lovegrass", NSites: 100},
		{Species: "Hyparrhenia hirta", CommonName: "Coolatai grass", NSites: 80},
	}
	risk := []RiskAssessment{
		testRisk("Eragrostis curvula", 60),
		testRisk("Hyparrhenia hirta", 55),
	}

	table, report := Join(occ, risk, DefaultGenusOverride())

	if table.Len() != 2 {
		t.Fatalf("expected 2 joined rows, got %d", table.Len())
	}
	if report.Dropped != 0 {
		t.Errorf("expected no dropped rows, got %d", report.Dropped)
	}
	for _, r := range table.Records {
		if r.Risk.Species == "" {
			t.Errorf("row %s has no risk linkage", r.Species)
		}
	}
}

func TestJoin_DropsUnmatchedAndCounts(t *testing.T) {
	occ := []Occurrence{
		{Species: "Eragrostis curvula", NSites: 100},
		{Species: "Axonopus fissifolius", NSites: 20},
	}
	risk := []RiskAssessment{testRisk("Eragrostis curvula", 60)}

	table, report := Join(occ, risk, DefaultGenusOverride())

	if table.Len() != 1 {
		t.Fatalf("expected 1 joined row, got %d", table.Len())
	}
	if report.Dropped != 1 || report.Matched != 1 {
		t.Errorf("expected 1 dropped / 1 matched, got %d / %d", report.Dropped, report.Matched)
	}
	if len(report.DroppedSpecies) != 1 || report.DroppedSpecies[0] != "Axonopus fissifolius" {
		t.Errorf("unexpected dropped species: %v", report.DroppedSpecies)
	}
}

func TestJoin_GenusOverrideCollapsesSporobolus(t *testing.T) {
	occ := []Occurrence{
		{Species: "Sporobolus fertilis", NSites: 64},
		{Species: "Sporobolus africanus", NSites: 49},
	}
	risk := []RiskAssessment{testRisk("Sporobolus", 57)}

	table, report := Join(occ, risk, DefaultGenusOverride())

	if table.Len() != 2 {
		t.Fatalf("expected both Sporobolus species matched, got %d rows", table.Len())
	}
	if report.Dropped != 0 {
		t.Errorf("expected no drops, got %d", report.Dropped)
	}
	for _, r := range table.Records {
		if r.Risk.SummedRisk != 57 {
			t.Errorf("%s resolved to wrong risk row (summed %.0f)", r.Species, r.Risk.SummedRisk)
		}
	}
}

func TestJoin_GenusOverrideMatchesRiskSideSpecies(t *testing.T) {
	// The risk table may itself carry a full species name for the genus row.
	occ := []Occurrence{{Species: "Sporobolus fertilis", NSites: 64}}
	risk := []RiskAssessment{testRisk("Sporobolus africanus", 57)}

	table, _ := Join(occ, risk, DefaultGenusOverride())
	if table.Len() != 1 {
		t.Fatalf("genus token should match on both sides, got %d rows", table.Len())
	}
}

func TestJoin_DoesNotMutateInputs(t *testing.T) {
	occ := []Occurrence{{Species: "Eragrostis curvula", NSites: 100}}
	risk := []RiskAssessment{testRisk("Eragrostis curvula", 60)}

	table, _ := Join(occ, risk, DefaultGenusOverride())
	table.Records[0].NSites = 1
	table.Records[0].Risk.Components[ModelComponents[0]] = 99

	if occ[0].NSites != 100 {
		t.Error("occurrence input mutated by join")
	}
	if risk[0].Components[ModelComponents[0]] == 99 {
		t.Error("risk input component map aliased by join")
	}
}

func TestOccurrence_PSitesExact(t *testing.T) {
	for _, n := range []int{0, 1, 64, TotalSites} {
		o := Occurrence{NSites: n}
		want := float64(n) / float64(TotalSites)
		if o.PSites() != want {
			t.Errorf("PSites(%d) = %v, want %v", n, o.PSites(), want)
		}
	}
}

// Package smartfilter implements the Smart Filter (spec §4.6): an
// index-aware rescoring pass that supersedes the raw Structural Scorer
// output once the semantic index is fresh and intent confidence clears
// a threshold. Constraint dispatch is re-expressed as a tagged variant
// per the teacher's own design note (spec §9 "Dynamic dispatch of
// constraints"): the cost/selectivity table is data, not class state.
package smartfilter

import "github.com/theodags/mantic/internal/types"

// ConstraintKind is the tag of the constraint variant (spec §9).
type ConstraintKind string

const (
	ConstraintUsage         ConstraintKind = "usage"
	ConstraintImport        ConstraintKind = "import"
	ConstraintExport        ConstraintKind = "export"
	ConstraintComponentType ConstraintKind = "component-type"
	ConstraintKeyword       ConstraintKind = "keyword"
	ConstraintPath          ConstraintKind = "path"
)

// Constraint is one tagged dispatch unit; Keyword is unused for the
// Usage variant (spec §9).
type Constraint struct {
	Kind    ConstraintKind
	Keyword string
}

// costTable holds the static per-constraint cost (spec §4.6): cheap
// path checks = 1, import/export lookups = 2, component-type = 5,
// usage = 8.
var costTable = map[ConstraintKind]float64{
	ConstraintPath:          1,
	ConstraintKeyword:       1,
	ConstraintImport:        2,
	ConstraintExport:        2,
	ConstraintComponentType: 5,
	ConstraintUsage:         8,
}

// selectivityTable holds a fixed selectivity estimate in [0,1] per
// constraint kind. The spec names only the ordering outcome ("apply
// usage first because of its high selectivity"); these concrete values
// are this implementation's resolution of that outcome and are
// recorded as a decision in the grounding ledger.
var selectivityTable = map[ConstraintKind]float64{
	ConstraintUsage:         1.0,
	ConstraintImport:        0.2,
	ConstraintExport:        0.2,
	ConstraintComponentType: 0.3,
	ConstraintKeyword:       0.1,
	ConstraintPath:          0.1,
}

func cost(k ConstraintKind) float64        { return costTable[k] }
func selectivity(k ConstraintKind) float64 { return selectivityTable[k] }

// priority is the ordering key: selectivity / (cost + 0.1), descending
// (spec §4.6).
func priority(k ConstraintKind) float64 {
	return selectivity(k) / (cost(k) + 0.1)
}

// OrderConstraints sorts constraints by descending priority, with the
// Usage constraint (when present) always first as the spec requires
// explicitly, independent of floating-point tie-breaks.
func OrderConstraints(constraints []Constraint) []Constraint {
	usage := make([]Constraint, 0, 1)
	rest := make([]Constraint, 0, len(constraints))
	for _, c := range constraints {
		if c.Kind == ConstraintUsage {
			usage = append(usage, c)
		} else {
			rest = append(rest, c)
		}
	}
	stableSortByPriorityDesc(rest)
	return append(usage, rest...)
}

func stableSortByPriorityDesc(cs []Constraint) {
	// insertion sort: constraint lists are small (a handful of
	// keywords/entities per query), and stability matters more than
	// asymptotic cost here.
	for i := 1; i < len(cs); i++ {
		j := i
		for j > 0 && priority(cs[j].Kind) > priority(cs[j-1].Kind) {
			cs[j], cs[j-1] = cs[j-1], cs[j]
			j--
		}
	}
}

// BuildConstraints derives the tagged constraint set from an
// IntentAnalysis (spec §4.6): one keyword+path constraint pair per
// keyword, plus export/component-type constraints for named entities,
// plus a single usage constraint.
func BuildConstraints(intent types.IntentAnalysis) []Constraint {
	var out []Constraint
	out = append(out, Constraint{Kind: ConstraintUsage})

	seen := make(map[string]bool)
	for _, kw := range intent.Keywords {
		if seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, Constraint{Kind: ConstraintKeyword, Keyword: kw})
		out = append(out, Constraint{Kind: ConstraintPath, Keyword: kw})
	}

	for _, fn := range intent.Entities.Functions {
		out = append(out, Constraint{Kind: ConstraintExport, Keyword: fn})
	}
	for _, cl := range intent.Entities.Classes {
		out = append(out, Constraint{Kind: ConstraintExport, Keyword: cl})
	}
	for _, comp := range intent.Entities.Components {
		out = append(out, Constraint{Kind: ConstraintComponentType, Keyword: comp})
	}
	for _, f := range intent.Entities.Files {
		out = append(out, Constraint{Kind: ConstraintImport, Keyword: f})
	}

	return OrderConstraints(out)
}

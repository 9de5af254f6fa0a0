package model

import "sort"

// Taxonomy maps a category family to its known categories. It is advisory:
// events may use categories that appear nowhere in it.
type Taxonomy map[string][]string

// DefaultTaxonomy returns the built-in category families.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		"code_quality":  {"bug_fix", "refactor", "optimization"},
		"architecture":  {"design_pattern", "component_structure", "dependency"},
		"workflow":      {"process_improvement", "automation", "efficiency"},
		"learning":      {"knowledge_gap", "skill_development", "insight"},
		"collaboration": {"team_coordination", "communication", "handoff"},
	}
}

// FamilyOf returns the family a category belongs to.
func (t Taxonomy) FamilyOf(category string) (string, bool) {
	for _, family := range t.Families() {
		for _, c := range t[family] {
			if c == category {
				return family, true
			}
		}
	}
	return "", false
}

// Families returns the family names in sorted order.
func (t Taxonomy) Families() []string {
	out := make([]string, 0, len(t))
	for f := range t {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

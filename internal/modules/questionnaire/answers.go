package questionnaire

import (
	"slices"
	"sort"
)

// AnswerState mirrors every question field for the active attempt.
// Values are treated as immutable; update operations return a new state.
type AnswerState struct {
	Interests         []string       `json:"interests"`
	WorkStyle         string         `json:"work_style"`
	SkillsConfidence  map[string]int `json:"skills_confidence"`
	CareerValues      []string       `json:"career_values"`
	AcademicStrengths []string       `json:"academic_strengths"`
}

// DefaultAnswers returns empty selections with every catalog skill at SkillDefault.
func DefaultAnswers(cat *Catalog) AnswerState {
	skills := make(map[string]int, len(cat.Skills))
	for _, s := range cat.Skills {
		skills[s.ID] = SkillDefault
	}
	return AnswerState{
		Interests:         []string{},
		SkillsConfidence:  skills,
		CareerValues:      []string{},
		AcademicStrengths: []string{},
	}
}

func (a AnswerState) Clone() AnswerState {
	out := AnswerState{
		Interests:         cloneStrings(a.Interests),
		WorkStyle:         a.WorkStyle,
		CareerValues:      cloneStrings(a.CareerValues),
		AcademicStrengths: cloneStrings(a.AcademicStrengths),
		SkillsConfidence:  make(map[string]int, len(a.SkillsConfidence)),
	}
	for k, v := range a.SkillsConfidence {
		out.SkillsConfidence[k] = v
	}
	return out
}

// Equal compares field by field, treating nil and empty selections alike.
func (a AnswerState) Equal(b AnswerState) bool {
	if a.WorkStyle != b.WorkStyle {
		return false
	}
	if !equalStrings(a.Interests, b.Interests) || !equalStrings(a.CareerValues, b.CareerValues) || !equalStrings(a.AcademicStrengths, b.AcademicStrengths) {
		return false
	}
	if len(a.SkillsConfidence) != len(b.SkillsConfidence) {
		return false
	}
	for k, v := range a.SkillsConfidence {
		if bv, ok := b.SkillsConfidence[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// SkillIDs returns the rated skills in a stable order.
func (a AnswerState) SkillIDs() []string {
	ids := make([]string, 0, len(a.SkillsConfidence))
	for k := range a.SkillsConfidence {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	return ids
}

func toggle(list []string, id string) []string {
	if i := slices.Index(list, id); i >= 0 {
		out := make([]string, 0, len(list)-1)
		out = append(out, list[:i]...)
		return append(out, list[i+1:]...)
	}
	out := make([]string, 0, len(list)+1)
	out = append(out, list...)
	return append(out, id)
}

func toggleCapped(list []string, id string, limit int) []string {
	if !slices.Contains(list, id) && len(list) >= limit {
		return cloneStrings(list)
	}
	return toggle(list, id)
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

package questionnaire

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Slices maps a step number to the raw answer payload stored for it.
// Missing steps and empty payloads are equivalent.
type Slices map[int]json.RawMessage

// SliceFor encodes the answer payload owned by step.
//
//	step 1: ["math", ...]
//	step 2: "small-teams"
//	step 3: {"leadership": [4], ...}
//	step 4: ["high-salary", "job-security"]
//	step 5: ["mathematics", ...]
func SliceFor(step int, a AnswerState) (json.RawMessage, error) {
	var v any
	switch step {
	case 1:
		v = nonNil(a.Interests)
	case 2:
		v = a.WorkStyle
	case 3:
		m := make(map[string][]int, len(a.SkillsConfidence))
		for k, val := range a.SkillsConfidence {
			m[k] = []int{val}
		}
		v = m
	case 4:
		v = nonNil(a.CareerValues)
	case 5:
		v = nonNil(a.AcademicStrengths)
	default:
		return nil, fmt.Errorf("slice for step %d: no such step", step)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("slice for step %d: %w", step, err)
	}
	return b, nil
}

// AllSlices encodes every step, used for the completion write.
func AllSlices(a AnswerState) (Slices, error) {
	out := make(Slices, TotalSteps)
	for step := 1; step <= TotalSteps; step++ {
		raw, err := SliceFor(step, a)
		if err != nil {
			return nil, err
		}
		out[step] = raw
	}
	return out, nil
}

// IsEmptySlice treats absent, null, "", [] and {} payloads as empty.
// Truncated payloads such as a lone "[" are not empty; decoding reports them.
func IsEmptySlice(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 {
		return true
	}
	switch string(t) {
	case "null", `""`, "[]", "{}":
		return true
	}
	if len(t) < 2 {
		return false
	}
	first, last := t[0], t[len(t)-1]
	if (first == '[' && last == ']') || (first == '{' && last == '}') {
		return len(bytes.TrimSpace(t[1:len(t)-1])) == 0
	}
	return false
}

// AllEmpty reports whether no step carries a payload.
func (s Slices) AllEmpty() bool {
	for step := 1; step <= TotalSteps; step++ {
		if !IsEmptySlice(s[step]) {
			return false
		}
	}
	return true
}

// StartingStep returns one past the highest contiguous non-empty step,
// clamped to TotalSteps.
func StartingStep(s Slices) int {
	step := 1
	for step <= TotalSteps && !IsEmptySlice(s[step]) {
		step++
	}
	if step > TotalSteps {
		return TotalSteps
	}
	return step
}

// ApplySlice decodes raw into the field owned by step. Unknown ids are
// dropped; skill values are clamped into range.
func ApplySlice(cat *Catalog, a AnswerState, step int, raw json.RawMessage) (AnswerState, error) {
	next := a.Clone()
	if IsEmptySlice(raw) {
		return next, nil
	}
	switch step {
	case 1:
		ids, err := decodeIDs(raw)
		if err != nil {
			return a, sliceErr(step, err)
		}
		next.Interests = filterIDs(ids, cat.IsSubject, 0)
	case 2:
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return a, sliceErr(step, err)
		}
		if cat.IsWorkStyle(id) {
			next.WorkStyle = id
		}
	case 3:
		skills, err := decodeSkills(raw)
		if err != nil {
			return a, sliceErr(step, err)
		}
		for k, v := range skills {
			if cat.IsSkill(k) {
				next.SkillsConfidence[k] = clampSkill(v)
			}
		}
	case 4:
		ids, err := decodeIDs(raw)
		if err != nil {
			return a, sliceErr(step, err)
		}
		next.CareerValues = filterIDs(ids, cat.IsCareerValue, CareerValueCap)
	case 5:
		ids, err := decodeIDs(raw)
		if err != nil {
			return a, sliceErr(step, err)
		}
		next.AcademicStrengths = filterIDs(ids, cat.IsAcademicStrength, 0)
	default:
		return a, fmt.Errorf("apply slice: no such step %d", step)
	}
	return next, nil
}

// Reconstruct rebuilds answers from stored slices, walking steps from 1
// while payloads are non-empty and decodable. A slice that fails to decode
// ends the walk; the returned error describes it and is informational.
func Reconstruct(cat *Catalog, s Slices) (AnswerState, int, error) {
	state := DefaultAnswers(cat)
	step := 1
	for ; step <= TotalSteps; step++ {
		raw := s[step]
		if IsEmptySlice(raw) {
			break
		}
		next, err := ApplySlice(cat, state, step, raw)
		if err != nil {
			return state, step, err
		}
		state = next
	}
	if step > TotalSteps {
		step = TotalSteps
	}
	return state, step, nil
}

func decodeIDs(raw json.RawMessage) ([]string, error) {
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Skill payloads are normally {"skill": [n]}; bare integers are accepted too.
func decodeSkills(raw json.RawMessage) (map[string]int, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		var n int
		if err := json.Unmarshal(v, &n); err == nil {
			out[k] = n
			continue
		}
		var arr []int
		if err := json.Unmarshal(v, &arr); err != nil {
			return nil, fmt.Errorf("skill %q: %w", k, err)
		}
		if len(arr) == 0 {
			continue
		}
		out[k] = arr[0]
	}
	return out, nil
}

func filterIDs(ids []string, known func(string) bool, limit int) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] || !known(id) {
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func clampSkill(v int) int {
	if v < SkillMin {
		return SkillMin
	}
	if v > SkillMax {
		return SkillMax
	}
	return v
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func sliceErr(step int, err error) error {
	return errors.Join(fmt.Errorf("decode slice for step %d", step), err)
}

package questionnaire

import (
	"fmt"
	"slices"
	"strings"
)

type CommandType string

const (
	CmdToggleInterest         CommandType = "toggle_interest"
	CmdSetWorkStyle           CommandType = "set_work_style"
	CmdSetSkillConfidence     CommandType = "set_skill_confidence"
	CmdReplaceSkills          CommandType = "replace_skills"
	CmdToggleCareerValue      CommandType = "toggle_career_value"
	CmdToggleAcademicStrength CommandType = "toggle_academic_strength"
	CmdReplaceAnswers         CommandType = "replace_answers"
)

// Command is one answer mutation. Which fields are read depends on Type.
type Command struct {
	Type    CommandType    `json:"type"`
	ID      string         `json:"id,omitempty"`
	Skill   string         `json:"skill,omitempty"`
	Value   int            `json:"value,omitempty"`
	Skills  map[string]int `json:"skills,omitempty"`
	Answers *AnswerState   `json:"answers,omitempty"`
}

// Apply returns the state produced by cmd. On error the input state is
// returned unchanged.
func Apply(cat *Catalog, state AnswerState, cmd Command) (AnswerState, error) {
	id := strings.TrimSpace(cmd.ID)
	switch cmd.Type {
	case CmdToggleInterest:
		if !cat.IsSubject(id) {
			return state, invalid("unknown subject %q", id)
		}
		next := state.Clone()
		next.Interests = toggle(state.Interests, id)
		return next, nil

	case CmdSetWorkStyle:
		if !cat.IsWorkStyle(id) {
			return state, invalid("unknown work style %q", id)
		}
		next := state.Clone()
		next.WorkStyle = id
		return next, nil

	case CmdSetSkillConfidence:
		skill := strings.TrimSpace(cmd.Skill)
		if !cat.IsSkill(skill) {
			return state, invalid("unknown skill %q", skill)
		}
		if cmd.Value < SkillMin || cmd.Value > SkillMax {
			return state, invalid("skill value %d outside %d-%d", cmd.Value, SkillMin, SkillMax)
		}
		next := state.Clone()
		next.SkillsConfidence[skill] = cmd.Value
		return next, nil

	case CmdReplaceSkills:
		skills, err := validateSkills(cat, cmd.Skills)
		if err != nil {
			return state, err
		}
		next := state.Clone()
		next.SkillsConfidence = skills
		return next, nil

	case CmdToggleCareerValue:
		if !cat.IsCareerValue(id) {
			return state, invalid("unknown career value %q", id)
		}
		next := state.Clone()
		next.CareerValues = toggleCapped(state.CareerValues, id, CareerValueCap)
		return next, nil

	case CmdToggleAcademicStrength:
		if !cat.IsAcademicStrength(id) {
			return state, invalid("unknown academic strength %q", id)
		}
		next := state.Clone()
		next.AcademicStrengths = toggle(state.AcademicStrengths, id)
		return next, nil

	case CmdReplaceAnswers:
		if cmd.Answers == nil {
			return state, invalid("replace_answers requires answers")
		}
		next, err := validateAnswers(cat, *cmd.Answers)
		if err != nil {
			return state, err
		}
		return next, nil

	default:
		return state, invalid("unknown command type %q", cmd.Type)
	}
}

// ApplyAll applies cmds in order. The batch is atomic: any invalid command
// leaves the input state unchanged.
func ApplyAll(cat *Catalog, state AnswerState, cmds []Command) (AnswerState, error) {
	next := state
	for i, cmd := range cmds {
		var err error
		next, err = Apply(cat, next, cmd)
		if err != nil {
			return state, fmt.Errorf("command %d: %w", i, err)
		}
	}
	return next, nil
}

func validateSkills(cat *Catalog, in map[string]int) (map[string]int, error) {
	out := make(map[string]int, len(cat.Skills))
	for _, s := range cat.Skills {
		out[s.ID] = SkillDefault
	}
	for k, v := range in {
		if !cat.IsSkill(k) {
			return nil, invalid("unknown skill %q", k)
		}
		if v < SkillMin || v > SkillMax {
			return nil, invalid("skill value %d outside %d-%d", v, SkillMin, SkillMax)
		}
		out[k] = v
	}
	return out, nil
}

func validateAnswers(cat *Catalog, in AnswerState) (AnswerState, error) {
	out := AnswerState{
		Interests:         []string{},
		CareerValues:      []string{},
		AcademicStrengths: []string{},
	}
	for _, id := range in.Interests {
		if !cat.IsSubject(id) {
			return AnswerState{}, invalid("unknown subject %q", id)
		}
		if !slices.Contains(out.Interests, id) {
			out.Interests = append(out.Interests, id)
		}
	}
	if in.WorkStyle != "" && !cat.IsWorkStyle(in.WorkStyle) {
		return AnswerState{}, invalid("unknown work style %q", in.WorkStyle)
	}
	out.WorkStyle = in.WorkStyle
	skills, err := validateSkills(cat, in.SkillsConfidence)
	if err != nil {
		return AnswerState{}, err
	}
	out.SkillsConfidence = skills
	for _, id := range in.CareerValues {
		if !cat.IsCareerValue(id) {
			return AnswerState{}, invalid("unknown career value %q", id)
		}
		if !slices.Contains(out.CareerValues, id) {
			out.CareerValues = append(out.CareerValues, id)
		}
	}
	if len(out.CareerValues) > CareerValueCap {
		return AnswerState{}, invalid("at most %d career values may be selected", CareerValueCap)
	}
	for _, id := range in.AcademicStrengths {
		if !cat.IsAcademicStrength(id) {
			return AnswerState{}, invalid("unknown academic strength %q", id)
		}
		if !slices.Contains(out.AcademicStrengths, id) {
			out.AcademicStrengths = append(out.AcademicStrengths, id)
		}
	}
	return out, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidCommand, fmt.Sprintf(format, args...))
}

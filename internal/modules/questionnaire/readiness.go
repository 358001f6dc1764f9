package questionnaire

// CanAdvance reports whether the answers satisfy the given step.
func CanAdvance(step int, a AnswerState) bool {
	switch step {
	case 1:
		return len(a.Interests) > 0
	case 2:
		return a.WorkStyle != ""
	case 3:
		return true
	case 4:
		return len(a.CareerValues) == CareerValueCap
	case 5:
		return len(a.AcademicStrengths) > 0
	default:
		return false
	}
}

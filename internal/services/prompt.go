package services

import (
	"fmt"
	"strings"

	"github.com/yungbote/majorcompass-backend/internal/modules/questionnaire"
)

const recommendationSchemaName = "major_recommendations"

const recommendationSystemPrompt = `You are an academic advisor recommending college majors.
Return 3 to 5 recommendations as JSON matching the provided schema.
Weigh subject interests most, then skills confidence, then career values, then academic strengths.
Confidence is an integer between 75 and 95.
Reasoning must cite the student's actual answers. List 4 current career paths per major.
why_good_fit is one sentence on the strongest alignment; considerations is one sentence on challenges.
summary is 2 to 3 sentences on the overall profile.`

func recommendationSchema() map[string]any {
	str := map[string]any{"type": "string"}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"recommendations", "summary"},
		"properties": map[string]any{
			"summary": str,
			"recommendations": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"major", "confidence", "reasoning", "career_paths", "why_good_fit", "considerations"},
					"properties": map[string]any{
						"major":          str,
						"confidence":     map[string]any{"type": "integer"},
						"reasoning":      str,
						"career_paths":   map[string]any{"type": "array", "items": str},
						"why_good_fit":   str,
						"considerations": str,
					},
				},
			},
		},
	}
}

// renderAnswers formats the answer state with catalog labels, one line per question.
func renderAnswers(cat *questionnaire.Catalog, a questionnaire.AnswerState) string {
	var b strings.Builder
	b.WriteString("Questionnaire responses:\n")
	fmt.Fprintf(&b, "1. Subject interests: %s\n", labelList(cat, a.Interests, "None selected"))
	work := "Not specified"
	if a.WorkStyle != "" {
		work = cat.Label(a.WorkStyle)
	}
	fmt.Fprintf(&b, "2. Work preference: %s\n", work)
	b.WriteString("3. Skills confidence (1-5):\n")
	for _, opt := range cat.Skills {
		if v, ok := a.SkillsConfidence[opt.ID]; ok {
			fmt.Fprintf(&b, "   - %s: %d\n", opt.Label, v)
		} else {
			fmt.Fprintf(&b, "   - %s: Not rated\n", opt.Label)
		}
	}
	fmt.Fprintf(&b, "4. Career values: %s\n", labelList(cat, a.CareerValues, "None selected"))
	fmt.Fprintf(&b, "5. Academic strengths: %s\n", labelList(cat, a.AcademicStrengths, "None selected"))
	return b.String()
}

func labelList(cat *questionnaire.Catalog, ids []string, empty string) string {
	if len(ids) == 0 {
		return empty
	}
	labels := make([]string, 0, len(ids))
	for _, id := range ids {
		labels = append(labels, cat.Label(id))
	}
	return strings.Join(labels, ", ")
}

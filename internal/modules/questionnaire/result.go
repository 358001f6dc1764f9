package questionnaire

import (
	"strings"
)

const (
	MinConfidence = 75
	MaxConfidence = 95
)

type Recommendation struct {
	Major           string   `json:"major" yaml:"major"`
	ConfidenceScore int      `json:"confidence_score" yaml:"confidence_score"`
	Reasoning       string   `json:"reasoning" yaml:"reasoning"`
	CareerPaths     []string `json:"career_paths" yaml:"career_paths"`
	FitStatement    string   `json:"fit_statement" yaml:"fit_statement"`
	CaveatStatement string   `json:"caveat_statement" yaml:"caveat_statement"`
}

// Result is the output of a generation. It is immutable once returned.
type Result struct {
	Recommendations []Recommendation `json:"recommendations" yaml:"recommendations"`
	Summary         string           `json:"summary,omitempty" yaml:"summary"`
	IsFallback      bool             `json:"is_fallback" yaml:"-"`
	FailureReason   string           `json:"failure_reason,omitempty" yaml:"-"`
}

// Normalize drops entries without a major, trims text, and clamps
// confidence into [MinConfidence, MaxConfidence].
func (r *Result) Normalize() {
	if r == nil {
		return
	}
	out := make([]Recommendation, 0, len(r.Recommendations))
	for _, rec := range r.Recommendations {
		rec.Major = strings.TrimSpace(rec.Major)
		if rec.Major == "" {
			continue
		}
		rec.ConfidenceScore = ClampConfidence(rec.ConfidenceScore)
		rec.Reasoning = strings.TrimSpace(rec.Reasoning)
		rec.FitStatement = strings.TrimSpace(rec.FitStatement)
		rec.CaveatStatement = strings.TrimSpace(rec.CaveatStatement)
		paths := make([]string, 0, len(rec.CareerPaths))
		for _, p := range rec.CareerPaths {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, p)
			}
		}
		rec.CareerPaths = paths
		out = append(out, rec)
	}
	r.Recommendations = out
	r.Summary = strings.TrimSpace(r.Summary)
}

func ClampConfidence(v int) int {
	if v < MinConfidence {
		return MinConfidence
	}
	if v > MaxConfidence {
		return MaxConfidence
	}
	return v
}

func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	out := *r
	out.Recommendations = make([]Recommendation, len(r.Recommendations))
	for i, rec := range r.Recommendations {
		rec.CareerPaths = cloneStrings(rec.CareerPaths)
		out.Recommendations[i] = rec
	}
	return &out
}

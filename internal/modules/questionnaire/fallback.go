package questionnaire

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed fallback.yaml
var fallbackYAML []byte

var (
	fallbackOnce   sync.Once
	fallbackResult *Result
)

// ParseFallback loads a backup result document. Every entry must carry a
// major and a confidence inside the published range.
func ParseFallback(data []byte) (*Result, error) {
	var r Result
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse fallback: %w", err)
	}
	if len(r.Recommendations) == 0 {
		return nil, fmt.Errorf("parse fallback: no recommendations")
	}
	for i, rec := range r.Recommendations {
		if rec.Major == "" {
			return nil, fmt.Errorf("parse fallback: entry %d has no major", i)
		}
		if rec.ConfidenceScore < MinConfidence || rec.ConfidenceScore > MaxConfidence {
			return nil, fmt.Errorf("parse fallback: entry %d confidence %d out of range", i, rec.ConfidenceScore)
		}
	}
	if r.Summary == "" {
		return nil, fmt.Errorf("parse fallback: summary is required")
	}
	r.IsFallback = true
	return &r, nil
}

// Fallback returns a fresh copy of the embedded backup result tagged with
// the failure category that caused it.
func Fallback(reason FailureCategory) *Result {
	fallbackOnce.Do(func() {
		r, err := ParseFallback(fallbackYAML)
		if err != nil {
			panic(err)
		}
		fallbackResult = r
	})
	out := fallbackResult.Clone()
	out.IsFallback = true
	out.FailureReason = string(reason)
	return out
}

package questionnaire

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	TotalSteps = 5

	// CareerValueCap bounds the career values selection. Toggling a new id
	// once the cap is reached is a no-op.
	CareerValueCap = 2

	SkillMin     = 1
	SkillMax     = 5
	SkillDefault = 3
)

//go:embed catalog.yaml
var catalogYAML []byte

type Option struct {
	ID          string `yaml:"id" json:"id"`
	Label       string `yaml:"label" json:"label"`
	Description string `yaml:"description" json:"description,omitempty"`
}

// Catalog lists the selectable ids for every question.
type Catalog struct {
	Subjects          []Option `yaml:"subjects" json:"subjects"`
	WorkStyles        []Option `yaml:"work_styles" json:"work_styles"`
	Skills            []Option `yaml:"skills" json:"skills"`
	CareerValues      []Option `yaml:"career_values" json:"career_values"`
	AcademicStrengths []Option `yaml:"academic_strengths" json:"academic_strengths"`
}

var (
	defaultCatalogOnce sync.Once
	defaultCatalog     *Catalog
)

// DefaultCatalog returns the embedded option catalog. It panics if the
// embedded document is invalid, which can only happen at build time.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := ParseCatalog(catalogYAML)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	groups := map[string][]Option{
		"subjects":           c.Subjects,
		"work_styles":        c.WorkStyles,
		"skills":             c.Skills,
		"career_values":      c.CareerValues,
		"academic_strengths": c.AcademicStrengths,
	}
	for name, opts := range groups {
		if len(opts) == 0 {
			return nil, fmt.Errorf("parse catalog: %s is empty", name)
		}
		seen := make(map[string]bool, len(opts))
		for _, o := range opts {
			id := strings.TrimSpace(o.ID)
			if id == "" {
				return nil, fmt.Errorf("parse catalog: %s has an option without id", name)
			}
			if seen[id] {
				return nil, fmt.Errorf("parse catalog: %s has duplicate id %q", name, id)
			}
			seen[id] = true
		}
	}
	if len(c.CareerValues) < CareerValueCap {
		return nil, fmt.Errorf("parse catalog: need at least %d career values", CareerValueCap)
	}
	return &c, nil
}

func hasOption(opts []Option, id string) bool {
	for _, o := range opts {
		if o.ID == id {
			return true
		}
	}
	return false
}

func (c *Catalog) IsSubject(id string) bool          { return hasOption(c.Subjects, id) }
func (c *Catalog) IsWorkStyle(id string) bool        { return hasOption(c.WorkStyles, id) }
func (c *Catalog) IsSkill(id string) bool            { return hasOption(c.Skills, id) }
func (c *Catalog) IsCareerValue(id string) bool      { return hasOption(c.CareerValues, id) }
func (c *Catalog) IsAcademicStrength(id string) bool { return hasOption(c.AcademicStrengths, id) }

// Label resolves an id to its display label, falling back to the id itself.
func (c *Catalog) Label(id string) string {
	for _, group := range [][]Option{c.Subjects, c.WorkStyles, c.Skills, c.CareerValues, c.AcademicStrengths} {
		for _, o := range group {
			if o.ID == id {
				return o.Label
			}
		}
	}
	return id
}

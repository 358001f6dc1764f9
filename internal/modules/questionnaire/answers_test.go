package questionnaire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAnswers(t *testing.T) {
	cat := DefaultCatalog()
	a := DefaultAnswers(cat)

	assert.Empty(t, a.Interests)
	assert.Empty(t, a.WorkStyle)
	assert.Empty(t, a.CareerValues)
	assert.Empty(t, a.AcademicStrengths)
	require.Len(t, a.SkillsConfidence, len(cat.Skills))
	for _, s := range cat.Skills {
		assert.Equal(t, SkillDefault, a.SkillsConfidence[s.ID], s.ID)
	}
}

func TestToggleInterestAddsAndRemoves(t *testing.T) {
	cat := DefaultCatalog()
	a := DefaultAnswers(cat)

	a, err := Apply(cat, a, Command{Type: CmdToggleInterest, ID: "math"})
	require.NoError(t, err)
	a, err = Apply(cat, a, Command{Type: CmdToggleInterest, ID: "arts"})
	require.NoError(t, err)
	assert.Equal(t, []string{"math", "arts"}, a.Interests)

	a, err = Apply(cat, a, Command{Type: CmdToggleInterest, ID: "math"})
	require.NoError(t, err)
	assert.Equal(t, []string{"arts"}, a.Interests)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	cat := DefaultCatalog()
	before := DefaultAnswers(cat)

	after, err := Apply(cat, before, Command{Type: CmdSetSkillConfidence, Skill: "leadership", Value: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, after.SkillsConfidence["leadership"])
	assert.Equal(t, SkillDefault, before.SkillsConfidence["leadership"])
}

func TestCareerValuesCapIsNoOp(t *testing.T) {
	cat := DefaultCatalog()
	a := DefaultAnswers(cat)
	for _, id := range []string{"high-salary", "job-security", "helping-others"} {
		var err error
		a, err = Apply(cat, a, Command{Type: CmdToggleCareerValue, ID: id})
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"high-salary", "job-security"}, a.CareerValues)

	// Removing still works at the cap.
	a, err := Apply(cat, a, Command{Type: CmdToggleCareerValue, ID: "high-salary"})
	require.NoError(t, err)
	assert.Equal(t, []string{"job-security"}, a.CareerValues)
}

func TestCareerValuesNeverExceedCap(t *testing.T) {
	cat := DefaultCatalog()
	a := DefaultAnswers(cat)
	ids := []string{"high-salary", "job-security", "creative-freedom", "helping-others", "work-life-balance", "leadership-opportunities"}
	// Deterministic pseudo-random walk over toggles.
	seed := uint32(7)
	for i := 0; i < 500; i++ {
		seed = seed*1664525 + 1013904223
		id := ids[int(seed>>16)%len(ids)]
		var err error
		a, err = Apply(cat, a, Command{Type: CmdToggleCareerValue, ID: id})
		require.NoError(t, err)
		require.LessOrEqual(t, len(a.CareerValues), CareerValueCap)
	}
}

func TestApplyRejectsInvalidCommands(t *testing.T) {
	cat := DefaultCatalog()
	a := DefaultAnswers(cat)

	cases := []Command{
		{Type: CmdToggleInterest, ID: "astrology"},
		{Type: CmdSetWorkStyle, ID: "remote"},
		{Type: CmdSetSkillConfidence, Skill: "leadership", Value: 0},
		{Type: CmdSetSkillConfidence, Skill: "leadership", Value: 6},
		{Type: CmdSetSkillConfidence, Skill: "juggling", Value: 3},
		{Type: CmdReplaceSkills, Skills: map[string]int{"leadership": 9}},
		{Type: CmdToggleAcademicStrength, ID: "alchemy"},
		{Type: CmdReplaceAnswers},
		{Type: CmdReplaceAnswers, Answers: &AnswerState{CareerValues: []string{"high-salary", "job-security", "helping-others"}}},
		{Type: "teleport"},
	}
	for _, cmd := range cases {
		got, err := Apply(cat, a, cmd)
		require.ErrorIs(t, err, ErrInvalidCommand, "%+v", cmd)
		assert.True(t, got.Equal(a), "state changed for %+v", cmd)
	}
}

func TestApplyAllIsAtomic(t *testing.T) {
	cat := DefaultCatalog()
	a := DefaultAnswers(cat)

	got, err := ApplyAll(cat, a, []Command{
		{Type: CmdToggleInterest, ID: "math"},
		{Type: CmdSetWorkStyle, ID: "nowhere"},
	})
	require.ErrorIs(t, err, ErrInvalidCommand)
	assert.Empty(t, got.Interests)
}

func TestReplaceAnswersFillsSkillDefaults(t *testing.T) {
	cat := DefaultCatalog()
	got, err := Apply(cat, DefaultAnswers(cat), Command{Type: CmdReplaceAnswers, Answers: &AnswerState{
		Interests:        []string{"science", "science"},
		WorkStyle:        "mix",
		SkillsConfidence: map[string]int{"communication": 1},
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"science"}, got.Interests)
	assert.Equal(t, "mix", got.WorkStyle)
	assert.Equal(t, 1, got.SkillsConfidence["communication"])
	assert.Equal(t, SkillDefault, got.SkillsConfidence["leadership"])
}

func TestCanAdvance(t *testing.T) {
	cat := DefaultCatalog()
	a := DefaultAnswers(cat)

	assert.False(t, CanAdvance(1, a))
	assert.False(t, CanAdvance(2, a))
	assert.True(t, CanAdvance(3, a))
	assert.False(t, CanAdvance(4, a))
	assert.False(t, CanAdvance(5, a))
	assert.False(t, CanAdvance(0, a))
	assert.False(t, CanAdvance(6, a))

	a.Interests = []string{"math"}
	a.WorkStyle = "mix"
	a.CareerValues = []string{"high-salary"}
	a.AcademicStrengths = []string{"art"}
	assert.True(t, CanAdvance(1, a))
	assert.True(t, CanAdvance(2, a))
	assert.False(t, CanAdvance(4, a), "one career value is not enough")
	assert.True(t, CanAdvance(5, a))

	a.CareerValues = []string{"high-salary", "job-security"}
	assert.True(t, CanAdvance(4, a))
}

func TestParseCatalogRejectsDuplicates(t *testing.T) {
	_, err := ParseCatalog([]byte(`
subjects: [{id: a}, {id: a}]
work_styles: [{id: w}]
skills: [{id: s}]
career_values: [{id: x}, {id: y}]
academic_strengths: [{id: z}]
`))
	require.Error(t, err)
}

package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/majorcompass-backend/internal/modules/questionnaire"
	"github.com/yungbote/majorcompass-backend/internal/platform/logger"
)

type resolverFunc func(ctx context.Context, ownerID uuid.UUID, forceFresh bool) (questionnaire.Resolution, error)

func (f resolverFunc) Resolve(ctx context.Context, ownerID uuid.UUID, forceFresh bool) (questionnaire.Resolution, error) {
	return f(ctx, ownerID, forceFresh)
}

type finalizerFunc func(ctx context.Context, ownerID uuid.UUID, attemptID *uuid.UUID, answers questionnaire.AnswerState) (*questionnaire.Completion, error)

func (f finalizerFunc) Finalize(ctx context.Context, ownerID uuid.UUID, attemptID *uuid.UUID, answers questionnaire.AnswerState) (*questionnaire.Completion, error) {
	return f(ctx, ownerID, attemptID, answers)
}

func newTestController(t *testing.T, finalize finalizerFunc) *questionnaire.Controller {
	t.Helper()
	cat := questionnaire.DefaultCatalog()
	return questionnaire.NewController(uuid.New(), questionnaire.ControllerDeps{
		Catalog: cat,
		Resolver: resolverFunc(func(context.Context, uuid.UUID, bool) (questionnaire.Resolution, error) {
			return questionnaire.Resolution{StartingStep: 1, Answers: questionnaire.DefaultAnswers(cat)}, nil
		}),
		Finalizer: finalize,
		Log:       logger.NewNop(),
	})
}

func fallbackFinalizer(got *questionnaire.AnswerState) finalizerFunc {
	return func(_ context.Context, _ uuid.UUID, _ *uuid.UUID, answers questionnaire.AnswerState) (*questionnaire.Completion, error) {
		*got = answers
		return &questionnaire.Completion{
			AttemptID:   uuid.New(),
			CompletedAt: time.Now(),
			Result:      questionnaire.Fallback(questionnaire.FailureUnavailable),
		}, nil
	}
}

func TestRunTakeCompletesQuestionnaire(t *testing.T) {
	var submitted questionnaire.AnswerState
	ctrl := newTestController(t, fallbackFinalizer(&submitted))
	cat := questionnaire.DefaultCatalog()

	in := strings.NewReader(strings.Join([]string{
		"1", "n",
		"2", "n",
		"1=5", "n",
		"1 2", "n",
		"1", "n",
	}, "\n") + "\n")
	var out bytes.Buffer
	if err := runTake(context.Background(), ctrl, cat, in, &out, false); err != nil {
		t.Fatalf("runTake: %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "Your recommended majors") {
		t.Fatalf("missing results in output:\n%s", text)
	}
	if !strings.Contains(text, "general suggestions") {
		t.Fatalf("expected fallback notice:\n%s", text)
	}
	if ctrl.Snapshot().Phase != questionnaire.PhaseDone {
		t.Fatalf("phase=%s want done", ctrl.Snapshot().Phase)
	}
	if len(submitted.Interests) != 1 || submitted.Interests[0] != cat.Subjects[0].ID {
		t.Fatalf("interests=%v", submitted.Interests)
	}
	if submitted.WorkStyle != cat.WorkStyles[1].ID {
		t.Fatalf("work style=%q", submitted.WorkStyle)
	}
	if submitted.SkillsConfidence[cat.Skills[0].ID] != 5 {
		t.Fatalf("skills=%v", submitted.SkillsConfidence)
	}
	if len(submitted.CareerValues) != questionnaire.CareerValueCap {
		t.Fatalf("career values=%v", submitted.CareerValues)
	}
}

func TestRunTakeBlocksIncompleteStepAndExits(t *testing.T) {
	var submitted questionnaire.AnswerState
	ctrl := newTestController(t, fallbackFinalizer(&submitted))

	var out bytes.Buffer
	in := strings.NewReader("n\nb\n")
	if err := runTake(context.Background(), ctrl, questionnaire.DefaultCatalog(), in, &out, false); err != nil {
		t.Fatalf("runTake: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "Answer this step before continuing.") {
		t.Fatalf("expected incomplete notice:\n%s", text)
	}
	if !strings.Contains(text, "Questionnaire closed.") {
		t.Fatalf("expected exit notice:\n%s", text)
	}
	if ctrl.Snapshot().Phase != questionnaire.PhaseExited {
		t.Fatalf("phase=%s want exited", ctrl.Snapshot().Phase)
	}
}

func TestRunTakeKeepsFinalStepWhenSubmitFails(t *testing.T) {
	calls := 0
	ctrl := newTestController(t, func(context.Context, uuid.UUID, *uuid.UUID, questionnaire.AnswerState) (*questionnaire.Completion, error) {
		calls++
		return nil, questionnaire.ErrCompletionNotSaved
	})

	var out bytes.Buffer
	in := strings.NewReader("1\nn\n1\nn\nn\n1 2\nn\n1\nn\nq\n")
	if err := runTake(context.Background(), ctrl, questionnaire.DefaultCatalog(), in, &out, false); err != nil {
		t.Fatalf("runTake: %v", err)
	}
	if calls != 1 {
		t.Fatalf("finalize calls=%d want 1", calls)
	}
	snap := ctrl.Snapshot()
	if snap.Phase != questionnaire.PhaseAnswering || snap.Step != questionnaire.TotalSteps {
		t.Fatalf("snapshot=%+v", snap)
	}
	if !strings.Contains(out.String(), "could not be submitted") {
		t.Fatalf("expected submit failure notice:\n%s", out.String())
	}
}

func TestCommandsFor(t *testing.T) {
	cat := questionnaire.DefaultCatalog()

	cmds, err := commandsFor(cat, 1, "1, 3")
	if err != nil {
		t.Fatalf("commandsFor: %v", err)
	}
	if len(cmds) != 2 || cmds[1].Type != questionnaire.CmdToggleInterest || cmds[1].ID != cat.Subjects[2].ID {
		t.Fatalf("cmds=%+v", cmds)
	}

	cmds, err = commandsFor(cat, 3, "2=4")
	if err != nil {
		t.Fatalf("commandsFor skills: %v", err)
	}
	if cmds[0].Type != questionnaire.CmdSetSkillConfidence || cmds[0].Skill != cat.Skills[1].ID || cmds[0].Value != 4 {
		t.Fatalf("cmds=%+v", cmds)
	}

	if _, err := commandsFor(cat, 3, "2"); err == nil {
		t.Fatalf("expected format error for bare skill number")
	}
	if _, err := commandsFor(cat, 1, "99"); err == nil {
		t.Fatalf("expected range error")
	}
}

func TestDescribe(t *testing.T) {
	err := errors.Join(questionnaire.ErrCompletionNotSaved, errors.New("db down"))
	if got := describe(err); got != "Your answers could not be submitted." {
		t.Fatalf("describe=%q", got)
	}
}

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/majorcompass-backend/internal/app"
	"github.com/yungbote/majorcompass-backend/internal/modules/questionnaire"
)

var stepTitles = [questionnaire.TotalSteps + 1]string{
	1: "Which subjects interest you?",
	2: "How do you prefer to work?",
	3: "Rate your confidence in each skill",
	4: fmt.Sprintf("Pick exactly %d career values", questionnaire.CareerValueCap),
	5: "Where are you academically strongest?",
}

func newTakeCommand() *cobra.Command {
	var ownerRaw string
	var fresh bool

	cmd := &cobra.Command{
		Use:   "take",
		Short: "Take the questionnaire in the terminal",
		Long: `Take the questionnaire interactively. Answers are saved after every
step under the given owner id, so running the command again resumes where
you left off unless --fresh is set.

Input at each step:
  numbers (e.g. "1 3")   toggle or pick options
  n=v (e.g. "2=5")       set a skill rating on the skills step
  n                      next step (submits on the last step)
  b                      back (exits from the first step)
  q                      quit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, err := uuid.Parse(strings.TrimSpace(ownerRaw))
			if err != nil {
				return fmt.Errorf("--owner must be a uuid: %w", err)
			}

			log, err := app.NewLogger()
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), log, app.ModeLocal)
			if err != nil {
				log.Sync()
				return err
			}
			defer a.Close()

			ctrl := questionnaire.NewController(ownerID, a.Services.ControllerDeps)
			return runTake(cmd.Context(), ctrl, a.Services.Catalog, cmd.InOrStdin(), cmd.OutOrStdout(), fresh)
		},
	}

	cmd.Flags().StringVar(&ownerRaw, "owner", "", "Owner id the attempt is saved under")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "Discard unanswered progress and start over")
	_ = cmd.MarkFlagRequired("owner")

	return cmd
}

type takeSession struct {
	ctrl *questionnaire.Controller
	cat  *questionnaire.Catalog
	in   *bufio.Scanner
	out  io.Writer

	title  *color.Color
	hint   *color.Color
	good   *color.Color
	warn   *color.Color
	faint  *color.Color
	accent *color.Color
}

func runTake(ctx context.Context, ctrl *questionnaire.Controller, cat *questionnaire.Catalog, in io.Reader, out io.Writer, fresh bool) error {
	s := &takeSession{
		ctrl:   ctrl,
		cat:    cat,
		in:     bufio.NewScanner(in),
		out:    out,
		title:  color.New(color.FgCyan, color.Bold),
		hint:   color.New(color.FgHiBlack),
		good:   color.New(color.FgGreen),
		warn:   color.New(color.FgYellow),
		faint:  color.New(color.FgHiBlack),
		accent: color.New(color.FgMagenta, color.Bold),
	}

	snap, err := ctrl.Initialize(ctx, fresh)
	if err != nil {
		return err
	}
	if snap.Warning != "" {
		s.warn.Fprintln(out, snap.Warning)
	}
	if snap.Resumed {
		s.good.Fprintf(out, "Resuming at step %d of %d\n", snap.Step, snap.TotalSteps)
	}

	for snap.Phase == questionnaire.PhaseAnswering {
		s.render(snap)
		line, ok := s.readLine()
		if !ok {
			return nil
		}
		snap, err = s.handle(ctx, snap, line)
		if errors.Is(err, errQuit) {
			s.hint.Fprintln(out, "Progress up to the last completed step is saved.")
			return nil
		}
		if err != nil {
			s.warn.Fprintf(out, "%s\n", describe(err))
			if errors.Is(err, questionnaire.ErrCompletionNotSaved) {
				s.hint.Fprintln(out, "Press n to try submitting again.")
			}
		}
	}

	switch snap.Phase {
	case questionnaire.PhaseExited:
		s.hint.Fprintln(out, "Questionnaire closed.")
	case questionnaire.PhaseDone:
		s.renderResult(snap.Result)
	}
	return nil
}

var errQuit = errors.New("quit")

func (s *takeSession) readLine() (string, bool) {
	fmt.Fprint(s.out, "> ")
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *takeSession) handle(ctx context.Context, snap questionnaire.Snapshot, line string) (questionnaire.Snapshot, error) {
	switch strings.ToLower(line) {
	case "":
		return snap, nil
	case "q", "quit":
		return snap, errQuit
	case "b", "back":
		return s.ctrl.Back()
	case "n", "next":
		if snap.Step == questionnaire.TotalSteps {
			s.hint.Fprintln(s.out, "Generating your recommendations...")
		}
		return s.ctrl.Next(ctx)
	}
	cmds, err := commandsFor(s.cat, snap.Step, line)
	if err != nil {
		return snap, err
	}
	return s.ctrl.Dispatch(cmds...)
}

func (s *takeSession) render(snap questionnaire.Snapshot) {
	fmt.Fprintln(s.out)
	s.title.Fprintf(s.out, "Step %d of %d: %s\n", snap.Step, snap.TotalSteps, stepTitles[snap.Step])
	a := snap.Answers
	for i, opt := range stepOptions(s.cat, snap.Step) {
		mark := "[ ]"
		switch snap.Step {
		case 1:
			mark = checkbox(slices.Contains(a.Interests, opt.ID))
		case 2:
			mark = radio(a.WorkStyle == opt.ID)
		case 3:
			mark = fmt.Sprintf("[%d]", a.SkillsConfidence[opt.ID])
		case 4:
			mark = checkbox(slices.Contains(a.CareerValues, opt.ID))
		case 5:
			mark = checkbox(slices.Contains(a.AcademicStrengths, opt.ID))
		}
		fmt.Fprintf(s.out, "  %2d %s %s", i+1, mark, opt.Label)
		if opt.Description != "" {
			s.faint.Fprintf(s.out, "  %s", opt.Description)
		}
		fmt.Fprintln(s.out)
	}
	if snap.CanAdvance {
		s.hint.Fprintln(s.out, "n: next  b: back  q: quit")
	} else {
		s.hint.Fprintln(s.out, "answer to continue  b: back  q: quit")
	}
}

func (s *takeSession) renderResult(res *questionnaire.Result) {
	fmt.Fprintln(s.out)
	if res == nil {
		s.warn.Fprintln(s.out, "No recommendations available.")
		return
	}
	s.title.Fprintln(s.out, "Your recommended majors")
	if res.IsFallback {
		s.warn.Fprintln(s.out, "Personalized recommendations were unavailable; showing general suggestions.")
	}
	for i, rec := range res.Recommendations {
		s.accent.Fprintf(s.out, "%d. %s", i+1, rec.Major)
		s.good.Fprintf(s.out, " (%d%% match)\n", rec.ConfidenceScore)
		if rec.Reasoning != "" {
			fmt.Fprintf(s.out, "   %s\n", rec.Reasoning)
		}
		if len(rec.CareerPaths) > 0 {
			s.faint.Fprintf(s.out, "   Careers: %s\n", strings.Join(rec.CareerPaths, ", "))
		}
	}
	if res.Summary != "" {
		fmt.Fprintf(s.out, "\n%s\n", res.Summary)
	}
}

func stepOptions(cat *questionnaire.Catalog, step int) []questionnaire.Option {
	switch step {
	case 1:
		return cat.Subjects
	case 2:
		return cat.WorkStyles
	case 3:
		return cat.Skills
	case 4:
		return cat.CareerValues
	case 5:
		return cat.AcademicStrengths
	}
	return nil
}

// commandsFor turns a line of option numbers into answer commands for step.
func commandsFor(cat *questionnaire.Catalog, step int, line string) ([]questionnaire.Command, error) {
	opts := stepOptions(cat, step)
	pick := func(tok string) (string, error) {
		n, err := strconv.Atoi(tok)
		if err != nil || n < 1 || n > len(opts) {
			return "", fmt.Errorf("%q is not an option number (1-%d)", tok, len(opts))
		}
		return opts[n-1].ID, nil
	}

	fields := strings.FieldsFunc(line, func(r rune) bool { return r == ' ' || r == ',' })
	cmds := make([]questionnaire.Command, 0, len(fields))
	for _, tok := range fields {
		if step == 3 {
			num, val, ok := strings.Cut(tok, "=")
			if !ok {
				return nil, fmt.Errorf("rate skills as number=value, e.g. 2=%d", questionnaire.SkillMax)
			}
			id, err := pick(num)
			if err != nil {
				return nil, err
			}
			v, err := strconv.Atoi(val)
			if err != nil {
				return nil, fmt.Errorf("%q is not a rating", val)
			}
			cmds = append(cmds, questionnaire.Command{Type: questionnaire.CmdSetSkillConfidence, Skill: id, Value: v})
			continue
		}
		id, err := pick(tok)
		if err != nil {
			return nil, err
		}
		var typ questionnaire.CommandType
		switch step {
		case 1:
			typ = questionnaire.CmdToggleInterest
		case 2:
			typ = questionnaire.CmdSetWorkStyle
		case 4:
			typ = questionnaire.CmdToggleCareerValue
		case 5:
			typ = questionnaire.CmdToggleAcademicStrength
		default:
			return nil, fmt.Errorf("step %d takes no answers", step)
		}
		cmds = append(cmds, questionnaire.Command{Type: typ, ID: id})
	}
	return cmds, nil
}

func describe(err error) string {
	switch {
	case errors.Is(err, questionnaire.ErrStepIncomplete):
		return "Answer this step before continuing."
	case errors.Is(err, questionnaire.ErrCompletionNotSaved):
		return "Your answers could not be submitted."
	case errors.Is(err, questionnaire.ErrInvalidCommand):
		return strings.TrimPrefix(err.Error(), "questionnaire: ")
	}
	return err.Error()
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func radio(on bool) string {
	if on {
		return "(*)"
	}
	return "( )"
}

package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/gen2brain/beeep"
	"github.com/kballard/go-shellquote"
	"github.com/pterm/pterm"

	"github.com/ayoisaiah/lift/engine"
	"github.com/ayoisaiah/lift/internal/models"
	"github.com/ayoisaiah/lift/internal/timeutil"
	"github.com/ayoisaiah/lift/internal/ui"
	"github.com/ayoisaiah/lift/session"
)

const workoutHelp = `Commands:
  d [weight] [reps]   complete the current set
  u                   undo the current set
  w <weight>          change the weight of the current set
  r <reps>            change the reps of the current set
  s                   skip the current set
  n, p                next or previous set
  nx, px              next or previous exercise
  add <spec>          add an exercise, e.g. add Dips:3x12
  rm                  remove the current exercise
  mv <from> <to>      move an exercise
  rest +30|-30        extend or shorten the rest
  rest skip|pause|resume
  pause, resume       pause or resume the workout
  stats               show live statistics
  finish              save the workout
  cancel              discard the workout
  help                show this help`

// workout drives one session from line-based input.
type workout struct {
	engine    *engine.Engine
	out       io.Writer
	notify    func(title, msg string)
	finishCmd string
	unit      string
}

// run reads commands until the workout is finished or cancelled. Reaching
// the end of the input discards the workout.
func (w *workout) run(ctx context.Context, in io.Reader) error {
	w.bind()
	w.printCurrent()

	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(w.out, "> ")

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}

			w.engine.CancelSession()
			pterm.Fprintln(w.out, pterm.Warning.Sprint("Input closed, workout discarded"))

			return nil
		}

		done, err := w.handle(ctx, strings.Fields(scanner.Text()))
		if err != nil {
			fmt.Fprintln(w.out, ui.Red(err.Error()))
		}

		if done {
			return nil
		}
	}
}

// lockedWriter serialises writes from the input loop and the rest timer.
type lockedWriter struct {
	w  io.Writer
	mu sync.Mutex
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.w.Write(p)
}

// bind announces the end of every rest. The announcement is written from
// the timer goroutine, so output is guarded from here on.
func (w *workout) bind() {
	if _, ok := w.out.(*lockedWriter); !ok {
		w.out = &lockedWriter{w: w.out}
	}

	w.engine.OnRestComplete(func() {
		fmt.Fprintln(w.out, ui.Green("Rest over. Next set!"))
		w.notify("Rest over", "Time for the next set")
	})
}

func (w *workout) handle(ctx context.Context, args []string) (bool, error) {
	if len(args) == 0 {
		return false, nil
	}

	cmd, args := args[0], args[1:]

	switch cmd {
	case "d", "done":
		return false, w.complete(args)
	case "u", "undo":
		return false, w.update(session.SetUpdate{Completed: ptr(false)})
	case "w", "weight":
		v, err := floatArg(args)
		if err != nil {
			return false, err
		}

		return false, w.update(session.SetUpdate{Weight: &v})
	case "r", "reps":
		v, err := intArg(args)
		if err != nil {
			return false, err
		}

		return false, w.update(session.SetUpdate{Reps: &v})
	case "s", "skip":
		c := w.engine.Cursor()
		if err := w.engine.SkipSet(c.ExerciseID, c.SetID); err != nil {
			return false, err
		}

		w.advanceWithinExercise()
	case "n", "next":
		w.engine.AdvanceSet()
	case "p", "prev":
		w.engine.RetreatSet()
	case "nx":
		w.engine.AdvanceExercise()
	case "px":
		w.engine.RetreatExercise()
	case "add":
		spec, err := parseExerciseSpec(strings.Join(args, " "))
		if err != nil {
			return false, err
		}

		if _, err := w.engine.AddExercise(spec); err != nil {
			return false, err
		}
	case "rm":
		if err := w.engine.RemoveExercise(w.engine.Cursor().ExerciseID); err != nil {
			return false, err
		}
	case "mv":
		if len(args) != 2 {
			return false, errInvalidCommand.Fmt("mv needs two positions")
		}

		from, err1 := strconv.Atoi(args[0])
		to, err2 := strconv.Atoi(args[1])

		if err := errors.Join(err1, err2); err != nil {
			return false, errInvalidCommand.Fmt("positions must be numbers")
		}

		if err := w.engine.ReorderExercises(from-1, to-1); err != nil {
			return false, err
		}
	case "rest":
		return false, w.rest(args)
	case "pause":
		if err := w.engine.PauseSession(); err != nil {
			return false, err
		}

		fmt.Fprintln(w.out, ui.Magenta("Workout paused"))

		return false, nil
	case "resume":
		return false, w.engine.ResumeSession()
	case "stats":
		w.printStats()
		return false, nil
	case "finish":
		return w.finish(ctx)
	case "cancel", "quit":
		w.engine.CancelSession()
		pterm.Fprintln(w.out, pterm.Warning.Sprint("Workout discarded"))

		return true, nil
	case "help", "?":
		fmt.Fprintln(w.out, workoutHelp)
		return false, nil
	default:
		return false, errInvalidCommand.Fmt("unknown command " + cmd + ", type help for a list")
	}

	w.printCurrent()

	return false, nil
}

func (w *workout) complete(args []string) error {
	u := session.SetUpdate{Completed: ptr(true)}

	if len(args) > 0 {
		v, err := floatArg(args[:1])
		if err != nil {
			return err
		}

		u.Weight = &v
	}

	if len(args) > 1 {
		v, err := intArg(args[1:2])
		if err != nil {
			return err
		}

		u.Reps = &v
	}

	before := make(map[string]float64)
	for _, pr := range w.engine.SessionRecords() {
		before[pr.ExerciseID+string(pr.Metric)] = pr.Value
	}

	if err := w.update(u); err != nil {
		return err
	}

	for _, pr := range w.engine.SessionRecords() {
		if v, ok := before[pr.ExerciseID+string(pr.Metric)]; ok && v == pr.Value {
			continue
		}

		fmt.Fprintln(w.out, ui.Magenta(fmt.Sprintf("New personal record: %s %s", pr.ExerciseName, metricLabel(pr, w.unit))))
	}

	if rem := w.engine.RestRemaining(); rem > 0 {
		fmt.Fprintf(w.out, "Resting %s\n", ui.Cyan(ui.Clock(rem)))
	}

	w.advanceWithinExercise()
	w.printCurrent()

	return nil
}

func (w *workout) update(u session.SetUpdate) error {
	c := w.engine.Cursor()

	return w.engine.RecordSet(c.ExerciseID, c.SetID, u)
}

// advanceWithinExercise moves to the next set unless that would leave the
// exercise, which would also cancel the rest.
func (w *workout) advanceWithinExercise() {
	s, ok := w.engine.Session()
	if !ok {
		return
	}

	c := w.engine.Cursor()
	if c.Exercise < len(s.Exercises) && c.Set+1 < len(s.Exercises[c.Exercise].Sets) {
		w.engine.AdvanceSet()
	}
}

func (w *workout) rest(args []string) error {
	if len(args) != 1 {
		return errInvalidCommand.Fmt("usage: rest +30|-30|skip|pause|resume")
	}

	switch args[0] {
	case "skip":
		w.engine.SkipRest()
	case "pause":
		w.engine.PauseRest()
	case "resume":
		w.engine.ResumeRest()
	default:
		secs, err := strconv.Atoi(args[0])
		if err != nil {
			return errInvalidCommand.Fmt("rest takes +N or -N seconds")
		}

		w.engine.ExtendRest(secs)
	}

	if rem := w.engine.RestRemaining(); rem > 0 {
		fmt.Fprintf(w.out, "Rest: %s\n", ui.Cyan(ui.Clock(rem)))
	}

	return nil
}

func (w *workout) finish(ctx context.Context) (bool, error) {
	rec, err := w.engine.FinishSession(ctx)
	if err != nil {
		return false, errSaveWorkout.Wrap(err)
	}

	pterm.Fprintln(w.out, pterm.Success.Sprint("Workout saved"))
	printSummary(w.out, rec, w.unit)

	if cmd := finishCommand(w.finishCmd); cmd != nil {
		cmd.Stdout = w.out
		cmd.Stderr = w.out

		if err := cmd.Run(); err != nil {
			return true, errFinishCmd.Wrap(err)
		}
	}

	return true, nil
}

func (w *workout) printCurrent() {
	s, ok := w.engine.Session()
	if !ok || len(s.Exercises) == 0 {
		return
	}

	c := w.engine.Cursor()
	ex := s.Exercises[c.Exercise]

	line := fmt.Sprintf(
		"%s [%d/%d]",
		ui.Highlight(ex.Exercise.Name),
		c.Exercise+1,
		len(s.Exercises),
	)

	if len(ex.Sets) > 0 {
		set := ex.Sets[c.Set]
		line += fmt.Sprintf(
			"  set %d/%d: %d x %s  %s",
			c.Set+1,
			len(ex.Sets),
			set.Reps,
			ui.Weight(set.Weight, w.unit),
			setStatus(&set),
		)
	}

	if w.engine.Paused() {
		line += "  " + ui.Magenta("(paused)")
	}

	fmt.Fprintln(w.out, line)
}

func (w *workout) printStats() {
	st, ok := w.engine.LiveStats()
	if !ok {
		return
	}

	fmt.Fprintf(
		w.out,
		"Elapsed %s  Sets %d/%d  Volume %s  Calories %.1f\n",
		timeutil.FormatMinutes(st.Elapsed),
		st.CompletedSets,
		st.TotalSets,
		ui.Volume(st.Volume, w.unit),
		st.Calories,
	)
}

func printSummary(out io.Writer, rec *models.HistoryRecord, unit string) {
	fmt.Fprintf(
		out,
		"%s  %s  %d/%d sets  %s  %.1f kcal\n",
		ui.Highlight(rec.Name),
		timeutil.FormatMinutes(rec.Duration),
		rec.CompletedSets,
		rec.TotalSets,
		ui.Volume(rec.TotalVolume, unit),
		rec.Calories,
	)

	for _, pr := range rec.PersonalRecords {
		fmt.Fprintf(out, "  PR %s %s\n", pr.ExerciseName, metricLabel(pr, unit))
	}
}

func setStatus(set *models.SetEntry) string {
	switch set.Status {
	case models.SetCompleted:
		return ui.Green("done")
	case models.SetSkipped:
		return ui.Red("skipped")
	case models.SetPending:
	}

	return ""
}

func metricLabel(pr models.PersonalRecord, unit string) string {
	return strings.TrimPrefix(string(pr.Metric), "max_") + " " + metricValue(pr.Metric, pr.Value, unit)
}

// finishCommand parses the finish_cmd hook. An empty or unparsable hook
// yields nil.
func finishCommand(s string) *exec.Cmd {
	cmdSlice, err := shellquote.Split(s)
	if err != nil {
		pterm.Warning.Println("unable to parse finish_cmd option")
		return nil
	}

	if len(cmdSlice) == 0 {
		return nil
	}

	cmd := exec.Command(cmdSlice[0], cmdSlice[1:]...)
	cmd.Stdin = os.Stdin

	return cmd
}

// desktopNotify sends a desktop notification.
func desktopNotify(title, msg string) {
	if err := beeep.Notify(title, msg, ""); err != nil {
		pterm.Error.Println(fmt.Errorf("unable to display notification: %w", err))
	}
}

// parseExerciseSpec reads "Name:SETSxREPS@WEIGHT". The weight is optional.
func parseExerciseSpec(s string) (session.ExerciseSeed, error) {
	name, prescription, ok := strings.Cut(s, ":")
	name = strings.TrimSpace(name)

	if !ok || name == "" {
		return session.ExerciseSeed{}, errInvalidExerciseSpec.Fmt(s)
	}

	prescription = strings.ToLower(strings.TrimSpace(prescription))

	volume, weightStr, hasWeight := strings.Cut(prescription, "@")

	setsStr, repsStr, ok := strings.Cut(volume, "x")
	if !ok {
		return session.ExerciseSeed{}, errInvalidExerciseSpec.Fmt(s)
	}

	sets, err := strconv.Atoi(strings.TrimSpace(setsStr))
	if err != nil || sets < 1 {
		return session.ExerciseSeed{}, errInvalidExerciseSpec.Fmt(s)
	}

	reps, err := strconv.Atoi(strings.TrimSpace(repsStr))
	if err != nil || reps < 0 {
		return session.ExerciseSeed{}, errInvalidExerciseSpec.Fmt(s)
	}

	var weight float64

	if hasWeight {
		weight, err = strconv.ParseFloat(strings.TrimSpace(weightStr), 64)
		if err != nil || weight < 0 {
			return session.ExerciseSeed{}, errInvalidExerciseSpec.Fmt(s)
		}
	}

	return session.ExerciseSeed{
		Exercise: models.ExerciseRef{Name: name},
		Sets:     session.Uniform(sets, weight, reps),
	}, nil
}

func floatArg(args []string) (float64, error) {
	if len(args) == 0 {
		return 0, errInvalidCommand.Fmt("a number is required")
	}

	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil || v < 0 {
		return 0, errInvalidCommand.Fmt(args[0] + " is not a valid number")
	}

	return v, nil
}

func intArg(args []string) (int, error) {
	if len(args) == 0 {
		return 0, errInvalidCommand.Fmt("a number is required")
	}

	v, err := strconv.Atoi(args[0])
	if err != nil || v < 0 {
		return 0, errInvalidCommand.Fmt(args[0] + " is not a valid number")
	}

	return v, nil
}

func ptr[T any](v T) *T {
	return &v
}


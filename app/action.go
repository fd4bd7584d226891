package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/lift/history"
	"github.com/ayoisaiah/lift/internal/config"
	"github.com/ayoisaiah/lift/internal/pathutil"
	"github.com/ayoisaiah/lift/internal/static"
	"github.com/ayoisaiah/lift/internal/timeutil"
	"github.com/ayoisaiah/lift/plan"
	"github.com/ayoisaiah/lift/records"
	"github.com/ayoisaiah/lift/retry"
	"github.com/ayoisaiah/lift/server"
	"github.com/ayoisaiah/lift/session"
	"github.com/ayoisaiah/lift/stats"
	"github.com/ayoisaiah/lift/store"
	"github.com/ayoisaiah/lift/timer"
)

const (
	envNoColor     = "NO_COLOR"
	envLiftNoColor = "LIFT_NO_COLOR"
)

// firstNonEmptyString returns its first non-empty argument, or "" if all
// arguments are empty.
func firstNonEmptyString(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}

	return ""
}

// printJSON writes v to standard output as JSON.
func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Fprintln(config.Stdout, string(b))

	return nil
}

// workoutAction handles the workout command which runs an interactive
// workout session.
func workoutAction(ctx *cli.Context) error {
	d, err := load(ctx)
	if err != nil {
		return err
	}

	defer d.Close()

	e, err := d.engine(ctx.Context, timer.RealScheduler{})
	if err != nil {
		return err
	}

	defer e.Close()

	if planID := ctx.String("plan"); planID != "" {
		err = e.StartFromPlan(ctx.Context, planID, ctx.Int("day")-1)
	} else {
		var seed session.Seed

		seed, err = seedFromFlags(ctx, time.Now())
		if err == nil {
			err = e.StartSession(ctx.Context, seed)
		}
	}

	if err != nil {
		return err
	}

	w := &workout{
		engine:    e,
		out:       config.Stdout,
		notify:    func(string, string) {},
		finishCmd: d.cfg.Hooks.FinishCmd,
		unit:      d.unit(ctx.Context),
	}

	if d.notify(ctx.Context) {
		w.notify = desktopNotify
	}

	return w.run(ctx.Context, config.Stdin)
}

// seedFromFlags builds an ad-hoc workout from --name and --exercise.
func seedFromFlags(ctx *cli.Context, now time.Time) (session.Seed, error) {
	specs := ctx.StringSlice("exercise")
	if len(specs) == 0 {
		return session.Seed{}, errNoExercises
	}

	seed := session.Seed{
		Name: firstNonEmptyString(
			strings.TrimSpace(ctx.String("name")),
			session.DefaultName(now),
		),
	}

	for _, s := range specs {
		ex, err := parseExerciseSpec(s)
		if err != nil {
			return session.Seed{}, err
		}

		seed.Exercises = append(seed.Exercises, ex)
	}

	return seed, nil
}

// historyFilter builds a history filter from the filter flags. extra is
// appended to --query.
func historyFilter(ctx *cli.Context, extra string) (history.Filter, error) {
	fc, err := config.Filter(ctx)
	if err != nil {
		return history.Filter{}, err
	}

	return history.Filter{
		Start: fc.StartTime,
		End:   fc.EndTime,
		Query: strings.TrimSpace(fc.Query + " " + extra),
	}, nil
}

// historyListAction handles the history list command and prints a table of
// workouts matching the filters.
func historyListAction(ctx *cli.Context) error {
	return listHistory(ctx, "")
}

// historySearchAction lists the workouts whose name, notes or exercises
// contain the arguments.
func historySearchAction(ctx *cli.Context) error {
	return listHistory(ctx, strings.Join(ctx.Args().Slice(), " "))
}

func listHistory(ctx *cli.Context, query string) error {
	f, err := historyFilter(ctx, query)
	if err != nil {
		return err
	}

	d, err := load(ctx)
	if err != nil {
		return err
	}

	defer d.Close()

	list, err := d.history.Filter(ctx.Context, d.userID(), f)
	if err != nil {
		return err
	}

	if ctx.Bool("json") {
		return printJSON(list)
	}

	if len(list) == 0 {
		pterm.Info.Println(noWorkoutsMsg)
		return nil
	}

	return printHistoryTable(config.Stdout, list, d.unit(ctx.Context))
}

// historyEditAction handles the history edit command which changes the name,
// notes or rating of a workout.
func historyEditAction(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "" {
		return errRecordIDRequired
	}

	var patch history.Patch

	if ctx.IsSet("set-name") {
		patch.Name = ptr(ctx.String("set-name"))
	}

	if ctx.IsSet("notes") {
		patch.Notes = ptr(ctx.String("notes"))
	}

	if ctx.IsSet("rating") {
		patch.Rating = ptr(ctx.Int("rating"))
	}

	if patch == (history.Patch{}) {
		return errNothingToEdit
	}

	d, err := load(ctx)
	if err != nil {
		return err
	}

	defer d.Close()

	return editRecord(ctx.Context, d, id, patch, ctx.Bool("yes"), config.Stdin, config.Stdout)
}

// historyDeleteAction handles the history delete command.
func historyDeleteAction(ctx *cli.Context) error {
	d, err := load(ctx)
	if err != nil {
		return err
	}

	defer d.Close()

	return delRecords(ctx.Context, d, ctx.Args().Slice(), ctx.Bool("yes"), config.Stdin, config.Stdout)
}

// historyExportAction writes the history as JSON or CSV.
func historyExportAction(ctx *cli.Context) error {
	format := strings.ToLower(ctx.String("format"))
	if format != "json" && format != "csv" {
		return errInvalidFormat.Fmt(format)
	}

	d, err := load(ctx)
	if err != nil {
		return err
	}

	defer d.Close()

	var b []byte

	if format == "csv" {
		b, err = d.history.ExportCSV(ctx.Context, d.userID())
	} else {
		b, err = d.history.ExportJSON(ctx.Context, d.userID())
	}

	if err != nil {
		return err
	}

	var out io.Writer = config.Stdout

	if path := ctx.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}

		defer f.Close()

		out = f
	}

	_, err = out.Write(b)

	return err
}

// historyImportAction merges an exported history file into the user's
// history.
func historyImportAction(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return errImportFileRequired
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	d, err := load(ctx)
	if err != nil {
		return err
	}

	defer d.Close()

	res, err := d.history.ImportJSON(ctx.Context, d.userID(), data)
	if err != nil {
		return err
	}

	pterm.Success.Printfln("Imported %d workout(s), skipped %d", res.Imported, res.Skipped)

	return nil
}

// recordsAction prints the personal records derived from the history.
func recordsAction(ctx *cli.Context) error {
	d, err := load(ctx)
	if err != nil {
		return err
	}

	defer d.Close()

	list, err := d.history.List(ctx.Context, d.userID())
	if err != nil {
		return err
	}

	book := records.NewBook()
	book.Replay(list)

	recs := book.All()

	if ctx.Bool("json") {
		return printJSON(recs)
	}

	if len(recs) == 0 {
		pterm.Info.Println(noRecordsMsg)
		return nil
	}

	return printRecordsTable(config.Stdout, recs, d.unit(ctx.Context))
}

// statsAction summarises the workouts in the reporting period. Defaults to
// the last 7 days.
func statsAction(ctx *cli.Context) error {
	if !ctx.IsSet("period") && !ctx.IsSet("since") && !ctx.IsSet("until") {
		if err := ctx.Set("period", string(timeutil.Period7Days)); err != nil {
			return err
		}
	}

	f, err := historyFilter(ctx, "")
	if err != nil {
		return err
	}

	d, err := load(ctx)
	if err != nil {
		return err
	}

	defer d.Close()

	list, err := d.history.Filter(ctx.Context, d.userID(), f)
	if err != nil {
		return err
	}

	summary := stats.Compute(list, f.Start, f.End, time.Now())

	if ctx.Bool("json") {
		return printJSON(summary)
	}

	return summary.Render(config.Stdout, d.unit(ctx.Context))
}

// plansListAction prints the user's plans.
func plansListAction(ctx *cli.Context) error {
	d, err := load(ctx)
	if err != nil {
		return err
	}

	defer d.Close()

	plans, err := d.plans.List(ctx.Context, d.userID())
	if err != nil {
		return err
	}

	if ctx.Bool("json") {
		return printJSON(plans)
	}

	if len(plans) == 0 {
		pterm.Info.Println(noPlansMsg)
		return nil
	}

	return printPlansTable(config.Stdout, plans)
}

// plansImportAction saves the plans described by YAML files, or the
// bundled starter plans with --starter.
func plansImportAction(ctx *cli.Context) error {
	if ctx.NArg() == 0 && !ctx.Bool("starter") {
		return errPlanFileRequired
	}

	d, err := load(ctx)
	if err != nil {
		return err
	}

	defer d.Close()

	if ctx.Bool("starter") {
		names, err := static.Plans()
		if err != nil {
			return err
		}

		for _, name := range names {
			f, err := static.Open("plans/" + name)
			if err != nil {
				return err
			}

			err = importPlan(ctx.Context, d, name, f)
			f.Close()

			if err != nil {
				return err
			}
		}
	}

	for _, path := range ctx.Args().Slice() {
		f, err := os.Open(path)
		if err != nil {
			return err
		}

		err = importPlan(ctx.Context, d, path, f)
		f.Close()

		if err != nil {
			return err
		}
	}

	return nil
}

func importPlan(ctx context.Context, d *deps, name string, r io.Reader) error {
	p, err := plan.LoadYAML(r)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	p, err = d.plans.Save(ctx, d.userID(), p)
	if err != nil {
		return err
	}

	pterm.Success.Printfln("Saved plan %s (%s)", p.Name, p.ID)

	return nil
}

// plansDeleteAction deletes plans by id.
func plansDeleteAction(ctx *cli.Context) error {
	d, err := load(ctx)
	if err != nil {
		return err
	}

	defer d.Close()

	for _, id := range ctx.Args().Slice() {
		if err := d.plans.Delete(ctx.Context, d.userID(), id); err != nil {
			return fmt.Errorf("%s: %w", id, err)
		}
	}

	return nil
}

// prefsAction prints the user's preferences, updating them first when any
// preference flag is set.
func prefsAction(ctx *cli.Context) error {
	d, err := load(ctx)
	if err != nil {
		return err
	}

	defer d.Close()

	p, err := d.prefs.Preferences(ctx.Context, d.userID())
	if err != nil {
		return err
	}

	changed := false

	if ctx.IsSet("unit") {
		p.WeightUnit = strings.ToLower(ctx.String("unit"))
		changed = true
	}

	if ctx.IsSet("rest-seconds") {
		p.RestSeconds = ctx.Int("rest-seconds")
		changed = true
	}

	if ctx.IsSet("notifications") {
		p.Notifications = ctx.Bool("notifications")
		changed = true
	}

	if changed {
		if err := d.prefs.SavePreferences(ctx.Context, d.userID(), p); err != nil {
			return err
		}
	}

	return printJSON(p)
}

// diagnosticsAction prints the storage counters and stored keys.
func diagnosticsAction(ctx *cli.Context) error {
	d, err := load(ctx)
	if err != nil {
		return err
	}

	defer d.Close()

	keys, err := d.kv.ListKeys(ctx.Context)
	if err != nil {
		return err
	}

	if ctx.Bool("clear-cache") {
		n, err := store.ClearCache(ctx.Context, d.kv)
		if err != nil {
			return err
		}

		pterm.Info.Printfln("Removed %d cached entr(ies)", n)
	}

	err = printJSON(map[string]any{
		"backend": d.cfg.Storage.Backend,
		"path":    d.cfg.StoragePath(),
		"keys":    keys,
		"retry":   retry.Diagnostics(),
	})

	if ctx.Bool("reset") {
		retry.ResetDiagnostics()
	}

	return err
}

// serveAction starts the HTTP API and blocks until interrupted.
func serveAction(ctx *cli.Context) error {
	d, err := load(ctx)
	if err != nil {
		return err
	}

	defer d.Close()

	sigCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(d.history, d.plans, d.log.With(slog.String("component", "server")))

	pterm.Info.Printfln("Listening on http://%s", d.cfg.Server.Addr)

	return srv.ListenAndServe(sigCtx, d.cfg.Server.Addr)
}

// editConfigAction handles the edit-config command which opens the lift
// config file in the user's default text editor.
func editConfigAction(_ *cli.Context) error {
	defaultEditor := "nano"

	if runtime.GOOS == "windows" {
		defaultEditor = "C:\\Windows\\system32\\notepad.exe"
	}

	editor := firstNonEmptyString(
		os.Getenv("VISUAL"),
		os.Getenv("EDITOR"),
		defaultEditor,
	)

	path := pathutil.ConfigFilePath()

	// make sure the file exists with its defaults before editing it
	if _, err := config.New(config.WithViperConfig(path)); err != nil {
		return err
	}

	cmd := exec.Command(editor, path)

	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout

	return cmd.Run()
}

func beforeAction(ctx *cli.Context) error {
	// Override the default help template
	cli.AppHelpTemplate = helpText()

	// Override the default version printer
	oldVersionPrinter := cli.VersionPrinter
	cli.VersionPrinter = func(c *cli.Context) {
		oldVersionPrinter(c)
		fmt.Printf(
			"https://github.com/ayoisaiah/lift/releases/%s\n",
			c.App.Version,
		)
	}

	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	// Disable colour output if NO_COLOR is set
	if _, exists := os.LookupEnv(envNoColor); exists {
		disableStyling()
	}

	// Disable colour output if LIFT_NO_COLOR is set
	if _, exists := os.LookupEnv(envLiftNoColor); exists {
		disableStyling()
	}

	if ctx.Bool("no-color") {
		disableStyling()
	}

	return nil
}


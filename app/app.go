package app

import (
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/lift/internal/config"
)

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:    "history",
		Aliases: []string{"h"},
		Usage:   "List, search, edit and move saved workouts",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "Print a table of saved workouts",
				Flags:  append(filterFlags(), jsonFlag),
				Action: historyListAction,
			},
			{
				Name:      "search",
				Usage:     "Find workouts by name, notes or exercise",
				ArgsUsage: "<text>",
				Flags:     append(filterFlags(), jsonFlag),
				Action:    historySearchAction,
			},
			{
				Name:      "edit",
				Usage:     "Change the name, notes or rating of a workout",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{editNameFlag, editNotesFlag, editRatingFlag, yesFlag},
				Action:    historyEditAction,
			},
			{
				Name:      "delete",
				Usage:     "Delete one or more workouts",
				ArgsUsage: "<id>...",
				Flags:     []cli.Flag{yesFlag},
				Action:    historyDeleteAction,
			},
			{
				Name:   "export",
				Usage:  "Export the workout history as JSON or CSV",
				Flags:  []cli.Flag{formatFlag, outputFlag},
				Action: historyExportAction,
			},
			{
				Name:      "import",
				Usage:     "Merge a JSON export into the workout history",
				ArgsUsage: "<file>",
				Action:    historyImportAction,
			},
		},
	}
}

func plansCommand() *cli.Command {
	return &cli.Command{
		Name:  "plans",
		Usage: "Manage training plans",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "Print the saved plans",
				Flags:  []cli.Flag{jsonFlag},
				Action: plansListAction,
			},
			{
				Name:      "import",
				Usage:     "Save plans from YAML files",
				ArgsUsage: "<file>...",
				Flags:     []cli.Flag{starterFlag},
				Action:    plansImportAction,
			},
			{
				Name:      "delete",
				Usage:     "Delete plans",
				ArgsUsage: "<id>...",
				Action:    plansDeleteAction,
			},
		},
	}
}

// Get retrieves the lift app instance.
func Get() *cli.App {
	liftApp := &cli.App{
		Name: "lift",
		Authors: []*cli.Author{
			{
				Name:  "Ayooluwa Isaiah",
				Email: "ayo@freshman.tech",
			},
		},
		Usage: `
		Lift is a workout logger for the command-line. It runs your sets, times
		your rests, keeps your personal records and stores every finished
		workout.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:    "workout",
				Aliases: []string{"w"},
				Usage:   "Start an interactive workout",
				Flags:   []cli.Flag{planFlag, dayFlag, nameFlag, exerciseFlag},
				Action:  workoutAction,
			},
			historyCommand(),
			plansCommand(),
			{
				Name:   "records",
				Usage:  "Print your personal records",
				Flags:  []cli.Flag{jsonFlag},
				Action: recordsAction,
			},
			{
				Name: "stats",
				Usage: `
				Track your progress with a summary of your workouts. Defaults to a
				reporting period of 7 days`,
				Flags:  append(filterFlags(), jsonFlag),
				Action: statsAction,
			},
			{
				Name:   "prefs",
				Usage:  "Show or change your preferences",
				Flags:  []cli.Flag{unitFlag, restSecondsFlag, notificationsFlag},
				Action: prefsAction,
			},
			{
				Name:   "diagnostics",
				Usage:  "Print storage diagnostics",
				Flags:  []cli.Flag{resetFlag, clearCacheFlag},
				Action: diagnosticsAction,
			},
			{
				Name:   "serve",
				Usage:  "Serve the workout history over HTTP",
				Flags:  []cli.Flag{addrFlag},
				Action: serveAction,
			},
			{
				Name:   "edit-config",
				Usage:  "Edit the configuration file",
				Action: editConfigAction,
			},
		},
		Flags:  globalFlags(),
		Before: beforeAction,
	}

	return liftApp
}

package app

import "github.com/urfave/cli/v2"

var (
	userFlag = &cli.StringFlag{
		Name:    "user",
		Aliases: []string{"u"},
		Usage:   "The user whose data is read and written (default: local)",
	}

	restFlag = &cli.StringFlag{
		Name:    "rest",
		Aliases: []string{"r"},
		Usage:   "Default rest between sets, e.g. 90s or 2m (default: 90s)",
	}

	backendFlag = &cli.StringFlag{
		Name:  "backend",
		Usage: "Storage backend: bolt, sqlite, file or memory (default: bolt)",
	}

	dbFlag = &cli.StringFlag{
		Name:  "db",
		Usage: "Path to the storage file or directory",
	}

	finishCmdFlag = &cli.StringFlag{
		Name:    "finish-cmd",
		Aliases: []string{"cmd"},
		Usage:   "Execute an arbitrary command after each saved workout",
	}

	logLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "Log level: debug, info, warn or error (default: info)",
	}

	disableNotificationFlag = &cli.BoolFlag{
		Name:    "disable-notification",
		Aliases: []string{"d"},
		Usage:   "Disable the system notification that appears when a rest is over",
	}

	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}

	addrFlag = &cli.StringFlag{
		Name:  "addr",
		Usage: "Address for the HTTP API (default: 127.0.0.1:8470)",
	}

	planFlag = &cli.StringFlag{
		Name:    "plan",
		Aliases: []string{"p"},
		Usage:   "Start the workout from the plan with this id",
	}

	dayFlag = &cli.IntFlag{
		Name:  "day",
		Usage: "The day of the plan to train (starting from 1)",
		Value: 1,
	}

	nameFlag = &cli.StringFlag{
		Name:    "name",
		Aliases: []string{"n"},
		Usage:   "Name of the workout",
	}

	exerciseFlag = &cli.StringSliceFlag{
		Name:    "exercise",
		Aliases: []string{"e"},
		Usage:   "Add an exercise as 'Name:SETSxREPS@WEIGHT', e.g. 'Bench Press:3x10@60'",
	}

	periodFlag = &cli.StringFlag{
		Name:  "period",
		Usage: "Limit to a period: today, yesterday, 7days, 14days, 30days, 90days, 180days, 365days or all-time",
	}

	sinceFlag = &cli.StringFlag{
		Name:    "since",
		Aliases: []string{"s"},
		Usage:   "Only include workouts on or after this date (e.g. '2 weeks ago')",
	}

	untilFlag = &cli.StringFlag{
		Name:  "until",
		Usage: "Only include workouts on or before this date",
	}

	queryFlag = &cli.StringFlag{
		Name:    "query",
		Aliases: []string{"q"},
		Usage:   "Only include workouts whose name, notes or exercises contain this text",
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Print the output as JSON",
	}

	yesFlag = &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "Do not ask for confirmation",
	}

	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Export format: json or csv",
		Value:   "json",
	}

	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Write to this file instead of standard output",
	}

	editNameFlag = &cli.StringFlag{
		Name:  "set-name",
		Usage: "New workout name",
	}

	editNotesFlag = &cli.StringFlag{
		Name:  "notes",
		Usage: "New workout notes",
	}

	editRatingFlag = &cli.IntFlag{
		Name:  "rating",
		Usage: "Workout rating from 1 to 5 (0 clears it)",
		Value: -1,
	}

	resetFlag = &cli.BoolFlag{
		Name:  "reset",
		Usage: "Reset the storage counters after printing them",
	}

	clearCacheFlag = &cli.BoolFlag{
		Name:  "clear-cache",
		Usage: "Remove every cached entry from storage",
	}
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		userFlag,
		restFlag,
		backendFlag,
		dbFlag,
		finishCmdFlag,
		logLevelFlag,
		disableNotificationFlag,
		noColorFlag,
	}
}

func filterFlags() []cli.Flag {
	return []cli.Flag{periodFlag, sinceFlag, untilFlag, queryFlag}
}

var (
	unitFlag = &cli.StringFlag{
		Name:  "unit",
		Usage: "Weight unit: kg or lb",
	}

	restSecondsFlag = &cli.IntFlag{
		Name:  "rest-seconds",
		Usage: "Rest between sets in seconds",
	}

	starterFlag = &cli.BoolFlag{
		Name:  "starter",
		Usage: "Import the bundled starter plans",
	}

	notificationsFlag = &cli.BoolFlag{
		Name:  "notifications",
		Usage: "Show a desktop notification when a rest is over",
	}
)

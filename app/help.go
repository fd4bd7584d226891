package app

import (
	"strings"

	"github.com/pterm/pterm"
)

const (
	envText = `LIFT_NO_COLOR, NO_COLOR
			disable coloured output.
		LIFT_<SECTION>_<KEY>
			override a config file setting, e.g. LIFT_SESSION_REST_DURATION=120
			or LIFT_STORAGE_BACKEND=sqlite.
		LIFT_ENV
			set to a name such as development to keep data and config in separate files.`

	examplesText = `lift workout --exercise "Bench Press:3x5@60" --exercise "Row:3x8@50"
		lift plans import --starter && lift plans list
		lift workout --plan <id> --day 2
		lift history list --since "last month"
		lift stats --period 30days`
)

type helpSection struct {
	title string
	body  string
}

func helpSections() []helpSection {
	commands := "{{range .Commands}}{{if not .HideHelp}}   " +
		pterm.Green(`{{join .Names ", "}}`) +
		"{{\"\\t\"}}{{.Usage}}{{\"\\n\"}}{{end}}{{end}}"

	options := "{{range .VisibleFlags}}\t\t" +
		"{{if .Aliases}}{{range $a := .Aliases}}" + pterm.Green("-{{$a}}") + ", {{end}}{{end}}" +
		pterm.Green("--{{.Name}} {{.DefaultText}}") +
		"\n\t\t\t\t{{.Usage}}\n\n{{end}}"

	return []helpSection{
		{"DESCRIPTION", "\t\t{{.Usage}}"},
		{"USAGE", "\t\t{{.HelpName}} {{if .UsageText}}{{ .UsageText }}{{end}}"},
		{"COMMANDS", commands},
		{"OPTIONS", options},
		{"DURING A WORKOUT", indent(workoutHelp)},
		{"EXAMPLES", "\t\t" + examplesText},
		{"ENVIRONMENTAL VARIABLES", "\t\t" + envText},
		{"WEBSITE", "\t\thttps://github.com/ayoisaiah/lift"},
	}
}

func helpText() string {
	var b strings.Builder

	for _, s := range helpSections() {
		b.WriteString(pterm.Yellow(s.title))
		b.WriteString("\n")
		b.WriteString(s.body)
		b.WriteString("\n\n")
	}

	return b.String()
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "\t\t" + l
	}

	return strings.Join(lines, "\n")
}

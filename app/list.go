package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/ayoisaiah/lift/internal/models"
	"github.com/ayoisaiah/lift/internal/timeutil"
	"github.com/ayoisaiah/lift/internal/ui"
)

const (
	noWorkoutsMsg = "No workouts found for the specified filters"
	noRecordsMsg  = "No personal records yet, finish a workout to set some"
	noPlansMsg    = "No plans found, import one with: lift plans import <file>"
	dateLayout    = "Jan 02, 2006 03:04 PM"
)

// printHistoryTable prints a table of workouts.
func printHistoryTable(w io.Writer, list []models.HistoryRecord, unit string) error {
	tableBody := make([][]string, 0, len(list))

	for i := range list {
		rec := &list[i]

		statusText := ui.Green(string(rec.Status))
		if rec.Status != models.StatusCompleted {
			statusText = ui.Red(string(rec.Status))
		}

		prs := ""
		if n := len(rec.PersonalRecords); n > 0 {
			prs = ui.Magenta(n)
		}

		tableBody = append(tableBody, []string{
			fmt.Sprintf("%d", i+1),
			rec.ID,
			rec.Date.Local().Format(dateLayout),
			rec.Name,
			timeutil.FormatMinutes(rec.Duration),
			fmt.Sprintf("%d/%d", rec.CompletedSets, rec.TotalSets),
			ui.Volume(rec.TotalVolume, unit),
			prs,
			statusText,
		})
	}

	return ui.PrintTable(
		w,
		[]string{"#", "ID", "DATE", "NAME", "DURATION", "SETS", "VOLUME", "PRS", "STATUS"},
		tableBody,
	)
}

// printRecordsTable prints a table of personal records.
func printRecordsTable(w io.Writer, recs []models.PersonalRecord, unit string) error {
	tableBody := make([][]string, 0, len(recs))

	for _, pr := range recs {
		prev := ""
		if pr.PreviousValue != nil {
			prev = metricValue(pr.Metric, *pr.PreviousValue, unit)
		}

		tableBody = append(tableBody, []string{
			pr.ExerciseName,
			strings.ReplaceAll(string(pr.Metric), "_", " "),
			ui.Highlight(metricValue(pr.Metric, pr.Value, unit)),
			prev,
			pr.AchievedAt.Local().Format(dateLayout),
		})
	}

	return ui.PrintTable(w, []string{"EXERCISE", "METRIC", "VALUE", "PREVIOUS", "ACHIEVED"}, tableBody)
}

// printPlansTable prints a table of plans and their days.
func printPlansTable(w io.Writer, plans []models.Plan) error {
	var tableBody [][]string

	for i := range plans {
		p := &plans[i]

		for j, d := range p.Days {
			names := make([]string, len(d.Exercises))
			for k := range d.Exercises {
				names[k] = d.Exercises[k].Exercise.Name
			}

			id, name := "", ""
			if j == 0 {
				id, name = p.ID, ui.Highlight(p.Name)
			}

			tableBody = append(tableBody, []string{
				id,
				name,
				fmt.Sprintf("%d. %s", j+1, d.Name),
				strings.Join(names, " · "),
			})
		}
	}

	return ui.PrintTable(w, []string{"ID", "NAME", "DAY", "EXERCISES"}, tableBody)
}

func metricValue(m models.Metric, v float64, unit string) string {
	switch m {
	case models.MaxWeight:
		return ui.Weight(v, unit)
	case models.MaxReps:
		return ui.Count(int(v))
	case models.MaxVolume:
	}

	return ui.Volume(v, unit)
}

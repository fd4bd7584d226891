// Package stats summarises workout history over a reporting period.
package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/maruel/natural"
	"github.com/pterm/pterm"

	"github.com/ayoisaiah/lift/internal/models"
	"github.com/ayoisaiah/lift/internal/timeutil"
	"github.com/ayoisaiah/lift/internal/ui"
)

const (
	barChartChar    = "▇"
	noWorkoutsMsg   = "No workouts found for the specified time range"
	hoursInADay     = 24
	daysInAWeek     = 7
	maxExerciseRows = 10
)

// ExerciseTotal is the work done on one exercise.
type ExerciseTotal struct {
	ExerciseID string  `json:"exerciseId"`
	Name       string  `json:"name"`
	Sets       int     `json:"sets"`
	Volume     float64 `json:"volume"`
	BestWeight float64 `json:"bestWeight"`
}

// Summary holds the statistics of a reporting period.
type Summary struct {
	Start           time.Time          `json:"start"`
	End             time.Time          `json:"end"`
	Monthly         map[string]float64 `json:"monthlyVolume"`
	Exercises       []ExerciseTotal    `json:"exercises"`
	Weekdays        [7]int             `json:"weekdays"`
	Workouts        int                `json:"workouts"`
	Completed       int                `json:"completed"`
	Cancelled       int                `json:"cancelled"`
	CompletedSets   int                `json:"completedSets"`
	TotalSets       int                `json:"totalSets"`
	PersonalRecords int                `json:"personalRecords"`
	Duration        time.Duration      `json:"duration"`
	Volume          float64            `json:"volume"`
	Calories        float64            `json:"calories"`
	AvgDuration     time.Duration      `json:"avgDuration"`
	AvgVolume       float64            `json:"avgVolume"`
	PerWeek         float64            `json:"workoutsPerWeek"`
}

// Compute summarises the records dated within [start, end]. A zero start
// begins at the first workout and a zero end at the end of the day of now.
func Compute(list []models.HistoryRecord, start, end, now time.Time) Summary {
	if end.IsZero() {
		end = timeutil.RoundToEnd(now)
	}

	s := Summary{
		Start:   start,
		End:     end,
		Monthly: make(map[string]float64),
	}

	exercises := make(map[string]*ExerciseTotal)

	for i := range list {
		rec := &list[i]

		if (!start.IsZero() && rec.Date.Before(start)) || rec.Date.After(end) {
			continue
		}

		// all-time reports begin on the day of the first workout
		if start.IsZero() && (s.Start.IsZero() || rec.Date.Before(s.Start)) {
			s.Start = timeutil.RoundToStart(rec.Date)
		}

		s.Workouts++

		if rec.Status == models.StatusCompleted {
			s.Completed++
		} else {
			s.Cancelled++
		}

		s.CompletedSets += rec.CompletedSets
		s.TotalSets += rec.TotalSets
		s.PersonalRecords += len(rec.PersonalRecords)
		s.Duration += rec.Duration
		s.Volume += rec.TotalVolume
		s.Calories += rec.Calories
		s.Weekdays[rec.Date.Weekday()]++
		s.Monthly[rec.Date.Format("2006-01")] += rec.TotalVolume

		addExercises(exercises, rec.Exercises)
	}

	if s.Workouts > 0 {
		s.AvgDuration = s.Duration / time.Duration(s.Workouts)
		s.AvgVolume = s.Volume / float64(s.Workouts)

		if !s.Start.IsZero() {
			days := timeutil.Round(s.End.Sub(s.Start).Hours()) / hoursInADay
			days = max(days, 1)
			s.PerWeek = float64(s.Workouts) * daysInAWeek / float64(days)
		}
	}

	s.Exercises = make([]ExerciseTotal, 0, len(exercises))
	for _, t := range exercises {
		s.Exercises = append(s.Exercises, *t)
	}

	sort.SliceStable(s.Exercises, func(i, j int) bool {
		a, b := s.Exercises[i], s.Exercises[j]
		if a.Volume != b.Volume {
			return a.Volume > b.Volume
		}

		return natural.Less(a.Name, b.Name)
	})

	return s
}

func addExercises(totals map[string]*ExerciseTotal, exercises []models.ExerciseEntry) {
	for i := range exercises {
		ex := &exercises[i]
		key := ex.Exercise.Key()

		t, ok := totals[key]
		if !ok {
			t = &ExerciseTotal{ExerciseID: key, Name: ex.Exercise.Name}
			totals[key] = t
		}

		for j := range ex.Sets {
			set := &ex.Sets[j]
			if !set.Completed() {
				continue
			}

			t.Sets++
			t.Volume += set.Volume()

			if set.ActualWeight != nil && *set.ActualWeight > t.BestWeight {
				t.BestWeight = *set.ActualWeight
			}
		}
	}
}

// Render prints the summary with bar charts for the weekday and monthly
// breakdowns.
func (s *Summary) Render(w io.Writer, unit string) error {
	if s.Workouts == 0 {
		fmt.Fprintln(w, pterm.Info.Sprint(noWorkoutsMsg))
		return nil
	}

	timePeriod := "Reporting period: " + s.Start.Format("January 02, 2006") +
		" - " + s.End.Format("January 02, 2006")

	header := pterm.DefaultHeader.WithBackgroundStyle(pterm.NewStyle(pterm.BgYellow)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Sprintfln("%s", timePeriod)

	weekdays, err := s.weekdayChart()
	if err != nil {
		return err
	}

	monthly, err := s.monthlyChart()
	if err != nil {
		return err
	}

	output := fmt.Sprint(
		header,
		s.summary(unit),
		s.averages(unit),
		s.exerciseTable(unit),
		weekdays,
		monthly,
	)

	fmt.Fprintln(w, strings.TrimSpace(output))

	return nil
}

func (s *Summary) summary(unit string) string {
	header := fmt.Sprintf("%s\n", ui.Blue("Summary"))

	return header + fmt.Sprintf(
		"Workouts: %s (%s cancelled)\nTime trained: %s\nSets: %s of %s\nVolume: %s\nPersonal records: %s\n",
		ui.Green(s.Completed),
		ui.Green(s.Cancelled),
		ui.Green(timeutil.FormatMinutes(s.Duration)),
		ui.Green(ui.Count(s.CompletedSets)),
		ui.Green(ui.Count(s.TotalSets)),
		ui.Green(ui.Volume(s.Volume, unit)),
		ui.Green(s.PersonalRecords),
	)
}

func (s *Summary) averages(unit string) string {
	header := fmt.Sprintf("\n%s\n", ui.Blue("Averages"))

	return header + fmt.Sprintf(
		"Workout length: %s\nVolume per workout: %s\nWorkouts per week: %s\n",
		ui.Green(timeutil.FormatMinutes(s.AvgDuration)),
		ui.Green(ui.Volume(s.AvgVolume, unit)),
		ui.Green(fmt.Sprintf("%.1f", s.PerWeek)),
	)
}

func (s *Summary) exerciseTable(unit string) string {
	if len(s.Exercises) == 0 {
		return ""
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("\n%s\n", ui.Blue("Exercises")))

	for i, t := range s.Exercises {
		if i == maxExerciseRows {
			break
		}

		builder.WriteString(fmt.Sprintf(
			"%s: %s in %d sets, best %s\n",
			t.Name,
			ui.Green(ui.Volume(t.Volume, unit)),
			t.Sets,
			ui.Weight(t.BestWeight, unit),
		))
	}

	return builder.String()
}

func (s *Summary) weekdayChart() (string, error) {
	bars := make(pterm.Bars, 0, len(s.Weekdays))

	for day, n := range s.Weekdays {
		bars = append(bars, pterm.Bar{
			Label: time.Weekday(day).String(),
			Value: n,
		})
	}

	return barChart("Weekday breakdown (workouts)", bars)
}

func (s *Summary) monthlyChart() (string, error) {
	months := make([]string, 0, len(s.Monthly))
	for k := range s.Monthly {
		months = append(months, k)
	}

	sort.Strings(months)

	bars := make(pterm.Bars, 0, len(months))

	for _, m := range months {
		t, err := time.Parse("2006-01", m)
		if err != nil {
			return "", err
		}

		bars = append(bars, pterm.Bar{
			Label: t.Format("Jan 2006"),
			Value: timeutil.Round(s.Monthly[m]),
		})
	}

	return barChart("Monthly breakdown (volume)", bars)
}

func barChart(title string, bars pterm.Bars) (string, error) {
	if len(bars) == 0 {
		return "", nil
	}

	chart, err := pterm.DefaultBarChart.WithHorizontalBarCharacter(barChartChar).
		WithHorizontal().
		WithShowValue().
		WithBars(bars).
		Srender()
	if err != nil {
		return "", err
	}

	return ui.Blue("\n"+title) + chart, nil
}

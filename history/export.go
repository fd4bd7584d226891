package history

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/ayoisaiah/lift/internal/models"
)

const csvHeader = "Date,Workout Name,Duration (min),Rating,Total Volume (kg),Exercise Count,Notes"

// ExportJSON returns the user's history as an indented JSON array.
func (r *Repository) ExportJSON(ctx context.Context, userID string) ([]byte, error) {
	list, err := r.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	return json.MarshalIndent(list, "", "  ")
}

// ExportCSV returns the user's history as CSV, one row per workout.
func (r *Repository) ExportCSV(ctx context.Context, userID string) ([]byte, error) {
	list, err := r.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	return FormatCSV(list), nil
}

// FormatCSV renders records with the export header. Names and notes are
// always quoted.
func FormatCSV(list []models.HistoryRecord) []byte {
	var b strings.Builder

	b.WriteString(csvHeader)
	b.WriteByte('\n')

	for i := range list {
		rec := &list[i]

		fields := []string{
			rec.Date.Format("2006-01-02"),
			quote(rec.Name),
			strconv.Itoa(int(math.Round(rec.DurationMinutes()))),
			strconv.Itoa(rec.Rating),
			strconv.FormatFloat(math.Round(rec.TotalVolume), 'f', 0, 64),
			strconv.Itoa(len(rec.Exercises)),
			quote(rec.Notes),
		}

		b.WriteString(strings.Join(fields, ","))
		b.WriteByte('\n')
	}

	return []byte(b.String())
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

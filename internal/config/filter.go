package config

import (
	"slices"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/lift/internal/timeutil"
)

// FilterConfig narrows workout history by date and free text.
type FilterConfig struct {
	StartTime time.Time
	EndTime   time.Time
	Query     string
}

// getTimeRange returns the start and end time according to the
// specified time period.
func getTimeRange(period timeutil.Period, now time.Time) (start, end time.Time) {
	start = timeutil.RoundToStart(now)

	end = timeutil.RoundToEnd(now)

	//nolint:exhaustive // other cases covered by default
	switch period {
	case timeutil.PeriodToday:
		return
	case timeutil.PeriodYesterday:
		start = now.AddDate(0, 0, timeutil.Range[period])
		start = timeutil.RoundToStart(start)
		end = timeutil.RoundToEnd(start)

		return
	case timeutil.PeriodAllTime:
		start = time.Time{}
		return
	default:
		start = now.AddDate(0, 0, timeutil.Range[period])
		start = timeutil.RoundToStart(start)
	}

	return
}

// Filter builds a FilterConfig from the --period, --since, --until and
// --query flags. A period takes precedence over explicit dates.
func Filter(ctx *cli.Context) (*FilterConfig, error) {
	return filterAt(ctx, time.Now())
}

func filterAt(ctx *cli.Context, now time.Time) (*FilterConfig, error) {
	filterCfg := &FilterConfig{
		Query: strings.TrimSpace(ctx.String("query")),
	}

	period := timeutil.Period(strings.TrimSpace(ctx.String("period")))

	if period != "" && !slices.Contains(timeutil.PeriodCollection, period) {
		return nil, errInvalidPeriod
	}

	if period != "" {
		filterCfg.StartTime, filterCfg.EndTime = getTimeRange(period, now)

		return filterCfg, nil
	}

	if since := ctx.String("since"); since != "" {
		dateTime, err := timeutil.FromStr(since)
		if err != nil {
			return nil, errInvalidDate.Fmt("start").Wrap(err)
		}

		filterCfg.StartTime = dateTime
	}

	if until := ctx.String("until"); until != "" {
		dateTime, err := timeutil.FromStr(until)
		if err != nil {
			return nil, errInvalidDate.Fmt("end").Wrap(err)
		}

		filterCfg.EndTime = dateTime
	}

	if !filterCfg.StartTime.IsZero() && !filterCfg.EndTime.IsZero() &&
		filterCfg.EndTime.Before(filterCfg.StartTime) {
		return nil, errInvalidDateRange
	}

	return filterCfg, nil
}

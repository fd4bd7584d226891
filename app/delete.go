package app

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/pterm/pterm"

	"github.com/ayoisaiah/lift/internal/models"
)

// delRecords deletes the workouts with ids. It requests confirmation before
// proceeding with the operation unless confirmed is set.
func delRecords(
	ctx context.Context,
	d *deps,
	ids []string,
	confirmed bool,
	in io.Reader,
	out io.Writer,
) error {
	if len(ids) == 0 {
		return errRecordIDRequired
	}

	recs := make([]models.HistoryRecord, 0, len(ids))

	for _, id := range ids {
		rec, err := d.history.Get(ctx, d.userID(), id)
		if err != nil {
			return fmt.Errorf("%s: %w", id, err)
		}

		recs = append(recs, rec)
	}

	if err := printHistoryTable(out, recs, d.unit(ctx)); err != nil {
		return err
	}

	if !confirmed {
		warning := pterm.Warning.Sprint(
			"The above workouts will be deleted permanently. Press ENTER to proceed",
		)

		fmt.Fprint(out, warning)

		_, _ = bufio.NewReader(in).ReadString('\n')
	}

	for _, id := range ids {
		if err := d.history.Delete(ctx, d.userID(), id); err != nil {
			return err
		}
	}

	return nil
}

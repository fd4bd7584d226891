package app

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/pterm/pterm"

	"github.com/ayoisaiah/lift/history"
	"github.com/ayoisaiah/lift/internal/models"
)

// editRecord applies patch to the workout with id. It requests confirmation
// before proceeding with the operation unless confirmed is set.
func editRecord(
	ctx context.Context,
	d *deps,
	id string,
	patch history.Patch,
	confirmed bool,
	in io.Reader,
	out io.Writer,
) error {
	rec, err := d.history.Get(ctx, d.userID(), id)
	if err != nil {
		return err
	}

	if err := printHistoryTable(out, []models.HistoryRecord{rec}, d.unit(ctx)); err != nil {
		return err
	}

	if !confirmed {
		warning := pterm.Warning.Sprint(
			"The workout above will be updated. Press ENTER to proceed",
		)

		fmt.Fprint(out, warning)

		_, _ = bufio.NewReader(in).ReadString('\n')
	}

	_, err = d.history.Update(ctx, d.userID(), id, patch)

	return err
}

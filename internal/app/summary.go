package app

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/vk/taskgrid/internal/scheduler"
)

// printSummary writes one line per reported task followed by the totals.
func printSummary(w io.Writer, sched *scheduler.Scheduler, noColor bool) {
	paint := func(attr color.Attribute) *color.Color {
		c := color.New(attr)
		if noColor {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
		return c
	}
	ok, failed, skipped := paint(color.FgGreen), paint(color.FgRed), paint(color.FgYellow)
	incomplete := paint(color.FgMagenta)

	fmt.Fprintln(w)
	for _, rec := range sched.Records() {
		switch rec.Status() {
		case scheduler.StatusFinished:
			fmt.Fprintf(w, "%s %s (%s)\n", ok.Sprint("✓"), rec.Name, elapsed(rec))
		case scheduler.StatusFailed:
			fmt.Fprintf(w, "%s %s: %v\n", failed.Sprint("✗"), rec.Name, rec.Err)
		case scheduler.StatusIncomplete:
			fmt.Fprintf(w, "%s %s (%s, incomplete): %v\n", incomplete.Sprint("◐"), rec.Name, elapsed(rec), rec.Err)
		default:
			fmt.Fprintf(w, "%s %s: %v\n", skipped.Sprint("⚠"), rec.Name, rec.Err)
		}
	}

	sum := sched.Summary()
	fmt.Fprintf(w, "\nRun %s: %d tasks, %s, %s, %s, %s\n",
		sum.RunID, sum.Total,
		ok.Sprintf("%d succeeded", sum.Succeeded),
		failed.Sprintf("%d failed", sum.Failed),
		skipped.Sprintf("%d skipped", sum.Skipped),
		incomplete.Sprintf("%d incomplete", sum.Incomplete),
	)
}

func elapsed(rec scheduler.Record) time.Duration {
	if rec.StartedAt.IsZero() {
		return 0
	}
	return rec.FinishedAt.Sub(rec.StartedAt).Round(time.Millisecond)
}

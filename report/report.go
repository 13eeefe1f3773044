// Package report renders simulator state as aligned plain text: fixed-width
// columns via text/tabwriter, no rich visualisation.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/kernelsched/servsim/jobs"
	"github.com/kernelsched/servsim/profile"
)

// WriteJobs renders one row per job: id, status, submit/start/finish times,
// and resource demand.
func WriteJobs(w io.Writer, js []*jobs.Job) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tSUBMIT\tSTART\tFINISH\tN\tRANGES")
	for _, j := range js {
		ranges := "-"
		if j.Ranges != nil && !j.Ranges.IsEmpty() {
			ranges = j.Ranges.String()
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%s\n",
			j.ID, j.Status, j.SubmitTime, j.StartTime, j.FinishTime, j.NumResources, ranges)
	}
	return tw.Flush()
}

// WriteProfile renders a profile's entries (time, free count, free ranges).
func WriteProfile(w io.Writer, p *profile.Profile) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tFREE\tRANGES")
	for _, e := range p.Snapshot() {
		fmt.Fprintf(tw, "%d\t%d\t%s\n", e.Time, e.Free.Count(), e.Free.String())
	}
	return tw.Flush()
}

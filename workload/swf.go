// Package workload reads Standard Workload Format traces, producing jobs
// ready for submission: a single scanning pass, no streaming protocol, no
// retry/backoff.
package workload

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/kernelsched/servsim/jobs"
	"github.com/kernelsched/servsim/kernel"
	"github.com/kernelsched/servsim/logging"
)

// Reader parses an SWF-formatted trace. The field Delimiter defaults to
// any run of whitespace; set it to split on a specific byte instead.
type Reader struct {
	Delimiter byte
	Sink      logging.Sink
}

// NewReader builds a Reader splitting on whitespace, discarding malformed
// lines silently unless a Sink is set.
func NewReader() *Reader {
	return &Reader{Sink: logging.Nop{}}
}

// ReadAll scans every line of r, skipping comments (#) and blank lines,
// and returns one *jobs.Job per well-formed data line. Columns consumed:
// jobId(0) submitTime(1) duration(3) nResources(4). A non-positive
// nResources is coerced to 1; a job with non-positive duration is assumed
// cancelled in the trace and discarded. Malformed lines are logged (if a
// Sink is configured) and skipped — this is a trace error, not fatal.
func (r *Reader) ReadAll(src io.Reader) ([]*jobs.Job, error) {
	sink := r.Sink
	if sink == nil {
		sink = logging.Nop{}
	}
	var out []*jobs.Job
	scanner := bufio.NewScanner(src)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := r.split(line)
		if len(fields) < 5 {
			sink.Printf("workload: line %d: expected >= 5 fields, got %d, skipping", lineNo, len(fields))
			continue
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			sink.Printf("workload: line %d: bad jobId %q, skipping", lineNo, fields[0])
			continue
		}
		submit, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			sink.Printf("workload: line %d: bad submitTime %q, skipping", lineNo, fields[1])
			continue
		}
		duration, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			sink.Printf("workload: line %d: bad duration %q, skipping", lineNo, fields[3])
			continue
		}
		if duration <= 0 {
			continue
		}
		n, err := strconv.Atoi(fields[4])
		if err != nil {
			sink.Printf("workload: line %d: bad nResources %q, skipping", lineNo, fields[4])
			continue
		}
		if n <= 0 {
			n = 1
		}
		out = append(out, jobs.NewJob(id, kernel.EntityID(0), submit, duration, n, 0))
	}
	if err := scanner.Err(); err != nil {
		return out, err
	}
	return out, nil
}

func (r *Reader) split(line string) []string {
	if r.Delimiter == 0 {
		return strings.Fields(line)
	}
	parts := strings.Split(line, string(r.Delimiter))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

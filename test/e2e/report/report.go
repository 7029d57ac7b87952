package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/xuri/excelize/v2"

	"github.com/renzon/robottelo/pkg/poll"
	"github.com/renzon/robottelo/pkg/satellite"
)

const (
	observationsSheet = "Observations"
	outputSheet       = "Host Output"
)

// Recorder collects the poll outcomes of a run. Record is safe for concurrent use and
// is meant to be registered with satellite.WithObserver.
type Recorder struct {
	mu      sync.Mutex
	entries []satellite.Observation
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Record(o satellite.Observation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, o)
}

func (r *Recorder) Entries() []satellite.Observation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]satellite.Observation{}, r.entries...)
}

// Counts returns the number of observations per final state.
func (r *Recorder) Counts() map[poll.State]int {
	counts := map[poll.State]int{}
	for _, e := range r.Entries() {
		counts[e.State]++
	}
	return counts
}

func stateColor(s poll.State) *color.Color {
	switch s {
	case poll.Succeeded:
		return color.New(color.FgGreen)
	case poll.Failed:
		return color.New(color.FgRed, color.Bold)
	case poll.TimedOut:
		return color.New(color.FgYellow, color.Bold)
	case poll.Unauthorized:
		return color.New(color.FgMagenta, color.Bold)
	default:
		return color.New(color.Reset)
	}
}

// Summary prints one line per state and the details of every unsuccessful observation.
func (r *Recorder) Summary(w io.Writer) {
	entries := r.Entries()
	counts := r.Counts()

	bold := color.New(color.Bold)
	_, _ = bold.Fprintf(w, "Asynchronous operations observed: %d\n", len(entries))
	for _, s := range []poll.State{poll.Succeeded, poll.Failed, poll.TimedOut, poll.Unauthorized} {
		if counts[s] == 0 {
			continue
		}
		_, _ = stateColor(s).Fprintf(w, "  %-12s %d\n", s, counts[s])
	}

	for _, e := range entries {
		if e.State == poll.Succeeded {
			continue
		}
		_, _ = stateColor(e.State).Fprintf(w, "\n[%s] %s after %d polls (%s)\n", e.State, e.Operation, e.Polls, e.Elapsed.Round(time.Millisecond))
		if e.Last != "" {
			fmt.Fprintf(w, "  last observed: %s\n", e.Last)
		}
		if e.Err != nil {
			fmt.Fprintf(w, "  error: %v\n", e.Err)
		}
		for _, host := range sortedHosts(e.HostOutputs) {
			fmt.Fprintf(w, "  %s:\n", host)
			for _, line := range e.HostOutputs[host] {
				fmt.Fprintf(w, "    | %s\n", line)
			}
		}
	}
}

// WriteXLSX writes one row per observation and one row per host output line.
func (r *Recorder) WriteXLSX(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", observationsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(outputSheet); err != nil {
		return err
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	rows := [][]any{{"Operation", "State", "Polls", "Elapsed (s)", "Last observed", "Error"}}
	outputs := [][]any{{"Operation", "Host", "Line"}}
	for _, e := range r.Entries() {
		errText := ""
		if e.Err != nil {
			errText = e.Err.Error()
		}
		rows = append(rows, []any{e.Operation, e.State.String(), e.Polls, e.Elapsed.Seconds(), e.Last, errText})
		for _, host := range sortedHosts(e.HostOutputs) {
			for _, line := range e.HostOutputs[host] {
				outputs = append(outputs, []any{e.Operation, host, line})
			}
		}
	}

	for sheet, data := range map[string][][]any{observationsSheet: rows, outputSheet: outputs} {
		for i, row := range data {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
			}
		}
		if err := f.SetRowStyle(sheet, 1, 1, header); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving report %s: %w", path, err)
	}
	return nil
}

func sortedHosts(outputs map[string][]string) []string {
	hosts := make([]string, 0, len(outputs))
	for h := range outputs {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}

// String renders the summary without colours.
func (r *Recorder) String() string {
	var b strings.Builder
	noColor := color.NoColor
	color.NoColor = true
	r.Summary(&b)
	color.NoColor = noColor
	return b.String()
}

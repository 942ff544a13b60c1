package verify

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// CaseResult is the outcome of one test case.
type CaseResult struct {
	Name         string
	CodebookSize int
	Mode         uint8
	Passed       bool
	// Cycles is the number of clock periods spent waiting for OutValid.
	Cycles     int
	Mismatches []Mismatch
}

// Label names the configuration the way the sweep logs it, e.g. "CB32".
func (r CaseResult) Label() string {
	return fmt.Sprintf("CB%d", r.CodebookSize)
}

// Report aggregates the results of a run.
type Report struct {
	Title   string
	Results []CaseResult
	// Err is the error that aborted the run, if any.
	Err error
}

// NewReport creates an empty report.
func NewReport(title string) *Report {
	return &Report{Title: title}
}

// Add records a result.
func (r *Report) Add(res CaseResult) {
	r.Results = append(r.Results, res)
}

// Total returns the number of recorded cases.
func (r *Report) Total() int {
	return len(r.Results)
}

// Passed returns the number of passing cases.
func (r *Report) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.Passed {
			n++
		}
	}

	return n
}

// Failed returns the number of failing cases.
func (r *Report) Failed() int {
	return r.Total() - r.Passed()
}

// AllPassed is true when the run completed and no case failed.
func (r *Report) AllPassed() bool {
	return r.Err == nil && r.Failed() == 0
}

// WriteReport writes a formatted report to a writer
func (r *Report) WriteReport(w io.Writer) {
	separator := strings.Repeat("=", 60)

	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, strings.ToUpper(r.Title))
	fmt.Fprintln(w, separator)

	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Case", "Codebook", "Mode", "Cycles", "Result", "First Mismatch"})
	for i, res := range r.Results {
		status := "PASS"
		first := ""
		if !res.Passed {
			status = "FAIL"
			if len(res.Mismatches) > 0 {
				m := res.Mismatches[0]
				first = fmt.Sprintf("[%d] want %d got %d", m.Pos, m.Want, m.Got)
			}
		}
		t.AppendRow(table.Row{i, res.Name, res.CodebookSize, res.Mode, res.Cycles, status, first})
	}
	t.AppendFooter(table.Row{"", "", "", "", "Total", fmt.Sprintf("%d/%d", r.Passed(), r.Total()), ""})
	fmt.Fprintln(w, t.Render())

	fmt.Fprintln(w)
	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, "SUMMARY")
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "Passed: %d\n", r.Passed())
	fmt.Fprintf(w, "Failed: %d\n", r.Failed())
	if r.Err != nil {
		fmt.Fprintf(w, "Aborted: %v\n", r.Err)
	}

	for _, res := range r.Results {
		if res.Passed {
			fmt.Fprintf(w, "%s Pass!\n", res.Label())
		} else {
			fmt.Fprintf(w, "%s Error: gather result mismatch\n", res.Label())
		}
	}

	fmt.Fprintln(w)
}

// SaveReportToFile saves the report to a file
func (r *Report) SaveReportToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	r.WriteReport(file)
	return nil
}

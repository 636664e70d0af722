package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/Digital-Assistant/Project-Management-Utilities/pkg/types"
)

// Column names shared by the input file and the state snapshot. The
// snapshot carries the same set plus "children".
const (
	colRepository    = "repository"
	colTitle         = "title"
	colParentTitle   = "parent_title"
	colBody          = "body"
	colProjectNumber = "project_number"
	colLabels        = "labels"
	colAssignees     = "assignees"
	colIssueURL      = "github_issue_url"
	colChildren      = "children"
)

var requiredColumns = []string{colRepository, colTitle, colParentTitle, colBody, colProjectNumber}

// ValidationErrors aggregates every problem found in an input file so the
// user can fix them in one pass, before any remote call is made.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return fmt.Sprintf("input validation failed:\n- %s", strings.Join(v, "\n- "))
}

// Load reads and validates the input CSV, returning records in row order.
func Load(path string) ([]*types.Record, error) {
	rows, header, err := readAll(path)
	if err != nil {
		return nil, err
	}

	var errs ValidationErrors
	for _, col := range requiredColumns {
		if _, ok := header[col]; !ok {
			errs = append(errs, fmt.Sprintf("missing required column: %q", col))
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	records := make([]*types.Record, 0, len(rows))
	titles := make(map[string]int, len(rows))
	for i, row := range rows {
		rec := rowToRecord(row, header)
		// Row numbers are 1-based and include the header line, matching
		// what the user sees in a spreadsheet.
		line := i + 2
		if rec.Repository == "" {
			errs = append(errs, fmt.Sprintf("row %d: 'repository' field cannot be empty", line))
		}
		if rec.Title == "" {
			errs = append(errs, fmt.Sprintf("row %d: 'title' field cannot be empty", line))
		} else if first, dup := titles[rec.Title]; dup {
			errs = append(errs, fmt.Sprintf("row %d: duplicate title %q (first seen on row %d)", line, rec.Title, first))
		} else {
			titles[rec.Title] = line
		}
		records = append(records, rec)
	}

	// Parent references are checked against the full title set, so forward
	// references are fine.
	for i, rec := range records {
		if rec.ParentTitle == "" {
			continue
		}
		if _, ok := titles[rec.ParentTitle]; !ok {
			errs = append(errs, fmt.Sprintf("row %d: 'parent_title' (%q) does not match any 'title' in the file", i+2, rec.ParentTitle))
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return records, nil
}

// LoadState reads a previously written snapshot leniently: only title and
// github_issue_url are required, and no row validation is performed. The
// schema of the input file may have changed since the snapshot was taken.
func LoadState(path string) ([]*types.Record, error) {
	rows, header, err := readAll(path)
	if err != nil {
		return nil, err
	}
	if _, ok := header[colTitle]; !ok {
		return nil, fmt.Errorf("state file %s has no %q column", path, colTitle)
	}
	if _, ok := header[colIssueURL]; !ok {
		return nil, fmt.Errorf("state file %s has no %q column", path, colIssueURL)
	}

	records := make([]*types.Record, 0, len(rows))
	for _, row := range rows {
		rec := rowToRecord(row, header)
		if rec.Title == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func readAll(path string) ([][]string, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("%s is empty", path)
	}

	header := make(map[string]int, len(all[0]))
	for i, name := range all[0] {
		header[strings.TrimSpace(name)] = i
	}
	return all[1:], header, nil
}

func rowToRecord(row []string, header map[string]int) *types.Record {
	return &types.Record{
		Repository:    cell(row, header, colRepository),
		Title:         cell(row, header, colTitle),
		ParentTitle:   cell(row, header, colParentTitle),
		Body:          cell(row, header, colBody),
		ProjectNumber: cell(row, header, colProjectNumber),
		Labels:        splitList(cell(row, header, colLabels)),
		Assignees:     splitList(cell(row, header, colAssignees)),
		Outcome:       types.ParseOutcome(cell(row, header, colIssueURL)),
	}
}

func cell(row []string, header map[string]int, name string) string {
	idx, ok := header[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Digital-Assistant/Project-Management-Utilities/pkg/types"
)

var snapshotColumns = []string{
	colRepository, colTitle, colParentTitle, colBody, colProjectNumber,
	colLabels, colAssignees, colChildren, colIssueURL,
}

// Snapshot serializes the full record set to path, replacing any prior
// content. The write goes through a temp file in the same directory and a
// rename, so an interrupted run never leaves a half-written state file.
func Snapshot(path string, records []*types.Record) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".issuecsv-state-*")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.Write(snapshotColumns); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write state header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.Repository,
			rec.Title,
			rec.ParentTitle,
			rec.Body,
			rec.ProjectNumber,
			strings.Join(rec.Labels, ","),
			strings.Join(rec.Assignees, ","),
			strings.Join(rec.Children, "; "),
			rec.Outcome.Marshal(),
		}
		if err := w.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write state row for %q: %w", rec.Title, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp state file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

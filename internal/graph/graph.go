// Package graph links flat parent-reference records into a forest.
package graph

import (
	"go.uber.org/zap"

	"github.com/Digital-Assistant/Project-Management-Utilities/internal/store"
)

// Build resolves every record's parent reference, appending each child to
// its parent's Children list in input row order, and returns the ordered
// root set.
//
// A non-empty parent_title that matches no record makes the record a root
// and drops the link. The loader rejects dangling references in fresh
// input, so this fallback only fires on hand-edited state files; it is
// kept because the original tool behaved this way, and it is logged so
// the data error is not silently masked. No cycle check happens here —
// the processor detects cycles during its walk.
func Build(s *store.Store, logger *zap.Logger) []string {
	var roots []string
	for _, rec := range s.Records() {
		if rec.ParentTitle != "" {
			if parent, ok := s.Get(rec.ParentTitle); ok {
				parent.Children = append(parent.Children, rec.Title)
				continue
			}
			logger.Warn("parent title not found, treating record as root",
				zap.String("title", rec.Title),
				zap.String("parent_title", rec.ParentTitle),
			)
		}
		roots = append(roots, rec.Title)
	}
	return roots
}

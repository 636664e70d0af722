// Package engine is the dependency-ordered, resumable tree processor: it
// walks each root's subtree children-first, creates issues through the
// tracker client, repairs missing labels, and snapshots progress after
// every root.
package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Digital-Assistant/Project-Management-Utilities/internal/remedy"
	"github.com/Digital-Assistant/Project-Management-Utilities/internal/store"
	"github.com/Digital-Assistant/Project-Management-Utilities/internal/tracker"
	"github.com/Digital-Assistant/Project-Management-Utilities/pkg/types"
)

// DefaultMaxAttempts bounds the per-record create loop, counting the
// initial attempt and every post-remediation retry.
const DefaultMaxAttempts = 5

const checklistHeader = "\n\n### Child Issues\n"

// SnapshotFunc persists the full record set. Called after each root.
type SnapshotFunc func([]*types.Record) error

// Engine drives the processing run. Single-threaded by contract: records
// are mutated in place with no locking.
type Engine struct {
	store       *store.Store
	tracker     tracker.Client
	remedy      *remedy.Engine
	snapshot    SnapshotFunc
	logger      *zap.Logger
	maxAttempts int
}

// New creates an engine. snapshot may be nil, which disables persistence
// (used by tests).
func New(s *store.Store, client tracker.Client, rem *remedy.Engine, snapshot SnapshotFunc, logger *zap.Logger) *Engine {
	return &Engine{
		store:       s,
		tracker:     client,
		remedy:      rem,
		snapshot:    snapshot,
		logger:      logger,
		maxAttempts: DefaultMaxAttempts,
	}
}

// SetMaxAttempts overrides the create-loop bound. Values below 1 are
// ignored.
func (e *Engine) SetMaxAttempts(n int) {
	if n >= 1 {
		e.maxAttempts = n
	}
}

// Run processes every root in order, snapshotting after each one.
// Per-record failures are recorded into the outcomes and do not stop the
// run; only cycles and snapshot failures abort it.
func (e *Engine) Run(ctx context.Context, roots []string) error {
	if err := e.verifyAcyclic(roots); err != nil {
		return err
	}

	for _, root := range roots {
		if err := e.processRoot(ctx, root); err != nil {
			return err
		}
		if e.snapshot != nil {
			if err := e.snapshot(e.store.Records()); err != nil {
				return fmt.Errorf("failed to snapshot state after root %q: %w", root, err)
			}
		}
	}
	return nil
}

// verifyAcyclic checks that every record is reachable from some root by
// child links. With single-parent records, anything unreachable sits on a
// parent cycle; the original tool would have recursed forever on such
// input, so the run is refused before any remote call.
func (e *Engine) verifyAcyclic(roots []string) error {
	reached := make(map[string]bool, e.store.Len())
	stack := append([]string(nil), roots...)
	for len(stack) > 0 {
		title := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reached[title] {
			continue
		}
		reached[title] = true
		if rec, ok := e.store.Get(title); ok {
			stack = append(stack, rec.Children...)
		}
	}
	if len(reached) == e.store.Len() {
		return nil
	}
	var orphaned []string
	for _, rec := range e.store.Records() {
		if !reached[rec.Title] {
			orphaned = append(orphaned, rec.Title)
		}
	}
	return fmt.Errorf("parent references form a cycle involving: %s", strings.Join(orphaned, ", "))
}

type frame struct {
	rec  *types.Record
	next int // index into rec.Children
}

// processRoot walks the subtree under root in explicit post-order.
// Children are fully processed before their parent so every child's
// remote identity is known when the parent's body is assembled. Records
// already marked succeeded are never reprocessed and their subtrees are
// not descended into.
func (e *Engine) processRoot(ctx context.Context, root string) error {
	rec, ok := e.store.Get(root)
	if !ok {
		return fmt.Errorf("unknown root record %q", root)
	}
	if rec.Outcome.State == types.StateSucceeded {
		e.logger.Info("skipping completed record", zap.String("title", rec.Title))
		return nil
	}

	visiting := map[string]bool{root: true}
	stack := []frame{{rec: rec}}

	for len(stack) > 0 {
		f := &stack[len(stack)-1]

		if f.next < len(f.rec.Children) {
			childTitle := f.rec.Children[f.next]
			f.next++

			child, ok := e.store.Get(childTitle)
			if !ok {
				// Children are built from the store, so this only happens
				// on a corrupted state file.
				return fmt.Errorf("record %q references unknown child %q", f.rec.Title, childTitle)
			}
			if visiting[childTitle] {
				return fmt.Errorf("cycle detected at record %q", childTitle)
			}
			if child.Outcome.State == types.StateSucceeded {
				continue
			}
			visiting[childTitle] = true
			stack = append(stack, frame{rec: child})
			continue
		}

		e.createIssue(ctx, f.rec)
		delete(visiting, f.rec.Title)
		stack = stack[:len(stack)-1]
	}
	return nil
}

// createIssue assembles the record's final body, runs the bounded create
// loop, and performs the non-fatal project association.
func (e *Engine) createIssue(ctx context.Context, rec *types.Record) {
	e.logger.Info("processing record",
		zap.String("title", rec.Title),
		zap.String("repository", rec.Repository),
	)

	if len(rec.Children) > 0 {
		rec.Body = e.assembleBody(rec)
	}

	req := tracker.IssueRequest{
		Repository: rec.Repository,
		Title:      rec.Title,
		Body:       rec.Body,
		Labels:     rec.Labels,
		Assignees:  rec.Assignees,
	}

	var lastErr error
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		url, err := e.tracker.CreateIssue(ctx, req)
		if err == nil {
			rec.Outcome = types.Succeeded(url)
			break
		}
		lastErr = err

		repaired, remErr := e.remedy.Remediate(ctx, rec.Repository, err)
		if remErr != nil {
			rec.Outcome = types.Failed(remErr.Error())
			e.logger.Error("label remediation failed",
				zap.String("title", rec.Title),
				zap.Error(remErr),
			)
			return
		}
		if !repaired {
			rec.Outcome = types.Failed(err.Error())
			e.logger.Error("failed to create issue",
				zap.String("title", rec.Title),
				zap.Error(err),
			)
			return
		}
		e.logger.Info("retrying issue creation after label repair",
			zap.String("title", rec.Title),
			zap.Int("attempt", attempt),
		)
	}

	if !rec.Outcome.Created() {
		rec.Outcome = types.Failed(lastErr.Error())
		e.logger.Error("giving up on issue creation",
			zap.String("title", rec.Title),
			zap.Int("attempts", e.maxAttempts),
			zap.Error(lastErr),
		)
		return
	}

	e.associate(ctx, rec)
}

// assembleBody appends one checklist line per child, in declared order,
// regardless of child outcome. Any checklist left over from a previous
// attempt is replaced, so resumed runs do not stack sections.
func (e *Engine) assembleBody(rec *types.Record) string {
	body := rec.Body
	if i := strings.Index(body, checklistHeader); i >= 0 {
		body = body[:i]
	}

	lines := make([]string, 0, len(rec.Children))
	for _, childTitle := range rec.Children {
		child, ok := e.store.Get(childTitle)
		if ok && child.Outcome.Created() {
			lines = append(lines, fmt.Sprintf("- [ ] #%s %s", child.Outcome.IssueNumber(), childTitle))
		} else {
			lines = append(lines, fmt.Sprintf("- [ ] (Failed) %s", childTitle))
		}
	}
	return body + checklistHeader + strings.Join(lines, "\n")
}

// associate adds the created issue to its declared project. Failure here
// does not revoke creation: the URL stays usable for parent checklists,
// but the outcome becomes the composite created-but-not-associated
// failure so the discrepancy shows up in the persisted state.
func (e *Engine) associate(ctx context.Context, rec *types.Record) {
	if rec.ProjectNumber == "" {
		return
	}
	url := rec.Outcome.URL

	number, err := strconv.Atoi(rec.ProjectNumber)
	if err != nil {
		rec.Outcome = types.AssociationFailed(url, fmt.Sprintf("invalid project number %q", rec.ProjectNumber))
		e.logger.Error("invalid project number",
			zap.String("title", rec.Title),
			zap.String("project_number", rec.ProjectNumber),
		)
		return
	}

	owner := rec.Owner()
	if err := e.tracker.AddToProject(ctx, owner, number, url); err != nil {
		rec.Outcome = types.AssociationFailed(url, err.Error())
		e.logger.Error("issue created but failed to add to project",
			zap.String("title", rec.Title),
			zap.String("owner", owner),
			zap.Int("project_number", number),
			zap.Error(err),
		)
	}
}

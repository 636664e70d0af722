package types

import (
	"path"
	"strings"
)

// Record is a single work item loaded from the input CSV.
//
// Title is the unique key across the record set; there is no separate
// numeric id. Children is populated by the graph builder, in input row
// order, and is never reordered afterwards.
type Record struct {
	Repository    string // owner/name
	Title         string
	ParentTitle   string
	Body          string
	ProjectNumber string // kept as text so leading zeros and blanks survive
	Labels        []string
	Assignees     []string
	Children      []string
	Outcome       Outcome
}

// Owner returns the namespace segment of the repository ("owner" of
// "owner/name"). Empty when the repository has no slash.
func (r *Record) Owner() string {
	owner, _, ok := strings.Cut(r.Repository, "/")
	if !ok {
		return ""
	}
	return owner
}

// OutcomeState discriminates the per-record completion status.
type OutcomeState int

const (
	StatePending OutcomeState = iota
	StateSucceeded
	StateFailed
	// StateAssociationFailed means the issue was created but could not be
	// added to its project. The URL is still valid for parent checklists,
	// but the persisted form is an error so a resumed run retries the node.
	StateAssociationFailed
)

// Outcome is the tagged completion status of a record.
type Outcome struct {
	State  OutcomeState
	URL    string // set for StateSucceeded and StateAssociationFailed
	Detail string // set for StateFailed and StateAssociationFailed
}

// Succeeded builds a success outcome carrying the created issue URL.
func Succeeded(url string) Outcome {
	return Outcome{State: StateSucceeded, URL: url}
}

// Failed builds a terminal failure outcome.
func Failed(detail string) Outcome {
	return Outcome{State: StateFailed, Detail: detail}
}

// AssociationFailed builds the composite created-but-not-associated outcome.
func AssociationFailed(url, detail string) Outcome {
	return Outcome{State: StateAssociationFailed, URL: url, Detail: detail}
}

// Created reports whether the remote issue exists, regardless of whether
// project association succeeded.
func (o Outcome) Created() bool {
	return o.State == StateSucceeded || o.State == StateAssociationFailed
}

// IssueNumber returns the trailing path segment of the issue URL, e.g.
// "42" for ".../issues/42". Empty when no URL is present.
func (o Outcome) IssueNumber() string {
	if o.URL == "" {
		return ""
	}
	return path.Base(o.URL)
}

const errPrefix = "ERR: "

// Marshal renders the outcome in the state-file cell format: the bare URL
// for success, an "ERR: "-tagged message for failures, empty for pending.
func (o Outcome) Marshal() string {
	switch o.State {
	case StateSucceeded:
		return o.URL
	case StateFailed:
		if strings.HasPrefix(o.Detail, errPrefix) {
			return o.Detail
		}
		return errPrefix + o.Detail
	case StateAssociationFailed:
		return errPrefix + "issue created but failed to add to project: " + o.Detail + " (issue: " + o.URL + ")"
	default:
		return ""
	}
}

// ParseOutcome interprets a state-file cell. Any value with an https
// prefix is a success URL; an empty cell is pending; everything else is
// carried as failure detail. Association failures round-trip as plain
// failures on purpose, so a resumed run recreates those issues.
func ParseOutcome(cell string) Outcome {
	cell = strings.TrimSpace(cell)
	switch {
	case cell == "":
		return Outcome{}
	case strings.HasPrefix(cell, "https://"):
		return Succeeded(cell)
	default:
		return Outcome{State: StateFailed, Detail: cell}
	}
}

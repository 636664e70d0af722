// Package remedy repairs the one class of remote failure the tool can fix
// on its own: a label referenced by a row that does not exist yet on the
// target repository.
package remedy

import (
	"context"
	"fmt"
	"hash/fnv"

	"go.uber.org/zap"

	"github.com/Digital-Assistant/Project-Management-Utilities/internal/tracker"
)

// Engine inspects tracker failures and performs label repair.
type Engine struct {
	tracker tracker.Client
	logger  *zap.Logger
}

// New creates a remediation engine.
func New(client tracker.Client, logger *zap.Logger) *Engine {
	return &Engine{tracker: client, logger: logger}
}

// Remediate decides whether createErr is repairable and, if so, creates
// the missing label. Returns (true, nil) when the label was created and
// the caller should retry, (false, nil) when the failure is not a
// missing-label failure, and (false, err) when the repair itself failed.
func (e *Engine) Remediate(ctx context.Context, repository string, createErr error) (bool, error) {
	label, ok := tracker.MissingLabelName(createErr)
	if !ok {
		return false, nil
	}

	color := LabelColor(label)
	e.logger.Warn("label not found, attempting to create it",
		zap.String("repository", repository),
		zap.String("label", label),
		zap.String("color", color),
	)

	if err := e.tracker.CreateLabel(ctx, repository, label, color); err != nil {
		return false, fmt.Errorf("failed to create missing label %q: %w", label, err)
	}
	return true, nil
}

// LabelColor derives a stable 6-hex-digit color from the label name. Not
// collision-free, just deterministic so reruns pick the same color.
func LabelColor(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	return fmt.Sprintf("%06x", h.Sum32()&0xFFFFFF)
}

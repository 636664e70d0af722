package remedy_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Digital-Assistant/Project-Management-Utilities/internal/remedy"
	"github.com/Digital-Assistant/Project-Management-Utilities/internal/tracker"
)

type labelRecorder struct {
	tracker.Client
	repo, name, color string
	err               error
	calls             int
}

func (r *labelRecorder) CreateLabel(ctx context.Context, repository, name, color string) error {
	r.calls++
	r.repo, r.name, r.color = repository, name, color
	return r.err
}

func TestRemediateCreatesTheMissingLabel(t *testing.T) {
	rec := &labelRecorder{}
	e := remedy.New(rec, zap.NewNop())

	createErr := &tracker.Error{Kind: tracker.KindMissingLabel, Label: "bug", Op: "create issue", Err: errors.New("422")}
	repaired, err := e.Remediate(context.Background(), "acme/app", createErr)

	require.NoError(t, err)
	assert.True(t, repaired)
	assert.Equal(t, "acme/app", rec.repo)
	assert.Equal(t, "bug", rec.name)
	assert.Equal(t, remedy.LabelColor("bug"), rec.color)
}

func TestRemediateIgnoresUnrelatedErrors(t *testing.T) {
	rec := &labelRecorder{}
	e := remedy.New(rec, zap.NewNop())

	repaired, err := e.Remediate(context.Background(), "acme/app", errors.New("rate limited"))

	require.NoError(t, err)
	assert.False(t, repaired)
	assert.Zero(t, rec.calls, "no repair attempted for non-remediable errors")
}

func TestRemediateReportsRepairFailure(t *testing.T) {
	rec := &labelRecorder{err: errors.New("forbidden")}
	e := remedy.New(rec, zap.NewNop())

	createErr := errors.New("could not add label: 'bug' not found")
	repaired, err := e.Remediate(context.Background(), "acme/app", createErr)

	assert.False(t, repaired)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `failed to create missing label "bug"`)
}

func TestLabelColorIsDeterministicSixHexDigits(t *testing.T) {
	hex6 := regexp.MustCompile(`^[0-9a-f]{6}$`)
	for _, name := range []string{"bug", "needs-triage", "p0", ""} {
		color := remedy.LabelColor(name)
		assert.Regexp(t, hex6, color)
		assert.Equal(t, color, remedy.LabelColor(name), "same name, same color")
	}
	assert.NotEqual(t, remedy.LabelColor("bug"), remedy.LabelColor("feature"))
}

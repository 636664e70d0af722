package csvio_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Digital-Assistant/Project-Management-Utilities/internal/csvio"
	"github.com/Digital-Assistant/Project-Management-Utilities/pkg/types"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validInput = `repository,title,parent_title,body,project_number,labels,assignees
acme/app,Epic,,Top level work,7,"epic,priority",alice
acme/app,Story,Epic,A story,7,,
acme/app,Task,Story,A task,,bug,"alice,bob"
`

func TestLoadValidFile(t *testing.T) {
	records, err := csvio.Load(writeFile(t, validInput))
	require.NoError(t, err)
	require.Len(t, records, 3)

	epic := records[0]
	assert.Equal(t, "acme/app", epic.Repository)
	assert.Equal(t, "Epic", epic.Title)
	assert.Equal(t, "7", epic.ProjectNumber)
	assert.Equal(t, []string{"epic", "priority"}, epic.Labels)
	assert.Equal(t, []string{"alice"}, epic.Assignees)
	assert.Equal(t, types.StatePending, epic.Outcome.State)

	task := records[2]
	assert.Equal(t, "Story", task.ParentTitle)
	assert.Empty(t, task.ProjectNumber)
	assert.Equal(t, []string{"alice", "bob"}, task.Assignees)
}

func TestLoadValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "missing column",
			content: "repository,title,body,project_number\nacme/app,T,b,1\n",
			want:    `missing required column: "parent_title"`,
		},
		{
			name:    "empty repository",
			content: "repository,title,parent_title,body,project_number\n,T,,b,1\n",
			want:    "row 2: 'repository' field cannot be empty",
		},
		{
			name:    "empty title",
			content: "repository,title,parent_title,body,project_number\nacme/app,,,b,1\n",
			want:    "row 2: 'title' field cannot be empty",
		},
		{
			name:    "dangling parent",
			content: "repository,title,parent_title,body,project_number\nacme/app,T,Nope,b,1\n",
			want:    `'parent_title' ("Nope") does not match any 'title'`,
		},
		{
			name:    "duplicate title",
			content: "repository,title,parent_title,body,project_number\nacme/app,T,,b,1\nacme/app,T,,b,1\n",
			want:    `duplicate title "T"`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := csvio.Load(writeFile(t, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadCollectsAllErrorsAtOnce(t *testing.T) {
	content := "repository,title,parent_title,body,project_number\n,T1,Nope,b,1\nacme/app,,,b,1\n"
	_, err := csvio.Load(writeFile(t, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'repository' field cannot be empty")
	assert.Contains(t, err.Error(), "'title' field cannot be empty")
	assert.Contains(t, err.Error(), "does not match any 'title'")
}

func TestForwardParentReferenceIsValid(t *testing.T) {
	content := "repository,title,parent_title,body,project_number\nacme/app,Child,Parent,b,1\nacme/app,Parent,,b,1\n"
	records, err := csvio.Load(writeFile(t, content))
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSnapshotRoundTrip(t *testing.T) {
	out := filepath.Join(t.TempDir(), "plan_output.csv")
	records := []*types.Record{
		{
			Repository:    "acme/app",
			Title:         "Epic",
			Body:          "line one\nline two",
			ProjectNumber: "7",
			Labels:        []string{"epic"},
			Children:      []string{"Story", "Task"},
			Outcome:       types.Succeeded("https://github.com/acme/app/issues/12"),
		},
		{
			Repository:  "acme/app",
			Title:       "Story",
			ParentTitle: "Epic",
			Outcome:     types.Failed("boom"),
		},
		{
			Repository:  "acme/app",
			Title:       "Task",
			ParentTitle: "Epic",
		},
	}
	require.NoError(t, csvio.Snapshot(out, records))

	state, err := csvio.LoadState(out)
	require.NoError(t, err)
	require.Len(t, state, 3)

	assert.Equal(t, types.StateSucceeded, state[0].Outcome.State)
	assert.Equal(t, "https://github.com/acme/app/issues/12", state[0].Outcome.URL)
	assert.Equal(t, "line one\nline two", state[0].Body)

	assert.Equal(t, types.StateFailed, state[1].Outcome.State)
	assert.Equal(t, "ERR: boom", state[1].Outcome.Detail)

	assert.Equal(t, types.StatePending, state[2].Outcome.State)
}

func TestSnapshotOverwritesPriorContent(t *testing.T) {
	out := filepath.Join(t.TempDir(), "plan_output.csv")
	first := []*types.Record{{Repository: "acme/app", Title: "Old"}}
	second := []*types.Record{{Repository: "acme/app", Title: "New"}}

	require.NoError(t, csvio.Snapshot(out, first))
	require.NoError(t, csvio.Snapshot(out, second))

	state, err := csvio.LoadState(out)
	require.NoError(t, err)
	require.Len(t, state, 1)
	assert.Equal(t, "New", state[0].Title)
}

func TestLoadStateRequiresTitleAndURLColumns(t *testing.T) {
	path := writeFile(t, "title,body\nT,b\n")
	_, err := csvio.LoadState(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "github_issue_url")
}

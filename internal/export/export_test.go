package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sakif/softdesk/internal/model"
)

func TestWriteSheet_TagsAndPointers(t *testing.T) {
	type base struct {
		ID string `excel:"Id"`
	}
	type row struct {
		base
		Name    string
		Hidden  string  `excel:"-"`
		Comment *string `excel:"Note"`
		secret  string
	}
	note := "hello"
	data := []*row{
		{base: base{ID: "1"}, Name: "a", Hidden: "x", Comment: &note, secret: "s"},
		nil,
		{base: base{ID: "2"}, Name: "b"},
	}

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, WriteSheet(f, "Data", data))

	rows, err := f.GetRows("Data")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Id", "Name", "Note"}, rows[0])
	assert.Equal(t, []string{"1", "a", "hello"}, rows[1])
	assert.Equal(t, []string{"2", "b"}, rows[2])
}

func TestWriteSheet_RejectsNonSlices(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	assert.Error(t, WriteSheet(f, "", "nope"))
	assert.Error(t, WriteSheet(f, "", []int{1, 2}))
}

func TestWriteIssues(t *testing.T) {
	bob := "bob-id"
	project := &model.Project{ID: "p1", Name: "Soft Desk!"}
	issues := []model.Issue{
		{
			ID:         "i1",
			Title:      "Crash on save",
			AuthorID:   "alice-id",
			AssigneeID: &bob,
			Priority:   model.PriorityHigh,
			Tag:        model.TagBug,
			Status:     model.StatusInProgress,
			CreatedAt:  time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteIssues(&buf, project, issues))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(IssuesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"ID", "Title", "Description", "Priority", "Tag", "Status", "Author", "Assignee", "Created"}, rows[0])
	assert.Equal(t, []string{"i1", "Crash on save", "", "High", "Bug", "In Progress", "alice-id", "bob-id", "2026-03-01 09:30"}, rows[1])
}

func TestWriteIssues_EmptyProjectStillHasHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteIssues(&buf, &model.Project{ID: "p1", Name: "Empty"}, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(IssuesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ID", rows[0][0])
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "soft-desk-issues.xlsx", Filename(&model.Project{ID: "p1", Name: "Soft Desk!"}))
	assert.Equal(t, "p1-issues.xlsx", Filename(&model.Project{ID: "p1", Name: "???"}))
}

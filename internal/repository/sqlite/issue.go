package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/softdesk/internal/apperror"
	"github.com/sakif/softdesk/internal/model"
	"github.com/sakif/softdesk/internal/repository"
)

var _ repository.IssueRepository = (*DB)(nil)

const issueColumns = `id, title, description, project_id, author_id, assignee_id,
	priority, tag, status, created_time`

func scanIssue(row rowScanner) (*model.Issue, error) {
	var (
		i        model.Issue
		assignee sql.NullString
	)
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Description,
		&i.ProjectID,
		&i.AuthorID,
		&assignee,
		&i.Priority,
		&i.Tag,
		&i.Status,
		&i.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if assignee.Valid {
		i.AssigneeID = &assignee.String
	}
	return &i, nil
}

// CreateIssue inserts an issue. An empty status is stored as TODO.
func (db *DB) CreateIssue(ctx context.Context, issue *model.Issue) error {
	issue.ID = xid.New().String()
	issue.CreatedAt = time.Now().UTC()
	if issue.Status == "" {
		issue.Status = model.StatusTodo
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO issues (`+issueColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		issue.ID,
		issue.Title,
		issue.Description,
		issue.ProjectID,
		issue.AuthorID,
		nullString(issue.AssigneeID),
		string(issue.Priority),
		string(issue.Tag),
		string(issue.Status),
		issue.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFoundMessage("project, author or assignee does not exist")
		}
		return fmt.Errorf("sqlite: inserting issue: %w", err)
	}
	return nil
}

func (db *DB) GetIssueByID(ctx context.Context, id string) (*model.Issue, error) {
	i, err := scanIssue(db.conn.QueryRowContext(ctx,
		`SELECT `+issueColumns+` FROM issues WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("issue", id)
		}
		return nil, fmt.Errorf("sqlite: getting issue %s: %w", id, err)
	}
	return i, nil
}

// ListIssues returns a project's issues, newest first.
func (db *DB) ListIssues(ctx context.Context, projectID string, opts repository.ListOptions) ([]model.Issue, error) {
	limit, offset := clampList(opts)
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+issueColumns+` FROM issues
		 WHERE project_id = ?
		 ORDER BY created_time DESC, id DESC
		 LIMIT ? OFFSET ?`,
		projectID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing issues of %s: %w", projectID, err)
	}
	defer rows.Close()

	issues := make([]model.Issue, 0, limit)
	for rows.Next() {
		i, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning issue row: %w", err)
		}
		issues = append(issues, *i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating issues: %w", err)
	}
	return issues, nil
}

// UpdateIssue writes the editable fields. Project and author never change.
func (db *DB) UpdateIssue(ctx context.Context, issue *model.Issue) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE issues
		 SET title = ?, description = ?, assignee_id = ?, priority = ?, tag = ?, status = ?
		 WHERE id = ?`,
		issue.Title,
		issue.Description,
		nullString(issue.AssigneeID),
		string(issue.Priority),
		string(issue.Tag),
		string(issue.Status),
		issue.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) && issue.AssigneeID != nil {
			return apperror.NotFound("user", *issue.AssigneeID)
		}
		return fmt.Errorf("sqlite: updating issue %s: %w", issue.ID, err)
	}
	return checkAffected(res, apperror.NotFound("issue", issue.ID))
}

// DeleteIssue removes the issue and, through the schema, its comments.
func (db *DB) DeleteIssue(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM issues WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting issue %s: %w", id, err)
	}
	return checkAffected(res, apperror.NotFound("issue", id))
}

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

var _ repository.ProjectRepository = (*DB)(nil)

const projectColumns = `id, name, description, type, author_id, created_time`

func scanProject(row rowScanner) (*model.Project, error) {
	var p model.Project
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Type, &p.AuthorID, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject inserts the project and its author's contributor row in one
// transaction.
func (db *DB) CreateProject(ctx context.Context, project *model.Project) error {
	project.ID = xid.New().String()
	project.CreatedAt = time.Now().UTC()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning project transaction: %w", err)
	}
	defer tx.Rollback() // no-op after Commit

	_, err = tx.ExecContext(ctx,
		`INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		project.ID,
		project.Name,
		project.Description,
		string(project.Type),
		project.AuthorID,
		project.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("user", project.AuthorID)
		}
		return fmt.Errorf("sqlite: inserting project: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO contributors (id, user_id, project_id) VALUES (?, ?, ?)`,
		xid.New().String(), project.AuthorID, project.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: adding author as contributor of %s: %w", project.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing project %s: %w", project.ID, err)
	}
	return nil
}

func (db *DB) GetProjectByID(ctx context.Context, id string) (*model.Project, error) {
	p, err := scanProject(db.conn.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("project", id)
		}
		return nil, fmt.Errorf("sqlite: getting project %s: %w", id, err)
	}
	return p, nil
}

// ListProjects returns projects newest first. With a MemberID only projects
// that user authored or contributes to are returned.
func (db *DB) ListProjects(ctx context.Context, filter repository.ProjectFilter) ([]model.Project, error) {
	limit, offset := clampList(filter.ListOptions)

	var (
		rows *sql.Rows
		err  error
	)
	if filter.MemberID == "" {
		rows, err = db.conn.QueryContext(ctx,
			`SELECT `+projectColumns+` FROM projects
			 ORDER BY created_time DESC, id DESC
			 LIMIT ? OFFSET ?`,
			limit, offset)
	} else {
		rows, err = db.conn.QueryContext(ctx,
			`SELECT `+projectColumns+` FROM projects
			 WHERE author_id = ?
			    OR id IN (SELECT project_id FROM contributors WHERE user_id = ?)
			 ORDER BY created_time DESC, id DESC
			 LIMIT ? OFFSET ?`,
			filter.MemberID, filter.MemberID, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing projects: %w", err)
	}
	defer rows.Close()

	projects := make([]model.Project, 0, limit)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning project row: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating projects: %w", err)
	}
	return projects, nil
}

// UpdateProject changes name, description and type. The author is immutable.
func (db *DB) UpdateProject(ctx context.Context, project *model.Project) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE projects SET name = ?, description = ?, type = ? WHERE id = ?`,
		project.Name, project.Description, string(project.Type), project.ID)
	if err != nil {
		return fmt.Errorf("sqlite: updating project %s: %w", project.ID, err)
	}
	return checkAffected(res, apperror.NotFound("project", project.ID))
}

// DeleteProject removes the project; contributors, issues and their comments
// go with it.
func (db *DB) DeleteProject(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting project %s: %w", id, err)
	}
	return checkAffected(res, apperror.NotFound("project", id))
}

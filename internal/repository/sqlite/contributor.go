package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/softdesk/internal/apperror"
	"github.com/sakif/softdesk/internal/model"
	"github.com/sakif/softdesk/internal/repository"
)

var _ repository.ContributorRepository = (*DB)(nil)

// AddContributor links a user to a project. Adding the same pair twice
// returns apperror.ErrConflict.
func (db *DB) AddContributor(ctx context.Context, c *model.Contributor) error {
	c.ID = xid.New().String()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO contributors (id, user_id, project_id) VALUES (?, ?, ?)`,
		c.ID, c.UserID, c.ProjectID)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return apperror.Conflict("contributor", "user_id", c.UserID)
		case isForeignKeyViolation(err):
			return apperror.NotFoundMessage("user or project does not exist")
		}
		return fmt.Errorf("sqlite: adding contributor %s to %s: %w", c.UserID, c.ProjectID, err)
	}
	return nil
}

func (db *DB) GetContributorByID(ctx context.Context, id string) (*model.Contributor, error) {
	var c model.Contributor
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, project_id FROM contributors WHERE id = ?`, id,
	).Scan(&c.ID, &c.UserID, &c.ProjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("contributor", id)
		}
		return nil, fmt.Errorf("sqlite: getting contributor %s: %w", id, err)
	}
	return &c, nil
}

func (db *DB) ListContributors(ctx context.Context, projectID string, opts repository.ListOptions) ([]model.Contributor, error) {
	limit, offset := clampList(opts)
	rows, err := db.conn.QueryContext(ctx,
		`SELECT c.id, c.user_id, c.project_id
		 FROM contributors c JOIN users u ON u.id = c.user_id
		 WHERE c.project_id = ?
		 ORDER BY u.username
		 LIMIT ? OFFSET ?`,
		projectID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing contributors of %s: %w", projectID, err)
	}
	defer rows.Close()

	out := make([]model.Contributor, 0, limit)
	for rows.Next() {
		var c model.Contributor
		if err := rows.Scan(&c.ID, &c.UserID, &c.ProjectID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning contributor row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating contributors: %w", err)
	}
	return out, nil
}

func (db *DB) IsContributor(ctx context.Context, projectID, userID string) (bool, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contributors WHERE project_id = ? AND user_id = ?`,
		projectID, userID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking contributor %s on %s: %w", userID, projectID, err)
	}
	return n > 0, nil
}

// RemoveContributor deletes only the link. Issues and comments the user
// wrote stay where they are. With unassign set, the user is also taken off
// every issue of the project they were assigned to, in the same transaction.
func (db *DB) RemoveContributor(ctx context.Context, id string, unassign bool) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback() // no-op after Commit

	var userID, projectID string
	err = tx.QueryRowContext(ctx,
		`SELECT user_id, project_id FROM contributors WHERE id = ?`, id,
	).Scan(&userID, &projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NotFound("contributor", id)
		}
		return fmt.Errorf("sqlite: getting contributor %s: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM contributors WHERE id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: removing contributor %s: %w", id, err)
	}

	if unassign {
		_, err := tx.ExecContext(ctx,
			`UPDATE issues SET assignee_id = NULL WHERE project_id = ? AND assignee_id = ?`,
			projectID, userID)
		if err != nil {
			return fmt.Errorf("sqlite: unassigning %s on %s: %w", userID, projectID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing contributor removal: %w", err)
	}
	return nil
}

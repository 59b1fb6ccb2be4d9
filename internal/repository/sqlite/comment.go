package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sakif/softdesk/internal/apperror"
	"github.com/sakif/softdesk/internal/model"
	"github.com/sakif/softdesk/internal/repository"
)

var _ repository.CommentRepository = (*DB)(nil)

const commentColumns = `id, description, issue_id, author_id, created_time`

func scanComment(row rowScanner) (*model.Comment, error) {
	var c model.Comment
	if err := row.Scan(&c.ID, &c.Description, &c.IssueID, &c.AuthorID, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateComment inserts a comment under a random v4 UUID. Unlike the xid
// used elsewhere, nothing about the id reveals creation order.
func (db *DB) CreateComment(ctx context.Context, comment *model.Comment) error {
	comment.ID = uuid.NewString()
	comment.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (`+commentColumns+`) VALUES (?, ?, ?, ?, ?)`,
		comment.ID,
		comment.Description,
		comment.IssueID,
		comment.AuthorID,
		comment.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFoundMessage("issue or author does not exist")
		}
		return fmt.Errorf("sqlite: inserting comment: %w", err)
	}
	return nil
}

func (db *DB) GetCommentByID(ctx context.Context, id string) (*model.Comment, error) {
	c, err := scanComment(db.conn.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}
	return c, nil
}

// ListComments returns an issue's comments in the order they were written.
func (db *DB) ListComments(ctx context.Context, issueID string, opts repository.ListOptions) ([]model.Comment, error) {
	limit, offset := clampList(opts)
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+commentColumns+` FROM comments
		 WHERE issue_id = ?
		 ORDER BY created_time ASC, rowid ASC
		 LIMIT ? OFFSET ?`,
		issueID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments of %s: %w", issueID, err)
	}
	defer rows.Close()

	comments := make([]model.Comment, 0, limit)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}
	return comments, nil
}

func (db *DB) UpdateComment(ctx context.Context, comment *model.Comment) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE comments SET description = ? WHERE id = ?`,
		comment.Description, comment.ID)
	if err != nil {
		return fmt.Errorf("sqlite: updating comment %s: %w", comment.ID, err)
	}
	return checkAffected(res, apperror.NotFound("comment", comment.ID))
}

func (db *DB) DeleteComment(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %s: %w", id, err)
	}
	return checkAffected(res, apperror.NotFound("comment", id))
}

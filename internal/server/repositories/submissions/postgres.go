package submissions

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/feedbox/internal/common"
	"github.com/dmitrijs2005/feedbox/internal/dbx"
	"github.com/dmitrijs2005/feedbox/internal/server/models"
)

const submissionColumns = `id, external_submission_id, feedback_box_id, data, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, s *models.Submission) (bool, error) {
	query := `
		INSERT INTO submissions (id, external_submission_id, feedback_box_id, data, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (feedback_box_id, external_submission_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, s.ID, s.SubmissionID, s.FeedbackBoxID, s.Data, s.CreatedAt)
	if err != nil {
		return false, dbx.StoreError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, dbx.StoreError(err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) GetByExternalID(ctx context.Context, boxID string, externalID string) (*models.Submission, error) {
	query := `
		SELECT ` + submissionColumns + ` FROM submissions
		WHERE feedback_box_id = $1 AND external_submission_id = $2
	`
	s := &models.Submission{}
	err := r.db.QueryRowContext(ctx, query, boxID, externalID).
		Scan(&s.ID, &s.SubmissionID, &s.FeedbackBoxID, &s.Data, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, dbx.StoreError(err)
	}
	return s, nil
}

func (r *PostgresRepository) ListByBox(ctx context.Context, boxID string) ([]*models.Submission, error) {
	query := `
		SELECT ` + submissionColumns + ` FROM submissions
		WHERE feedback_box_id = $1
		ORDER BY created_at DESC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, boxID)
	if err != nil {
		return nil, dbx.StoreError(err)
	}
	defer rows.Close()

	result := make([]*models.Submission, 0)
	for rows.Next() {
		var s models.Submission
		if err := rows.Scan(&s.ID, &s.SubmissionID, &s.FeedbackBoxID, &s.Data, &s.CreatedAt); err != nil {
			return nil, dbx.StoreError(err)
		}
		result = append(result, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.StoreError(err)
	}
	return result, nil
}

func (r *PostgresRepository) CountByBox(ctx context.Context, boxID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM submissions WHERE feedback_box_id = $1`, boxID).Scan(&n)
	if err != nil {
		return 0, dbx.StoreError(err)
	}
	return n, nil
}

func (r *PostgresRepository) DeleteByBox(ctx context.Context, boxID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM submissions WHERE feedback_box_id = $1`, boxID)
	if err != nil {
		return 0, dbx.StoreError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, dbx.StoreError(err)
	}
	return n, nil
}

func (r *PostgresRepository) RecentByUser(ctx context.Context, userID string, limit int) ([]*models.Activity, error) {
	query := `
		SELECT s.id, s.external_submission_id, s.feedback_box_id, s.data, s.created_at, b.name
		FROM submissions s
		JOIN feedback_boxes b ON b.id = s.feedback_box_id
		WHERE b.user_id = $1
		ORDER BY s.created_at DESC, s.id ASC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, dbx.StoreError(err)
	}
	defer rows.Close()

	result := make([]*models.Activity, 0, limit)
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.SubmissionID, &a.FeedbackBoxID, &a.Data, &a.CreatedAt, &a.BoxName); err != nil {
			return nil, dbx.StoreError(err)
		}
		result = append(result, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.StoreError(err)
	}
	return result, nil
}

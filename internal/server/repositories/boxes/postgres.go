package boxes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/feedbox/internal/common"
	"github.com/dmitrijs2005/feedbox/internal/dbx"
	"github.com/dmitrijs2005/feedbox/internal/server/models"
)

const boxColumns = `id, user_id, name, description, form_id, created_at`

// PostgresRepository implements Repository over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, box *models.FeedbackBox) error {
	query := `
		INSERT INTO feedback_boxes (id, user_id, name, description, form_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		box.ID, box.UserID, box.Name, box.Description, box.FormID, box.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return dbx.StoreError(err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string, lock LockMode) (*models.FeedbackBox, error) {
	query := `SELECT ` + boxColumns + ` FROM feedback_boxes WHERE id = $1`
	switch lock {
	case LockShare:
		query += ` FOR SHARE`
	case LockUpdate:
		query += ` FOR UPDATE`
	}

	box, err := scanBox(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, dbx.StoreError(err)
	}
	return box, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.FeedbackBox, error) {
	query := `
		SELECT ` + boxColumns + ` FROM feedback_boxes
		WHERE user_id = $1
		ORDER BY created_at DESC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, dbx.StoreError(err)
	}
	defer rows.Close()

	result := make([]*models.FeedbackBox, 0)
	for rows.Next() {
		box, err := scanBox(rows)
		if err != nil {
			return nil, dbx.StoreError(err)
		}
		result = append(result, box)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.StoreError(err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, name string, description string) (*models.FeedbackBox, error) {
	query := `
		UPDATE feedback_boxes SET name = $2, description = $3
		WHERE id = $1
		RETURNING ` + boxColumns

	box, err := scanBox(r.db.QueryRowContext(ctx, query, id, name, description))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, dbx.StoreError(err)
	}
	return box, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM feedback_boxes WHERE id = $1`, id)
	if err != nil {
		return dbx.StoreError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return dbx.StoreError(fmt.Errorf("rows affected: %w", err))
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBox(s scanner) (*models.FeedbackBox, error) {
	box := &models.FeedbackBox{}
	if err := s.Scan(&box.ID, &box.UserID, &box.Name, &box.Description, &box.FormID, &box.CreatedAt); err != nil {
		return nil, err
	}
	return box, nil
}

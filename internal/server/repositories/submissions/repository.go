// Package submissions persists submissions received through feedback boxes
// and answers the read queries the dashboard is built from.
package submissions

import (
	"context"

	"github.com/dmitrijs2005/feedbox/internal/server/models"
)

type Repository interface {
	// Insert stores s unless a submission with the same external id already
	// exists for the box, in which case nothing is written and inserted is
	// false.
	Insert(ctx context.Context, s *models.Submission) (inserted bool, err error)
	// GetByExternalID returns common.ErrorNotFound when absent.
	GetByExternalID(ctx context.Context, boxID string, externalID string) (*models.Submission, error)
	// ListByBox returns the box's submissions, newest first.
	ListByBox(ctx context.Context, boxID string) ([]*models.Submission, error)
	CountByBox(ctx context.Context, boxID string) (int64, error)
	// DeleteByBox removes every submission of the box and reports how many.
	DeleteByBox(ctx context.Context, boxID string) (int64, error)
	// RecentByUser returns up to limit submissions across all boxes owned by
	// userID ordered by created_at desc, id asc, each with its box name.
	RecentByUser(ctx context.Context, userID string, limit int) ([]*models.Activity, error)
}

// Package boxes persists feedback boxes.
package boxes

import (
	"context"

	"github.com/dmitrijs2005/feedbox/internal/server/models"
)

// LockMode selects the row lock taken by GetByID. Locks only have effect
// when the repository is bound to a transaction.
type LockMode int

const (
	LockNone LockMode = iota
	// LockShare blocks concurrent deletes while the caller writes rows that
	// reference the box.
	LockShare
	// LockUpdate serialises writers of the same box.
	LockUpdate
)

type Repository interface {
	// Create inserts box as given. A duplicate form id yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, box *models.FeedbackBox) error
	// GetByID returns common.ErrorNotFound when no box has that id.
	GetByID(ctx context.Context, id string, lock LockMode) (*models.FeedbackBox, error)
	// ListByUser returns the user's boxes, newest first.
	ListByUser(ctx context.Context, userID string) ([]*models.FeedbackBox, error)
	// Update overwrites name and description only.
	Update(ctx context.Context, id string, name string, description string) (*models.FeedbackBox, error)
	// Delete returns common.ErrorNotFound when nothing was deleted.
	Delete(ctx context.Context, id string) error
}

package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/feedbox/internal/common"
	"github.com/dmitrijs2005/feedbox/internal/dbx"
	"github.com/dmitrijs2005/feedbox/internal/server/auth"
	"github.com/dmitrijs2005/feedbox/internal/server/models"
	"github.com/dmitrijs2005/feedbox/internal/server/repositories/boxes"
	"github.com/dmitrijs2005/feedbox/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// SubmissionService ingests submissions delivered by the form provider and
// serves them back to box owners.
type SubmissionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewSubmissionService(db *sql.DB, m repomanager.RepositoryManager) *SubmissionService {
	return &SubmissionService{db: db, repomanager: m, now: time.Now}
}

// Ingest stores a submission for boxID. Redelivery of an already ingested
// externalID is a no-op that returns the stored record with created false.
func (s *SubmissionService) Ingest(ctx context.Context, boxID string, externalID string, data models.Payload) (sub *models.Submission, created bool, err error) {
	if externalID == "" {
		return nil, false, fmt.Errorf("%w: submission id is required", common.ErrorValidation)
	}
	if _, err := uuid.Parse(boxID); err != nil {
		return nil, false, common.ErrorNotFound
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		// The share lock keeps a concurrent delete from removing the box
		// between this check and the insert.
		if _, err := s.repomanager.Boxes(tx).GetByID(ctx, boxID, boxes.LockShare); err != nil {
			return err
		}

		repo := s.repomanager.Submissions(tx)
		candidate := &models.Submission{
			ID:            uuid.NewString(),
			SubmissionID:  externalID,
			FeedbackBoxID: boxID,
			Data:          data,
			CreatedAt:     s.now().UTC(),
		}

		inserted, err := repo.Insert(ctx, candidate)
		if err != nil {
			return fmt.Errorf("error storing submission: %w", err)
		}
		if inserted {
			sub, created = candidate, true
			return nil
		}

		sub, err = repo.GetByExternalID(ctx, boxID, externalID)
		if err != nil {
			return fmt.Errorf("error loading existing submission: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return sub, created, nil
}

// ListByBox returns the box's submissions newest first after checking owner
// may read the box.
func (s *SubmissionService) ListByBox(ctx context.Context, owner auth.Identity, boxID string) ([]*models.Submission, error) {
	if _, err := authorizeBoxAccess(ctx, s.repomanager.Boxes(s.db), owner, boxID, boxes.LockNone); err != nil {
		return nil, err
	}

	list, err := s.repomanager.Submissions(s.db).ListByBox(ctx, boxID)
	if err != nil {
		return nil, fmt.Errorf("error listing submissions: %w", err)
	}
	return list, nil
}

// CountByBox does not check ownership; callers must have authorised access
// to the box already. Unknown boxes count zero.
func (s *SubmissionService) CountByBox(ctx context.Context, boxID string) (int64, error) {
	return countByBox(ctx, s.repomanager, s.db, boxID)
}

func countByBox(ctx context.Context, m repomanager.RepositoryManager, db dbx.DBTX, boxID string) (int64, error) {
	if _, err := uuid.Parse(boxID); err != nil {
		return 0, nil
	}
	n, err := m.Submissions(db).CountByBox(ctx, boxID)
	if err != nil {
		return 0, fmt.Errorf("error counting submissions: %w", err)
	}
	return n, nil
}

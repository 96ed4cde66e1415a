package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/feedbox/internal/common"
	"github.com/dmitrijs2005/feedbox/internal/dbx"
	"github.com/dmitrijs2005/feedbox/internal/server/auth"
	"github.com/dmitrijs2005/feedbox/internal/server/forms"
	"github.com/dmitrijs2005/feedbox/internal/server/models"
	"github.com/dmitrijs2005/feedbox/internal/server/repositories/boxes"
	"github.com/dmitrijs2005/feedbox/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// FormProvisioner creates the external form backing a new box.
type FormProvisioner interface {
	Provision(ctx context.Context, name string) (*forms.Form, error)
}

// BoxService manages the lifecycle of feedback boxes.
type BoxService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	provisioner FormProvisioner
	links       forms.Links
	now         func() time.Time
}

func NewBoxService(db *sql.DB, m repomanager.RepositoryManager, p FormProvisioner, links forms.Links) *BoxService {
	return &BoxService{
		db:          db,
		repomanager: m,
		provisioner: p,
		links:       links,
		now:         time.Now,
	}
}

// Create validates name, provisions a form for the box and persists it. A
// provisioning failure leaves nothing behind.
func (s *BoxService) Create(ctx context.Context, owner auth.Identity, name string, description string) (*models.FeedbackBox, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	form, err := s.provisioner.Provision(ctx, name)
	if err != nil {
		if !errors.Is(err, common.ErrorProvisioning) {
			err = fmt.Errorf("%w: %w", common.ErrorProvisioning, err)
		}
		return nil, err
	}

	box := &models.FeedbackBox{
		ID:          uuid.NewString(),
		UserID:      owner.UserID,
		Name:        name,
		Description: description,
		FormID:      form.FormID,
		CreatedAt:   s.now().UTC(),
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Boxes(tx).Create(ctx, box)
	})
	if err != nil {
		return nil, fmt.Errorf("error creating box: %w", err)
	}

	return s.decorate(box), nil
}

func (s *BoxService) Get(ctx context.Context, owner auth.Identity, id string) (*models.FeedbackBox, error) {
	box, err := authorizeBoxAccess(ctx, s.repomanager.Boxes(s.db), owner, id, boxes.LockNone)
	if err != nil {
		return nil, err
	}
	return s.decorate(box), nil
}

// List returns the owner's boxes, newest first.
func (s *BoxService) List(ctx context.Context, owner auth.Identity) ([]*models.FeedbackBox, error) {
	list, err := s.repomanager.Boxes(s.db).ListByUser(ctx, owner.UserID)
	if err != nil {
		return nil, fmt.Errorf("error listing boxes: %w", err)
	}
	for _, b := range list {
		s.decorate(b)
	}
	return list, nil
}

// Update changes name and/or description; nil leaves a field as is.
func (s *BoxService) Update(ctx context.Context, owner auth.Identity, id string, name *string, description *string) (*models.FeedbackBox, error) {
	if name != nil {
		if err := validateName(*name); err != nil {
			return nil, err
		}
	}

	var updated *models.FeedbackBox
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Boxes(tx)

		box, err := authorizeBoxAccess(ctx, repo, owner, id, boxes.LockUpdate)
		if err != nil {
			return err
		}

		newName, newDescription := box.Name, box.Description
		if name != nil {
			newName = *name
		}
		if description != nil {
			newDescription = *description
		}

		updated, err = repo.Update(ctx, box.ID, newName, newDescription)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.decorate(updated), nil
}

// Delete removes the box together with all of its submissions in one
// transaction.
func (s *BoxService) Delete(ctx context.Context, owner auth.Identity, id string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		box, err := authorizeBoxAccess(ctx, s.repomanager.Boxes(tx), owner, id, boxes.LockUpdate)
		if err != nil {
			return err
		}
		if _, err := s.repomanager.Submissions(tx).DeleteByBox(ctx, box.ID); err != nil {
			return fmt.Errorf("error deleting submissions: %w", err)
		}
		if err := s.repomanager.Boxes(tx).Delete(ctx, box.ID); err != nil {
			return fmt.Errorf("error deleting box: %w", err)
		}
		return nil
	})
}

func (s *BoxService) decorate(box *models.FeedbackBox) *models.FeedbackBox {
	return decorateBox(s.links, box)
}

// decorateBox fills in the links derived from the form id.
func decorateBox(links forms.Links, box *models.FeedbackBox) *models.FeedbackBox {
	box.QRCodeURL = links.QRCodeURL(box.FormID)
	box.FormURL = links.FormURL(box.FormID)
	return box
}

// authorizeBoxAccess loads the box and checks it belongs to owner. It is the
// only place ownership is decided. Malformed ids are reported as
// common.ErrorNotFound, foreign boxes as common.ErrorForbidden.
func authorizeBoxAccess(ctx context.Context, repo boxes.Repository, owner auth.Identity, id string, lock boxes.LockMode) (*models.FeedbackBox, error) {
	if owner.UserID == "" {
		return nil, common.ErrorUnauthorized
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	box, err := repo.GetByID(ctx, id, lock)
	if err != nil {
		return nil, err
	}
	if box.UserID != owner.UserID {
		return nil, common.ErrorForbidden
	}
	return box, nil
}

// validateName rejects only the empty name; anything else is stored as
// given.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", common.ErrorValidation)
	}
	return nil
}

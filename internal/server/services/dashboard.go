package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/feedbox/internal/common"
	"github.com/dmitrijs2005/feedbox/internal/server/auth"
	"github.com/dmitrijs2005/feedbox/internal/server/forms"
	"github.com/dmitrijs2005/feedbox/internal/server/models"
	"github.com/dmitrijs2005/feedbox/internal/server/repositories/repomanager"
	"golang.org/x/sync/errgroup"
)

// maxParallelCounts bounds the per-box count queries run at once.
const maxParallelCounts = 4

// DashboardService aggregates an owner's boxes and submissions. It only
// reads; figures computed while submissions arrive may or may not include
// them.
type DashboardService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	links       forms.Links
}

func NewDashboardService(db *sql.DB, m repomanager.RepositoryManager, links forms.Links) *DashboardService {
	return &DashboardService{db: db, repomanager: m, links: links}
}

// Summary returns the totals, the five most recent submissions across the
// owner's boxes and the per-box counts, boxes newest first.
func (s *DashboardService) Summary(ctx context.Context, owner auth.Identity) (*models.DashboardSummary, error) {
	if owner.UserID == "" {
		return nil, common.ErrorUnauthorized
	}

	var (
		list   []*models.FeedbackBox
		recent []*models.Activity
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		recent, err = s.repomanager.Submissions(s.db).RecentByUser(gctx, owner.UserID, common.RecentActivityLimit)
		if err != nil {
			return fmt.Errorf("error loading recent activity: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		list, err = s.repomanager.Boxes(s.db).ListByUser(gctx, owner.UserID)
		if err != nil {
			return fmt.Errorf("error listing boxes: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	overviews := make([]*models.BoxOverview, len(list))
	cg, cctx := errgroup.WithContext(ctx)
	cg.SetLimit(maxParallelCounts)
	for i, b := range list {
		cg.Go(func() error {
			n, err := countByBox(cctx, s.repomanager, s.db, b.ID)
			if err != nil {
				return err
			}
			overviews[i] = &models.BoxOverview{Box: decorateBox(s.links, b), SubmissionCount: n}
			return nil
		})
	}
	if err := cg.Wait(); err != nil {
		return nil, err
	}

	summary := &models.DashboardSummary{
		TotalBoxes:     len(list),
		RecentActivity: recent,
		Boxes:          overviews,
	}
	for _, o := range overviews {
		summary.TotalSubmissions += o.SubmissionCount
	}
	return summary, nil
}

package grpc

import (
	"time"

	"github.com/dmitrijs2005/feedbox/internal/server/models"
	"github.com/dmitrijs2005/feedbox/internal/server/services"
)

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	UserID string `json:"user_id"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type Box struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	FormID      string    `json:"form_id"`
	FormURL     string    `json:"form_url"`
	QRCodeURL   string    `json:"qr_code_url"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateBoxRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type GetBoxRequest struct {
	ID string `json:"id"`
}

// UpdateBoxRequest leaves absent (null) fields unchanged.
type UpdateBoxRequest struct {
	ID          string  `json:"id"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type DeleteBoxRequest struct {
	ID string `json:"id"`
}

type DeleteBoxResponse struct{}

type BoxResponse struct {
	Box *Box `json:"box"`
}

type ListBoxesRequest struct{}

type ListBoxesResponse struct {
	Boxes []*Box `json:"boxes"`
}

type Submission struct {
	ID           string         `json:"id"`
	SubmissionID string         `json:"submission_id"`
	BoxID        string         `json:"box_id"`
	Data         models.Payload `json:"data"`
	CreatedAt    time.Time      `json:"created_at"`
}

type ListSubmissionsRequest struct {
	BoxID string `json:"box_id"`
}

type ListSubmissionsResponse struct {
	Submissions []*Submission `json:"submissions"`
}

type Activity struct {
	Submission
	BoxName string `json:"box_name"`
}

type BoxOverview struct {
	Box             *Box  `json:"box"`
	SubmissionCount int64 `json:"submission_count"`
}

type DashboardSummaryRequest struct{}

type DashboardSummaryResponse struct {
	TotalBoxes       int            `json:"total_boxes"`
	TotalSubmissions int64          `json:"total_submissions"`
	RecentActivity   []*Activity    `json:"recent_activity"`
	Boxes            []*BoxOverview `json:"boxes"`
}

type ExportSubmissionsRequest struct {
	BoxID string `json:"box_id"`
}

type ExportSubmissionsResponse struct {
	Key             string    `json:"key"`
	URL             string    `json:"url"`
	SubmissionCount int       `json:"submission_count"`
	ExpiresAt       time.Time `json:"expires_at"`
}

func boxToWire(b *models.FeedbackBox) *Box {
	return &Box{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		FormID:      b.FormID,
		FormURL:     b.FormURL,
		QRCodeURL:   b.QRCodeURL,
		CreatedAt:   b.CreatedAt,
	}
}

func submissionToWire(s *models.Submission) *Submission {
	return &Submission{
		ID:           s.ID,
		SubmissionID: s.SubmissionID,
		BoxID:        s.FeedbackBoxID,
		Data:         s.Data,
		CreatedAt:    s.CreatedAt,
	}
}

func summaryToWire(s *models.DashboardSummary) *DashboardSummaryResponse {
	resp := &DashboardSummaryResponse{
		TotalBoxes:       s.TotalBoxes,
		TotalSubmissions: s.TotalSubmissions,
		RecentActivity:   make([]*Activity, 0, len(s.RecentActivity)),
		Boxes:            make([]*BoxOverview, 0, len(s.Boxes)),
	}
	for _, a := range s.RecentActivity {
		resp.RecentActivity = append(resp.RecentActivity, &Activity{
			Submission: *submissionToWire(&a.Submission),
			BoxName:    a.BoxName,
		})
	}
	for _, o := range s.Boxes {
		resp.Boxes = append(resp.Boxes, &BoxOverview{Box: boxToWire(o.Box), SubmissionCount: o.SubmissionCount})
	}
	return resp
}

func tokensToWire(p *services.TokenPair) *TokenResponse {
	return &TokenResponse{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
}

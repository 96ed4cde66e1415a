package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/feedbox/internal/common"
	"github.com/dmitrijs2005/feedbox/internal/server/auth"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors to gRPC status errors. Forbidden and
// NotFound share one code and message so a foreign box cannot be told
// apart from a missing one.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorForbidden), errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, common.ErrorProvisioning):
		s.logger.Warn(ctx, "form provisioning failed", "error", err)
		return status.Error(codes.Unavailable, "form provider unavailable")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	default:
		s.logger.Error(ctx, "request failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func (s *GRPCServer) Ping(ctx context.Context, req *PingRequest) (*PingResponse, error) {
	return &PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	u, err := s.svc.Users.Register(ctx, req.Username, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	s.logger.Info(ctx, "Registered", "username", u.UserName)
	return &RegisterResponse{UserID: u.ID}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	tokens, err := s.svc.Users.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return tokensToWire(tokens), nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *RefreshTokenRequest) (*TokenResponse, error) {
	tokens, err := s.svc.Users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return tokensToWire(tokens), nil
}

func (s *GRPCServer) CreateBox(ctx context.Context, req *CreateBoxRequest) (*BoxResponse, error) {
	owner, err := auth.ResolveCurrentUser(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	box, err := s.svc.Boxes.Create(ctx, owner, req.Name, req.Description)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	s.logger.Info(ctx, "Box created", "box_id", box.ID, "form_id", box.FormID)
	return &BoxResponse{Box: boxToWire(box)}, nil
}

func (s *GRPCServer) GetBox(ctx context.Context, req *GetBoxRequest) (*BoxResponse, error) {
	owner, err := auth.ResolveCurrentUser(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	box, err := s.svc.Boxes.Get(ctx, owner, req.ID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &BoxResponse{Box: boxToWire(box)}, nil
}

func (s *GRPCServer) ListBoxes(ctx context.Context, req *ListBoxesRequest) (*ListBoxesResponse, error) {
	owner, err := auth.ResolveCurrentUser(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	list, err := s.svc.Boxes.List(ctx, owner)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	resp := &ListBoxesResponse{Boxes: make([]*Box, 0, len(list))}
	for _, b := range list {
		resp.Boxes = append(resp.Boxes, boxToWire(b))
	}
	return resp, nil
}

func (s *GRPCServer) UpdateBox(ctx context.Context, req *UpdateBoxRequest) (*BoxResponse, error) {
	owner, err := auth.ResolveCurrentUser(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	box, err := s.svc.Boxes.Update(ctx, owner, req.ID, req.Name, req.Description)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &BoxResponse{Box: boxToWire(box)}, nil
}

func (s *GRPCServer) DeleteBox(ctx context.Context, req *DeleteBoxRequest) (*DeleteBoxResponse, error) {
	owner, err := auth.ResolveCurrentUser(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	if err := s.svc.Boxes.Delete(ctx, owner, req.ID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	s.logger.Info(ctx, "Box deleted", "box_id", req.ID)
	return &DeleteBoxResponse{}, nil
}

func (s *GRPCServer) ListSubmissions(ctx context.Context, req *ListSubmissionsRequest) (*ListSubmissionsResponse, error) {
	owner, err := auth.ResolveCurrentUser(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	list, err := s.svc.Submissions.ListByBox(ctx, owner, req.BoxID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	resp := &ListSubmissionsResponse{Submissions: make([]*Submission, 0, len(list))}
	for _, sub := range list {
		resp.Submissions = append(resp.Submissions, submissionToWire(sub))
	}
	return resp, nil
}

func (s *GRPCServer) DashboardSummary(ctx context.Context, req *DashboardSummaryRequest) (*DashboardSummaryResponse, error) {
	owner, err := auth.ResolveCurrentUser(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	summary, err := s.svc.Dashboard.Summary(ctx, owner)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return summaryToWire(summary), nil
}

func (s *GRPCServer) ExportSubmissions(ctx context.Context, req *ExportSubmissionsRequest) (*ExportSubmissionsResponse, error) {
	owner, err := auth.ResolveCurrentUser(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	exp, err := s.svc.Exports.Export(ctx, owner, req.BoxID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &ExportSubmissionsResponse{
		Key:             exp.Key,
		URL:             exp.URL,
		SubmissionCount: exp.SubmissionCount,
		ExpiresAt:       exp.ExpiresAt,
	}, nil
}

// Package grpc exposes the feedbox services over gRPC as
// feedbox.v1.FeedbackService.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/feedbox/internal/logging"
	"github.com/dmitrijs2005/feedbox/internal/server/auth"
	"github.com/dmitrijs2005/feedbox/internal/server/models"
	"github.com/dmitrijs2005/feedbox/internal/server/services"
	"google.golang.org/grpc"
)

type UserService interface {
	Register(ctx context.Context, username string, password string) (*models.User, error)
	Login(ctx context.Context, username string, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

type BoxService interface {
	Create(ctx context.Context, owner auth.Identity, name string, description string) (*models.FeedbackBox, error)
	Get(ctx context.Context, owner auth.Identity, id string) (*models.FeedbackBox, error)
	List(ctx context.Context, owner auth.Identity) ([]*models.FeedbackBox, error)
	Update(ctx context.Context, owner auth.Identity, id string, name *string, description *string) (*models.FeedbackBox, error)
	Delete(ctx context.Context, owner auth.Identity, id string) error
}

type SubmissionService interface {
	ListByBox(ctx context.Context, owner auth.Identity, boxID string) ([]*models.Submission, error)
}

type DashboardService interface {
	Summary(ctx context.Context, owner auth.Identity) (*models.DashboardSummary, error)
}

type ExportService interface {
	Export(ctx context.Context, owner auth.Identity, boxID string) (*services.Export, error)
}

// Services groups the business services the server dispatches to.
type Services struct {
	Users       UserService
	Boxes       BoxService
	Submissions SubmissionService
	Dashboard   DashboardService
	Exports     ExportService
}

type GRPCServer struct {
	address   string
	svc       Services
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, svc Services, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		svc:       svc,
		jwtSecret: []byte(secretKey),
	}
}

// NewServer builds the grpc.Server with interceptors installed and the
// service registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	srv := grpc.NewServer(opts...)
	RegisterFeedbackServiceServer(srv, s)
	return srv
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}

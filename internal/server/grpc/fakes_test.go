package grpc

import (
	"context"

	"github.com/dmitrijs2005/feedbox/internal/logging"
	"github.com/dmitrijs2005/feedbox/internal/server/auth"
	"github.com/dmitrijs2005/feedbox/internal/server/models"
	"github.com/dmitrijs2005/feedbox/internal/server/services"
)

type fakeUsers struct {
	regResp   *models.User
	regErr    error
	loginResp *services.TokenPair
	loginErr  error
	refResp   *services.TokenPair
	refErr    error
}

func (f *fakeUsers) Register(context.Context, string, string) (*models.User, error) {
	return f.regResp, f.regErr
}

func (f *fakeUsers) Login(context.Context, string, string) (*services.TokenPair, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeUsers) RefreshToken(context.Context, string) (*services.TokenPair, error) {
	return f.refResp, f.refErr
}

type fakeBoxes struct {
	box     *models.FeedbackBox
	list    []*models.FeedbackBox
	err     error
	owner   auth.Identity
	gotName *string
	gotDesc *string
	deleted string
}

func (f *fakeBoxes) Create(_ context.Context, owner auth.Identity, name, description string) (*models.FeedbackBox, error) {
	f.owner = owner
	f.gotName, f.gotDesc = &name, &description
	return f.box, f.err
}

func (f *fakeBoxes) Get(_ context.Context, owner auth.Identity, _ string) (*models.FeedbackBox, error) {
	f.owner = owner
	return f.box, f.err
}

func (f *fakeBoxes) List(_ context.Context, owner auth.Identity) ([]*models.FeedbackBox, error) {
	f.owner = owner
	return f.list, f.err
}

func (f *fakeBoxes) Update(_ context.Context, owner auth.Identity, _ string, name, description *string) (*models.FeedbackBox, error) {
	f.owner = owner
	f.gotName, f.gotDesc = name, description
	return f.box, f.err
}

func (f *fakeBoxes) Delete(_ context.Context, owner auth.Identity, id string) error {
	f.owner = owner
	f.deleted = id
	return f.err
}

type fakeSubmissions struct {
	list []*models.Submission
	err  error
}

func (f *fakeSubmissions) ListByBox(context.Context, auth.Identity, string) ([]*models.Submission, error) {
	return f.list, f.err
}

type fakeDashboard struct {
	summary *models.DashboardSummary
	err     error
}

func (f *fakeDashboard) Summary(context.Context, auth.Identity) (*models.DashboardSummary, error) {
	return f.summary, f.err
}

type fakeExports struct {
	out *services.Export
	err error
}

func (f *fakeExports) Export(context.Context, auth.Identity, string) (*services.Export, error) {
	return f.out, f.err
}

func newTestServer(svc Services) *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", logging.Nop{}, svc, "secret")
}

package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "feedbox.v1.FeedbackService"

// FeedbackServiceServer is the server API of feedbox.v1.FeedbackService.
type FeedbackServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*TokenResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*TokenResponse, error)
	CreateBox(context.Context, *CreateBoxRequest) (*BoxResponse, error)
	GetBox(context.Context, *GetBoxRequest) (*BoxResponse, error)
	ListBoxes(context.Context, *ListBoxesRequest) (*ListBoxesResponse, error)
	UpdateBox(context.Context, *UpdateBoxRequest) (*BoxResponse, error)
	DeleteBox(context.Context, *DeleteBoxRequest) (*DeleteBoxResponse, error)
	ListSubmissions(context.Context, *ListSubmissionsRequest) (*ListSubmissionsResponse, error)
	DashboardSummary(context.Context, *DashboardSummaryRequest) (*DashboardSummaryResponse, error)
	ExportSubmissions(context.Context, *ExportSubmissionsRequest) (*ExportSubmissionsResponse, error)
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// publicMethods can be called without an access token.
var publicMethods = map[string]struct{}{
	fullMethod("Ping"):         {},
	fullMethod("Register"):     {},
	fullMethod("Login"):        {},
	fullMethod("RefreshToken"): {},
}

func unary[Req, Resp any](name string, call func(FeedbackServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(FeedbackServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(FeedbackServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes feedbox.v1.FeedbackService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FeedbackServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Ping", FeedbackServiceServer.Ping),
		unary("Register", FeedbackServiceServer.Register),
		unary("Login", FeedbackServiceServer.Login),
		unary("RefreshToken", FeedbackServiceServer.RefreshToken),
		unary("CreateBox", FeedbackServiceServer.CreateBox),
		unary("GetBox", FeedbackServiceServer.GetBox),
		unary("ListBoxes", FeedbackServiceServer.ListBoxes),
		unary("UpdateBox", FeedbackServiceServer.UpdateBox),
		unary("DeleteBox", FeedbackServiceServer.DeleteBox),
		unary("ListSubmissions", FeedbackServiceServer.ListSubmissions),
		unary("DashboardSummary", FeedbackServiceServer.DashboardSummary),
		unary("ExportSubmissions", FeedbackServiceServer.ExportSubmissions),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "feedbox/v1/feedback.proto",
}

func RegisterFeedbackServiceServer(s grpc.ServiceRegistrar, srv FeedbackServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls feedbox.v1.FeedbackService using the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *Client, name string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, fullMethod(name), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c, "Ping", in, opts...)
}

func (c *Client) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c, "Register", in, opts...)
}

func (c *Client) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c, "Login", in, opts...)
}

func (c *Client) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c, "RefreshToken", in, opts...)
}

func (c *Client) CreateBox(ctx context.Context, in *CreateBoxRequest, opts ...grpc.CallOption) (*BoxResponse, error) {
	return invoke[BoxResponse](ctx, c, "CreateBox", in, opts...)
}

func (c *Client) GetBox(ctx context.Context, in *GetBoxRequest, opts ...grpc.CallOption) (*BoxResponse, error) {
	return invoke[BoxResponse](ctx, c, "GetBox", in, opts...)
}

func (c *Client) ListBoxes(ctx context.Context, in *ListBoxesRequest, opts ...grpc.CallOption) (*ListBoxesResponse, error) {
	return invoke[ListBoxesResponse](ctx, c, "ListBoxes", in, opts...)
}

func (c *Client) UpdateBox(ctx context.Context, in *UpdateBoxRequest, opts ...grpc.CallOption) (*BoxResponse, error) {
	return invoke[BoxResponse](ctx, c, "UpdateBox", in, opts...)
}

func (c *Client) DeleteBox(ctx context.Context, in *DeleteBoxRequest, opts ...grpc.CallOption) (*DeleteBoxResponse, error) {
	return invoke[DeleteBoxResponse](ctx, c, "DeleteBox", in, opts...)
}

func (c *Client) ListSubmissions(ctx context.Context, in *ListSubmissionsRequest, opts ...grpc.CallOption) (*ListSubmissionsResponse, error) {
	return invoke[ListSubmissionsResponse](ctx, c, "ListSubmissions", in, opts...)
}

func (c *Client) DashboardSummary(ctx context.Context, in *DashboardSummaryRequest, opts ...grpc.CallOption) (*DashboardSummaryResponse, error) {
	return invoke[DashboardSummaryResponse](ctx, c, "DashboardSummary", in, opts...)
}

func (c *Client) ExportSubmissions(ctx context.Context, in *ExportSubmissionsRequest, opts ...grpc.CallOption) (*ExportSubmissionsResponse, error) {
	return invoke[ExportSubmissionsResponse](ctx, c, "ExportSubmissions", in, opts...)
}

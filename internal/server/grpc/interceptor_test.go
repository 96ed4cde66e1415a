package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/feedbox/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func withToken(ctx context.Context, token string) context.Context {
	return metadata.NewIncomingContext(ctx, metadata.Pairs("access_token", token))
}

func TestInterceptor_PublicMethodsSkipAuth(t *testing.T) {
	s := newTestServer(Services{})

	for _, m := range []string{"Ping", "Register", "Login", "RefreshToken"} {
		called := false
		info := &grpc.UnaryServerInfo{FullMethod: fullMethod(m)}
		_, err := s.accessTokenInterceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
			called = true
			_, err := auth.ResolveCurrentUser(ctx)
			assert.Error(t, err)
			return "ok", nil
		})
		require.NoError(t, err, m)
		assert.True(t, called, m)
	}
}

func TestInterceptor_MissingToken(t *testing.T) {
	s := newTestServer(Services{})
	info := &grpc.UnaryServerInfo{FullMethod: fullMethod("ListBoxes")}

	_, err := s.accessTokenInterceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		t.Fatal("handler must not run")
		return nil, nil
	})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestInterceptor_BadTokens(t *testing.T) {
	s := newTestServer(Services{})
	info := &grpc.UnaryServerInfo{FullMethod: fullMethod("GetBox")}

	expired, err := auth.GenerateToken("u1", []byte("secret"), -time.Minute)
	require.NoError(t, err)
	foreign, err := auth.GenerateToken("u1", []byte("other"), time.Hour)
	require.NoError(t, err)

	tests := map[string]string{
		"expired": expired,
		"foreign": foreign,
		"garbage": "abc",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := s.accessTokenInterceptor(withToken(context.Background(), tok), nil, info, func(context.Context, any) (any, error) {
				t.Fatal("handler must not run")
				return nil, nil
			})
			assert.Equal(t, codes.Unauthenticated, status.Code(err))
		})
	}
}

func TestInterceptor_ValidTokenSetsIdentity(t *testing.T) {
	s := newTestServer(Services{})
	info := &grpc.UnaryServerInfo{FullMethod: fullMethod("DashboardSummary")}

	tok, err := auth.GenerateToken("user-42", []byte("secret"), time.Hour)
	require.NoError(t, err)

	resp, err := s.accessTokenInterceptor(withToken(context.Background(), tok), "req", info, func(ctx context.Context, req any) (any, error) {
		id, err := auth.ResolveCurrentUser(ctx)
		require.NoError(t, err)
		assert.Equal(t, "user-42", id.UserID)
		assert.Equal(t, "req", req)
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	s := newTestServer(Services{})
	info := &grpc.UnaryServerInfo{FullMethod: fullMethod("Ping")}

	_, err := s.loggingInterceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, status.Error(codes.NotFound, "not found")
	})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

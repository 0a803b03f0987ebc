package interceptor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"ubertool-booking/internal/security"
)

func TestAuthInterceptor_Unary(t *testing.T) {
	tm := security.NewTokenManager("0123456789abcdef0123456789abcdef", "")
	unary := NewAuthInterceptor(tm).Unary()

	var seenUser string
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		if v := md.Get("user-id"); len(v) > 0 {
			seenUser = v[0]
		}
		return "ok", nil
	}

	t.Run("Health Is Public", func(t *testing.T) {
		resp, err := unary(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}, handler)
		require.NoError(t, err)
		assert.Equal(t, "ok", resp)
	})

	t.Run("Missing Token", func(t *testing.T) {
		_, err := unary(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/ubertool.booking.v1.Bookings/Get"}, handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("Spoofed User Id Is Replaced", func(t *testing.T) {
		token, err := tm.GenerateAccessToken(42, "a@b.c", nil)
		require.NoError(t, err)
		ctx := metadata.NewIncomingContext(context.Background(),
			metadata.Pairs("authorization", "Bearer "+token, "user-id", "1"))

		_, err = unary(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/ubertool.booking.v1.Bookings/Get"}, handler)
		require.NoError(t, err)
		assert.Equal(t, "42", seenUser)
	})

	t.Run("Invalid Token", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer nope"))
		_, err := unary(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/ubertool.booking.v1.Bookings/Get"}, handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})
}

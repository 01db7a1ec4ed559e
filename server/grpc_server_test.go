package server

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/Kotlang/summitGo/auth"
	"github.com/Kotlang/summitGo/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	reflectionpb "google.golang.org/grpc/reflection/grpc_reflection_v1alpha"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func startGrpc(t *testing.T, issuer *auth.SessionIssuer) *grpc.ClientConn {
	lis := bufconn.Listen(1 << 20)
	srv := NewGrpcServer("bufnet", issuer, db.NewMemorySummitDb(nil))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return lis.Dial() }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestGrpcServer(t *testing.T) {
	issuer := auth.NewSessionIssuer(testPassword, "0123456789abcdef0123", time.Hour)
	conn := startGrpc(t, issuer)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	t.Run("health needs no token", func(t *testing.T) {
		res, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, res.Status)
	})

	listServices := func(ctx context.Context) error {
		stream, err := reflectionpb.NewServerReflectionClient(conn).ServerReflectionInfo(ctx)
		if err != nil {
			return err
		}
		err = stream.Send(&reflectionpb.ServerReflectionRequest{
			MessageRequest: &reflectionpb.ServerReflectionRequest_ListServices{ListServices: "*"},
		})
		// A rejected stream reports io.EOF on Send; the status comes from Recv.
		if err != nil && err != io.EOF {
			return err
		}
		_, err = stream.Recv()
		return err
	}

	t.Run("reflection needs admin token", func(t *testing.T) {
		err := listServices(ctx)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("reflection with admin token", func(t *testing.T) {
		token, _, err := issuer.Login(testPassword)
		require.NoError(t, err)
		authCtx := metadata.AppendToOutgoingContext(ctx, "authorization", "bearer "+token)
		assert.NoError(t, listServices(authCtx))
	})
}

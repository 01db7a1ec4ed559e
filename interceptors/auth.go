package interceptors

import (
	"context"
	"strings"

	"github.com/Kotlang/summitGo/auth"
	"github.com/Kotlang/summitGo/logger"
	grpc_auth "github.com/grpc-ecosystem/go-grpc-middleware/auth"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// Methods under these prefixes are served without a session token.
var publicMethodPrefixes = []string{
	"/grpc.health.v1.Health/",
}

func isPublicMethod(fullMethod string) bool {
	for _, prefix := range publicMethodPrefixes {
		if strings.HasPrefix(fullMethod, prefix) {
			return true
		}
	}
	return false
}

// AdminAuthFunc requires an admin session token on every method that is not
// public.
func AdminAuthFunc(issuer *auth.SessionIssuer) grpc_auth.AuthFunc {
	verifyToken := issuer.VerifyToken()

	return func(ctx context.Context) (context.Context, error) {
		method, ok := grpc.Method(ctx)
		if ok && isPublicMethod(method) {
			return ctx, nil
		}

		newCtx, err := verifyToken(ctx)
		if err != nil {
			logger.Warn("Rejected grpc call", zap.String("method", method), zap.Error(err))
			return nil, err
		}
		return newCtx, nil
	}
}

package interceptors

import (
	"github.com/Kotlang/summitGo/auth"
	"github.com/Kotlang/summitGo/logger"
	grpc_auth "github.com/grpc-ecosystem/go-grpc-middleware/auth"
	grpc_zap "github.com/grpc-ecosystem/go-grpc-middleware/logging/zap"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	grpc_ctxtags "github.com/grpc-ecosystem/go-grpc-middleware/tags"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func recoveryHandler(p interface{}) error {
	logger.Error("Recovered from panic in grpc handler", zap.Any("panic", p))
	return status.Error(codes.Internal, "internal server error")
}

func UnaryInterceptors(issuer *auth.SessionIssuer) []grpc.UnaryServerInterceptor {
	return []grpc.UnaryServerInterceptor{
		grpc_ctxtags.UnaryServerInterceptor(),
		grpc_zap.UnaryServerInterceptor(logger.Get()),
		grpc_auth.UnaryServerInterceptor(AdminAuthFunc(issuer)),
		grpc_recovery.UnaryServerInterceptor(grpc_recovery.WithRecoveryHandler(recoveryHandler)),
	}
}

func StreamInterceptors(issuer *auth.SessionIssuer) []grpc.StreamServerInterceptor {
	return []grpc.StreamServerInterceptor{
		grpc_ctxtags.StreamServerInterceptor(),
		grpc_zap.StreamServerInterceptor(logger.Get()),
		grpc_auth.StreamServerInterceptor(AdminAuthFunc(issuer)),
		grpc_recovery.StreamServerInterceptor(grpc_recovery.WithRecoveryHandler(recoveryHandler)),
	}
}

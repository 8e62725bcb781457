// ABOUTME: Constructs the gRPC server with keepalive settings and the interceptor chain
// ABOUTME: Shared by the gateway and the end-to-end tests

package rpc

import (
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"

	"github.com/2389/docket/internal/auth"
)

// NewGRPCServer returns a server whose unary calls pass the error interceptor
// and then the authentication gate. Services still have to be registered.
func NewGRPCServer(gate *auth.Gate, logger *slog.Logger, opts ...grpc.ServerOption) *grpc.Server {
	if logger == nil {
		logger = slog.Default()
	}
	base := []grpc.ServerOption{
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    15 * time.Second,
			Timeout: 5 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.ChainUnaryInterceptor(
			ErrorInterceptor(logger.With("component", "rpc")),
			auth.UnaryInterceptor(gate, logger.With("component", "auth")),
		),
	}
	return grpc.NewServer(append(base, opts...)...)
}

// ABOUTME: gRPC interceptor authenticating requests with bearer JWTs
// ABOUTME: Public methods bypass the gate; everything else gets a Principal in context

package auth

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/2389/docket/internal/errs"
)

// PublicMethods are the full gRPC method names that skip authentication.
var PublicMethods = []string{
	"/docket.AuthService/Login",
	"/docket.AuthService/Register",
	"/docket.AuthService/ValidateToken",
}

// IsPublicMethod reports whether fullMethod bypasses the gate.
func IsPublicMethod(fullMethod string) bool {
	for _, m := range PublicMethods {
		if m == fullMethod {
			return true
		}
	}
	return false
}

// logAuthFailure logs an authentication failure with structured context.
func logAuthFailure(logger *slog.Logger, ctx context.Context, reason string, attrs ...any) {
	if logger == nil {
		return
	}
	baseAttrs := []any{"reason", reason}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		baseAttrs = append(baseAttrs, "peer_addr", p.Addr.String())
	}
	baseAttrs = append(baseAttrs, attrs...)
	logger.Warn("auth failure", baseAttrs...)
}

// UnaryInterceptor returns a gRPC unary interceptor that authenticates requests.
// Failed calls are closed with codes.Unauthenticated before the handler runs.
func UnaryInterceptor(gate *Gate, logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if IsPublicMethod(info.FullMethod) {
			return handler(ctx, req)
		}

		p, err := authenticateMetadata(ctx, gate)
		if err != nil {
			logAuthFailure(logger, ctx, errs.KindOf(err).String(), "method", info.FullMethod, "error", err.Error())
			if errs.KindOf(err) == errs.KindUnauthenticated {
				return nil, status.Error(codes.Unauthenticated, errs.PublicMessage(err))
			}
			return nil, status.Error(codes.Internal, "internal error")
		}

		return handler(WithPrincipal(ctx, p), req)
	}
}

// authenticateMetadata extracts the bearer token from incoming metadata and
// runs it through the gate.
func authenticateMetadata(ctx context.Context, gate *Gate) (*Principal, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, errs.Unauthenticated(MsgMissingCredential)
	}

	authHeaders := md.Get("authorization")
	if len(authHeaders) == 0 {
		return nil, errs.Unauthenticated(MsgMissingCredential)
	}

	token, errMsg := extractBearerToken(authHeaders[0])
	if errMsg != "" {
		return nil, errs.Unauthenticated(errMsg)
	}
	return gate.Authenticate(ctx, token)
}

// ABOUTME: Exception interceptor translating domain errors into gRPC status codes
// ABOUTME: Recovers handler panics and keeps internal causes out of responses

package rpc

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/2389/docket/internal/errs"
)

// internalMessage is the only text an Internal failure ever carries.
const internalMessage = "internal error"

// CodeOf maps an error kind to its gRPC code.
func CodeOf(kind errs.Kind) codes.Code {
	switch kind {
	case errs.KindUnauthenticated:
		return codes.Unauthenticated
	case errs.KindPermissionDenied:
		return codes.PermissionDenied
	case errs.KindInvalidTransition:
		return codes.FailedPrecondition
	case errs.KindNotFound:
		return codes.NotFound
	case errs.KindAlreadyExists:
		return codes.AlreadyExists
	case errs.KindConflict:
		return codes.Aborted
	case errs.KindValidation:
		return codes.InvalidArgument
	default:
		return codes.Internal
	}
}

// ToStatus converts err into a gRPC status error. Errors that already carry a
// status pass through unchanged.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}

	kind := errs.KindOf(err)
	if kind == errs.KindInternal {
		return status.Error(codes.Internal, internalMessage)
	}
	return status.Error(CodeOf(kind), errs.PublicMessage(err))
}

// ErrorInterceptor converts handler errors with ToStatus, logging the cause of
// internal failures, and turns panics into Internal.
func ErrorInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic in handler",
					"method", info.FullMethod,
					"panic", r,
					"stack", string(debug.Stack()),
				)
				resp, err = nil, status.Error(codes.Internal, internalMessage)
			}
		}()

		resp, err = handler(ctx, req)
		if err == nil {
			return resp, nil
		}

		st := ToStatus(err)
		if status.Code(st) == codes.Internal {
			logger.Error("request failed", "method", info.FullMethod, "error", err)
		} else {
			logger.Debug("request rejected", "method", info.FullMethod, "code", status.Code(st).String(), "error", err)
		}
		return nil, st
	}
}

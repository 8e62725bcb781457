// ABOUTME: Tests for the exception interceptor and error-kind to status mapping
// ABOUTME: Checks every kind, opaque internal errors, and panic recovery

package rpc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/2389/docket/internal/errs"
	"github.com/2389/docket/internal/store"
	"github.com/2389/docket/internal/workflow"
)

func TestToStatus_Kinds(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
		msg  string
	}{
		{errs.Unauthenticated("invalid credential"), codes.Unauthenticated, "invalid credential"},
		{errs.PermissionDenied("nope"), codes.PermissionDenied, "nope"},
		{workflow.Validate(store.StatusApproved, store.StatusSubmitted), codes.FailedPrecondition, ""},
		{errs.NotFound("document not found"), codes.NotFound, "document not found"},
		{errs.AlreadyExists("email already registered"), codes.AlreadyExists, "email already registered"},
		{errs.Conflict("modified"), codes.Aborted, "modified"},
		{errs.Validation("title is required"), codes.InvalidArgument, "title is required"},
		{fmt.Errorf("wrapped: %w", errs.NotFound("gone")), codes.NotFound, "gone"},
		{context.Canceled, codes.Canceled, "request canceled"},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			st := status.Convert(ToStatus(tt.err))
			assert.Equal(t, tt.code, st.Code())
			if tt.msg != "" {
				assert.Equal(t, tt.msg, st.Message())
			}
		})
	}
}

func TestToStatus_InternalIsOpaque(t *testing.T) {
	for _, err := range []error{
		errors.New("disk on fire at /var/lib/docket"),
		errs.Internal("loading document", errors.New("SQLITE_BUSY")),
	} {
		st := status.Convert(ToStatus(err))
		assert.Equal(t, codes.Internal, st.Code())
		assert.Equal(t, "internal error", st.Message())
	}
}

func TestToStatus_PassesStatusThrough(t *testing.T) {
	in := status.Error(codes.Unauthenticated, "missing credential")
	assert.Equal(t, in, ToStatus(in))
	assert.NoError(t, ToStatus(nil))
}

func TestErrorInterceptor(t *testing.T) {
	interceptor := ErrorInterceptor(nil)
	info := &grpc.UnaryServerInfo{FullMethod: "/docket.DocumentService/GetDocument"}

	resp, err := interceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return "ok", nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "ok", resp)

	_, err = interceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return nil, errs.NotFound("document not found")
	})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = interceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		panic("boom")
	})
	st := status.Convert(err)
	assert.Equal(t, codes.Internal, st.Code())
	assert.Equal(t, "internal error", st.Message())
}

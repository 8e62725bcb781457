// ABOUTME: Client stubs for the docket gRPC services
// ABOUTME: Requests the JSON codec and attaches a bearer token to every call when set

package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
)

// Client calls every docket service over one connection.
type Client struct {
	cc    grpc.ClientConnInterface
	token string
}

// NewClient wraps an existing connection. token may be empty for public calls.
func NewClient(cc grpc.ClientConnInterface, token string) *Client {
	return &Client{cc: cc, token: token}
}

// Dial opens a plaintext connection to target. The caller must close the
// returned connection.
func Dial(target string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", target, err)
	}
	return conn, nil
}

// WithToken returns a copy of c that sends token.
func (c *Client) WithToken(token string) *Client {
	return &Client{cc: c.cc, token: token}
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
	}
	return c.cc.Invoke(ctx, method, in, out, grpc.CallContentSubtype(CodecName))
}

func (c *Client) Login(ctx context.Context, in *LoginRequest) (*AuthResponse, error) {
	out := new(AuthResponse)
	if err := c.invoke(ctx, AuthService_Login_FullMethodName, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, in *RegisterRequest) (*AuthResponse, error) {
	out := new(AuthResponse)
	if err := c.invoke(ctx, AuthService_Register_FullMethodName, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ValidateToken(ctx context.Context, in *ValidateTokenRequest) (*ValidateTokenResponse, error) {
	out := new(ValidateTokenResponse)
	if err := c.invoke(ctx, AuthService_ValidateToken_FullMethodName, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	out := new(User)
	if err := c.invoke(ctx, AuthService_Me_FullMethodName, &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateDocument(ctx context.Context, in *CreateDocumentRequest) (*Document, error) {
	out := new(Document)
	if err := c.invoke(ctx, DocumentService_CreateDocument_FullMethodName, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetDocument(ctx context.Context, in *GetDocumentRequest) (*Document, error) {
	out := new(Document)
	if err := c.invoke(ctx, DocumentService_GetDocument_FullMethodName, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListDocuments(ctx context.Context, in *ListDocumentsRequest) (*ListDocumentsResponse, error) {
	out := new(ListDocumentsResponse)
	if err := c.invoke(ctx, DocumentService_ListDocuments_FullMethodName, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateDocumentStatus(ctx context.Context, in *UpdateDocumentStatusRequest) (*Document, error) {
	out := new(Document)
	if err := c.invoke(ctx, DocumentService_UpdateDocumentStatus_FullMethodName, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddComment(ctx context.Context, in *AddCommentRequest) (*Comment, error) {
	out := new(Comment)
	if err := c.invoke(ctx, DocumentService_AddComment_FullMethodName, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SearchLegalDocuments(ctx context.Context, in *SearchLegalDocumentsRequest) (*SearchLegalDocumentsResponse, error) {
	out := new(SearchLegalDocumentsResponse)
	if err := c.invoke(ctx, LegalDocumentService_SearchLegalDocuments_FullMethodName, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ImportLegalDocument(ctx context.Context, in *ImportLegalDocumentRequest) (*ImportLegalDocumentResponse, error) {
	out := new(ImportLegalDocumentResponse)
	if err := c.invoke(ctx, LegalDocumentService_ImportLegalDocument_FullMethodName, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetLegalDocumentDetails(ctx context.Context, in *GetLegalDocumentDetailsRequest) (*Document, error) {
	out := new(Document)
	if err := c.invoke(ctx, LegalDocumentService_GetLegalDocumentDetails_FullMethodName, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListUsers(ctx context.Context) (*ListUsersResponse, error) {
	out := new(ListUsersResponse)
	if err := c.invoke(ctx, AdminService_ListUsers_FullMethodName, &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteUser(ctx context.Context, in *DeleteUserRequest) error {
	return c.invoke(ctx, AdminService_DeleteUser_FullMethodName, in, &emptypb.Empty{})
}

func (c *Client) ListAuditLog(ctx context.Context, in *ListAuditLogRequest) (*ListAuditLogResponse, error) {
	out := new(ListAuditLogResponse)
	if err := c.invoke(ctx, AdminService_ListAuditLog_FullMethodName, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

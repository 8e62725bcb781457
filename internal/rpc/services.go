// ABOUTME: Service descriptors for the docket gRPC services declared in proto/docket.proto
// ABOUTME: Written by hand in the shape protoc-gen-go-grpc would emit, over the JSON codec

package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// Fully-qualified service names.
const (
	AuthServiceName          = "docket.AuthService"
	DocumentServiceName      = "docket.DocumentService"
	LegalDocumentServiceName = "docket.LegalDocumentService"
	AdminServiceName         = "docket.AdminService"
)

// ProtoFile is the contract the descriptors below implement.
const ProtoFile = "docket.proto"

// Full method names, as seen by interceptors.
const (
	AuthService_Login_FullMethodName         = "/" + AuthServiceName + "/Login"
	AuthService_Register_FullMethodName      = "/" + AuthServiceName + "/Register"
	AuthService_ValidateToken_FullMethodName = "/" + AuthServiceName + "/ValidateToken"
	AuthService_Me_FullMethodName            = "/" + AuthServiceName + "/Me"

	DocumentService_CreateDocument_FullMethodName       = "/" + DocumentServiceName + "/CreateDocument"
	DocumentService_GetDocument_FullMethodName          = "/" + DocumentServiceName + "/GetDocument"
	DocumentService_ListDocuments_FullMethodName        = "/" + DocumentServiceName + "/ListDocuments"
	DocumentService_UpdateDocumentStatus_FullMethodName = "/" + DocumentServiceName + "/UpdateDocumentStatus"
	DocumentService_AddComment_FullMethodName           = "/" + DocumentServiceName + "/AddComment"

	LegalDocumentService_SearchLegalDocuments_FullMethodName    = "/" + LegalDocumentServiceName + "/SearchLegalDocuments"
	LegalDocumentService_ImportLegalDocument_FullMethodName     = "/" + LegalDocumentServiceName + "/ImportLegalDocument"
	LegalDocumentService_GetLegalDocumentDetails_FullMethodName = "/" + LegalDocumentServiceName + "/GetLegalDocumentDetails"

	AdminService_ListUsers_FullMethodName    = "/" + AdminServiceName + "/ListUsers"
	AdminService_DeleteUser_FullMethodName   = "/" + AdminServiceName + "/DeleteUser"
	AdminService_ListAuditLog_FullMethodName = "/" + AdminServiceName + "/ListAuditLog"
)

// AuthServiceServer is the server API for AuthService.
type AuthServiceServer interface {
	Login(context.Context, *LoginRequest) (*AuthResponse, error)
	Register(context.Context, *RegisterRequest) (*AuthResponse, error)
	ValidateToken(context.Context, *ValidateTokenRequest) (*ValidateTokenResponse, error)
	Me(context.Context, *emptypb.Empty) (*User, error)
}

// DocumentServiceServer is the server API for DocumentService.
type DocumentServiceServer interface {
	CreateDocument(context.Context, *CreateDocumentRequest) (*Document, error)
	GetDocument(context.Context, *GetDocumentRequest) (*Document, error)
	ListDocuments(context.Context, *ListDocumentsRequest) (*ListDocumentsResponse, error)
	UpdateDocumentStatus(context.Context, *UpdateDocumentStatusRequest) (*Document, error)
	AddComment(context.Context, *AddCommentRequest) (*Comment, error)
}

// LegalDocumentServiceServer is the server API for LegalDocumentService.
type LegalDocumentServiceServer interface {
	SearchLegalDocuments(context.Context, *SearchLegalDocumentsRequest) (*SearchLegalDocumentsResponse, error)
	ImportLegalDocument(context.Context, *ImportLegalDocumentRequest) (*ImportLegalDocumentResponse, error)
	GetLegalDocumentDetails(context.Context, *GetLegalDocumentDetailsRequest) (*Document, error)
}

// AdminServiceServer is the server API for AdminService. Every method is
// restricted to administrators.
type AdminServiceServer interface {
	ListUsers(context.Context, *emptypb.Empty) (*ListUsersResponse, error)
	DeleteUser(context.Context, *DeleteUserRequest) (*emptypb.Empty, error)
	ListAuditLog(context.Context, *ListAuditLogRequest) (*ListAuditLogResponse, error)
}

// unary builds a MethodDesc that decodes Req, runs the interceptor chain and
// dispatches to call on the registered implementation.
func unary[S, Req, Resp any](service, method string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
			}
			impl := srv.(S)
			if interceptor == nil {
				return call(impl, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(impl, ctx, req.(*Req))
			})
		},
	}
}

// AuthService_ServiceDesc is the grpc.ServiceDesc for AuthService.
var AuthService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Metadata:    ProtoFile,
	Methods: []grpc.MethodDesc{
		unary(AuthServiceName, "Login", AuthServiceServer.Login),
		unary(AuthServiceName, "Register", AuthServiceServer.Register),
		unary(AuthServiceName, "ValidateToken", AuthServiceServer.ValidateToken),
		unary(AuthServiceName, "Me", AuthServiceServer.Me),
	},
}

// DocumentService_ServiceDesc is the grpc.ServiceDesc for DocumentService.
var DocumentService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: DocumentServiceName,
	HandlerType: (*DocumentServiceServer)(nil),
	Metadata:    ProtoFile,
	Methods: []grpc.MethodDesc{
		unary(DocumentServiceName, "CreateDocument", DocumentServiceServer.CreateDocument),
		unary(DocumentServiceName, "GetDocument", DocumentServiceServer.GetDocument),
		unary(DocumentServiceName, "ListDocuments", DocumentServiceServer.ListDocuments),
		unary(DocumentServiceName, "UpdateDocumentStatus", DocumentServiceServer.UpdateDocumentStatus),
		unary(DocumentServiceName, "AddComment", DocumentServiceServer.AddComment),
	},
}

// LegalDocumentService_ServiceDesc is the grpc.ServiceDesc for LegalDocumentService.
var LegalDocumentService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: LegalDocumentServiceName,
	HandlerType: (*LegalDocumentServiceServer)(nil),
	Metadata:    ProtoFile,
	Methods: []grpc.MethodDesc{
		unary(LegalDocumentServiceName, "SearchLegalDocuments", LegalDocumentServiceServer.SearchLegalDocuments),
		unary(LegalDocumentServiceName, "ImportLegalDocument", LegalDocumentServiceServer.ImportLegalDocument),
		unary(LegalDocumentServiceName, "GetLegalDocumentDetails", LegalDocumentServiceServer.GetLegalDocumentDetails),
	},
}

// AdminService_ServiceDesc is the grpc.ServiceDesc for AdminService.
var AdminService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: AdminServiceName,
	HandlerType: (*AdminServiceServer)(nil),
	Metadata:    ProtoFile,
	Methods: []grpc.MethodDesc{
		unary(AdminServiceName, "ListUsers", AdminServiceServer.ListUsers),
		unary(AdminServiceName, "DeleteUser", AdminServiceServer.DeleteUser),
		unary(AdminServiceName, "ListAuditLog", AdminServiceServer.ListAuditLog),
	},
}

func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthService_ServiceDesc, srv)
}

func RegisterDocumentServiceServer(s grpc.ServiceRegistrar, srv DocumentServiceServer) {
	s.RegisterService(&DocumentService_ServiceDesc, srv)
}

func RegisterLegalDocumentServiceServer(s grpc.ServiceRegistrar, srv LegalDocumentServiceServer) {
	s.RegisterService(&LegalDocumentService_ServiceDesc, srv)
}

func RegisterAdminServiceServer(s grpc.ServiceRegistrar, srv AdminServiceServer) {
	s.RegisterService(&AdminService_ServiceDesc, srv)
}

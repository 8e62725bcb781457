// ABOUTME: gRPC service implementations adapting the account and document services
// ABOUTME: Reads the Principal placed in context by the auth interceptor and converts to wire messages

package rpc

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/2389/docket/internal/accounts"
	"github.com/2389/docket/internal/auth"
	"github.com/2389/docket/internal/documents"
	"github.com/2389/docket/internal/errs"
	"github.com/2389/docket/internal/legal"
	"github.com/2389/docket/internal/store"
	"github.com/2389/docket/internal/workflow"
)

// Services are the backends exposed over gRPC.
type Services struct {
	Accounts  *accounts.Service
	Documents *documents.Service
	Users     auth.UserResolver
	Logger    *slog.Logger
}

// Register registers every docket service on s.
func Register(s grpc.ServiceRegistrar, svc Services) {
	logger := svc.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "rpc")

	RegisterAuthServiceServer(s, &authServer{accounts: svc.Accounts})
	docs := &documentServer{docs: svc.Documents, users: svc.Users, logger: logger}
	RegisterDocumentServiceServer(s, docs)
	RegisterLegalDocumentServiceServer(s, &legalServer{documentServer: docs})
	RegisterAdminServiceServer(s, &adminServer{accounts: svc.Accounts, logger: logger})
}

// FileURL is the HTTP path serving a document's attachment.
func FileURL(documentID string) string {
	return "/api/documents/" + documentID + "/file"
}

type authServer struct {
	accounts *accounts.Service
}

func (s *authServer) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	res, err := s.accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: res.Token, User: toUser(res.User)}, nil
}

func (s *authServer) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	res, err := s.accounts.Register(ctx, accounts.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Department: req.Department,
		Role:       req.Role,
	})
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: res.Token, User: toUser(res.User)}, nil
}

func (s *authServer) ValidateToken(ctx context.Context, req *ValidateTokenRequest) (*ValidateTokenResponse, error) {
	user, ok := s.accounts.ValidateToken(ctx, req.Token)
	if !ok {
		return &ValidateTokenResponse{Valid: false}, nil
	}
	return &ValidateTokenResponse{Valid: true, User: toUser(user)}, nil
}

func (s *authServer) Me(ctx context.Context, _ *emptypb.Empty) (*User, error) {
	user, err := s.accounts.Me(ctx, auth.FromContext(ctx))
	if err != nil {
		return nil, err
	}
	return toUser(user), nil
}

type adminServer struct {
	accounts *accounts.Service
	logger   *slog.Logger
}

func (s *adminServer) ListUsers(ctx context.Context, _ *emptypb.Empty) (*ListUsersResponse, error) {
	users, err := s.accounts.ListUsers(ctx, auth.FromContext(ctx))
	if err != nil {
		return nil, err
	}
	resp := &ListUsersResponse{Users: make([]*User, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, toUser(u))
	}
	return resp, nil
}

func (s *adminServer) DeleteUser(ctx context.Context, req *DeleteUserRequest) (*emptypb.Empty, error) {
	actor := auth.FromContext(ctx)
	if strings.TrimSpace(req.UserID) == "" {
		return nil, errs.Validation("userId is required")
	}
	if err := s.accounts.DeleteUser(ctx, actor, req.UserID); err != nil {
		return nil, err
	}
	s.logger.Info("user deleted", "user_id", req.UserID, "actor", actor.ID)
	return &emptypb.Empty{}, nil
}

func (s *adminServer) ListAuditLog(ctx context.Context, req *ListAuditLogRequest) (*ListAuditLogResponse, error) {
	f := store.AuditFilter{
		ActorID:    optional(req.ActorID),
		TargetType: optional(req.TargetType),
		TargetID:   optional(req.TargetID),
		Limit:      req.Limit,
	}
	if a := strings.TrimSpace(req.Action); a != "" {
		action := store.AuditAction(a)
		f.Action = &action
	}
	if raw := strings.TrimSpace(req.Since); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, errs.Validation("since must be an RFC 3339 timestamp")
		}
		f.Since = &since
	}

	entries, err := s.accounts.ListAuditLog(ctx, auth.FromContext(ctx), f)
	if err != nil {
		return nil, err
	}
	resp := &ListAuditLogResponse{Entries: make([]*AuditEntry, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, &AuditEntry{
			ID:         e.ID,
			ActorID:    e.ActorID,
			Action:     string(e.Action),
			TargetType: e.TargetType,
			TargetID:   e.TargetID,
			Timestamp:  e.Timestamp,
			Detail:     e.Detail,
		})
	}
	return resp, nil
}

// optional returns nil for a blank filter value.
func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

type documentServer struct {
	docs   *documents.Service
	users  auth.UserResolver
	logger *slog.Logger
}

func (s *documentServer) CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*Document, error) {
	doc, err := s.docs.CreateDocument(ctx, auth.FromContext(ctx), documents.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Department:  req.Department,
		FileName:    req.FileName,
		FileType:    req.FileType,
		FileContent: req.FileContent,
		RequestID:   req.RequestID,
	})
	if err != nil {
		return nil, err
	}
	return toDocument(doc), nil
}

func (s *documentServer) GetDocument(ctx context.Context, req *GetDocumentRequest) (*Document, error) {
	return s.details(ctx, req.ID)
}

func (s *documentServer) details(ctx context.Context, id string) (*Document, error) {
	d, err := s.docs.GetDocument(ctx, auth.FromContext(ctx), id)
	if err != nil {
		return nil, err
	}

	names := newNameCache(s.users)
	out := toDocument(d.Document)
	out.AuthorName = names.lookup(ctx, d.Document.AuthorID)
	out.History = make([]*HistoryEntry, 0, len(d.History))
	for _, h := range d.History {
		out.History = append(out.History, &HistoryEntry{
			ID:        h.ID,
			Seq:       h.Seq,
			UserID:    h.UserID,
			UserName:  names.lookup(ctx, h.UserID),
			Status:    string(h.Status),
			Comment:   h.Comment,
			CreatedAt: h.CreatedAt,
		})
	}
	out.Comments = make([]*Comment, 0, len(d.Comments))
	for _, c := range d.Comments {
		wc := toComment(c)
		wc.UserName = names.lookup(ctx, c.UserID)
		out.Comments = append(out.Comments, wc)
	}
	return out, nil
}

func (s *documentServer) ListDocuments(ctx context.Context, req *ListDocumentsRequest) (*ListDocumentsResponse, error) {
	page, err := s.docs.ListDocuments(ctx, auth.FromContext(ctx), documents.ListFilter{
		Status:     req.Status,
		Department: req.Department,
	}, req.Page, req.Size)
	if err != nil {
		return nil, err
	}

	resp := &ListDocumentsResponse{
		Documents:     make([]*Document, 0, len(page.Documents)),
		Page:          page.Page,
		Size:          page.Size,
		TotalPages:    page.TotalPages,
		TotalElements: page.TotalElements,
	}
	for _, d := range page.Documents {
		resp.Documents = append(resp.Documents, toDocument(d))
	}
	return resp, nil
}

func (s *documentServer) UpdateDocumentStatus(ctx context.Context, req *UpdateDocumentStatusRequest) (*Document, error) {
	doc, _, err := s.docs.TransitionStatus(ctx, auth.FromContext(ctx), req.DocumentID, req.Status, req.Comment)
	if err != nil {
		return nil, err
	}
	return toDocument(doc), nil
}

func (s *documentServer) AddComment(ctx context.Context, req *AddCommentRequest) (*Comment, error) {
	p := auth.FromContext(ctx)
	c, err := s.docs.AddComment(ctx, p, req.DocumentID, req.Text)
	if err != nil {
		return nil, err
	}
	out := toComment(c)
	out.UserName = newNameCache(s.users).lookup(ctx, p.ID)
	return out, nil
}

type legalServer struct {
	*documentServer
}

func (s *legalServer) SearchLegalDocuments(ctx context.Context, req *SearchLegalDocumentsRequest) (*SearchLegalDocumentsResponse, error) {
	q := legal.Query{Text: req.Query, DocumentType: req.DocumentType}
	var err error
	if q.IssuedAfter, err = parseDate("issuedAfter", req.IssuedAfter); err != nil {
		return nil, err
	}
	if q.IssuedBefore, err = parseDate("issuedBefore", req.IssuedBefore); err != nil {
		return nil, err
	}

	entries, err := s.docs.SearchLegalDocuments(ctx, auth.FromContext(ctx), q)
	if err != nil {
		return nil, err
	}

	resp := &SearchLegalDocumentsResponse{Documents: make([]*LegalDocument, 0, len(entries))}
	for _, e := range entries {
		ld := &LegalDocument{
			Title:        e.Title,
			Description:  e.Description,
			SourceURL:    e.SourceURL,
			DocumentType: e.DocumentType,
		}
		if !e.IssuedAt.IsZero() {
			ld.IssuedAt = e.IssuedAt.Format(time.DateOnly)
		}
		resp.Documents = append(resp.Documents, ld)
	}
	return resp, nil
}

func (s *legalServer) ImportLegalDocument(ctx context.Context, req *ImportLegalDocumentRequest) (*ImportLegalDocumentResponse, error) {
	doc, err := s.docs.ImportLegalDocument(ctx, auth.FromContext(ctx), documents.ImportInput{
		SourceURL:   req.SourceURL,
		Title:       req.Title,
		Description: req.Description,
		Department:  req.Department,
	})
	if err != nil {
		return nil, err
	}
	return &ImportLegalDocumentResponse{
		Success:    true,
		DocumentID: doc.ID,
		Message:    "document imported",
	}, nil
}

func (s *legalServer) GetLegalDocumentDetails(ctx context.Context, req *GetLegalDocumentDetailsRequest) (*Document, error) {
	return s.details(ctx, req.DocumentID)
}

func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, errs.Validation("%s must be a date in YYYY-MM-DD form", field)
	}
	return t, nil
}

// nameCache resolves user display names once per request.
type nameCache struct {
	users auth.UserResolver
	names map[string]string
}

func newNameCache(users auth.UserResolver) *nameCache {
	return &nameCache{users: users, names: make(map[string]string)}
}

// lookup returns the user's name, or "" when the account is gone.
func (c *nameCache) lookup(ctx context.Context, id string) string {
	if c.users == nil || id == "" {
		return ""
	}
	if name, ok := c.names[id]; ok {
		return name
	}
	var name string
	if u, err := c.users.GetUser(ctx, id); err == nil {
		name = u.Name
	}
	c.names[id] = name
	return name
}

func toUser(u *store.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Department: u.Department,
		Role:       string(u.Role),
		CreatedAt:  u.CreatedAt,
	}
}

func toDocument(d *store.Document) *Document {
	out := &Document{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Department:  d.Department,
		AuthorID:    d.AuthorID,
		Status:      string(d.Status),
		SourceURL:   d.SourceURL,
		Version:     d.Version,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	targets := workflow.AllowedTargets(d.Status)
	out.AllowedTransitions = make([]string, 0, len(targets))
	for _, t := range targets {
		out.AllowedTransitions = append(out.AllowedTransitions, string(t))
	}
	if d.File != nil {
		out.FileName = d.File.Name
		out.FileType = d.File.Type
		out.FileSize = d.File.Size
		out.FileURL = FileURL(d.ID)
	}
	return out
}

func toComment(c *store.Comment) *Comment {
	return &Comment{
		ID:         c.ID,
		DocumentID: c.DocumentID,
		UserID:     c.UserID,
		Text:       c.Text,
		CreatedAt:  c.CreatedAt,
	}
}

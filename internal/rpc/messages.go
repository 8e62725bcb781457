// ABOUTME: Wire messages for the docket gRPC services
// ABOUTME: JSON field names follow the lowerCamelCase of the public API

package rpc

import "time"

// User is the public view of an account. Password hashes never leave the server.
type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Department string `json:"department"`
	Role       string `json:"role,omitempty"`
}

// AuthResponse is returned by Login and Register.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type ValidateTokenRequest struct {
	Token string `json:"token"`
}

type ValidateTokenResponse struct {
	Valid bool  `json:"valid"`
	User  *User `json:"user,omitempty"`
}

// HistoryEntry is one status change.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Seq       int64     `json:"seq"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	Status    string    `json:"status"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"date"`
}

type Comment struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"documentId"`
	UserID     string    `json:"userId"`
	UserName   string    `json:"userName,omitempty"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Document is a document as returned over the wire. History and Comments are
// filled only by single-document reads.
type Document struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	Department         string          `json:"department"`
	AuthorID           string          `json:"authorId"`
	AuthorName         string          `json:"authorName,omitempty"`
	Status             string          `json:"status"`
	FileName           string          `json:"fileName,omitempty"`
	FileType           string          `json:"fileType,omitempty"`
	FileSize           int64           `json:"fileSize,omitempty"`
	FileURL            string          `json:"fileUrl,omitempty"`
	SourceURL          string          `json:"sourceUrl,omitempty"`
	Version            int64           `json:"version"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
	// AllowedTransitions are the statuses the document may move to next.
	AllowedTransitions []string        `json:"allowedTransitions"`
	History            []*HistoryEntry `json:"statusHistory,omitempty"`
	Comments           []*Comment      `json:"comments,omitempty"`
}

type CreateDocumentRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Department  string `json:"department"`
	FileName    string `json:"fileName,omitempty"`
	FileType    string `json:"fileType,omitempty"`
	FileContent []byte `json:"fileContent,omitempty"`
	RequestID   string `json:"requestId,omitempty"`
}

type GetDocumentRequest struct {
	ID string `json:"id"`
}

type ListDocumentsRequest struct {
	Status     string `json:"status,omitempty"`
	Department string `json:"department,omitempty"`
	Page       int    `json:"page"`
	Size       int    `json:"size"`
}

type ListDocumentsResponse struct {
	Documents     []*Document `json:"documents"`
	Page          int         `json:"page"`
	Size          int         `json:"size"`
	TotalPages    int         `json:"totalPages"`
	TotalElements int         `json:"totalElements"`
}

type UpdateDocumentStatusRequest struct {
	DocumentID string `json:"documentId"`
	Status     string `json:"status"`
	Comment    string `json:"comment,omitempty"`
}

type AddCommentRequest struct {
	DocumentID string `json:"documentId"`
	Text       string `json:"text"`
}

// SearchLegalDocumentsRequest dates are YYYY-MM-DD and optional.
type SearchLegalDocumentsRequest struct {
	Query        string `json:"query,omitempty"`
	DocumentType string `json:"documentType,omitempty"`
	IssuedAfter  string `json:"issuedAfter,omitempty"`
	IssuedBefore string `json:"issuedBefore,omitempty"`
}

type LegalDocument struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	SourceURL    string `json:"sourceUrl"`
	DocumentType string `json:"documentType,omitempty"`
	IssuedAt     string `json:"issuedAt,omitempty"`
}

type SearchLegalDocumentsResponse struct {
	Documents []*LegalDocument `json:"documents"`
}

type ImportLegalDocumentRequest struct {
	SourceURL   string `json:"sourceUrl"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Department  string `json:"department"`
}

type ImportLegalDocumentResponse struct {
	Success    bool   `json:"success"`
	DocumentID string `json:"documentId"`
	Message    string `json:"message"`
}

type GetLegalDocumentDetailsRequest struct {
	DocumentID string `json:"documentId"`
}

type ListUsersResponse struct {
	Users []*User `json:"users"`
}

type DeleteUserRequest struct {
	UserID string `json:"userId"`
}

// ListAuditLogRequest filters are optional. Since is RFC 3339.
type ListAuditLogRequest struct {
	Action     string `json:"action,omitempty"`
	ActorID    string `json:"actorId,omitempty"`
	TargetType string `json:"targetType,omitempty"`
	TargetID   string `json:"targetId,omitempty"`
	Since      string `json:"since,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

type AuditEntry struct {
	ID         string         `json:"id"`
	ActorID    string         `json:"actorId"`
	Action     string         `json:"action"`
	TargetType string         `json:"targetType"`
	TargetID   string         `json:"targetId"`
	Timestamp  time.Time      `json:"timestamp"`
	Detail     map[string]any `json:"detail,omitempty"`
}

type ListAuditLogResponse struct {
	Entries []*AuditEntry `json:"entries"`
}

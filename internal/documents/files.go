// ABOUTME: Attachment download and Markdown rendering of document descriptions
// ABOUTME: Rendering escapes raw HTML so user-supplied descriptions cannot inject markup

package documents

import (
	"bytes"
	"context"
	"errors"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/2389/docket/internal/auth"
	"github.com/2389/docket/internal/errs"
	"github.com/2389/docket/internal/filestore"
	"github.com/2389/docket/internal/policy"
	"github.com/2389/docket/internal/store"
)

// File is a downloaded attachment.
type File struct {
	store.FileRef
	Data []byte
}

// markdown is safe for concurrent use; its configuration never changes.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// OpenFile returns the attachment of a document.
func (s *Service) OpenFile(ctx context.Context, p *auth.Principal, documentID string) (*File, error) {
	if err := s.authorize(p, policy.OpDownloadFile, policy.Resource{}); err != nil {
		return nil, err
	}
	doc, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.File == nil || s.files == nil {
		return nil, errs.NotFound("document has no file")
	}

	data, err := s.files.Open(ctx, doc.File.Ref)
	if errors.Is(err, filestore.ErrNotFound) {
		s.logger.Error("attachment missing from file store", "document_id", doc.ID, "ref", doc.File.Ref)
		return nil, errs.NotFound("file not found")
	}
	if err != nil {
		return nil, errs.Internal("reading file", err)
	}
	return &File{FileRef: *doc.File, Data: data}, nil
}

// RenderDescription returns the document description rendered from
// Markdown to HTML.
func (s *Service) RenderDescription(ctx context.Context, p *auth.Principal, documentID string) ([]byte, error) {
	if err := s.authorize(p, policy.OpGetDocument, policy.Resource{}); err != nil {
		return nil, err
	}
	doc, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return RenderMarkdown(doc.Description)
}

// RenderMarkdown converts src to HTML.
func RenderMarkdown(src string) ([]byte, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return nil, errs.Internal("rendering description", err)
	}
	return buf.Bytes(), nil
}

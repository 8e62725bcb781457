// ABOUTME: Tests for the document workflow service
// ABOUTME: Covers the end-to-end scenarios, validation limits, paging, idempotent create, files and legal import

package documents

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/docket/internal/audit"
	"github.com/2389/docket/internal/auth"
	"github.com/2389/docket/internal/dedupe"
	"github.com/2389/docket/internal/errs"
	"github.com/2389/docket/internal/filestore"
	"github.com/2389/docket/internal/legal"
	"github.com/2389/docket/internal/policy"
	"github.com/2389/docket/internal/store"
	"github.com/2389/docket/internal/workflow"
)

var (
	admin     = &auth.Principal{ID: "admin", Role: store.RoleAdmin, Department: "it"}
	legalHead = &auth.Principal{ID: "head", Role: store.RoleDepartmentHead, Department: "legal"}
	author    = &auth.Principal{ID: "author", Role: store.RoleUser, Department: "legal"}
	outsider  = &auth.Principal{ID: "outsider", Role: store.RoleUser, Department: "legal"}
)

type fixture struct {
	svc   *Service
	store *store.MockStore
	files *filestore.Store
}

func newFixture(t *testing.T, catalog legal.Catalog) *fixture {
	t.Helper()
	s := store.NewMockStore()
	files, err := filestore.New(t.TempDir(), 1024)
	require.NoError(t, err)
	requests := dedupe.New(time.Minute, 100)
	t.Cleanup(requests.Close)

	trail := audit.NewTrail(s)
	pol := policy.New()
	svc := NewService(Deps{
		Store:    s,
		Engine:   workflow.NewEngine(s, trail, pol, nil),
		Trail:    trail,
		Policy:   pol,
		Files:    files,
		Catalog:  catalog,
		Requests: requests,
	})
	return &fixture{svc: svc, store: s, files: files}
}

func (f *fixture) create(t *testing.T, p *auth.Principal) *store.Document {
	t.Helper()
	doc, err := f.svc.CreateDocument(context.Background(), p, CreateInput{
		Title:       "Supply contract",
		Description: "Annual **supply** agreement",
		Department:  "legal",
	})
	require.NoError(t, err)
	return doc
}

func TestScenarioA_CreateStartsInDraft(t *testing.T) {
	f := newFixture(t, nil)
	doc := f.create(t, author)

	assert.Equal(t, store.StatusDraft, doc.Status)
	details, err := f.svc.GetDocument(context.Background(), author, doc.ID)
	require.NoError(t, err)
	require.Len(t, details.History, 1)
	assert.Equal(t, workflow.CreatedComment, details.History[0].Comment)
	assert.Empty(t, details.Comments)
}

func TestScenarioB_AuthorSubmits(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	doc := f.create(t, author)

	updated, entry, err := f.svc.TransitionStatus(ctx, author, doc.ID, "SUBMITTED", "please review")
	require.NoError(t, err)
	assert.Equal(t, store.StatusSubmitted, updated.Status)
	assert.Equal(t, "please review", entry.Comment)

	history, err := f.svc.History(ctx, author, doc.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestScenarioC_UserWithoutStandingCannotApprove(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	doc := f.create(t, author)
	_, _, err := f.svc.TransitionStatus(ctx, author, doc.ID, "SUBMITTED", "")
	require.NoError(t, err)

	_, _, err = f.svc.TransitionStatus(ctx, outsider, doc.ID, "APPROVED", "")
	assert.ErrorIs(t, err, errs.ErrPermissionDenied)

	details, err := f.svc.GetDocument(ctx, author, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusSubmitted, details.Document.Status)
	assert.Len(t, details.History, 2)
}

func TestScenarioD_AdminCannotReopenApproved(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	doc := f.create(t, author)
	_, _, err := f.svc.TransitionStatus(ctx, author, doc.ID, "SUBMITTED", "")
	require.NoError(t, err)
	_, _, err = f.svc.TransitionStatus(ctx, legalHead, doc.ID, "APPROVED", "looks good")
	require.NoError(t, err)

	_, _, err = f.svc.TransitionStatus(ctx, admin, doc.ID, "SUBMITTED", "")
	assert.ErrorIs(t, err, errs.ErrInvalidTransition)
}

func TestScenarioE_LongCommentRejected(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	doc := f.create(t, author)

	_, err := f.svc.AddComment(ctx, author, doc.ID, strings.Repeat("a", 1001))
	assert.ErrorIs(t, err, errs.ErrValidation)

	comments, err := f.store.ListComments(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestAddComment_CountsCharactersNotBytes(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	doc := f.create(t, author)

	c, err := f.svc.AddComment(ctx, author, doc.ID, strings.Repeat("я", 1000))
	require.NoError(t, err)
	assert.Equal(t, doc.ID, c.DocumentID)

	_, err = f.svc.AddComment(ctx, author, doc.ID, "   ")
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = f.svc.AddComment(ctx, author, "missing", "hello")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestReadOperations_DepartmentHeadDenied(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	doc := f.create(t, author)

	_, err := f.svc.GetDocument(ctx, legalHead, doc.ID)
	assert.ErrorIs(t, err, errs.ErrPermissionDenied)
	_, err = f.svc.ListDocuments(ctx, legalHead, ListFilter{}, 0, 0)
	assert.ErrorIs(t, err, errs.ErrPermissionDenied)
	_, err = f.svc.AddComment(ctx, legalHead, doc.ID, "hi")
	assert.ErrorIs(t, err, errs.ErrPermissionDenied)

	// department heads can still create and act on their department's documents
	_, err = f.svc.CreateDocument(ctx, legalHead, CreateInput{Title: "Memo", Department: "legal"})
	assert.NoError(t, err)
}

func TestOperations_RequirePrincipal(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.CreateDocument(ctx, nil, CreateInput{Title: "x", Department: "legal"})
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
	_, err = f.svc.GetDocument(ctx, nil, "x")
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
	_, _, err = f.svc.TransitionStatus(ctx, nil, "x", "SUBMITTED", "")
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
}

func TestCreateDocument_Validation(t *testing.T) {
	f := newFixture(t, nil)
	tests := []struct {
		name string
		in   CreateInput
	}{
		{"blank title", CreateInput{Title: " ", Department: "legal"}},
		{"long title", CreateInput{Title: strings.Repeat("t", 256), Department: "legal"}},
		{"blank department", CreateInput{Title: "x"}},
		{"long description", CreateInput{Title: "x", Department: "legal", Description: strings.Repeat("d", 1001)}},
		{"file too large", CreateInput{Title: "x", Department: "legal", FileName: "a.bin", FileContent: make([]byte, 1025)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateDocument(context.Background(), author, tt.in)
			assert.ErrorIs(t, err, errs.ErrValidation)
		})
	}

	_, total, err := f.store.ListDocuments(context.Background(), store.DocumentFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCreateDocument_IdempotentRequestID(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	in := CreateInput{Title: "Lease", Department: "legal", RequestID: "req-42"}

	first, err := f.svc.CreateDocument(ctx, author, in)
	require.NoError(t, err)
	second, err := f.svc.CreateDocument(ctx, author, in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// the same id from another principal is a different request
	other, err := f.svc.CreateDocument(ctx, admin, in)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)

	_, total, err := f.store.ListDocuments(ctx, store.DocumentFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestCreateDocument_ConcurrentSameRequestID(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	in := CreateInput{Title: "Lease", Department: "legal", RequestID: "req-race"}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateDocument(ctx, author, in)
			if err != nil {
				assert.ErrorIs(t, err, errs.ErrConflict)
			}
		}()
	}
	wg.Wait()

	_, total, err := f.store.ListDocuments(ctx, store.DocumentFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestCreateDocument_FailedRequestCanBeRetried(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.CreateDocument(ctx, author, CreateInput{
		Title: "x", Department: "legal", FileName: "  ", FileContent: []byte("data"), RequestID: "retry",
	})
	assert.ErrorIs(t, err, errs.ErrValidation)

	doc, err := f.svc.CreateDocument(ctx, author, CreateInput{
		Title: "x", Department: "legal", FileName: "a.txt", FileContent: []byte("data"), RequestID: "retry",
	})
	require.NoError(t, err)
	require.NotNil(t, doc.File)
}

func TestOpenFile_RoundTrip(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	content := []byte("%PDF-1.4 contract body")

	doc, err := f.svc.CreateDocument(ctx, author, CreateInput{
		Title:       "With file",
		Department:  "legal",
		FileName:    "contract.pdf",
		FileType:    "application/pdf",
		FileContent: content,
	})
	require.NoError(t, err)
	require.NotNil(t, doc.File)
	assert.Equal(t, int64(len(content)), doc.File.Size)

	file, err := f.svc.OpenFile(ctx, outsider, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, content, file.Data)
	assert.Equal(t, "contract.pdf", file.Name)
	assert.Equal(t, "application/pdf", file.Type)

	plain := f.create(t, author)
	_, err = f.svc.OpenFile(ctx, author, plain.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRenderDescription(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	doc, err := f.svc.CreateDocument(ctx, author, CreateInput{
		Title:       "Markdown",
		Department:  "legal",
		Description: "Terms are **binding**.\n\n<script>alert(1)</script>",
	})
	require.NoError(t, err)

	html, err := f.svc.RenderDescription(ctx, author, doc.ID)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<strong>binding</strong>")
	assert.NotContains(t, string(html), "<script>")
}

func TestListDocuments_Paging(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	for range 12 {
		f.create(t, author)
	}
	_, err := f.svc.CreateDocument(ctx, author, CreateInput{Title: "HR memo", Department: "hr"})
	require.NoError(t, err)

	page, err := f.svc.ListDocuments(ctx, author, ListFilter{}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, page.Size)
	assert.Len(t, page.Documents, 10)
	assert.Equal(t, 13, page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)

	page, err = f.svc.ListDocuments(ctx, author, ListFilter{Department: "legal"}, 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Documents, 2)
	assert.Equal(t, 12, page.TotalElements)

	page, err = f.svc.ListDocuments(ctx, author, ListFilter{}, 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, page.Size)
	assert.Equal(t, 1, page.TotalPages)

	page, err = f.svc.ListDocuments(ctx, author, ListFilter{Status: "APPROVED"}, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Documents)
	assert.Equal(t, 0, page.TotalPages)

	_, err = f.svc.ListDocuments(ctx, author, ListFilter{Status: "ARCHIVED"}, 0, 10)
	assert.ErrorIs(t, err, errs.ErrValidation)
	_, err = f.svc.ListDocuments(ctx, author, ListFilter{}, -1, 10)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestTransitionStatus_Validation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	doc := f.create(t, author)

	_, _, err := f.svc.TransitionStatus(ctx, author, doc.ID, "ARCHIVED", "")
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, _, err = f.svc.TransitionStatus(ctx, author, doc.ID, "SUBMITTED", strings.Repeat("c", 1001))
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, _, err = f.svc.TransitionStatus(ctx, author, "missing", "SUBMITTED", "")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func newActServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/acts/395-1" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 banking law"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// actCatalog lists sourceURLs and fetches them over HTTP.
func actCatalog(sourceURLs ...string) *legal.StaticCatalog {
	entries := make([]legal.Entry, 0, len(sourceURLs))
	for _, u := range sourceURLs {
		entries = append(entries, legal.Entry{Title: "Act", SourceURL: u})
	}
	return legal.NewStaticCatalog(entries, legal.NewHTTPCatalog("", time.Second, 1024, nil))
}

func TestSearchLegalDocuments(t *testing.T) {
	f := newFixture(t, legal.NewStaticCatalog(legal.DefaultEntries, nil))
	ctx := context.Background()

	entries, err := f.svc.SearchLegalDocuments(ctx, author, legal.Query{Text: "currency"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Federal Law No. 173-FZ", entries[0].Title)

	_, err = f.svc.SearchLegalDocuments(ctx, author, legal.Query{
		IssuedAfter:  time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC),
		IssuedBefore: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = f.svc.SearchLegalDocuments(ctx, legalHead, legal.Query{})
	assert.ErrorIs(t, err, errs.ErrPermissionDenied)
}

func TestImportLegalDocument(t *testing.T) {
	srv := newActServer(t)
	sourceURL := srv.URL + "/acts/395-1"
	f := newFixture(t, actCatalog(sourceURL))
	ctx := context.Background()

	doc, err := f.svc.ImportLegalDocument(ctx, legalHead, ImportInput{
		SourceURL:  sourceURL,
		Title:      "Federal Law No. 395-1",
		Department: "legal",
	})
	require.NoError(t, err)
	assert.Equal(t, store.StatusDraft, doc.Status)
	assert.Equal(t, sourceURL, doc.SourceURL)
	assert.Equal(t, ImportedDescriptionPrefix+sourceURL, doc.Description)
	require.NotNil(t, doc.File)
	assert.Equal(t, "Federal Law No. 395-1.pdf", doc.File.Name)

	data, err := f.files.Open(ctx, doc.File.Ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 banking law"), data)

	action := store.AuditImportLegalDocument
	entries, err := f.store.ListAuditLog(ctx, store.AuditFilter{Action: &action})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, doc.ID, entries[0].TargetID)
}

func TestImportLegalDocument_Failures(t *testing.T) {
	srv := newActServer(t)
	f := newFixture(t, actCatalog(srv.URL+"/acts/395-1", srv.URL+"/acts/missing"))
	ctx := context.Background()

	_, err := f.svc.ImportLegalDocument(ctx, author, ImportInput{SourceURL: "not a url", Title: "x", Department: "legal"})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = f.svc.ImportLegalDocument(ctx, author, ImportInput{SourceURL: srv.URL + "/acts/unlisted", Title: "x", Department: "legal"})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = f.svc.ImportLegalDocument(ctx, author, ImportInput{SourceURL: srv.URL + "/acts/missing", Title: "x", Department: "legal"})
	assert.ErrorIs(t, err, errs.ErrInternal)

	_, total, err := f.store.ListDocuments(ctx, store.DocumentFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/swapcloset/swapcloset/internal/common"
	"github.com/swapcloset/swapcloset/internal/dbx"
	"github.com/swapcloset/swapcloset/internal/logging"
	"github.com/swapcloset/swapcloset/internal/models"
	"github.com/swapcloset/swapcloset/internal/repositories/categories"
	"github.com/swapcloset/swapcloset/internal/repositories/listings"
	"github.com/swapcloset/swapcloset/internal/repositories/profiles"
	"github.com/swapcloset/swapcloset/internal/storage"
)

type fakeCategories struct {
	categories.Repository
	category *models.Category
	err      error
	calls    int
}

func (f *fakeCategories) GetByName(ctx context.Context, name string) (*models.Category, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.category, nil
}

type fakeListings struct {
	listings.Repository
	err   error
	calls int
	got   *models.ListingRecord
}

func (f *fakeListings) Create(ctx context.Context, record *models.ListingRecord) (*models.ListingRecord, error) {
	f.calls++
	f.got = record
	if f.err != nil {
		return nil, f.err
	}
	record.ID = uuid.NewString()
	record.CreatedAt = time.Now()
	return record, nil
}

type fakeProfiles struct {
	profiles.Repository
	err   error
	calls int
}

func (f *fakeProfiles) IncrementItemsListed(ctx context.Context, subject string) error {
	f.calls++
	return f.err
}

type fakeRepoManager struct {
	categories *fakeCategories
	listings   *fakeListings
	profiles   *fakeProfiles
}

func (f *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (f *fakeRepoManager) Categories(db dbx.DBTX) categories.Repository       { return f.categories }
func (f *fakeRepoManager) Profiles(db dbx.DBTX) profiles.Repository           { return f.profiles }
func (f *fakeRepoManager) Listings(db dbx.DBTX) listings.Repository           { return f.listings }

type fakeUploader struct {
	result *models.BatchUploadResult
	err    error
	calls  int
}

func (f *fakeUploader) UploadBatch(ctx context.Context, files []models.CandidateFile, opts storage.UploadOptions) (*models.BatchUploadResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fixture struct {
	db       *sql.DB
	mock     sqlmock.Sqlmock
	manager  *fakeRepoManager
	uploader *fakeUploader
	service  *ListingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	manager := &fakeRepoManager{
		categories: &fakeCategories{category: &models.Category{ID: "cat-1", Name: "tops"}},
		listings:   &fakeListings{},
		profiles:   &fakeProfiles{},
	}
	uploader := &fakeUploader{}

	service := NewListingService(db, manager, uploader,
		storage.UploadOptions{Bucket: "media", Folder: "listings"}, logging.NewDiscardLogger())

	return &fixture{db: db, mock: mock, manager: manager, uploader: uploader, service: service}
}

func validDraft() *models.ListingDraft {
	return &models.ListingDraft{
		Title:         "Wool coat",
		CategoryName:  "tops",
		Tags:          []string{"winter", "wool"},
		TermsAccepted: true,
		Available:     true,
	}
}

func TestCreate_RejectsInvalidDraft(t *testing.T) {
	f := newFixture(t)

	longTag := strings.Repeat("x", models.MaxDraftTagLength+1)
	manyFiles := make([]models.CandidateFile, models.MaxDraftFiles+1)
	for i := range manyFiles {
		manyFiles[i] = models.CandidateFile{Name: "f.jpg", Data: []byte{1}}
	}
	manyTags := make([]string, models.MaxDraftTags+1)
	for i := range manyTags {
		manyTags[i] = "tag"
	}

	tests := []struct {
		name  string
		draft func() *models.ListingDraft
	}{
		{"nil draft", func() *models.ListingDraft { return nil }},
		{"empty title", func() *models.ListingDraft { d := validDraft(); d.Title = "  "; return d }},
		{"empty category", func() *models.ListingDraft { d := validDraft(); d.CategoryName = ""; return d }},
		{"terms not accepted", func() *models.ListingDraft { d := validDraft(); d.TermsAccepted = false; return d }},
		{"too many files", func() *models.ListingDraft { d := validDraft(); d.Files = manyFiles; return d }},
		{"too many tags", func() *models.ListingDraft { d := validDraft(); d.Tags = manyTags; return d }},
		{"tag too long", func() *models.ListingDraft { d := validDraft(); d.Tags = []string{longTag}; return d }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Create(context.Background(), tt.draft(), "user-1")
			if !errors.Is(err, common.ErrInvalidDraft) {
				t.Fatalf("want ErrInvalidDraft, got %v", err)
			}
		})
	}

	if f.manager.categories.calls != 0 || f.uploader.calls != 0 || f.manager.listings.calls != 0 {
		t.Fatalf("rejected drafts must not reach later steps: categories=%d uploads=%d persists=%d",
			f.manager.categories.calls, f.uploader.calls, f.manager.listings.calls)
	}
}

func TestCreate_RequiresOwner(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Create(context.Background(), validDraft(), "")
	if !errors.Is(err, common.ErrInvalidDraft) {
		t.Fatalf("want ErrInvalidDraft, got %v", err)
	}
}

// An unknown category stops the pipeline before any upload or persist.
func TestCreate_UnknownCategory(t *testing.T) {
	f := newFixture(t)
	f.manager.categories.err = common.ErrorNotFound

	draft := validDraft()
	draft.Files = []models.CandidateFile{{Name: "coat.jpg", Data: []byte{1}}}

	_, err := f.service.Create(context.Background(), draft, "user-1")
	if !errors.Is(err, common.ErrUnknownCategory) {
		t.Fatalf("want ErrUnknownCategory, got %v", err)
	}
	if f.uploader.calls != 0 {
		t.Fatalf("upload must not run after category failure, ran %d times", f.uploader.calls)
	}
	if f.manager.listings.calls != 0 {
		t.Fatalf("persist must not run after category failure, ran %d times", f.manager.listings.calls)
	}
}

// Every file failing upload aborts the creation; nothing is persisted.
func TestCreate_AllUploadsFailed(t *testing.T) {
	f := newFixture(t)
	f.uploader.result = &models.BatchUploadResult{
		TotalCount:   2,
		FailureCount: 2,
		Errors:       []string{"a.jpg: file size exceeds limit", "b.jpg: connection reset"},
	}

	draft := validDraft()
	draft.Files = []models.CandidateFile{
		{Name: "a.jpg", Data: []byte{1}},
		{Name: "b.jpg", Data: []byte{1}},
	}

	_, err := f.service.Create(context.Background(), draft, "user-1")
	if !errors.Is(err, common.ErrNoImagesUploaded) {
		t.Fatalf("want ErrNoImagesUploaded, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection reset") {
		t.Fatalf("error should carry the per-file messages, got %v", err)
	}
	if f.manager.listings.calls != 0 {
		t.Fatalf("persist must not run when no image survived, ran %d times", f.manager.listings.calls)
	}
}

// Partial upload success still creates the listing and reports the losses.
func TestCreate_PartialUploadSuccess(t *testing.T) {
	f := newFixture(t)
	f.uploader.result = &models.BatchUploadResult{
		TotalCount:   3,
		SuccessCount: 2,
		FailureCount: 1,
		URLs:         []string{"http://store.local/media/a.jpg", "http://store.local/media/c.jpg"},
		Errors:       []string{"big.jpg: file size exceeds limit"},
	}
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	draft := validDraft()
	draft.Files = []models.CandidateFile{
		{Name: "a.jpg", Data: []byte{1}},
		{Name: "big.jpg", Data: []byte{1}},
		{Name: "c.jpg", Data: []byte{1}},
	}

	result, err := f.service.Create(context.Background(), draft, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Upload == nil || result.Upload.FailureCount != 1 {
		t.Fatalf("upload stats not surfaced: %+v", result.Upload)
	}
	if len(result.Listing.Images) != 2 {
		t.Fatalf("Images = %v, want the two surviving URLs", result.Listing.Images)
	}
	if err := f.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("tx expectations: %v", err)
	}
}

func TestCreate_NoFiles(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	result, err := f.service.Create(context.Background(), validDraft(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.uploader.calls != 0 {
		t.Fatalf("uploader must not run for a fileless draft, ran %d times", f.uploader.calls)
	}
	if result.Upload != nil {
		t.Fatalf("Upload should be nil, got %+v", result.Upload)
	}
	if result.Listing.Images != nil {
		t.Fatalf("Images should stay nil, got %v", result.Listing.Images)
	}
	if result.Listing.ID == "" || result.Listing.CreatedAt.IsZero() {
		t.Fatalf("record not finalized: %+v", result.Listing)
	}
}

func TestCreate_RecordDefaults(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	draft := validDraft()
	draft.Title = "  Wool coat  "

	result, err := f.service.Create(context.Background(), draft, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := result.Listing
	if got.Title != "Wool coat" {
		t.Fatalf("Title = %q, want trimmed", got.Title)
	}
	if got.Status != models.ListingStatusPending {
		t.Fatalf("Status = %q, want %q", got.Status, models.ListingStatusPending)
	}
	if got.ExchangePreference != models.ExchangeSwap {
		t.Fatalf("ExchangePreference = %q, want default %q", got.ExchangePreference, models.ExchangeSwap)
	}
	if got.CategoryID != "cat-1" || got.OwnerID != "user-1" {
		t.Fatalf("ownership not applied: %+v", got)
	}
	if got.Views != 0 || got.Saves != 0 {
		t.Fatalf("counters must start at zero: %+v", got)
	}
}

func TestCreate_PersistFailure(t *testing.T) {
	f := newFixture(t)
	f.manager.listings.err = errors.New("insert failed")
	f.uploader.result = &models.BatchUploadResult{
		TotalCount:   1,
		SuccessCount: 1,
		URLs:         []string{"http://store.local/media/a.jpg"},
	}
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	draft := validDraft()
	draft.Files = []models.CandidateFile{{Name: "a.jpg", Data: []byte{1}}}

	_, err := f.service.Create(context.Background(), draft, "user-1")
	if err == nil || !strings.Contains(err.Error(), "insert failed") {
		t.Fatalf("want wrapped persistence error, got %v", err)
	}
	if f.manager.profiles.calls != 0 {
		t.Fatalf("counter must not run after persist failure, ran %d times", f.manager.profiles.calls)
	}
	if err := f.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("tx expectations: %v", err)
	}
}

// A failing counter update is logged and swallowed; creation still succeeds.
func TestCreate_CounterFailureIsBestEffort(t *testing.T) {
	f := newFixture(t)
	f.manager.profiles.err = errors.New("update failed")
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	result, err := f.service.Create(context.Background(), validDraft(), "user-1")
	if err != nil {
		t.Fatalf("creation must survive a counter failure, got %v", err)
	}
	if f.manager.profiles.calls != 1 {
		t.Fatalf("counter update calls = %d, want 1", f.manager.profiles.calls)
	}
	if result.Listing.ID == "" {
		t.Fatalf("record not finalized: %+v", result.Listing)
	}
}

func TestCreate_UploaderBatchError(t *testing.T) {
	f := newFixture(t)
	f.uploader.err = common.ErrBucketRequired

	draft := validDraft()
	draft.Files = []models.CandidateFile{{Name: "a.jpg", Data: []byte{1}}}

	_, err := f.service.Create(context.Background(), draft, "user-1")
	if !errors.Is(err, common.ErrBucketRequired) {
		t.Fatalf("want batch-level error passed through, got %v", err)
	}
	if f.manager.listings.calls != 0 {
		t.Fatalf("persist must not run, ran %d times", f.manager.listings.calls)
	}
}

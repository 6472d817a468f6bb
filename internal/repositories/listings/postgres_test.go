package listings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/swapcloset/swapcloset/internal/models"
)

func newMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func sampleRecord() *models.ListingRecord {
	return &models.ListingRecord{
		OwnerID:            "user-1",
		CategoryID:         "cat-1",
		Title:              "Wool coat",
		ExchangePreference: models.ExchangeSwap,
		Status:             models.ListingStatusPending,
		Available:          true,
	}
}

func TestCreate_AssignsIDAndTimestamp(t *testing.T) {
	repo, mock := newMock(t)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO listings`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	record, err := repo.Create(context.Background(), sampleRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.ID == "" {
		t.Fatal("ID not assigned")
	}
	if !record.CreatedAt.Equal(now) {
		t.Fatalf("CreatedAt = %v, want %v", record.CreatedAt, now)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreate_KeepsProvidedID(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`INSERT INTO listings`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	record := sampleRecord()
	record.ID = "listing-42"

	got, err := repo.Create(context.Background(), record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "listing-42" {
		t.Fatalf("ID = %q, want listing-42", got.ID)
	}
}

func TestCreate_InsertsTags(t *testing.T) {
	repo, mock := newMock(t)

	record := sampleRecord()
	record.ID = "listing-42"
	record.Tags = []string{"winter", "wool"}

	mock.ExpectQuery(`INSERT INTO listings`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec(`INSERT INTO listing_tags`).
		WithArgs("listing-42", "winter").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO listing_tags`).
		WithArgs("listing-42", "wool").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if _, err := repo.Create(context.Background(), record); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreate_TagInsertFailure(t *testing.T) {
	repo, mock := newMock(t)

	record := sampleRecord()
	record.Tags = []string{"winter"}

	mock.ExpectQuery(`INSERT INTO listings`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec(`INSERT INTO listing_tags`).
		WillReturnError(errors.New("constraint violated"))

	if _, err := repo.Create(context.Background(), record); err == nil {
		t.Fatal("want tag insert error")
	}
}

func TestCreate_InsertError(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`INSERT INTO listings`).
		WillReturnError(errors.New("connection refused"))

	if _, err := repo.Create(context.Background(), sampleRecord()); err == nil {
		t.Fatal("want wrapped insert error")
	}
}

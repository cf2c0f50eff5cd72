package submissions_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/ryanmio/actblue-jail/internal/submissions"
	"github.com/ryanmio/actblue-jail/pkg/lifecycle"
	"github.com/ryanmio/actblue-jail/pkg/pagination"
	"github.com/ryanmio/actblue-jail/pkg/storage"
)

var submissionCols = []string{
	"id", "raw_text", "email_subject", "email_body", "image_key",
	"processing_status", "public", "sender_id", "sender_name", "ai_confidence",
	"created_at", "updated_at",
}

type fakeStorage struct {
	mu       sync.Mutex
	uploads  []string
	deletes  []string
	failNext bool
}

func (f *fakeStorage) Start(*lifecycle.Coordinator) error { return nil }

func (f *fakeStorage) Upload(_ context.Context, key string, _ io.Reader, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		return errors.New("upload failed")
	}
	f.uploads = append(f.uploads, key)
	return nil
}

func (f *fakeStorage) Download(context.Context, string) (io.ReadCloser, error) {
	return nil, storage.ErrNotFound
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, key)
	return nil
}

func (f *fakeStorage) Exists(context.Context, string) (bool, error) { return false, nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRepo(t *testing.T) (submissions.System, sqlmock.Sqlmock, *fakeStorage) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := &fakeStorage{}
	system := submissions.New(db, store, nil, testLogger(), pagination.Config{
		DefaultPageSize: 20,
		MaxPageSize:     100,
	})
	return system, mock, store
}

func submissionRow(id uuid.UUID) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(submissionCols).AddRow(
		id, "some text", nil, nil, "evidence/key.png",
		"ocr", true, nil, nil, nil,
		now, now,
	)
}

func TestFind(t *testing.T) {
	repo, mock, _ := newTestRepo(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM submissions WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(submissionRow(id))

	sub, err := repo.Find(context.Background(), id)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if sub.ID != id {
		t.Errorf("id: got %s, want %s", sub.ID, id)
	}
	if sub.ProcessingStatus != submissions.StatusOCR {
		t.Errorf("status: got %s", sub.ProcessingStatus)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestFindNotFound(t *testing.T) {
	repo, mock, _ := newTestRepo(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM submissions WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(submissionCols))

	_, err := repo.Find(context.Background(), id)
	if !errors.Is(err, submissions.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestCreateCompensatesFailedInsert(t *testing.T) {
	repo, mock, store := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO submissions`).
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), submissions.CreateCommand{
		Data:        []byte("png bytes"),
		Filename:    "shot.png",
		ContentType: "image/png",
	})
	if err == nil {
		t.Fatal("want error")
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.uploads) != 1 {
		t.Fatalf("uploads: got %d, want 1", len(store.uploads))
	}
	if len(store.deletes) != 1 || store.deletes[0] != store.uploads[0] {
		t.Errorf("uploaded blob not compensated: uploads=%v deletes=%v", store.uploads, store.deletes)
	}
}

func TestCreateRequiresContent(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	_, err := repo.Create(context.Background(), submissions.CreateCommand{})
	if !errors.Is(err, submissions.ErrInvalidFile) {
		t.Errorf("got %v, want ErrInvalidFile", err)
	}
}

func TestSetOCRText(t *testing.T) {
	repo, mock, _ := newTestRepo(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE submissions SET raw_text = \$1, processing_status = \$2`).
		WithArgs("extracted text", string(submissions.StatusOCR), id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetOCRText(context.Background(), id, "extracted text"); err != nil {
		t.Fatalf("set ocr text failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpdateStatus(t *testing.T) {
	repo, mock, _ := newTestRepo(t)
	id := uuid.New()

	t.Run("invalid status rejected before any query", func(t *testing.T) {
		err := repo.UpdateStatus(context.Background(), id, submissions.Status("bogus"))
		if !errors.Is(err, submissions.ErrInvalidStatus) {
			t.Errorf("got %v, want ErrInvalidStatus", err)
		}
	})

	t.Run("missing row maps to not found", func(t *testing.T) {
		mock.ExpectExec(`UPDATE submissions SET processing_status = \$1`).
			WithArgs(string(submissions.StatusError), id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(context.Background(), id, submissions.StatusError)
		if !errors.Is(err, submissions.ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})
}

func TestUpdateTextFields(t *testing.T) {
	repo, mock, _ := newTestRepo(t)
	id := uuid.New()

	t.Run("unknown field rejected", func(t *testing.T) {
		err := repo.UpdateTextFields(context.Background(), id, map[string]string{"sender_id": "x"})
		if err == nil {
			t.Error("want error for unknown field")
		}
	})

	t.Run("single field updates in transaction", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE submissions SET raw_text = \$1`).
			WithArgs("masked", id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.UpdateTextFields(context.Background(), id, map[string]string{"raw_text": "masked"})
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})

	t.Run("empty map is a no-op", func(t *testing.T) {
		if err := repo.UpdateTextFields(context.Background(), id, nil); err != nil {
			t.Errorf("no-op failed: %v", err)
		}
	})
}

func TestCreateDeletionRequest(t *testing.T) {
	repo, mock, _ := newTestRepo(t)
	id := uuid.New()

	t.Run("empty reason rejected", func(t *testing.T) {
		_, err := repo.CreateDeletionRequest(context.Background(), id, "   ")
		if !errors.Is(err, submissions.ErrEmptyReason) {
			t.Errorf("got %v, want ErrEmptyReason", err)
		}
	})

	t.Run("request and soft-hide share one transaction", func(t *testing.T) {
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM submissions WHERE id = \$1`).
			WithArgs(id).
			WillReturnRows(submissionRow(id))
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO deletion_requests`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "submission_id", "reason", "created_at"}).
				AddRow(uuid.New(), id, "take this down", now))
		mock.ExpectExec(`UPDATE submissions SET public = FALSE`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		req, err := repo.CreateDeletionRequest(context.Background(), id, "take this down")
		if err != nil {
			t.Fatalf("deletion request failed: %v", err)
		}
		if req.SubmissionID != id {
			t.Errorf("submission id: got %s, want %s", req.SubmissionID, id)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestList(t *testing.T) {
	repo, mock, _ := newTestRepo(t)
	id := uuid.New()
	status := "classified"

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM submissions WHERE processing_status = \$1 AND public = \$2`).
		WithArgs(status, true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT (.+) FROM submissions WHERE processing_status = \$1 AND public = \$2 ORDER BY created_at DESC`).
		WithArgs(status, true).
		WillReturnRows(submissionRow(id))

	result, err := repo.List(
		context.Background(),
		pagination.PageRequest{Page: 1, PageSize: 20},
		submissions.Filters{Status: &status},
	)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if result.Total != 1 || len(result.Data) != 1 {
		t.Errorf("total=%d data=%d, want 1/1", result.Total, len(result.Data))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestListHidesNonPublicByDefault(t *testing.T) {
	repo, mock, _ := newTestRepo(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM submissions WHERE public = \$1`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT (.+) FROM submissions WHERE public = \$1 ORDER BY created_at DESC`).
		WithArgs(true).
		WillReturnRows(submissionRow(id))

	if _, err := repo.List(
		context.Background(),
		pagination.PageRequest{Page: 1, PageSize: 20},
		submissions.Filters{},
	); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestListExplicitPublicFilterWins(t *testing.T) {
	repo, mock, _ := newTestRepo(t)
	id := uuid.New()
	hidden := false

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM submissions WHERE public = \$1`).
		WithArgs(false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT (.+) FROM submissions WHERE public = \$1 ORDER BY created_at DESC`).
		WithArgs(false).
		WillReturnRows(submissionRow(id))

	if _, err := repo.List(
		context.Background(),
		pagination.PageRequest{Page: 1, PageSize: 20},
		submissions.Filters{Public: &hidden},
	); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

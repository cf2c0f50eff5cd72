package comments_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/ryanmio/actblue-jail/internal/comments"
)

func newTestRepo(t *testing.T) (comments.System, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return comments.New(db, logger), mock
}

func TestInsertValidation(t *testing.T) {
	repo, _ := newTestRepo(t)
	id := uuid.New()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"empty", "", comments.ErrEmptyContent},
		{"whitespace only", "   \n\t", comments.ErrEmptyContent},
		{"over length cap", strings.Repeat("x", comments.MaxCommentLength+1), comments.ErrContentTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Insert(context.Background(), id, comments.KindUser, tt.content)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestInsertLengthCapCountsRunes(t *testing.T) {
	repo, mock := newTestRepo(t)
	id := uuid.New()

	// 240 multibyte runes must pass the cap
	content := strings.Repeat("é", comments.MaxCommentLength)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM comments`).
		WithArgs(id, string(comments.KindUser)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO comments`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "submission_id", "kind", "content", "created_at"}).
			AddRow(uuid.New(), id, "user", content, time.Now()))
	mock.ExpectCommit()

	if _, err := repo.Insert(context.Background(), id, comments.KindUser, content); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestInsertUserCap(t *testing.T) {
	repo, mock := newTestRepo(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM comments`).
		WithArgs(id, string(comments.KindUser)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(comments.MaxUserComments))
	mock.ExpectRollback()

	_, err := repo.Insert(context.Background(), id, comments.KindUser, "one too many")
	if !errors.Is(err, comments.ErrCapacityExceeded) {
		t.Errorf("got %v, want ErrCapacityExceeded", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestInsertSystemCommentBypassesCap(t *testing.T) {
	repo, mock := newTestRepo(t)
	id := uuid.New()

	// no count query expected for system comments
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO comments`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "submission_id", "kind", "content", "created_at"}).
			AddRow(uuid.New(), id, "system", "classification complete", time.Now()))
	mock.ExpectCommit()

	comment, err := repo.Insert(context.Background(), id, comments.KindSystem, "classification complete")
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if comment.Kind != comments.KindSystem {
		t.Errorf("kind: got %s", comment.Kind)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

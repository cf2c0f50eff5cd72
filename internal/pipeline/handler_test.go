package pipeline_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/ryanmio/actblue-jail/internal/comments"
	"github.com/ryanmio/actblue-jail/internal/pipeline"
	"github.com/ryanmio/actblue-jail/internal/redact"
	"github.com/ryanmio/actblue-jail/internal/submissions"
	"github.com/ryanmio/actblue-jail/pkg/routes"
)

type stubSystem struct {
	view            func(uuid.UUID) (*pipeline.View, error)
	classify        func(uuid.UUID, pipeline.ClassifyOptions) (*pipeline.ClassifyOutcome, error)
	submitComment   func(uuid.UUID, string) (*comments.Comment, error)
	requestDeletion func(uuid.UUID, string) (*submissions.DeletionRequest, error)
}

func (s *stubSystem) MarkOCRComplete(_ context.Context, id uuid.UUID, text string) (*submissions.Submission, error) {
	return &submissions.Submission{ID: id, RawText: &text}, nil
}

func (s *stubSystem) Classify(_ context.Context, id uuid.UUID, opts pipeline.ClassifyOptions) (*pipeline.ClassifyOutcome, error) {
	return s.classify(id, opts)
}

func (s *stubSystem) SubmitComment(_ context.Context, id uuid.UUID, content string) (*comments.Comment, error) {
	return s.submitComment(id, content)
}

func (s *stubSystem) RequestDeletion(_ context.Context, id uuid.UUID, reason string) (*submissions.DeletionRequest, error) {
	return s.requestDeletion(id, reason)
}

func (s *stubSystem) Redact(context.Context, uuid.UUID) (*redact.Result, error) {
	return &redact.Result{Skipped: true}, nil
}

func (s *stubSystem) View(_ context.Context, id uuid.UUID) (*pipeline.View, error) {
	return s.view(id)
}

func (s *stubSystem) Handler() *pipeline.Handler { return nil }

func newTestMux(system pipeline.System) *http.ServeMux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := http.NewServeMux()
	routes.Register(mux, pipeline.NewHandler(system, logger).Routes())
	return mux
}

func TestHandlerInvalidID(t *testing.T) {
	mux := newTestMux(&stubSystem{})

	req := httptest.NewRequest(http.MethodPost, "/submissions/not-a-uuid/classify", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestHandlerClassifyErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", submissions.ErrNotFound, http.StatusNotFound},
		{"no classifier", pipeline.ErrNoClassifier, http.StatusServiceUnavailable},
		{"no text", pipeline.ErrNoText, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTestMux(&stubSystem{
				classify: func(uuid.UUID, pipeline.ClassifyOptions) (*pipeline.ClassifyOutcome, error) {
					return nil, tt.err
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/submissions/"+uuid.NewString()+"/classify", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandlerClassifyOptions(t *testing.T) {
	var got pipeline.ClassifyOptions
	mux := newTestMux(&stubSystem{
		classify: func(_ uuid.UUID, opts pipeline.ClassifyOptions) (*pipeline.ClassifyOutcome, error) {
			got = opts
			return &pipeline.ClassifyOutcome{}, nil
		},
	})

	body := strings.NewReader(`{"include_existing_comments":true,"replace_existing":true}`)
	req := httptest.NewRequest(http.MethodPost, "/submissions/"+uuid.NewString()+"/classify", body)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if !got.IncludeExistingComments || !got.ReplaceExisting {
		t.Errorf("options not decoded from body: %+v", got)
	}
}

func TestHandlerCommentCap(t *testing.T) {
	mux := newTestMux(&stubSystem{
		submitComment: func(uuid.UUID, string) (*comments.Comment, error) {
			return nil, comments.ErrCapacityExceeded
		},
	})

	body := strings.NewReader(`{"content":"one too many"}`)
	req := httptest.NewRequest(http.MethodPost, "/submissions/"+uuid.NewString()+"/comments", body)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d, want 422", rec.Code)
	}
}

func TestHandlerDeletionRequest(t *testing.T) {
	id := uuid.New()
	mux := newTestMux(&stubSystem{
		requestDeletion: func(subID uuid.UUID, reason string) (*submissions.DeletionRequest, error) {
			return &submissions.DeletionRequest{ID: uuid.New(), SubmissionID: subID, Reason: reason}, nil
		},
	})

	body := strings.NewReader(`{"reason":"my address is visible"}`)
	req := httptest.NewRequest(http.MethodPost, "/submissions/"+id.String()+"/deletion-request", body)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201", rec.Code)
	}

	var parsed submissions.DeletionRequest
	if err := json.NewDecoder(rec.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if parsed.SubmissionID != id {
		t.Errorf("submission id: got %s, want %s", parsed.SubmissionID, id)
	}
}

// Package screenshot captures the landing pages behind allowlisted
// fundraising links so the evidence record preserves what the link resolved
// to at submission time.
package screenshot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ryanmio/actblue-jail/pkg/storage"
)

const (
	defaultTimeout   = 15 * time.Second
	maxConcurrent    = 4
	maxCaptureBytes  = 4 << 20
	captureUserAgent = "actblue-jail-capture/1.0"
)

// Service fetches landing pages and persists them to blob storage.
type Service struct {
	client  *http.Client
	storage storage.System
	logger  *slog.Logger
}

// New creates a capture service. A nil client gets a default with a
// request timeout.
func New(client *http.Client, store storage.System, logger *slog.Logger) *Service {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Service{
		client:  client,
		storage: store,
		logger:  logger.With("system", "screenshot"),
	}
}

// Capture fetches each URL concurrently and stores the response bodies under
// the submission's landing prefix. One failed fetch fails the whole capture;
// callers treat captures as best-effort side effects.
func (s *Service) Capture(ctx context.Context, submissionID uuid.UUID, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, target := range urls {
		g.Go(func() error {
			key := fmt.Sprintf("landing/%s/%d.html", submissionID, i)
			if err := s.captureOne(ctx, target, key); err != nil {
				return fmt.Errorf("capture %s: %w", target, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	s.logger.Info("landing pages captured", "submission_id", submissionID, "count", len(urls))
	return nil
}

func (s *Service) captureOne(ctx context.Context, target, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", captureUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, maxCaptureBytes)
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/html"
	}

	return s.storage.Upload(ctx, key, body, contentType)
}

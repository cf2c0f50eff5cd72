package submissions

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/ryanmio/actblue-jail/pkg/formatting"
	"github.com/ryanmio/actblue-jail/pkg/handlers"
	"github.com/ryanmio/actblue-jail/pkg/pagination"
	"github.com/ryanmio/actblue-jail/pkg/routes"
)

// Handler exposes submission CRUD operations over HTTP.
// Processing actions (ocr, classify, comments, deletion, redact)
// are routed by the pipeline handler.
type Handler struct {
	system        System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

func NewHandler(
	system System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		system:        system,
		logger:        logger,
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the submission route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/submissions",
		Routes: []routes.Route{
			{Method: http.MethodPost, Pattern: "", Handler: h.create},
			{Method: http.MethodGet, Pattern: "", Handler: h.list},
			{Method: http.MethodPost, Pattern: "/search", Handler: h.search},
			{Method: http.MethodGet, Pattern: "/{id}/image", Handler: h.image},
		},
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	cmd, err := h.parseCreate(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	sub, err := h.system.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.logger.Info("submission accepted",
		"id", sub.ID,
		"size", formatting.FormatBytes(int64(len(cmd.Data)), 1),
	)
	handlers.RespondJSON(w, http.StatusCreated, sub)
}

func (h *Handler) parseCreate(r *http.Request) (CreateCommand, error) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return CreateCommand{}, ErrFileTooLarge
		}
		return CreateCommand{}, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	cmd := CreateCommand{
		EmailSubject: formValue(r, "email_subject"),
		EmailBody:    formValue(r, "email_body"),
		SenderID:     formValue(r, "sender_id"),
		SenderName:   formValue(r, "sender_name"),
	}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// email-only submissions carry no screenshot
	case err != nil:
		return CreateCommand{}, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	default:
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return CreateCommand{}, ErrFileTooLarge
			}
			return CreateCommand{}, fmt.Errorf("read upload: %w", err)
		}

		cmd.Data = data
		cmd.Filename = header.Filename
		cmd.ContentType = header.Header.Get("Content-Type")
	}

	return cmd, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.system.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	var body struct {
		pagination.PageRequest
		Filters
	}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("decode search request: %w", err))
		return
	}

	result, err := h.system.List(r.Context(), body.PageRequest, body.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) image(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid submission id: %w", err))
		return
	}

	reader, err := h.system.DownloadImage(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Error("stream evidence image failed", "id", id, "error", err)
	}
}

func formValue(r *http.Request, key string) *string {
	if v := r.FormValue(key); v != "" {
		return &v
	}
	return nil
}

package pipeline

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/ryanmio/actblue-jail/pkg/handlers"
	"github.com/ryanmio/actblue-jail/pkg/routes"
)

// Handler exposes the pipeline operations over HTTP. It shares the
// /submissions prefix with the CRUD handler and owns the per-submission
// action routes plus the composite public view.
type Handler struct {
	system System
	logger *slog.Logger
}

func NewHandler(system System, logger *slog.Logger) *Handler {
	return &Handler{
		system: system,
		logger: logger,
	}
}

// Routes returns the pipeline route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/submissions",
		Routes: []routes.Route{
			{Method: http.MethodGet, Pattern: "/{id}", Handler: h.view},
			{Method: http.MethodPost, Pattern: "/{id}/ocr", Handler: h.ocr},
			{Method: http.MethodPost, Pattern: "/{id}/classify", Handler: h.classify},
			{Method: http.MethodPost, Pattern: "/{id}/comments", Handler: h.comment},
			{Method: http.MethodPost, Pattern: "/{id}/deletion-request", Handler: h.deletionRequest},
			{Method: http.MethodPost, Pattern: "/{id}/redact", Handler: h.redact},
		},
	}
}

func (h *Handler) view(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	view, err := h.system.View(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, view)
}

func (h *Handler) ocr(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("decode ocr result: %w", err))
		return
	}

	sub, err := h.system.MarkOCRComplete(r.Context(), id, body.Text)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, sub)
}

func (h *Handler) classify(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var opts ClassifyOptions
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("decode classify options: %w", err))
			return
		}
	}

	outcome, err := h.system.Classify(r.Context(), id, opts)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, outcome)
}

func (h *Handler) comment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("decode comment: %w", err))
		return
	}

	comment, err := h.system.SubmitComment(r.Context(), id, body.Content)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, comment)
}

func (h *Handler) deletionRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("decode deletion request: %w", err))
		return
	}

	req, err := h.system.RequestDeletion(r.Context(), id, body.Reason)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, req)
}

func (h *Handler) redact(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	result, err := h.system.Redact(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid submission id: %w", err))
		return uuid.Nil, false
	}
	return id, true
}

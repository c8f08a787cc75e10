package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/clubpulse/liveblog/internal/domain/liveblog"
	"github.com/clubpulse/liveblog/internal/platform/logging"
	"github.com/clubpulse/liveblog/internal/usecase"
)

type Handler struct {
	syncService *usecase.SyncService
	entries     liveblog.Repository
	logger      *logging.Logger
	validator   *validator.Validate
}

func NewHandler(syncService *usecase.SyncService, entries liveblog.Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		syncService: syncService,
		entries:     entries,
		logger:      logger,
		validator:   validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetLiveBlog returns the stored timeline for a match, editor entries
// included, in display order.
func (h *Handler) GetLiveBlog(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLiveBlog")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	if matchID == "" {
		writeError(ctx, w, fmt.Errorf("%w: match id is required", usecase.ErrInvalidInput))
		return
	}

	entries, err := h.entries.ListByMatch(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "list live blog entries failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]liveBlogEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, entryToDTO(entry))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

// RunLiveBlogSyncJob runs the batch sync over all matches needing one.
func (h *Handler) RunLiveBlogSyncJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunLiveBlogSyncJob")
	defer span.End()

	if h.syncService == nil {
		writeError(ctx, w, fmt.Errorf("%w: sync service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.syncService.SyncAll(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run live blog batch sync failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

// RunMatchSyncJob syncs a single match, from the fixture source by default or
// from a scraped page when page_url is set.
func (h *Handler) RunMatchSyncJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunMatchSyncJob")
	defer span.End()

	if h.syncService == nil {
		writeError(ctx, w, fmt.Errorf("%w: sync service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req matchSyncRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	var (
		outcome usecase.SyncOutcome
		err     error
	)
	if strings.TrimSpace(req.PageURL) != "" {
		outcome, err = h.syncService.SyncMatchFromText(ctx, req.MatchID, req.PageURL)
	} else {
		outcome, err = h.syncService.SyncMatchFromAPI(ctx, req.MatchID, req.ExternalFixtureID)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "run match sync failed", "match_id", req.MatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, outcome)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

type matchSyncRequest struct {
	MatchID           string `json:"match_id" validate:"required"`
	ExternalFixtureID int64  `json:"external_fixture_id" validate:"gte=0"`
	PageURL           string `json:"page_url" validate:"omitempty,url"`
}

type liveBlogEntryDTO struct {
	ID            string `json:"id"`
	MatchID       string `json:"matchId"`
	Minute        *int   `json:"minute,omitempty"`
	Type          string `json:"type"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	Important     bool   `json:"important"`
	Side          string `json:"side,omitempty"`
	AutoGenerated bool   `json:"autoGenerated"`
	CreatedAt     string `json:"createdAt"`
}

func entryToDTO(entry liveblog.Entry) liveBlogEntryDTO {
	dto := liveBlogEntryDTO{
		ID:            entry.ID,
		MatchID:       entry.MatchID,
		Minute:        entry.Minute,
		Type:          string(entry.Type),
		Title:         entry.Title,
		Content:       entry.Content,
		Important:     entry.Important,
		AutoGenerated: entry.AutoGenerated,
		CreatedAt:     entry.CreatedAt.UTC().Format(time.RFC3339),
	}
	if entry.Side != nil {
		dto.Side = string(*entry.Side)
	}
	return dto
}

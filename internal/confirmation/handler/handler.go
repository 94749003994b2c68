// Package handler wires the referee confirmation endpoints to the
// confirmation service. Transport concerns only; state logic lives in the
// service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"arbiter/internal/confirmation/service"
	id "arbiter/pkg/domain"
	dErrors "arbiter/pkg/domain-errors"
	"arbiter/pkg/platform/httputil"
	"arbiter/pkg/requestcontext"
)

// Service defines the confirmation operations the handler needs.
type Service interface {
	ListAssignedGames(ctx context.Context, userID id.UserID, page, limit int) (*service.GamesPage, error)
	SetConfirmation(ctx context.Context, userID id.UserID, gameID id.GameID, desired bool) error
	Reconcile(ctx context.Context, userID id.UserID) error
	GameReferees(ctx context.Context, gameID id.GameID) ([]service.RosterReferee, error)
}

// Handler is the thin HTTP layer over the confirmation service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a confirmation handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the confirmation endpoints. All routes assume the auth
// middleware already resolved the user.
func (h *Handler) Register(r chi.Router) {
	r.Get("/referees/games", h.HandleListGames)
	r.Patch("/referees/games/{gameID}/confirm", h.HandleConfirm)
	r.Patch("/referees/games/{gameID}/unconfirm", h.HandleUnconfirm)
	r.Post("/referees/games/sync", h.HandleSync)
	r.Get("/games/{gameID}/referees", h.HandleGameReferees)
}

// HandleListGames handles GET /referees/games.
func (h *Handler) HandleListGames(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := authedUser(ctx, w)
	if !ok {
		return
	}

	page, ok := queryInt(w, r, "page", 1)
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", 20)
	if !ok {
		return
	}

	result, err := h.service.ListAssignedGames(ctx, userID, page, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list assigned games failed",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleConfirm handles PATCH /referees/games/{gameID}/confirm.
func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	h.setConfirmation(w, r, true)
}

// HandleUnconfirm handles PATCH /referees/games/{gameID}/unconfirm.
func (h *Handler) HandleUnconfirm(w http.ResponseWriter, r *http.Request) {
	h.setConfirmation(w, r, false)
}

func (h *Handler) setConfirmation(w http.ResponseWriter, r *http.Request, desired bool) {
	ctx := r.Context()
	userID, ok := authedUser(ctx, w)
	if !ok {
		return
	}

	gameID, err := id.ParseGameID(chi.URLParam(r, "gameID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "game id must be a positive integer"))
		return
	}

	if err := h.service.SetConfirmation(ctx, userID, gameID, desired); err != nil {
		h.logger.ErrorContext(ctx, "set confirmation failed",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID,
			"game_id", gameID,
			"desired", desired,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSync handles POST /referees/games/sync: runs the reconciliation
// sweep for the calling user.
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := authedUser(ctx, w)
	if !ok {
		return
	}

	if err := h.service.Reconcile(ctx, userID); err != nil {
		h.logger.ErrorContext(ctx, "confirmation sync failed",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGameReferees handles GET /games/{gameID}/referees.
func (h *Handler) HandleGameReferees(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	gameID, err := id.ParseGameID(chi.URLParam(r, "gameID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "game id must be a positive integer"))
		return
	}

	roster, err := h.service.GameReferees(ctx, gameID)
	if err != nil {
		h.logger.ErrorContext(ctx, "game roster lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"game_id", gameID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, roster)
}

func authedUser(ctx context.Context, w http.ResponseWriter) (id.UserID, bool) {
	userID := requestcontext.UserID(ctx)
	if userID.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.UserID{}, false
	}
	return userID, true
}

func queryInt(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, name+" must be a positive integer"))
		return 0, false
	}
	return n, true
}

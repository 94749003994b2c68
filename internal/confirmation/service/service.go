// Package service implements the referee assignment confirmation workflow:
// listing a user's assigned games with confirmation status, toggling
// confirmations, and reconciling confirmations against fixture changes.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"arbiter/internal/assets"
	"arbiter/internal/audit"
	"arbiter/internal/confirmation/metrics"
	confmodels "arbiter/internal/confirmation/models"
	fixmodels "arbiter/internal/fixture/models"
	id "arbiter/pkg/domain"
	dErrors "arbiter/pkg/domain-errors"
	"arbiter/pkg/platform/sentinel"
	"arbiter/pkg/requestcontext"
)

// LinkStore resolves user↔referee links in the identity database.
type LinkStore interface {
	RefereeIDsForUser(ctx context.Context, userID id.UserID) ([]id.RefereeID, error)
}

// GameStore is the read-only view of the fixture database this workflow
// consumes.
type GameStore interface {
	ListForReferees(ctx context.Context, refereeIDs []id.RefereeID, page, limit int) ([]fixmodels.AssignedGame, int, error)
	LastUpdated(ctx context.Context, gameIDs []id.GameID) (map[id.GameID]time.Time, error)
	RefereesForGame(ctx context.Context, gameID id.GameID) ([]fixmodels.RosterEntry, error)
}

// ConfirmationStore owns the confirmation rows. SetAll must apply all
// per-referee changes atomically: either every intended change lands or
// none do.
type ConfirmationStore interface {
	FindActive(ctx context.Context, refereeIDs []id.RefereeID, gameIDs []id.GameID) ([]confmodels.Confirmation, error)
	ListActive(ctx context.Context, refereeIDs []id.RefereeID) ([]confmodels.Confirmation, error)
	SetAll(ctx context.Context, userID id.UserID, gameID id.GameID, refereeIDs []id.RefereeID, desired bool, now time.Time) error
	Invalidate(ctx context.Context, confirmationIDs []int64, now time.Time) error
}

// ContactDirectory resolves a referee's contact phone through their linked
// platform account, for the game roster endpoint. Optional: a nil directory
// leaves phones empty.
type ContactDirectory interface {
	PhoneForReferee(ctx context.Context, refereeID id.RefereeID) (string, error)
}

// Service is the single source of truth for "has referee R confirmed game
// G", reconciled against the acting user's referee identities.
type Service struct {
	links         LinkStore
	games         GameStore
	confirmations ConfirmationStore
	contacts      ContactDirectory
	locator       *assets.Locator
	logger        *slog.Logger
	metrics       *metrics.Metrics
	audit         audit.Publisher
	tracer        trace.Tracer
}

// Option configures optional service dependencies.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithAuditPublisher sets the audit event sink.
func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

// WithContactDirectory sets the phone lookup for roster responses.
func WithContactDirectory(d ContactDirectory) Option {
	return func(s *Service) { s.contacts = d }
}

// New constructs the confirmation service.
func New(links LinkStore, games GameStore, confirmations ConfirmationStore, locator *assets.Locator, opts ...Option) *Service {
	s := &Service{
		links:         links,
		games:         games,
		confirmations: confirmations,
		locator:       locator,
		logger:        slog.Default(),
		tracer:        otel.Tracer("arbiter/confirmation"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// resolveRefereeIDs looks up every referee identity linked to the user. An
// empty set is a normal outcome, not an error: the user simply is not a
// referee. The data model nominally allows several identities per user, so
// all downstream logic works over the set.
func (s *Service) resolveRefereeIDs(ctx context.Context, userID id.UserID) ([]id.RefereeID, error) {
	refereeIDs, err := s.links.RefereeIDsForUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "resolve referee identities")
	}
	return refereeIDs, nil
}

// ListAssignedGames returns the page of games any of the user's referee
// identities is assigned to, newest start time first, each enriched with
// reference data and the computed confirmed flag. A user with no referee
// identity gets an empty page with total 0.
func (s *Service) ListAssignedGames(ctx context.Context, userID id.UserID, page, limit int) (*GamesPage, error) {
	ctx, span := s.tracer.Start(ctx, "confirmation.ListAssignedGames",
		trace.WithAttributes(attribute.String("user_id", userID.String())))
	defer span.End()
	start := time.Now()

	page, limit = clampPage(page, limit)

	refereeIDs, err := s.resolveRefereeIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(refereeIDs) == 0 {
		return &GamesPage{Data: []GameSummary{}, Total: 0, Page: page, Limit: limit}, nil
	}

	games, total, err := s.games.ListForReferees(ctx, refereeIDs, page, limit)
	if err != nil {
		return nil, storeErr(err, "list assigned games")
	}

	gameIDs := make([]id.GameID, len(games))
	for i, g := range games {
		gameIDs[i] = g.ID
	}
	confirmations, err := s.confirmations.FindActive(ctx, refereeIDs, gameIDs)
	if err != nil {
		return nil, storeErr(err, "load confirmations")
	}

	// Confirmation is per-identity-set: the flag is true when any of the
	// user's referee identities confirmed the game.
	confirmed := make(map[id.GameID]bool, len(confirmations))
	for _, c := range confirmations {
		confirmed[c.GameID] = true
	}

	data := make([]GameSummary, len(games))
	for i, g := range games {
		data[i] = s.toGameSummary(g, confirmed[g.ID])
	}

	s.metrics.ObserveListDuration(time.Since(start).Seconds())
	return &GamesPage{Data: data, Total: total, Page: page, Limit: limit}, nil
}

// SetConfirmation drives the confirmation state for every referee identity
// of the user towards desired. Idempotent: repeating a call changes
// nothing; a user with no referee identity is a successful no-op.
func (s *Service) SetConfirmation(ctx context.Context, userID id.UserID, gameID id.GameID, desired bool) error {
	ctx, span := s.tracer.Start(ctx, "confirmation.SetConfirmation",
		trace.WithAttributes(
			attribute.String("user_id", userID.String()),
			attribute.Int64("game_id", int64(gameID)),
			attribute.Bool("desired", desired),
		))
	defer span.End()

	refereeIDs, err := s.resolveRefereeIDs(ctx, userID)
	if err != nil {
		return err
	}
	if len(refereeIDs) == 0 {
		s.logger.InfoContext(ctx, "confirmation no-op, user has no referee identity",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID,
		)
		return nil
	}

	now := requestcontext.Now(ctx)
	if err := s.confirmations.SetAll(ctx, userID, gameID, refereeIDs, desired, now); err != nil {
		return storeErr(err, "apply confirmation change")
	}

	action := audit.ActionConfirmationGranted
	if desired {
		s.metrics.IncGranted(len(refereeIDs))
	} else {
		action = audit.ActionConfirmationRevoked
		s.metrics.IncRevoked(len(refereeIDs))
	}
	for _, refereeID := range refereeIDs {
		s.emitAudit(ctx, audit.Event{
			Action:    action,
			Timestamp: now,
			UserID:    userID,
			RefereeID: refereeID,
			GameID:    gameID,
		})
	}

	s.logger.InfoContext(ctx, "confirmation state applied",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"game_id", gameID,
		"desired", desired,
		"referee_ids", len(refereeIDs),
	)
	return nil
}

// Reconcile soft-deletes every confirmation of the user's referee
// identities whose game was modified after the confirmation was last
// touched. The fixture changed underneath the referee, so the confirmation
// no longer reflects what they agreed to and must be re-obtained.
// Idempotent; a maintenance sweep rather than a user-facing query.
func (s *Service) Reconcile(ctx context.Context, userID id.UserID) error {
	ctx, span := s.tracer.Start(ctx, "confirmation.Reconcile",
		trace.WithAttributes(attribute.String("user_id", userID.String())))
	defer span.End()

	refereeIDs, err := s.resolveRefereeIDs(ctx, userID)
	if err != nil {
		return err
	}
	if len(refereeIDs) == 0 {
		return nil
	}

	confirmations, err := s.confirmations.ListActive(ctx, refereeIDs)
	if err != nil {
		return storeErr(err, "load confirmations")
	}
	if len(confirmations) == 0 {
		return nil
	}

	gameIDs := make([]id.GameID, 0, len(confirmations))
	seen := make(map[id.GameID]bool, len(confirmations))
	for _, c := range confirmations {
		if !seen[c.GameID] {
			seen[c.GameID] = true
			gameIDs = append(gameIDs, c.GameID)
		}
	}
	updatedAt, err := s.games.LastUpdated(ctx, gameIDs)
	if err != nil {
		return storeErr(err, "load game timestamps")
	}

	now := requestcontext.Now(ctx)
	var stale []int64
	var staleEvents []audit.Event
	for _, c := range confirmations {
		gameUpdated, ok := updatedAt[c.GameID]
		if !ok {
			continue
		}
		if c.StaleAgainst(gameUpdated) {
			stale = append(stale, c.ID)
			staleEvents = append(staleEvents, audit.Event{
				Action:    audit.ActionConfirmationInvalidated,
				Timestamp: now,
				UserID:    userID,
				RefereeID: c.RefereeID,
				GameID:    c.GameID,
				Reason:    "game updated after confirmation",
			})
		}
	}
	if len(stale) == 0 {
		return nil
	}

	if err := s.confirmations.Invalidate(ctx, stale, now); err != nil {
		return storeErr(err, "invalidate stale confirmations")
	}
	s.metrics.IncInvalidated(len(stale))
	for _, event := range staleEvents {
		s.emitAudit(ctx, event)
	}

	s.logger.InfoContext(ctx, "stale confirmations invalidated",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"count", len(stale),
	)
	return nil
}

// GameReferees returns the referee roster of a game: full name, position
// label, contact phone (when the referee has a linked account) and photo
// URL.
func (s *Service) GameReferees(ctx context.Context, gameID id.GameID) ([]RosterReferee, error) {
	ctx, span := s.tracer.Start(ctx, "confirmation.GameReferees",
		trace.WithAttributes(attribute.Int64("game_id", int64(gameID))))
	defer span.End()

	entries, err := s.games.RefereesForGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "game not found")
		}
		return nil, storeErr(err, "load game referees")
	}

	out := make([]RosterReferee, len(entries))
	for i, entry := range entries {
		phone := ""
		if s.contacts != nil {
			phone, err = s.contacts.PhoneForReferee(ctx, entry.RefereeID)
			if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
				return nil, storeErr(err, "resolve referee phone")
			}
		}
		out[i] = s.toRosterReferee(entry, phone)
	}
	return out, nil
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	event.ClientIP = requestcontext.ClientIP(ctx)
	event.UserAgent = requestcontext.UserAgent(ctx)
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"action", event.Action,
			"error", err,
		)
	}
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// storeErr classifies a store failure: unreachable stores surface as
// transient, everything else as internal. Retry policy belongs to callers.
func storeErr(err error, message string) error {
	if errors.Is(err, sentinel.ErrUnavailable) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, message)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, message)
}

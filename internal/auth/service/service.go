// Package service implements the Authenticator: phone+password login
// issuing JWTs, bearer-token validation, and logout via a revocation list.
// The confirmation workflow never sees tokens, only the resolved user ID.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"arbiter/internal/audit"
	"arbiter/internal/auth/models"
	"arbiter/internal/platform/middleware"
	id "arbiter/pkg/domain"
	dErrors "arbiter/pkg/domain-errors"
	"arbiter/pkg/platform/sentinel"
	"arbiter/pkg/requestcontext"
)

// UserStore resolves user accounts.
type UserStore interface {
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
}

// RevocationList tracks revoked token JTIs.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Service issues and validates access tokens.
type Service struct {
	users       UserStore
	revocations RevocationList
	signingKey  []byte
	tokenTTL    time.Duration
	logger      *slog.Logger
	audit       audit.Publisher
}

// Option configures optional service dependencies.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithAuditPublisher sets the audit event sink.
func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

// New constructs the auth service.
func New(users UserStore, revocations RevocationList, signingKey string, tokenTTL time.Duration, opts ...Option) *Service {
	s := &Service{
		users:       users,
		revocations: revocations,
		signingKey:  []byte(signingKey),
		tokenTTL:    tokenTTL,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginResult carries the issued token and its metadata.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	UserID    id.UserID
}

// Login verifies phone+password and issues an access token. Unknown phone
// and wrong password both yield the same unauthorized error so the response
// does not reveal which part failed.
func (s *Service) Login(ctx context.Context, phone, password string) (*LoginResult, error) {
	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.emitLoginFailed(ctx, id.UserID{}, "unknown phone")
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "look up user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.emitLoginFailed(ctx, user.ID, "wrong password")
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	if !user.CanAuthenticate() {
		s.emitLoginFailed(ctx, user.ID, "account blocked")
		return nil, dErrors.New(dErrors.CodeForbidden, "account is blocked")
	}

	now := requestcontext.Now(ctx)
	expiresAt := now.Add(s.tokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "sign token")
	}

	s.emitAudit(ctx, audit.Event{
		Action:    audit.ActionLoginSucceeded,
		Timestamp: now,
		UserID:    user.ID,
	})
	return &LoginResult{Token: token, ExpiresAt: expiresAt, UserID: user.ID}, nil
}

// ValidateToken checks signature, expiry, and the revocation list, and
// resolves the authenticated user. Implements middleware.TokenValidator.
func (s *Service) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	userID, err := id.ParseUserID(claims.Subject)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}

	revoked, err := s.revocations.IsRevoked(context.Background(), claims.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "check token revocation")
	}
	if revoked {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token revoked")
	}

	return &middleware.TokenClaims{UserID: userID, JTI: claims.ID}, nil
}

// Logout revokes the presented token for its remaining lifetime.
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		// Already invalid tokens have nothing to revoke.
		return nil
	}

	remaining := s.tokenTTL
	if err := s.revocations.Revoke(ctx, claims.JTI, remaining); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "revoke token")
	}

	s.emitAudit(ctx, audit.Event{
		Action:    audit.ActionLogout,
		Timestamp: requestcontext.Now(ctx),
		UserID:    claims.UserID,
	})
	return nil
}

func (s *Service) emitLoginFailed(ctx context.Context, userID id.UserID, reason string) {
	s.logger.WarnContext(ctx, "login failed",
		"request_id", requestcontext.RequestID(ctx),
		"reason", reason,
	)
	s.emitAudit(ctx, audit.Event{
		Action:    audit.ActionLoginFailed,
		Timestamp: requestcontext.Now(ctx),
		UserID:    userID,
		Reason:    reason,
	})
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

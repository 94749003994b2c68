package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"arbiter/internal/assets"
	authhandler "arbiter/internal/auth/handler"
	"arbiter/internal/auth/models"
	authservice "arbiter/internal/auth/service"
	"arbiter/internal/auth/store/revocation"
	"arbiter/internal/auth/store/user"
	confirmationhandler "arbiter/internal/confirmation/handler"
	confirmationservice "arbiter/internal/confirmation/service"
	confstore "arbiter/internal/confirmation/store"
	fixmodels "arbiter/internal/fixture/models"
	"arbiter/internal/fixture/store/games"
	"arbiter/internal/identity/store/link"
	id "arbiter/pkg/domain"
)

// End-to-end through the assembled router: login for a token, hit the
// protected listing with it, get rejected without it.

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()

	users := user.NewInMemory()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	userID := id.UserID(uuid.New())
	if err := users.Create(ctx, &models.User{
		ID:           userID,
		Phone:        "79990000001",
		PasswordHash: string(hash),
		Status:       models.UserStatusActive,
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	links := link.NewInMemory()
	if err := links.Link(ctx, userID, 500); err != nil {
		t.Fatalf("seed link: %v", err)
	}

	gameStore := games.NewInMemory()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	gameStore.SeedGame(fixmodels.AssignedGame{ID: 1, DateStart: start, DateUpdate: start}, fixmodels.StatusActive)
	gameStore.AssignReferee(1, 500, "referee")

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	authSvc := authservice.New(users, revocation.NewInMemory(), "test-signing-key", time.Hour)
	confirmationSvc := confirmationservice.New(links, gameStore, confstore.NewInMemory(), assets.NewLocator(""))

	return NewRouter(RouterConfig{
		Auth:         authhandler.New(authSvc, logger),
		Confirmation: confirmationhandler.New(confirmationSvc, logger),
		Validator:    authSvc,
		Logger:       logger,
	})
}

func obtainToken(t *testing.T, router http.Handler) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"phone": "79990000001", "password": "secret"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 logging in, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.Token
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/referees/games", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestTokenGrantsAccess(t *testing.T) {
	router := newTestRouter(t)
	token := obtainToken(t, router)

	req := httptest.NewRequest(http.MethodGet, "/referees/games", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", rec.Code, rec.Body.String())
	}

	var page struct {
		Total int `json:"total"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("expected one assigned game, got %d", page.Total)
	}
}

func TestLogoutClosesSession(t *testing.T) {
	router := newTestRouter(t)
	token := obtainToken(t, router)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 logging out, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/referees/games", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from healthz, got %d", rec.Code)
	}
}

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"railbooker/internal/railapi"
	"railbooker/pkg/logger"
)

func signedToken(t *testing.T, expiresIn time.Duration) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(expiresIn).Unix(),
	}).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func newLoginServer(t *testing.T, token string, logins *int64) *railapi.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(logins, 1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]string{"token": token},
		})
	}))
	t.Cleanup(srv.Close)
	return railapi.NewClient(srv.URL, 5*time.Second, logger.GetDefault())
}

func TestLoginPersistsToken(t *testing.T) {
	t.Parallel()

	var logins int64
	token := signedToken(t, time.Hour)
	api := newLoginServer(t, token, &logins)
	tokenFile := filepath.Join(t.TempDir(), "token.json")

	s := NewService(api, "01700000000", "secret", tokenFile, logger.GetDefault())
	if err := s.Login(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if api.Token() != token {
		t.Fatal("login must install the token on the client")
	}
	if _, err := os.Stat(tokenFile); err != nil {
		t.Fatalf("token file not written: %v", err)
	}
}

func TestEnsureAuthenticatedReusesValidToken(t *testing.T) {
	t.Parallel()

	var logins int64
	token := signedToken(t, time.Hour)
	api := newLoginServer(t, token, &logins)
	tokenFile := filepath.Join(t.TempDir(), "token.json")

	s := NewService(api, "01700000000", "secret", tokenFile, logger.GetDefault())
	if err := s.Login(context.Background()); err != nil {
		t.Fatal(err)
	}
	if logins != 1 {
		t.Fatalf("expected 1 login, got %d", logins)
	}

	// A second service instance over the same token file skips the login
	api2 := newLoginServer(t, token, &logins)
	s2 := NewService(api2, "01700000000", "secret", tokenFile, logger.GetDefault())
	if err := s2.EnsureAuthenticated(context.Background()); err != nil {
		t.Fatal(err)
	}
	if logins != 1 {
		t.Fatalf("expected persisted token reuse, got %d logins", logins)
	}
	if api2.Token() != token {
		t.Fatal("persisted token not installed")
	}
}

func TestEnsureAuthenticatedRefreshesExpiredToken(t *testing.T) {
	t.Parallel()

	var logins int64
	fresh := signedToken(t, time.Hour)
	api := newLoginServer(t, fresh, &logins)
	tokenFile := filepath.Join(t.TempDir(), "token.json")

	// Seed the file with an expired token for the same account
	expired := signedToken(t, -time.Hour)
	seed, _ := json.Marshal(map[string]interface{}{
		"token":         expired,
		"mobile_number": "01700000000",
		"saved_at":      time.Now().Add(-24 * time.Hour),
	})
	if err := os.WriteFile(tokenFile, seed, 0o600); err != nil {
		t.Fatal(err)
	}

	s := NewService(api, "01700000000", "secret", tokenFile, logger.GetDefault())
	if err := s.EnsureAuthenticated(context.Background()); err != nil {
		t.Fatal(err)
	}
	if logins != 1 {
		t.Fatalf("expected a fresh login, got %d", logins)
	}
	if api.Token() != fresh {
		t.Fatal("expired token must be replaced")
	}
}

func TestEnsureAuthenticatedIgnoresOtherAccountToken(t *testing.T) {
	t.Parallel()

	var logins int64
	token := signedToken(t, time.Hour)
	api := newLoginServer(t, token, &logins)
	tokenFile := filepath.Join(t.TempDir(), "token.json")

	seed, _ := json.Marshal(map[string]interface{}{
		"token":         signedToken(t, time.Hour),
		"mobile_number": "01899999999",
	})
	if err := os.WriteFile(tokenFile, seed, 0o600); err != nil {
		t.Fatal(err)
	}

	s := NewService(api, "01700000000", "secret", tokenFile, logger.GetDefault())
	if err := s.EnsureAuthenticated(context.Background()); err != nil {
		t.Fatal(err)
	}
	if logins != 1 {
		t.Fatal("a token for another account must not be reused")
	}
}

func TestClearToken(t *testing.T) {
	t.Parallel()

	var logins int64
	api := newLoginServer(t, signedToken(t, time.Hour), &logins)
	tokenFile := filepath.Join(t.TempDir(), "token.json")

	s := NewService(api, "01700000000", "secret", tokenFile, logger.GetDefault())
	if err := s.Login(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := s.ClearToken(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.Token() != "" {
		t.Fatal("token must be dropped from the client")
	}
	if _, err := os.Stat(tokenFile); !os.IsNotExist(err) {
		t.Fatal("token file must be removed")
	}

	// Clearing again is not an error
	if err := s.ClearToken(); err != nil {
		t.Fatalf("second clear failed: %v", err)
	}
}

func TestTokenExpired(t *testing.T) {
	t.Parallel()

	if tokenExpired(signedToken(t, time.Hour)) {
		t.Error("token valid for an hour reported expired")
	}
	if !tokenExpired(signedToken(t, -time.Minute)) {
		t.Error("expired token reported valid")
	}
	if !tokenExpired(signedToken(t, 30 * time.Second)) {
		t.Error("token within the skew window must count as expired")
	}
	if !tokenExpired("not-a-jwt") {
		t.Error("malformed token must count as expired")
	}
}

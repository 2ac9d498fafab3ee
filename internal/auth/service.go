// Package auth manages the session token used against the rail operator's
// API. Tokens are obtained with mobile number + password credentials and
// persisted to disk so repeated runs skip the login round trip.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"railbooker/internal/railapi"
	"railbooker/pkg/logger"
)

// Service interface defines authentication operations
type Service interface {
	EnsureAuthenticated(ctx context.Context) error
	Login(ctx context.Context) error
	ClearToken() error
}

type service struct {
	api          *railapi.Client
	mobileNumber string
	password     string
	tokenFile    string
	log          *logger.Logger
}

// NewService creates an auth service
func NewService(api *railapi.Client, mobileNumber, password, tokenFile string, log *logger.Logger) Service {
	return &service{
		api:          api,
		mobileNumber: mobileNumber,
		password:     password,
		tokenFile:    tokenFile,
		log:          log,
	}
}

// storedToken is the on-disk token format
type storedToken struct {
	Token        string    `json:"token"`
	MobileNumber string    `json:"mobile_number"`
	SavedAt      time.Time `json:"saved_at"`
}

// EnsureAuthenticated installs a usable token on the API client, reusing
// the persisted token when it is present, belongs to the configured
// account, and has not expired. Otherwise it logs in fresh.
func (s *service) EnsureAuthenticated(ctx context.Context) error {
	stored, err := s.loadToken()
	if err == nil && stored.MobileNumber == s.mobileNumber && !tokenExpired(stored.Token) {
		s.api.SetToken(stored.Token)
		s.log.Debug("reusing persisted session token")
		return nil
	}

	return s.Login(ctx)
}

// Login authenticates with the configured credentials and persists the
// resulting token
func (s *service) Login(ctx context.Context) error {
	token, err := s.api.Login(ctx, s.mobileNumber, s.password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	s.api.SetToken(token)

	if err := s.saveToken(token); err != nil {
		// A failed save only costs a re-login on the next run
		s.log.WithError(err).Warn("failed to persist session token")
	}

	s.log.Info("authenticated with rail API")
	return nil
}

// ClearToken drops the in-memory token and removes the persisted copy.
// Called when the remote API rejects the session mid-run.
func (s *service) ClearToken() error {
	s.api.SetToken("")

	if err := os.Remove(s.tokenFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

func (s *service) loadToken() (*storedToken, error) {
	data, err := os.ReadFile(s.tokenFile)
	if err != nil {
		return nil, err
	}

	var stored storedToken
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("corrupt token file: %w", err)
	}
	if stored.Token == "" {
		return nil, fmt.Errorf("token file has no token")
	}
	return &stored, nil
}

func (s *service) saveToken(token string) error {
	if dir := filepath.Dir(s.tokenFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(storedToken{
		Token:        token,
		MobileNumber: s.mobileNumber,
		SavedAt:      time.Now(),
	}, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.tokenFile, data, 0o600)
}

// tokenExpired inspects the token's exp claim without verifying the
// signature. The signature belongs to the remote API; locally we only
// care whether sending the token is pointless. Tokens within a minute of
// expiry are treated as expired to absorb clock skew.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}

	return time.Now().Add(time.Minute).After(exp.Time)
}

package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nomadhire/marketplace/internal/core/domain"
	"github.com/nomadhire/marketplace/internal/core/ports"
)

const defaultHTTPTimeout = 10 * time.Second

// SupabaseConfig holds the project URL and keys of a Supabase Auth instance.
type SupabaseConfig struct {
	URL            string
	AnonKey        string
	ServiceRoleKey string
	// JWTSecret enables local token verification; when empty every Verify
	// call goes to the Auth API.
	JWTSecret string
	Timeout   time.Duration
}

// Supabase delegates credentials to Supabase Auth.
type Supabase struct {
	cfg    SupabaseConfig
	client *http.Client
	log    zerolog.Logger
}

func NewSupabase(cfg SupabaseConfig, log zerolog.Logger) *Supabase {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	return &Supabase{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

type supabaseUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

// Verify prefers local HS256 verification and falls back to GET /auth/v1/user.
func (s *Supabase) Verify(ctx context.Context, token string) (*ports.Identity, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}

	if s.cfg.JWTSecret != "" {
		id, err := parseHS256(token, []byte(s.cfg.JWTSecret))
		if err == nil {
			return id, nil
		}
		s.log.Debug().Err(err).Msg("local token verification failed, asking supabase")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.URL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("supabase get user: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", s.cfg.AnonKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase get user: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, domain.ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("supabase get user: status %d: %s", resp.StatusCode, readMessage(resp.Body))
	}

	var u supabaseUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("supabase get user: decode: %w", err)
	}
	if u.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	return &ports.Identity{UserID: u.ID, Email: u.Email}, nil
}

// CreateUser registers an already-confirmed user through the admin API. No
// mail server is configured, so confirmation is skipped.
func (s *Supabase) CreateUser(ctx context.Context, email, password, username string) (*ports.Identity, error) {
	body, err := json.Marshal(map[string]any{
		"email":         email,
		"password":      password,
		"email_confirm": true,
		"user_metadata": map[string]string{"username": username},
	})
	if err != nil {
		return nil, fmt.Errorf("supabase create user: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL+"/auth/v1/admin/users", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("supabase create user: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.ServiceRoleKey)
	req.Header.Set("apikey", s.cfg.ServiceRoleKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase create user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, fmt.Errorf("%w: %s", domain.ErrSignupRejected, readMessage(resp.Body))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("supabase create user: status %d: %s", resp.StatusCode, readMessage(resp.Body))
	}

	var u supabaseUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("supabase create user: decode: %w", err)
	}
	if u.ID == "" {
		return nil, errors.New("supabase create user: response has no user id")
	}
	return &ports.Identity{UserID: u.ID, Email: u.Email}, nil
}

// readMessage extracts the human readable part of a Supabase error body,
// which uses msg, message, error_description or error depending on endpoint.
func readMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 4096))
	var body map[string]any
	if json.Unmarshal(raw, &body) == nil {
		for _, k := range []string{"msg", "message", "error_description", "error"} {
			if s, ok := body[k].(string); ok && s != "" {
				return s
			}
		}
	}
	return strings.TrimSpace(string(raw))
}

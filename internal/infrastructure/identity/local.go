package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nomadhire/marketplace/internal/core/domain"
	"github.com/nomadhire/marketplace/internal/core/ports"
)

const credentialPrefix = "credential:"

type credential struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Local keeps bcrypt credentials in the key-value store and issues its own
// HS256 tokens. Intended for development and tests where no Supabase project
// is available.
type Local struct {
	store    ports.KVStore
	secret   []byte
	tokenTTL time.Duration
}

func NewLocal(store ports.KVStore, jwtSecret string, tokenTTL time.Duration) *Local {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Local{store: store, secret: []byte(jwtSecret), tokenTTL: tokenTTL}
}

// CreateUser stores a new credential. The existence check and the write are
// separate calls, so two simultaneous signups for one email can both succeed;
// the later write wins. The credential is written before the user record;
// UserService.Signup reclaims it if the record write failed.
func (l *Local) CreateUser(ctx context.Context, email, password, _ string) (*ports.Identity, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrSignupRejected)
	}

	if _, err := l.store.Get(ctx, credentialPrefix+email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, ports.ErrKeyNotFound) {
		return nil, fmt.Errorf("load credential: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	cred := credential{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	b, err := json.Marshal(cred)
	if err != nil {
		return nil, err
	}
	if err := l.store.Set(ctx, credentialPrefix+email, b); err != nil {
		return nil, fmt.Errorf("save credential: %w", err)
	}
	return &ports.Identity{UserID: cred.UserID, Email: email}, nil
}

func (l *Local) Login(ctx context.Context, email, password string) (string, *ports.Identity, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	b, err := l.store.Get(ctx, credentialPrefix+email)
	if errors.Is(err, ports.ErrKeyNotFound) {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("load credential: %w", err)
	}

	var cred credential
	if err := json.Unmarshal(b, &cred); err != nil {
		return "", nil, fmt.Errorf("decode credential: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := l.generateToken(cred)
	if err != nil {
		return "", nil, err
	}
	return token, &ports.Identity{UserID: cred.UserID, Email: cred.Email}, nil
}

func (l *Local) Verify(_ context.Context, token string) (*ports.Identity, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	id, err := parseHS256(token, l.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	return id, nil
}

func (l *Local) generateToken(cred credential) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   cred.UserID,
		"email": cred.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(l.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(l.secret)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

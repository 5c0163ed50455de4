package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nomadhire/marketplace/internal/core/domain"
	"github.com/nomadhire/marketplace/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubProjectRepo struct {
	byID        map[string]*domain.Project
	byUser      map[string][]string
	idempotency map[string]string
	writes      int   // number of successful project writes
	saveErr     error // if set, Create/Save/SaveApproval return this error
	devs        *stubDeveloperRepo
}

func newStubProjectRepo(devs *stubDeveloperRepo) *stubProjectRepo {
	return &stubProjectRepo{
		byID:        make(map[string]*domain.Project),
		byUser:      make(map[string][]string),
		idempotency: make(map[string]string),
		devs:        devs,
	}
}

func cloneProject(p *domain.Project) *domain.Project {
	clone := *p
	if p.AssignedDeveloper != nil {
		dev := *p.AssignedDeveloper
		clone.AssignedDeveloper = &dev
	}
	clone.StatusHistory = append([]domain.StatusHistoryEntry(nil), p.StatusHistory...)
	return &clone
}

func (r *stubProjectRepo) FindByID(_ context.Context, id string) (*domain.Project, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return cloneProject(p), nil
}

func (r *stubProjectRepo) List(_ context.Context) ([]*domain.Project, error) {
	out := make([]*domain.Project, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, cloneProject(p))
	}
	return out, nil
}

func (r *stubProjectRepo) ListIDsByUser(_ context.Context, userID string) ([]string, error) {
	return append([]string{}, r.byUser[userID]...), nil
}

func (r *stubProjectRepo) Create(_ context.Context, p *domain.Project) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.byID[p.ID] = cloneProject(p)
	r.byUser[p.UserID] = append(r.byUser[p.UserID], p.ID)
	r.writes++
	return nil
}

func (r *stubProjectRepo) Save(_ context.Context, p *domain.Project) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.byID[p.ID] = cloneProject(p)
	r.writes++
	return nil
}

func (r *stubProjectRepo) SaveApproval(ctx context.Context, p *domain.Project, dev *domain.Developer) error {
	if err := r.Save(ctx, p); err != nil {
		return err
	}
	return r.devs.Save(ctx, dev)
}

func (r *stubProjectRepo) FindByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Project, error) {
	id, ok := r.idempotency[userID+":"+key]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *stubProjectRepo) RememberIdempotencyKey(_ context.Context, userID, key, projectID string) error {
	r.idempotency[userID+":"+key] = projectID
	return nil
}

type stubDeveloperRepo struct {
	byID    map[string]*domain.Developer
	listErr error
	saves   int
}

func newStubDeveloperRepo(devs ...*domain.Developer) *stubDeveloperRepo {
	r := &stubDeveloperRepo{byID: make(map[string]*domain.Developer)}
	for _, d := range devs {
		clone := *d
		r.byID[d.ID] = &clone
	}
	return r
}

func (r *stubDeveloperRepo) FindByID(_ context.Context, id string) (*domain.Developer, error) {
	d, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrDeveloperNotFound
	}
	clone := *d
	return &clone, nil
}

func (r *stubDeveloperRepo) List(_ context.Context) ([]*domain.Developer, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]*domain.Developer, 0, len(r.byID))
	for _, d := range r.byID {
		clone := *d
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubDeveloperRepo) Save(_ context.Context, d *domain.Developer) error {
	clone := *d
	r.byID[d.ID] = &clone
	r.saves++
	return nil
}

type stubUserRepo struct {
	byID    map[string]*domain.User
	findErr error
	saveErr error
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{byID: make(map[string]*domain.User)}
	for _, u := range users {
		clone := *u
		r.byID[u.ID] = &clone
	}
	return r
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.byID {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Save(_ context.Context, u *domain.User) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	clone := *u
	r.byID[u.ID] = &clone
	return nil
}

type stubIdentity struct {
	created   []string
	createErr error
}

func (s *stubIdentity) Verify(context.Context, string) (*ports.Identity, error) {
	return nil, domain.ErrUnauthorized
}

func (s *stubIdentity) CreateUser(_ context.Context, email, _, _ string) (*ports.Identity, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, email)
	return &ports.Identity{UserID: fmt.Sprintf("user-%d", len(s.created)), Email: email}, nil
}

// stubPasswordIdentity keeps credentials in memory and can log them in,
// like the local provider.
type stubPasswordIdentity struct {
	stubIdentity
	passwords map[string]string
	ids       map[string]string
}

func newStubPasswordIdentity() *stubPasswordIdentity {
	return &stubPasswordIdentity{passwords: make(map[string]string), ids: make(map[string]string)}
}

func (s *stubPasswordIdentity) CreateUser(ctx context.Context, email, password, username string) (*ports.Identity, error) {
	if _, ok := s.passwords[email]; ok {
		return nil, domain.ErrUserExists
	}
	id, err := s.stubIdentity.CreateUser(ctx, email, password, username)
	if err != nil {
		return nil, err
	}
	s.passwords[email] = password
	s.ids[email] = id.UserID
	return id, nil
}

func (s *stubPasswordIdentity) Login(_ context.Context, email, password string) (string, *ports.Identity, error) {
	if pw, ok := s.passwords[email]; !ok || pw != password {
		return "", nil, domain.ErrInvalidCredentials
	}
	return "token", &ports.Identity{UserID: s.ids[email], Email: email}, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

var errStoreDown = errors.New("store down")

// steppingClock returns a clock that advances by one minute per call.
func steppingClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * time.Minute)
		n++
		return t
	}
}

// sequentialIDs returns an id generator yielding prefix-1, prefix-2, ...
func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

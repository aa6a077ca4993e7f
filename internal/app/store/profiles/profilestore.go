// internal/app/store/profiles/profilestore.go
package profilestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
)

var (
	ErrDuplicateUsername = errors.New("a profile with this username already exists")
	ErrEmptyUsername     = errors.New("username is required")
	ErrInvalidRole       = errors.New("unknown role")
)

type Store struct {
	b backend.Backend
}

func New(b backend.Backend) *Store {
	return &Store{b: b}
}

// List returns every profile ordered by username. Password hashes are cleared.
func (s *Store) List(ctx context.Context) ([]models.Profile, error) {
	var out []models.Profile
	if err := s.b.Find(ctx, backend.From(models.TableProfiles).OrderBy("username_ci", false), &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].PasswordHash = ""
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.b.Count(ctx, backend.From(models.TableProfiles))
}

func (s *Store) GetByID(ctx context.Context, id string) (models.Profile, error) {
	return s.one(ctx, backend.Eq("id", id), id)
}

// GetByUsername matches case-insensitively and includes the password hash.
func (s *Store) GetByUsername(ctx context.Context, username string) (models.Profile, error) {
	return s.one(ctx, backend.Eq("username_ci", text.Fold(strings.TrimSpace(username))), username)
}

func (s *Store) one(ctx context.Context, f backend.Filter, key string) (models.Profile, error) {
	var out []models.Profile
	if err := s.b.Find(ctx, backend.From(models.TableProfiles).Where(f).Take(1), &out); err != nil {
		return models.Profile{}, err
	}
	if len(out) == 0 {
		return models.Profile{}, backend.Fail("find", models.TableProfiles, key, backend.ErrNotFound)
	}
	return out[0], nil
}

// Create stores a profile. passwordHash must already be hashed.
func (s *Store) Create(ctx context.Context, username, role, passwordHash string) (models.Profile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.Profile{}, ErrEmptyUsername
	}
	if !models.IsRole(role) {
		return models.Profile{}, ErrInvalidRole
	}
	now := time.Now().UTC()
	p := models.Profile{
		ID:           uuid.NewString(),
		Username:     username,
		UsernameCI:   text.Fold(username),
		Role:         role,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.b.Insert(ctx, models.TableProfiles, &p); err != nil {
		if backend.IsDuplicate(err) {
			return models.Profile{}, ErrDuplicateUsername
		}
		return models.Profile{}, err
	}
	p.PasswordHash = ""
	return p, nil
}

// Update changes username and role.
func (s *Store) Update(ctx context.Context, id, username, role string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrEmptyUsername
	}
	if !models.IsRole(role) {
		return ErrInvalidRole
	}
	err := s.b.Update(ctx, models.TableProfiles, id, map[string]any{
		"username":    username,
		"username_ci": text.Fold(username),
		"role":        role,
		"updated_at":  time.Now().UTC(),
	})
	if backend.IsDuplicate(err) {
		return ErrDuplicateUsername
	}
	return err
}

func (s *Store) SetPasswordHash(ctx context.Context, id, hash string) error {
	return s.b.Update(ctx, models.TableProfiles, id, map[string]any{
		"password_hash": hash,
		"updated_at":    time.Now().UTC(),
	})
}

func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	return s.b.Delete(ctx, models.TableProfiles, id)
}

package user

import (
	"context"
	"fmt"

	"estatebot/internal/database"
	"estatebot/internal/pkg/clock"
)

type Service struct {
	repo  Repository
	clock clock.Clock
}

func NewService(repo Repository, clk clock.Clock) *Service {
	return &Service{repo: repo, clock: clk}
}

// Profile is what the chat layer knows about a user on each interaction.
type Profile struct {
	ID       int64
	Username string
	FullName string
	Phone    string
}

// Ensure creates the user on first interaction and refreshes the profile
// fields and last activity on every later one. Empty fields never overwrite
// stored values.
func (s *Service) Ensure(ctx context.Context, p Profile) (*User, error) {
	now := s.clock.Now()

	u, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if u == nil {
		u = &User{
			ID:           p.ID,
			Username:     p.Username,
			FullName:     p.FullName,
			Phone:        p.Phone,
			LastActiveAt: now,
		}
		err := s.repo.Create(ctx, u)
		if err == nil {
			return u, nil
		}
		if !database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("create user: %w", err)
		}
		// created concurrently by another request
		if u, err = s.repo.GetByID(ctx, p.ID); err != nil {
			return nil, fmt.Errorf("reload user: %w", err)
		}
		if u == nil {
			return nil, ErrVanished
		}
	}

	changed := mergeProfile(u, p)
	u.LastActiveAt = now
	if changed {
		if err := s.repo.Update(ctx, u); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		return u, nil
	}
	if err := s.repo.Touch(ctx, u.ID, now); err != nil {
		return nil, fmt.Errorf("touch user: %w", err)
	}
	return u, nil
}

// Get returns nil when the user is unknown.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func mergeProfile(u *User, p Profile) bool {
	changed := false
	set := func(dst *string, v string) {
		if v != "" && *dst != v {
			*dst = v
			changed = true
		}
	}
	set(&u.Username, p.Username)
	set(&u.FullName, p.FullName)
	set(&u.Phone, p.Phone)
	return changed
}

package relationship

import (
	"context"
	"fmt"

	"estatebot/internal/database"
	"estatebot/internal/domain/reason"
	"estatebot/internal/domain/user"
	"estatebot/internal/pkg/clock"
)

type Service struct {
	repo  Repository
	users user.Repository
	clock clock.Clock
}

func NewService(repo Repository, users user.Repository, clk clock.Clock) *Service {
	return &Service{repo: repo, users: users, clock: clk}
}

func (s *Service) Block(ctx context.Context, blockerID, blockedID int64) (reason.Code, error) {
	if blockerID == blockedID {
		return reason.CannotBlockSelf, nil
	}
	u, err := s.users.GetByID(ctx, blockedID)
	if err != nil {
		return reason.OK, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return reason.TargetNotFound, nil
	}

	err = s.repo.Create(ctx, &Block{BlockerID: blockerID, BlockedID: blockedID, CreatedAt: s.clock.Now()})
	switch {
	case database.IsUniqueViolation(err):
		return reason.AlreadyBlocked, nil
	case err != nil:
		return reason.OK, fmt.Errorf("create block: %w", err)
	}
	return reason.OK, nil
}

func (s *Service) Unblock(ctx context.Context, blockerID, blockedID int64) (reason.Code, error) {
	removed, err := s.repo.Delete(ctx, blockerID, blockedID)
	if err != nil {
		return reason.OK, fmt.Errorf("delete block: %w", err)
	}
	if !removed {
		return reason.NotFound, nil
	}
	return reason.OK, nil
}

// IsBlocked is true when either user has blocked the other.
func (s *Service) IsBlocked(ctx context.Context, userA, userB int64) (bool, error) {
	return s.repo.Between(ctx, userA, userB)
}

func (s *Service) ListBlocked(ctx context.Context, userID int64) ([]Block, error) {
	return s.repo.ListByBlocker(ctx, userID)
}

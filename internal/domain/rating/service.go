package rating

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"estatebot/internal/database"
	"estatebot/internal/domain/policy"
	"estatebot/internal/domain/reason"
	"estatebot/internal/pkg/clock"
)

type Service struct {
	repo   Repository
	policy *policy.Policy
	clock  clock.Clock
	log    logrus.FieldLogger
}

func NewService(repo Repository, pol *policy.Policy, clk clock.Clock, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, policy: pol, clock: clk, log: log}
}

// AddRating stores the author's rating of target and refreshes the target's
// average in the same transaction.
func (s *Service) AddRating(ctx context.Context, targetID, authorID int64, score int, comment string) (*Rating, reason.Code, error) {
	if targetID == authorID {
		return nil, reason.CannotRateSelf, nil
	}
	if score < MinScore || score > MaxScore {
		return nil, reason.InvalidRatingValue, nil
	}

	var created *Rating
	err := s.repo.Transaction(ctx, func(r Repository) error {
		target, err := r.LockUser(ctx, targetID)
		if err != nil {
			return err
		}
		if target == nil {
			return reason.Deny(reason.TargetNotFound)
		}
		author, err := r.GetUser(ctx, authorID)
		if err != nil {
			return err
		}
		if author == nil {
			return reason.Deny(reason.UserNotFound)
		}
		if !s.policy.IsRatable(target.Role) {
			return reason.Deny(reason.CannotRateRole)
		}

		exists, err := r.Exists(ctx, authorID, targetID)
		if err != nil {
			return err
		}
		if exists {
			return reason.Deny(reason.RatingExists)
		}

		sum, count, err := r.SumAndCount(ctx, targetID)
		if err != nil {
			return err
		}

		rt := &Rating{
			AuthorID:  authorID,
			TargetID:  targetID,
			Score:     score,
			Comment:   strings.TrimSpace(comment),
			CreatedAt: s.clock.Now(),
		}
		if err := r.Create(ctx, rt); err != nil {
			if database.IsUniqueViolation(err) {
				return reason.Deny(reason.RatingExists)
			}
			return err
		}

		target.Rating = Average(sum+int64(score), count+1)
		target.RatingCount = int(count + 1)
		if err := r.UpdateUser(ctx, target); err != nil {
			return err
		}
		created = rt
		return nil
	})
	code, err := reason.Split(err)
	if err != nil {
		return nil, reason.OK, fmt.Errorf("add rating: %w", err)
	}
	if code != reason.OK {
		return nil, code, nil
	}

	s.log.WithFields(logrus.Fields{
		"target_id": targetID,
		"author_id": authorID,
		"score":     score,
	}).Info("rating added")
	return created, reason.OK, nil
}

// Average rounds to one decimal.
func Average(sum, count int64) float64 {
	if count == 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(count)*10) / 10
}

func (s *Service) GetStats(ctx context.Context, userID int64) (*Stats, reason.Code, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, reason.OK, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, reason.UserNotFound, nil
	}

	dist, err := s.repo.Distribution(ctx, userID)
	if err != nil {
		return nil, reason.OK, fmt.Errorf("rating distribution: %w", err)
	}
	return &Stats{
		UserID:       userID,
		Average:      u.Rating,
		Count:        u.RatingCount,
		Distribution: dist,
	}, reason.OK, nil
}

func (s *Service) ListForUser(ctx context.Context, userID int64, limit, offset int) ([]Rating, reason.Code, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, reason.OK, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, reason.UserNotFound, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	list, err := s.repo.ListByTarget(ctx, userID, limit, offset)
	if err != nil {
		return nil, reason.OK, fmt.Errorf("list ratings: %w", err)
	}
	return list, reason.OK, nil
}

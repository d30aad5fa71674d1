package services

import (
	"context"
	"errors"
	"time"

	"github.com/hopsquad/drinkchain/drinkcheck/database/models"
	"github.com/hopsquad/drinkchain/drinkcheck/database/repositories"
	"github.com/hopsquad/drinkchain/drinkcheck/utils"
	"golang.org/x/sync/errgroup"
)

// StatsService answers the read-only profile and leaderboard queries. It
// never mutates state; all writes go through the chain tracker.
type StatsService struct {
	users    repositories.UserRepository
	chains   repositories.ChainRepository
	credits  repositories.CreditRepository
	timezone *time.Location
	now      func() time.Time
}

func NewStatsService(
	users repositories.UserRepository,
	chains repositories.ChainRepository,
	credits repositories.CreditRepository,
	timezone *time.Location,
) *StatsService {
	return &StatsService{
		users:    users,
		chains:   chains,
		credits:  credits,
		timezone: timezone,
		now:      time.Now,
	}
}

// UserStats is the assembled profile view for one user.
type UserStats struct {
	User           *models.User
	InitialCredits int64
	ChainCredits   int64
	TodayCount     int64
	YesterdayCount int64
	MostActiveDay  string
	MostActiveDayN int64
}

// UserStats fans the independent aggregate queries out concurrently.
func (s *StatsService) UserStats(ctx context.Context, discordID string) (*UserStats, error) {
	user, err := s.users.GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, err
	}

	stats := &UserStats{User: user}

	todayStart, tomorrowStart := utils.DayBounds(s.now(), s.timezone)
	yesterdayStart := todayStart.AddDate(0, 0, -1)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		initial, chainCredits, err := s.credits.CountByType(gctx, discordID)
		if err != nil {
			return err
		}
		stats.InitialCredits = initial
		stats.ChainCredits = chainCredits
		return nil
	})
	g.Go(func() error {
		count, err := s.credits.CountBetween(gctx, discordID, todayStart, tomorrowStart)
		if err != nil {
			return err
		}
		stats.TodayCount = count
		return nil
	})
	g.Go(func() error {
		count, err := s.credits.CountBetween(gctx, discordID, yesterdayStart, todayStart)
		if err != nil {
			return err
		}
		stats.YesterdayCount = count
		return nil
	})
	g.Go(func() error {
		day, count, err := s.credits.MostActiveDay(gctx, discordID, s.timezone.String())
		if err != nil {
			return err
		}
		stats.MostActiveDay = day
		stats.MostActiveDayN = count
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// TopUsers returns the leaderboard ordered by total credits.
func (s *StatsService) TopUsers(ctx context.Context, limit int) ([]*models.User, error) {
	return s.users.GetTopUsers(ctx, limit)
}

// ErrNoActiveChain is returned by CurrentChain when no chain is running.
var ErrNoActiveChain = errors.New("no active chain")

// CurrentChain returns the running chain and its remaining time. A chain
// that is flagged active but past the inactivity window counts as absent;
// the tracker will flip the flag on the next qualifying message.
func (s *StatsService) CurrentChain(ctx context.Context) (*models.Chain, time.Duration, error) {
	active, err := s.chains.GetActive(ctx)
	if err != nil {
		return nil, 0, err
	}
	now := s.now()
	if active == nil || active.ExpiredAt(now) {
		return nil, 0, ErrNoActiveChain
	}
	return active, active.RemainingAt(now), nil
}

// RecordChain returns the server record holder, or nil if no record has
// been set yet.
func (s *StatsService) RecordChain(ctx context.Context) (*models.Chain, error) {
	return s.chains.GetRecordHolder(ctx)
}

package engage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shuuji3/tweepy-mastodon/internal/config"
	"github.com/shuuji3/tweepy-mastodon/internal/schedule"
	"github.com/shuuji3/tweepy-mastodon/internal/store"
)

var (
	ErrBudgetExhausted = errors.New("engagement budget exhausted")
	ErrQuietHours      = errors.New("inside quiet hours")
)

// Journal is the part of the store the budget reads and writes.
type Journal interface {
	CountActionsWithin(ctx context.Context, start, end time.Time, kind string) (int, error)
	PutAction(ctx context.Context, ts time.Time, kind, target string) error
}

var _ Journal = (*store.DB)(nil)

// ShouldAllowEngage checks hourly/daily budgets before engaging. Every kind of
// action counts against the same budget.
func ShouldAllowEngage(ctx context.Context, j Journal, cfg config.EngagementConfig, now time.Time) (bool, error) {
	now = now.UTC()
	startHour := now.Truncate(time.Hour)
	startDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	hourCount, err := j.CountActionsWithin(ctx, startHour, startHour.Add(time.Hour), "")
	if err != nil {
		return false, err
	}
	dayCount, err := j.CountActionsWithin(ctx, startDay, startDay.Add(24*time.Hour), "")
	if err != nil {
		return false, err
	}
	if cfg.MaxPerHour > 0 && hourCount >= cfg.MaxPerHour {
		return false, nil
	}
	if cfg.MaxPerDay > 0 && dayCount >= cfg.MaxPerDay {
		return false, nil
	}
	return true, nil
}

// Allow returns ErrQuietHours or ErrBudgetExhausted when an action must wait.
func Allow(ctx context.Context, j Journal, cfg config.EngagementConfig, now time.Time) error {
	if schedule.IsQuiet(now, cfg.QuietHours) {
		return fmt.Errorf("%w: next window %s", ErrQuietHours, schedule.NextWindow(now, cfg.QuietHours).Format(time.RFC3339))
	}
	ok, err := ShouldAllowEngage(ctx, j, cfg, now)
	if err != nil {
		return fmt.Errorf("checking engagement budget: %w", err)
	}
	if !ok {
		return ErrBudgetExhausted
	}
	return nil
}

// RecordEngage logs an engagement action.
func RecordEngage(ctx context.Context, j Journal, kind, target string, now time.Time) error {
	return j.PutAction(ctx, now.UTC(), kind, target)
}

// Do runs f when the budget allows it and records the action when f succeeds.
func Do(ctx context.Context, j Journal, cfg config.EngagementConfig, kind, target string, now time.Time, f func() error) error {
	if err := Allow(ctx, j, cfg, now); err != nil {
		return err
	}
	if err := f(); err != nil {
		return err
	}
	return RecordEngage(ctx, j, kind, target, now)
}

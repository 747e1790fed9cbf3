package jobs

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shuuji3/tweepy-mastodon/internal/logging"
	"github.com/shuuji3/tweepy-mastodon/internal/mastodon"
	"github.com/shuuji3/tweepy-mastodon/internal/metrics"
	"github.com/shuuji3/tweepy-mastodon/internal/util"
	"github.com/shuuji3/tweepy-mastodon/tweepy"
)

const (
	homeCursorKey = "home_timeline:since_id"
	// unfinished walk as "max_id:newest"
	homeResumeKey = "home_timeline:resume"
)

// HomeSource is the home timeline reader; *tweepy.API satisfies it.
type HomeSource interface {
	HomeTimeline(ctx context.Context, p tweepy.TimelineParams) ([]*tweepy.Status, error)
}

// Journal is where synced statuses and the cursor are kept.
type Journal interface {
	PutEvent(ctx context.Context, ts time.Time, typ, ref string, payload any) (bool, error)
	LoadCursor(ctx context.Context, key string) (string, error)
	SaveCursor(ctx context.Context, key, value string) error
}

var _ HomeSource = (*tweepy.API)(nil)

// SyncResult counts what one sync saw and stored.
type SyncResult struct {
	Fetched int
	Stored  int
	SinceID int64
}

// SyncHomeTimeline pages the home timeline back from newest to the saved
// since_id and stores every status once. The cursor moves to the newest id
// only when the walk reaches since_id; a walk cut short by pages is saved as
// a resume point and continued by the next call. A failing page stops the
// walk and leaves both cursor and resume point untouched.
func SyncHomeTimeline(ctx context.Context, db Journal, src HomeSource, perPage, pages int) (SyncResult, error) {
	var res SyncResult
	v, err := db.LoadCursor(ctx, homeCursorKey)
	if err != nil {
		return res, err
	}
	sinceID, _ := strconv.ParseInt(v, 10, 64)
	res.SinceID = sinceID

	r, err := db.LoadCursor(ctx, homeResumeKey)
	if err != nil {
		return res, err
	}
	maxID, newest := parseResume(r)

	if perPage <= 0 || perPage > mastodon.MaxStatusLimit {
		perPage = mastodon.MaxStatusLimit
	}
	done := false
	for i := 0; i < pages && !done; i++ {
		items, err := src.HomeTimeline(ctx, tweepy.TimelineParams{Count: perPage, SinceID: sinceID, MaxID: maxID})
		if err != nil {
			return res, err
		}
		for _, s := range items {
			res.Fetched++
			added, err := db.PutEvent(ctx, s.CreatedAt.Time, eventType(s), s.IDStr, payload(s))
			if err != nil {
				return res, err
			}
			if added {
				res.Stored++
			}
			if s.ID > newest {
				newest = s.ID
			}
			if maxID == 0 || s.ID < maxID {
				maxID = s.ID
			}
		}
		done = len(items) < perPage
	}

	if !done {
		return res, db.SaveCursor(ctx, homeResumeKey, fmt.Sprintf("%d:%d", maxID, newest))
	}
	if newest > sinceID {
		if err := db.SaveCursor(ctx, homeCursorKey, strconv.FormatInt(newest, 10)); err != nil {
			return res, err
		}
		res.SinceID = newest
	}
	if r != "" {
		return res, db.SaveCursor(ctx, homeResumeKey, "")
	}
	return res, nil
}

func parseResume(v string) (maxID, newest int64) {
	a, b, ok := strings.Cut(v, ":")
	if !ok {
		return 0, 0
	}
	maxID, err1 := strconv.ParseInt(a, 10, 64)
	newest, err2 := strconv.ParseInt(b, 10, 64)
	if err1 != nil || err2 != nil {
		return 0, 0
	}
	return maxID, newest
}

func eventType(s *tweepy.Status) string {
	switch {
	case s.RetweetedStatus != nil:
		return "reblog"
	case s.InReplyToStatusID != nil:
		return "reply"
	default:
		return "status"
	}
}

func payload(s *tweepy.Status) map[string]any {
	p := map[string]any{"text": util.HTMLToText(s.Text), "lang": s.Lang}
	if s.User != nil {
		p["author"] = s.User.ScreenName
	}
	if s.RetweetedStatus != nil {
		p["retweeted_id"] = s.RetweetedStatus.IDStr
	}
	return p
}

// RunSyncOnce runs one sync with metrics and a log line.
func RunSyncOnce(ctx context.Context, db Journal, src HomeSource, perPage, pages int) error {
	start := time.Now()
	metrics.SyncRuns.Inc()
	res, err := SyncHomeTimeline(ctx, db, src, perPage, pages)
	if err != nil {
		metrics.SyncErrors.Inc()
		return err
	}
	metrics.ObserveSyncDuration(start)
	logging.Info("sync_once", map[string]any{"fetched": res.Fetched, "stored": res.Stored, "since_id": res.SinceID})
	return nil
}

// RunSyncLoop runs RunSyncOnce on a ticker until ctx is cancelled.
func RunSyncLoop(ctx context.Context, db Journal, src HomeSource, perPage, pages int, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	// run immediately
	if err := RunSyncOnce(ctx, db, src, perPage, pages); err != nil {
		logging.Error("sync_once_error", map[string]any{"error": err.Error()})
	}
	for {
		select {
		case <-ctx.Done():
			logging.Info("sync_loop_stop", nil)
			return ctx.Err()
		case <-t.C:
			if err := RunSyncOnce(ctx, db, src, perPage, pages); err != nil {
				logging.Error("sync_once_error", map[string]any{"error": err.Error()})
			}
		}
	}
}

package cmdlog

import (
	"time"

	"github.com/shuuji3/tweepy-mastodon/internal/logging"
	"github.com/shuuji3/tweepy-mastodon/internal/metrics"
)

// Run wraps a CLI command with run/error counters and a completion log line.
func Run(cmd string, f func() error) error {
	metrics.IncCommandRun(cmd)
	start := time.Now()
	err := f()
	took := time.Since(start).Round(time.Millisecond).String()
	if err != nil {
		metrics.IncCommandError(cmd)
		logging.Error(cmd+"_error", map[string]any{"error": err.Error(), "took": took})
	} else {
		logging.Info(cmd+"_ok", map[string]any{"took": took})
	}
	return err
}

package analytics

import (
	"sort"
	"time"

	"github.com/shuuji3/tweepy-mastodon/internal/store"
)

// HourlyEngagement aggregates actions into per-hour buckets keyed by kind.
func HourlyEngagement(actions []store.Action) map[time.Time]map[string]int {
	buckets := make(map[time.Time]map[string]int)
	for _, a := range actions {
		key := a.TS.UTC().Truncate(time.Hour)
		if _, ok := buckets[key]; !ok {
			buckets[key] = make(map[string]int)
		}
		buckets[key][a.Kind]++
	}
	return buckets
}

// SortedBucketKeys returns sorted hour keys.
func SortedBucketKeys(m map[time.Time]map[string]int) []time.Time {
	keys := make([]time.Time, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	return keys
}

// SortedKinds returns the action kinds of one bucket in name order.
func SortedKinds(bucket map[string]int) []string {
	kinds := make([]string, 0, len(bucket))
	for k := range bucket {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Totals sums every bucket by kind.
func Totals(m map[time.Time]map[string]int) map[string]int {
	out := map[string]int{}
	for _, b := range m {
		for k, n := range b {
			out[k] += n
		}
	}
	return out
}

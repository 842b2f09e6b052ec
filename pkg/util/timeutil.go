package util

import "time"

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// CompactTimestamp renders t as a sortable, path-safe UTC stamp (20060102T150405Z).
func CompactTimestamp(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

package faqcache

import (
	"strings"
	"time"
)

// scanBatch is the COUNT hint passed to SCAN and the UNLINK batch size.
const scanBatch = 500

// matchPrefix builds a SCAN MATCH pattern for every key starting with prefix.
func matchPrefix(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('*')
	return b.String()
}

// normalizeTTL rounds sub-second TTLs up to the one second granularity of EX.
func normalizeTTL(ttl time.Duration) time.Duration {
	if ttl > 0 && ttl < time.Second {
		return time.Second
	}
	return ttl.Truncate(time.Second)
}

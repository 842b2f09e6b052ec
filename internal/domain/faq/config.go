package faq

import "time"

// Config holds runtime knobs for the FAQ service.
type Config struct {
	PrimaryLanguage    string
	CachePrefix        string
	CacheTTL           time.Duration
	CacheTimeout       time.Duration
	TranslationTimeout time.Duration
	// ListActiveOnly hides inactive entries from list responses. Detail lookups
	// always return the entry.
	ListActiveOnly bool
	ExportPrefix   string
}

const (
	defaultCachePrefix        = "faq"
	defaultCacheTTL           = time.Hour
	defaultCacheTimeout       = 250 * time.Millisecond
	defaultTranslationTimeout = 10 * time.Second
	defaultExportPrefix       = "exports"
)

func (c Config) withDefaults() Config {
	if c.CachePrefix == "" {
		c.CachePrefix = defaultCachePrefix
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = defaultCacheTTL
	}
	if c.CacheTimeout <= 0 {
		c.CacheTimeout = defaultCacheTimeout
	}
	if c.TranslationTimeout <= 0 {
		c.TranslationTimeout = defaultTranslationTimeout
	}
	if c.ExportPrefix == "" {
		c.ExportPrefix = defaultExportPrefix
	}
	return c
}

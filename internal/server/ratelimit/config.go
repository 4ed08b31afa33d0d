package ratelimit

import (
	"strconv"
	"strings"
	"time"
)

// Rule limits one method on one path. Paths ending in "/" match by prefix.
type Rule struct {
	Path   string
	Method string
	Limit  int // requests per Window; 0 means unlimited
	Window time.Duration
	Burst  int // bucket capacity, defaults to Limit
}

func (r Rule) capacity() int {
	if r.Burst > 0 {
		return r.Burst
	}
	return r.Limit
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTTL         time.Duration
	Allowlist       map[string]bool
	Denylist        map[string]bool
	Rules           []Rule
}

// DefaultConfig returns the limits used when no environment overrides are set.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    600,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Allowlist:       map[string]bool{},
		Denylist:        map[string]bool{},
		Rules:           DefaultRules(),
	}
}

// DefaultRules returns the per-endpoint rules. Scrape triggers are the expensive path.
func DefaultRules() []Rule {
	return []Rule{
		{Path: "/health", Method: "GET", Limit: 0},
		{Path: "/scrape", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
		{Path: "/subscribers", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
	}
}

// LoadConfig builds a Config from RATE_LIMIT_* variables read through lookup.
func LoadConfig(lookup func(string) (string, bool)) *Config {
	cfg := DefaultConfig()
	get := func(key string) string {
		if lookup == nil {
			return ""
		}
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	if v := get("RATE_LIMIT_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Enabled = b
		}
	}
	if v := get("RATE_LIMIT_DEFAULT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.DefaultLimit = n
		}
	}
	if v := get("RATE_LIMIT_DEFAULT_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.DefaultWindow = d
		}
	}
	if v := get("RATE_LIMIT_CLEANUP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CleanupInterval = d
		}
	}
	cfg.Allowlist = parseIPList(get("RATE_LIMIT_ALLOWLIST"))
	cfg.Denylist = parseIPList(get("RATE_LIMIT_DENYLIST"))
	return cfg
}

func parseIPList(list string) map[string]bool {
	out := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			out[ip] = true
		}
	}
	return out
}

package config

import "time"

// LookupCacheConfig controls the redis cache placed in front of User
// Directory lookups used by reservation enrichment.  Reservation reads are
// never cached; their status changes on every transition.
type LookupCacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadLookupCacheConfig reads LOOKUP_CACHE_* variables.
func LoadLookupCacheConfig() LookupCacheConfig {
	cfg := LookupCacheConfig{
		Enabled: envBool("LOOKUP_CACHE_ENABLED", true),
		TTL:     envDur("LOOKUP_CACHE_TTL", 5*time.Minute),
		Prefix:  envStr("LOOKUP_CACHE_PREFIX", "lookup"),
	}
	if cfg.TTL <= 0 {
		cfg.Enabled = false
	}
	return cfg
}

package utils

import "time"

// Redis key prefixes and lifetimes.
const (
	// AuthCachePrefix + userID holds the user's role in the auth database.
	AuthCachePrefix = "auth:"
	AuthCacheTTL    = time.Hour

	// AIContextPrefix + userID holds the chat assistant conversation in the cache database.
	AIContextPrefix = "ai:ctx:"
	AIContextTTL    = 30 * time.Minute
)

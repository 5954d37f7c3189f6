package constants

import "time"

// Cache keys and TTLs for Redis-backed caching
const (
	SpaceListCacheKey = "spaces:list:default"
	SpaceListCacheTTL = 5 * time.Minute

	SpaceCacheKeyPrefix = "spaces:detail:"
	SpaceCacheTTL       = 15 * time.Minute
)

// File: utils/constants.go
package utils

import "time"

// CatalogCachePrefix is the prefix used for Redis catalog cache keys.
const CatalogCachePrefix = "catalog:"

// CatalogCacheTTL is the time-to-live for catalog cache entries.
const CatalogCacheTTL = 5 * time.Minute

// DedupCachePrefix is the prefix for the webhook message dedup fast path.
const DedupCachePrefix = "msg:"

// DedupCacheTTL is how long a processed message id stays in Redis.
const DedupCacheTTL = 24 * time.Hour

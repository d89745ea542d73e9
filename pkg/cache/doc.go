// Package cache provides a Redis-backed response cache for domains service RPC calls.
//
// Caching is opt-in. When enabled, the client stores successful responses of
// read-only operations keyed by operation name and request body, so repeated
// enumerations with identical markers are answered without a network call.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	manager := cache.NewManager(redisClient)
//
//	key := cache.CacheKey{
//		Operation: "ListDomains",
//		Body:      []byte(`{"Marker":"abc","MaxItems":20}`),
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// Cache miss - call the service
//	}
//
// # HTTP Response Caching
//
//	entry, err := cache.ResponseToEntry(resp, 5*time.Minute)
//	if err != nil {
//		return err
//	}
//	if err := manager.Set(ctx, key, entry); err != nil {
//		return err
//	}
//
// # Invalidation
//
// Purge drops every cached page of one operation, for example before a
// listing that must reflect recent changes:
//
//	deleted, err := manager.Purge(ctx, "ListDomains")
//
// # Expiry
//
// The entry lifetime comes from the response:
//
//   - Cache-Control: no-store is never cached
//   - Cache-Control: max-age=N caches for N seconds
//   - Expires header is honored when present
//   - otherwise the configured default TTL applies
//
// # Metrics
//
//   - domains_cache_hits_total{layer="redis"} - Cache hits
//   - domains_cache_misses_total - Cache misses
//   - domains_cache_size_bytes{layer="redis"} - Bytes written and served
//   - domains_cache_errors_total{operation} - Cache operation errors
package cache

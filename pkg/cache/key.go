package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// CacheKey identifies a cached service response.
type CacheKey struct {
	// Operation is the RPC operation name (e.g., "ListDomains")
	Operation string

	// Body is the serialized request, including marker and page size
	Body []byte

	// Profile separates entries of different credential profiles ("" for default)
	Profile string
}

// keyPrefix namespaces all response cache keys.
const keyPrefix = "domains"

// OperationPattern is the Redis glob matching every cached response of operation.
func OperationPattern(operation string) string {
	return fmt.Sprintf("%s:%s:*", keyPrefix, strings.TrimSpace(operation))
}

// String generates a deterministic cache key string.
// Format: domains:operation:sha256(body)[:profile=name]
//
// Example:
//
//	domains:ListDomains:44136fa355b3678a1146ad16f7e8649e94fb4fc21fe77e8310c060f61caaff8a
func (k CacheKey) String() string {
	parts := []string{keyPrefix}

	if op := strings.TrimSpace(k.Operation); op != "" {
		parts = append(parts, op)
	}

	sum := sha256.Sum256(k.Body)
	parts = append(parts, hex.EncodeToString(sum[:]))

	if k.Profile != "" {
		parts = append(parts, fmt.Sprintf("profile=%s", k.Profile))
	}

	return strings.Join(parts, ":")
}

// Package dedupe provides a TTL cache that remembers which resource a client
// request ID produced, so a retried request returns the original result.
package dedupe

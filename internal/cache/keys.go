package cache

import "fmt"

// JobStatusKey returns the Redis key mirroring one analysis job's status.
func JobStatusKey(requestID string) string {
	return fmt.Sprintf("oncopilot:job:%s:status", requestID)
}

// RateLimitKey returns the Redis key for a client's rate-limit window.
func RateLimitKey(clientIP string) string {
	return fmt.Sprintf("oncopilot:ratelimit:%s", clientIP)
}

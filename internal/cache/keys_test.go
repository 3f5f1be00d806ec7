package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobStatusKey(t *testing.T) {
	assert.Equal(t, "oncopilot:job:REQ-20260830120000-P001-a3f09c:status",
		JobStatusKey("REQ-20260830120000-P001-a3f09c"))
}

func TestRateLimitKey(t *testing.T) {
	assert.Equal(t, "oncopilot:ratelimit:10.0.0.1", RateLimitKey("10.0.0.1"))
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	_, err := NewRedisCache("not-a-url")
	assert.Error(t, err)
}

func TestNewRedisCache_ValidURL(t *testing.T) {
	c, err := NewRedisCache("redis://localhost:6379/0")
	assert.NoError(t, err)
	assert.NotNil(t, c)
	c.Close()
}

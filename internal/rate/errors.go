package rate

import "errors"

var (
	// ErrRateLimited is returned once an identifier exhausts its window budget.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps failures talking to Redis.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

package repository

import (
	"time"
)

// CacheRepository defines cache operations.
type CacheRepository interface {
	Delete(key string) error
	SetJSON(key string, value interface{}, expiration time.Duration) error
	GetJSON(key string, dest interface{}) error
	ExpireAt(key string, expiration time.Time) error

	// SetNX sets the key only when absent; used as a coarse mutex around
	// question bank batch loads.
	SetNX(key string, value interface{}, expiration time.Duration) (bool, error)

	SAdd(key string, members ...interface{}) error
	SMembers(key string) ([]string, error)
}

package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// PendingRegistrationKey returns the cache key holding a staged registration
// (hashed password + OTP) awaiting email verification.
func (r *CacheKeyStruct) PendingRegistrationKey(email string) string {
	return fmt.Sprintf("register:pending:%s", email)
}

// TestMonitorChannel returns the Redis PubSub channel name carrying live
// proctoring events for a test.
func (r *CacheKeyStruct) TestMonitorChannel(testID string) string {
	return fmt.Sprintf("test:%s:monitor", testID)
}

var CacheKey = NewCacheKeyStruct()

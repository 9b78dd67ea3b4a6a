package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionKey returns the cache key for a console session.
func (r *CacheKeyStruct) SessionKey(sessionID string) string {
	return fmt.Sprintf("console:session:%s", sessionID)
}

// InvalidationChannel returns the Redis PubSub channel that announces changed resources.
func (r *CacheKeyStruct) InvalidationChannel() string {
	return "console:invalidations"
}

// AuditQueue returns the Redis list that buffers audit events for the audit worker.
func (r *CacheKeyStruct) AuditQueue() string {
	return "console:audit_events_queue"
}

var CacheKey = NewCacheKeyStruct()

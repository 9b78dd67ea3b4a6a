package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://backend.local/")
	t.Setenv("SESSION_TTL_HOURS", "2")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("ATTENDANCE_CONCURRENCY", "not-a-number")
	t.Setenv("DATABASE_URL", "")

	cfg := Load()

	assert.Equal(t, "http://backend.local", cfg.BackendURL)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 4, cfg.AttendanceConcurrency)
	assert.False(t, cfg.AuditEnabled())
}

func TestParseOrigins(t *testing.T) {
	assert.Nil(t, parseOrigins(""))
	assert.Equal(t, []string{"http://a", "http://b"}, parseOrigins(" http://a , ,http://b"))
}

package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"rigforge/internal/tokens"
)

// SetupTestBlacklist creates a token blacklist backed by miniredis.
// The returned miniredis instance allows tests to advance time
// (FastForward) to exercise TTL expiry.
func SetupTestBlacklist(t *testing.T) (*tokens.Blacklist, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	blacklist := tokens.NewBlacklistWithClient(client)
	t.Cleanup(func() { _ = blacklist.Close() })

	return blacklist, mr
}

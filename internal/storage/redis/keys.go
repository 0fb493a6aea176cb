package redis

import (
	"fmt"
	"strconv"

	"github.com/lmerrick/dashguard/internal/model"
)

// Key prefix for all trust-layer data
const keyPrefix = "dashguard"

// Key generation functions for each entity type

// sessionKey returns the Redis key for an accepted Session
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// sessionsByTimeKey returns the Redis key for the ZSET indexing sessions
// by server-assigned submission time
func sessionsByTimeKey() string {
	return fmt.Sprintf("%s:idx:sessions_by_time", keyPrefix)
}

// guestNumberKey returns the Redis key for the ephemeral token -> guest
// number mapping
func guestNumberKey(token string) string {
	return fmt.Sprintf("%s:guest:token:%s", keyPrefix, token)
}

// guestTokenKey returns the Redis key for the reverse guest number -> token
// mapping
func guestTokenKey(number int64) string {
	return fmt.Sprintf("%s:guest:number:%s", keyPrefix, strconv.FormatInt(number, 10))
}

// guestCounterKey returns the Redis key for the monotonic guest number counter
func guestCounterKey() string {
	return fmt.Sprintf("%s:guest:counter", keyPrefix)
}

// patternKey returns the Redis key for an identity's pattern history ZSET
func patternKey(identityKey string) string {
	return fmt.Sprintf("%s:pattern:%s", keyPrefix, identityKey)
}

// rejectedKey returns the Redis key for a rejected-attempt counter
func rejectedKey(identityKey string, reason model.Verdict) string {
	return fmt.Sprintf("%s:rejected:%s:%s", keyPrefix, identityKey, reason)
}

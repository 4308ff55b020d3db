package keys

import (
	"strings"
)

const aiPrefix = "ai:"

// AIUserID is the synthetic user id of an AI opponent with the given
// personality.
func AIUserID(personality string) string {
	return aiPrefix + strings.ToLower(strings.TrimSpace(personality))
}

// IsAIUserID reports whether id was produced by AIUserID.
func IsAIUserID(id string) bool {
	return strings.HasPrefix(id, aiPrefix)
}

// AIAvatarID names the mirror avatar generated for a match.
func AIAvatarID(matchID string) string {
	return aiPrefix + "avatar:" + matchID
}

// SettleKey is the singleflight key for settling one battle.
func SettleKey(matchID string) string {
	return "settle:" + matchID
}

// OutcomeKey identifies one outcome delivery; the economy layer uses it as
// its idempotency key.
func OutcomeKey(matchID, userID string) string {
	return matchID + "/" + userID
}

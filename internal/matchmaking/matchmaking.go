// Package matchmaking rates avatars and pairs queue entries.
package matchmaking

import (
	"math"
	"sort"

	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/game"
)

// DefaultTolerance is the maximum relative power gap between two opponents.
const DefaultTolerance = 0.30

func rarityMultiplier(r game.Rarity) float64 {
	switch r {
	case game.RarityRaro:
		return 1.1
	case game.RarityEpico:
		return 1.25
	case game.RarityLendario:
		return 1.5
	default:
		return 1.0
	}
}

// PowerRating is the scalar used only for matchmaking compatibility.
func PowerRating(a game.AvatarSnapshot) float64 {
	sum := float64(a.Stats.Sum())
	if sum < 0 {
		sum = 0
	}
	lvl := float64(a.Nivel)
	if lvl < 0 {
		lvl = 0
	}
	return math.Round(sum*(1+lvl/10)*rarityMultiplier(a.Raridade)*100) / 100
}

// Compatible reports whether |a-b| / max(a,b) <= tolerance.
func Compatible(a, b, tolerance float64) bool {
	hi := math.Max(a, b)
	if hi <= 0 {
		return a == b
	}
	return math.Abs(a-b)/hi <= tolerance+1e-9
}

// FindMatch returns the earliest-enqueued compatible candidate for entrant,
// skipping entrant's own entry. ok is false when nobody qualifies.
func FindMatch(entrant game.QueueEntry, candidates []game.QueueEntry, tolerance float64) (game.QueueEntry, bool) {
	ordered := make([]game.QueueEntry, 0, len(candidates))
	for _, c := range candidates {
		if c.UserID == entrant.UserID {
			continue
		}
		if Compatible(entrant.PowerRating, c.PowerRating, tolerance) {
			ordered = append(ordered, c)
		}
	}
	if len(ordered) == 0 {
		return game.QueueEntry{}, false
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].EnqueuedAt.Equal(ordered[j].EnqueuedAt) {
			return ordered[i].EnqueuedAt.Before(ordered[j].EnqueuedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})
	return ordered[0], true
}

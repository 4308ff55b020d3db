// Package ai chooses actions for computer-controlled opponents.
package ai

import (
	"fmt"
	"time"

	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/engine"
)

// Personality is one of a closed set of AI temperaments.
type Personality string

const (
	Berserker Personality = "berserker"
	Tactician Personality = "tactician"
	Guardian  Personality = "guardian"
	Trickster Personality = "trickster"
)

// Profile holds the fixed numbers behind a personality. Thresholds are HP
// percentages; zero disables the check.
type Profile struct {
	Personality        Personality
	Aggressiveness     float64
	Caution            float64
	ThinkMin           time.Duration
	ThinkMax           time.Duration
	FleeThreshold      int
	SurrenderThreshold int
	// StatScale is applied to the mirrored stats of a generated opponent.
	StatScale float64
}

var profiles = []Profile{
	{Personality: Berserker, Aggressiveness: 0.9, Caution: 0.1, ThinkMin: 800 * time.Millisecond, ThinkMax: 1600 * time.Millisecond, StatScale: 1.0},
	{Personality: Tactician, Aggressiveness: 0.6, Caution: 0.5, ThinkMin: 1500 * time.Millisecond, ThinkMax: 3 * time.Second, FleeThreshold: 12, SurrenderThreshold: 20, StatScale: 0.95},
	{Personality: Guardian, Aggressiveness: 0.3, Caution: 0.8, ThinkMin: 2 * time.Second, ThinkMax: 4 * time.Second, SurrenderThreshold: 15, StatScale: 1.05},
	{Personality: Trickster, Aggressiveness: 0.5, Caution: 0.4, ThinkMin: 500 * time.Millisecond, ThinkMax: 2500 * time.Millisecond, FleeThreshold: 30, StatScale: 0.9},
}

// All returns every profile in a stable order.
func All() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}

// ProfileFor returns the profile of a personality.
func ProfileFor(p Personality) (Profile, error) {
	for _, pr := range profiles {
		if pr.Personality == p {
			return pr, nil
		}
	}
	return Profile{}, fmt.Errorf("unknown personality %q", p)
}

// Pick draws a personality uniformly.
func Pick(dice engine.Dice) Profile {
	i := int(dice.Roll() * float64(len(profiles)) / 100)
	if i >= len(profiles) {
		i = len(profiles) - 1
	}
	if i < 0 {
		i = 0
	}
	return profiles[i]
}

// ThinkingDelay draws the pause before the AI acts, within the profile range.
func ThinkingDelay(p Profile, dice engine.Dice) time.Duration {
	if p.ThinkMax <= p.ThinkMin {
		return p.ThinkMin
	}
	span := p.ThinkMax - p.ThinkMin
	return p.ThinkMin + time.Duration(float64(span)*dice.Roll()/100)
}

package ai

import (
	"math"

	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/engine"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/game"
)

var mirrorNames = map[Personality]string{
	Berserker: "Fúria Espelhada",
	Tactician: "Estrategista Sombrio",
	Guardian:  "Sentinela do Portal",
	Trickster: "Ilusionista",
}

// MirrorAvatar builds an opponent for human from human's own avatar: same
// level, rarity and abilities, stats scaled by the profile, random element.
func MirrorAvatar(id, ownerID string, human game.AvatarSnapshot, p Profile, dice engine.Dice) game.AvatarSnapshot {
	scale := func(v int) int {
		s := int(math.Round(float64(v) * p.StatScale))
		if s < 1 {
			s = 1
		}
		return s
	}
	idx := int(dice.Roll() * float64(len(game.Elements)) / 100)
	if idx >= len(game.Elements) {
		idx = len(game.Elements) - 1
	}
	abilities := make([]game.Ability, len(human.Abilities))
	copy(abilities, human.Abilities)
	return game.AvatarSnapshot{
		ID:          id,
		OwnerUserID: ownerID,
		Name:        mirrorNames[p.Personality],
		Elemento:    game.Elements[idx],
		Raridade:    human.Raridade,
		Nivel:       human.Nivel,
		Vinculo:     50,
		Alive:       true,
		Stats: game.Stats{
			Forca:       scale(human.Stats.Forca),
			Agilidade:   scale(human.Stats.Agilidade),
			Resistencia: scale(human.Stats.Resistencia),
			Foco:        scale(human.Stats.Foco),
		},
		Abilities: abilities,
	}
}

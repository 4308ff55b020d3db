package engine

import "github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/game"

const (
	ElementAdvantage    = 1.25
	ElementDisadvantage = 0.8
)

// beats maps an element to the elements it is strong against.
var beats = map[game.Element][]game.Element{
	game.ElementFogo:         {game.ElementAr},
	game.ElementAr:           {game.ElementTerra},
	game.ElementTerra:        {game.ElementEletricidade},
	game.ElementEletricidade: {game.ElementAgua},
	game.ElementAgua:         {game.ElementFogo},
	game.ElementLuz:          {game.ElementSombra},
	game.ElementSombra:       {game.ElementLuz},
}

func strongAgainst(a, b game.Element) bool {
	for _, e := range beats[a] {
		if e == b {
			return true
		}
	}
	return false
}

// ElementMultiplier returns the damage factor for an attacker element
// against a target element. Luz and sombra are strong against each other.
func ElementMultiplier(attacker, target game.Element) float64 {
	if strongAgainst(attacker, target) {
		return ElementAdvantage
	}
	if strongAgainst(target, attacker) {
		return ElementDisadvantage
	}
	return 1.0
}

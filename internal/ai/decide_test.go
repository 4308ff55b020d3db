package ai

import (
	"testing"
	"time"

	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/engine"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/game"
)

func avatar() game.AvatarSnapshot {
	return game.AvatarSnapshot{
		ID: "av", Elemento: game.ElementTerra, Raridade: game.RarityRaro, Nivel: 3, Alive: true,
		Stats: game.Stats{Forca: 12, Agilidade: 8, Resistencia: 10, Foco: 9},
		Abilities: []game.Ability{
			{ID: "quake", Name: "Quake", Kind: game.AbilityOffensive, PrimaryStat: game.StatForca, Power: 12, Cost: 40, Cooldown: 2},
			{ID: "mend", Name: "Mend", Kind: game.AbilityHeal, Cost: 25, Cooldown: 3},
		},
	}
}

func combatant(hpPct, energy int) *engine.Combatant {
	a := avatar()
	c := engine.NewCombatant(a, engine.InitialState(a))
	c.HP = c.HPMax * hpPct / 100
	c.Energy = energy
	return c
}

func mustProfile(t *testing.T, p Personality) Profile {
	t.Helper()
	pr, err := ProfileFor(p)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	return pr
}

func TestFleeCheckedBeforeAttack(t *testing.T) {
	p := mustProfile(t, Trickster)
	self := combatant(20, 100)
	d := Decide(self, combatant(100, 100), p, engine.NewSequenceDice(0))
	if d.Step != StepFlee || d.Action.Kind != game.ActionFlee {
		t.Fatalf("expected flee, got %+v", d)
	}
}

func TestFleeOnLowEnergyBand(t *testing.T) {
	p := mustProfile(t, Trickster) // threshold 30, band up to 45
	if d := Decide(combatant(40, 10), combatant(100, 100), p, engine.NewSequenceDice(0)); d.Step != StepFlee {
		t.Fatalf("expected flee in low energy band, got %+v", d)
	}
	if d := Decide(combatant(40, 80), combatant(100, 100), p, engine.NewSequenceDice(0)); d.Step == StepFlee {
		t.Fatalf("did not expect flee with energy, got %+v", d)
	}
}

func TestSurrenderWhenOutmatched(t *testing.T) {
	p := mustProfile(t, Guardian)
	d := Decide(combatant(10, 100), combatant(90, 100), p, engine.NewSequenceDice(0))
	if d.Step != StepSurrender || d.Action.Kind != game.ActionSurrender {
		t.Fatalf("expected surrender, got %+v", d)
	}
	d = Decide(combatant(10, 100), combatant(15, 100), p, engine.NewSequenceDice(0))
	if d.Step == StepSurrender {
		t.Fatalf("should not surrender against a weakened opponent")
	}
}

func TestBerserkerNeverFleesOrSurrenders(t *testing.T) {
	p := mustProfile(t, Berserker)
	d := Decide(combatant(1, 0), combatant(100, 100), p, engine.NewSequenceDice(0))
	if d.Step != StepChoose {
		t.Fatalf("berserker should fight on, got %+v", d)
	}
}

func TestChosenActionIsAlwaysValid(t *testing.T) {
	dice := engine.NewDice(7)
	for _, p := range All() {
		for i := 0; i < 200; i++ {
			self := combatant(30+i%70, i%101)
			if i%3 == 0 {
				self.Cooldowns["quake"] = 1
			}
			d := Decide(self, combatant(100, 100), p, dice)
			if err := engine.Validate(self, d.Action); err != nil {
				t.Fatalf("%s chose invalid action %+v: %v", p.Personality, d.Action, err)
			}
			if d.Action.Kind == game.ActionAbility && self.CanUse(d.Action.AbilityID) != nil {
				t.Fatalf("unusable ability chosen")
			}
		}
	}
}

func TestNoEnergyFallsBackToBasicMoves(t *testing.T) {
	p := mustProfile(t, Berserker)
	for _, roll := range []float64{0, 30, 60, 99} {
		d := Decide(combatant(100, 0), combatant(100, 100), p, engine.NewSequenceDice(roll))
		if d.Action.Kind == game.ActionAbility {
			t.Fatalf("ability chosen without energy: %+v", d)
		}
	}
}

func TestThinkingDelayWithinRange(t *testing.T) {
	for _, p := range All() {
		for _, roll := range []float64{0, 50, 99.99} {
			got := ThinkingDelay(p, engine.NewSequenceDice(roll))
			if got < p.ThinkMin || got > p.ThinkMax {
				t.Fatalf("%s delay %v outside [%v,%v]", p.Personality, got, p.ThinkMin, p.ThinkMax)
			}
		}
	}
	if ThinkingDelay(Profile{ThinkMin: time.Second}, engine.NewSequenceDice(50)) != time.Second {
		t.Fatalf("degenerate range returns min")
	}
}

func TestPickCoversEveryPersonality(t *testing.T) {
	seen := map[Personality]bool{}
	for _, roll := range []float64{0, 25, 50, 75, 99.9} {
		seen[Pick(engine.NewSequenceDice(roll)).Personality] = true
	}
	if len(seen) != len(All()) {
		t.Fatalf("expected all personalities, got %v", seen)
	}
	if _, err := ProfileFor("pacifist"); err == nil {
		t.Fatalf("unknown personality must fail")
	}
}

func TestMirrorAvatar(t *testing.T) {
	human := avatar()
	p := mustProfile(t, Guardian)
	m := MirrorAvatar("ai-av", "ai:guardian", human, p, engine.NewSequenceDice(99))
	if m.Nivel != human.Nivel || m.Raridade != human.Raridade || !m.Alive {
		t.Fatalf("mirror should keep level and rarity: %+v", m)
	}
	if m.Stats.Resistencia != 11 {
		t.Fatalf("expected scaled resistencia 11, got %d", m.Stats.Resistencia)
	}
	if m.Elemento != game.ElementSombra {
		t.Fatalf("expected last element, got %s", m.Elemento)
	}
	m.Abilities[0].Power = 999
	if human.Abilities[0].Power == 999 {
		t.Fatalf("mirror must not alias abilities")
	}
}

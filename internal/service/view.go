package service

import (
	"time"

	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/engine"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/game"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/reward"
)

type AbilityView struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Kind         game.AbilityKind `json:"kind"`
	Cost         int              `json:"cost"`
	Cooldown     int              `json:"cooldown"`
	CooldownLeft int              `json:"cooldown_left"`
	Available    bool             `json:"available"`
}

type CombatantView struct {
	UserID    string        `json:"user_id"`
	AvatarID  string        `json:"avatar_id"`
	Name      string        `json:"name"`
	Elemento  game.Element  `json:"elemento"`
	Nivel     int           `json:"nivel"`
	IsAI      bool          `json:"is_ai"`
	Ready     bool          `json:"ready"`
	HP        int           `json:"hp"`
	HPMax     int           `json:"hp_max"`
	Energy    int           `json:"energy"`
	Defense   int           `json:"defense"`
	Abilities []AbilityView `json:"abilities,omitempty"`
}

// BattleView is one participant's view of a battle. It is complete after
// every turn, so a client can render from any single poll.
type BattleView struct {
	MatchID       string             `json:"match_id"`
	Status        game.BattleStatus  `json:"status"`
	YourSlot      int                `json:"your_slot"`
	YourTurn      bool               `json:"your_turn"`
	CurrentPlayer int                `json:"current_player"`
	TurnNumber    int                `json:"turn_number"`
	TurnDeadline  *time.Time         `json:"turn_deadline,omitempty"`
	SecondsLeft   int                `json:"seconds_left"`
	You           CombatantView      `json:"you"`
	Opponent      CombatantView      `json:"opponent"`
	WinnerUserID  *string            `json:"winner_user_id,omitempty"`
	Victory       *bool              `json:"victory,omitempty"`
	EndReason     game.EndReason     `json:"end_reason,omitempty"`
	Message       string             `json:"message"`
	LastAction    *game.ActionRecord `json:"last_action,omitempty"`
	StakedFame    int                `json:"staked_fame"`
	Personality   string             `json:"personality,omitempty"`
	Revision      int                `json:"revision"`
	Outcome       *game.Outcome      `json:"outcome,omitempty"`
}

func combatantView(s *game.PlayerSlot, withAbilities bool) CombatantView {
	c := engine.NewCombatant(s.Avatar, s.State)
	v := CombatantView{
		UserID:   s.UserID,
		AvatarID: s.AvatarID,
		Name:     s.Avatar.Name,
		Elemento: s.Avatar.Elemento,
		Nivel:    s.Avatar.Nivel,
		IsAI:     s.IsAI,
		Ready:    s.Ready,
		HP:       c.HP,
		HPMax:    c.HPMax,
		Energy:   c.Energy,
		Defense:  c.Defense,
	}
	if !withAbilities {
		return v
	}
	for _, ab := range s.Avatar.Abilities {
		v.Abilities = append(v.Abilities, AbilityView{
			ID:           ab.ID,
			Name:         ab.Name,
			Kind:         ab.Kind,
			Cost:         ab.Cost,
			Cooldown:     ab.Cooldown,
			CooldownLeft: c.Cooldowns[ab.ID],
			Available:    c.CanUse(ab.ID) == nil,
		})
	}
	return v
}

// NewBattleView builds userID's view of b. The caller must take part in b.
func NewBattleView(b *game.Battle, userID string, now time.Time) *BattleView {
	slot := b.SlotOf(userID)
	if slot == 0 {
		slot = 1
	}
	v := &BattleView{
		MatchID:       b.ID,
		Status:        b.Status,
		YourSlot:      slot,
		CurrentPlayer: b.CurrentPlayer,
		TurnNumber:    b.TurnNumber,
		You:           combatantView(b.Slot(slot), true),
		Opponent:      combatantView(b.Slot(game.Opponent(slot)), false),
		WinnerUserID:  b.WinnerUserID,
		EndReason:     b.EndReason,
		Message:       b.Message,
		LastAction:    b.LastAction,
		StakedFame:    b.StakedFame,
		Personality:   b.Personality,
		Revision:      b.Revision,
	}
	if b.Status == game.StatusActive {
		v.YourTurn = b.CurrentPlayer == slot
		deadline := b.TurnDeadline
		v.TurnDeadline = &deadline
		if left := deadline.Sub(now); left > 0 {
			v.SecondsLeft = int(left.Round(time.Second) / time.Second)
		}
	}
	if b.Status == game.StatusFinished && b.WinnerUserID != nil {
		won := *b.WinnerUserID == userID
		v.Victory = &won
		for _, o := range reward.Outcomes(b) {
			if o.UserID == userID {
				o := o
				v.Outcome = &o
			}
		}
	}
	return v
}

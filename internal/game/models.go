package game

import "time"

// BattleStatus is the lifecycle state of a Battle.
type BattleStatus string

const (
	StatusWaiting   BattleStatus = "waiting"
	StatusActive    BattleStatus = "active"
	StatusFinished  BattleStatus = "finished"
	StatusCancelled BattleStatus = "cancelled"
)

// EndReason records why a battle reached a terminal status.
type EndReason string

const (
	EndReasonNone        EndReason = ""
	EndReasonKnockout    EndReason = "knockout"
	EndReasonFled        EndReason = "fled"
	EndReasonSurrendered EndReason = "surrendered"
	EndReasonCancelled   EndReason = "cancelled"
)

// ActionKind is a player's (or the AI's) chosen action for one turn.
type ActionKind string

const (
	ActionAttack    ActionKind = "attack"
	ActionAbility   ActionKind = "ability"
	ActionDefend    ActionKind = "defend"
	ActionFlee      ActionKind = "flee"
	ActionSurrender ActionKind = "surrender"
	// ActionSkip is produced by the server when a turn deadline passes. It
	// is never accepted from clients.
	ActionSkip ActionKind = "skip"
)

// CombatantState is the persisted, mutable part of a combatant. Everything
// else (max HP, effective stats) is derived from the avatar snapshot.
type CombatantState struct {
	HP        int            `json:"hp"`
	Energy    int            `json:"energy"`
	Defense   int            `json:"defense"`
	Cooldowns map[string]int `json:"cooldowns"`
}

// ActionRecord describes the last resolved turn so polling clients can
// reconcile what they missed.
type ActionRecord struct {
	TurnNumber    int        `json:"turn_number"`
	ActorSlot     int        `json:"actor_slot"`
	ActorUserID   string     `json:"actor_user_id"`
	Kind          ActionKind `json:"kind"`
	AbilityID     string     `json:"ability_id,omitempty"`
	Hit           bool       `json:"hit"`
	Critical      bool       `json:"critical"`
	Damage        int        `json:"damage"`
	Healed        int        `json:"healed"`
	DefenseGained int        `json:"defense_gained"`
	EnergyDelta   int        `json:"energy_delta"`
	SelfDamage    int        `json:"self_damage"`
	FleeChance    int        `json:"flee_chance,omitempty"`
	Fled          bool       `json:"fled"`
	Surrendered   bool       `json:"surrendered"`
	Summary       string     `json:"summary"`
	At            time.Time  `json:"at"`
}

// PlayerSlot is one side of a battle. Slots are numbered 1 and 2.
type PlayerSlot struct {
	UserID     string         `json:"user_id" gorm:"index;size:64"`
	AvatarID   string         `json:"avatar_id" gorm:"size:64"`
	IsAI       bool           `json:"is_ai"`
	Ready      bool           `json:"ready"`
	LastSeenAt time.Time      `json:"last_seen_at"`
	Avatar     AvatarSnapshot `json:"avatar" gorm:"serializer:json"`
	State      CombatantState `json:"state" gorm:"serializer:json"`
}

// Battle is the authoritative record of one match. Revision is bumped on
// every persisted mutation and guards concurrent writers.
type Battle struct {
	ID               string        `json:"match_id" gorm:"primaryKey;size:36"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
	Status           BattleStatus  `json:"status" gorm:"index;size:16"`
	Player1          PlayerSlot    `json:"player1" gorm:"embedded;embeddedPrefix:p1_"`
	Player2          PlayerSlot    `json:"player2" gorm:"embedded;embeddedPrefix:p2_"`
	CurrentPlayer    int           `json:"current_player"`
	TurnNumber       int           `json:"turn_number"`
	TurnDeadline     time.Time     `json:"turn_deadline"`
	ReadyDeadline    time.Time     `json:"ready_deadline"`
	AIActAfter       time.Time     `json:"-"`
	WinnerUserID     *string       `json:"winner_user_id"`
	EndReason        EndReason     `json:"end_reason" gorm:"size:16"`
	Message          string        `json:"message"`
	LastAction       *ActionRecord `json:"last_action" gorm:"serializer:json"`
	StakedFame       int           `json:"staked_fame"`
	Personality      string        `json:"personality,omitempty" gorm:"size:32"`
	Revision         int           `json:"revision"`
	FinishedAt       *time.Time    `json:"finished_at"`
	OutcomeDelivered bool          `json:"-"`
}

// Store battles in a dedicated table for clarity
func (Battle) TableName() string { return "pvp_battles" }

// Slot returns the slot with the given number (1 or 2), or nil.
func (b *Battle) Slot(n int) *PlayerSlot {
	switch n {
	case 1:
		return &b.Player1
	case 2:
		return &b.Player2
	}
	return nil
}

// SlotOf returns the slot number held by userID, or 0 when the user is not
// a participant.
func (b *Battle) SlotOf(userID string) int {
	switch {
	case userID == "":
		return 0
	case b.Player1.UserID == userID:
		return 1
	case b.Player2.UserID == userID:
		return 2
	}
	return 0
}

// Opponent returns the other slot number.
func Opponent(slot int) int { return 3 - slot }

// IsTerminal reports whether the battle is finished or cancelled.
func (b *Battle) IsTerminal() bool {
	return b.Status == StatusFinished || b.Status == StatusCancelled
}

// IsLive reports whether the battle still occupies its players.
func (b *Battle) IsLive() bool {
	return b.Status == StatusWaiting || b.Status == StatusActive
}

// QueueEntry is a player waiting for an opponent. A user holds at most one.
type QueueEntry struct {
	ID           uint           `json:"-" gorm:"primaryKey"`
	UserID       string         `json:"user_id" gorm:"uniqueIndex;size:64"`
	AvatarID     string         `json:"avatar_id" gorm:"size:64"`
	Avatar       AvatarSnapshot `json:"avatar" gorm:"serializer:json"`
	PowerRating  float64        `json:"power_rating"`
	EnqueuedAt   time.Time      `json:"enqueued_at" gorm:"index"`
	LastPolledAt time.Time      `json:"last_polled_at" gorm:"index"`
}

func (QueueEntry) TableName() string { return "matchmaking_entries" }

// OutcomeCause classifies an outcome from the receiving player's side.
type OutcomeCause string

const (
	CauseKnockoutWin         OutcomeCause = "knockout_win"
	CauseKnockoutLoss        OutcomeCause = "knockout_loss"
	CauseSurrendered         OutcomeCause = "surrendered"
	CauseOpponentSurrendered OutcomeCause = "opponent_surrendered"
	CauseFled                OutcomeCause = "fled"
	CauseOpponentFled        OutcomeCause = "opponent_fled"
)

// Outcome is the reward record handed to the account/economy layer, one per
// human participant of a finished battle.
type Outcome struct {
	ID              uint         `json:"-" gorm:"primaryKey"`
	CreatedAt       time.Time    `json:"created_at"`
	MatchID         string       `json:"match_id" gorm:"size:36;uniqueIndex:idx_outcome_match_user"`
	UserID          string       `json:"user_id" gorm:"size:64;uniqueIndex:idx_outcome_match_user"`
	AvatarID        string       `json:"avatar_id" gorm:"size:64"`
	Victory         bool         `json:"victory"`
	Cause           OutcomeCause `json:"cause" gorm:"size:32"`
	FameDelta       int          `json:"fame_delta"`
	BondDelta       int          `json:"bond_delta"`
	ExhaustionDelta int          `json:"exhaustion_delta"`
	AvatarDied      bool         `json:"avatar_died"`
}

func (Outcome) TableName() string { return "battle_outcomes" }

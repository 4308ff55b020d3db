package game

import "time"

// Element is an avatar's elemental affinity.
type Element string

const (
	ElementFogo         Element = "fogo"
	ElementAgua         Element = "agua"
	ElementTerra        Element = "terra"
	ElementAr           Element = "ar"
	ElementEletricidade Element = "eletricidade"
	ElementLuz          Element = "luz"
	ElementSombra       Element = "sombra"
)

// Elements lists every element in a stable order.
var Elements = []Element{ElementFogo, ElementAgua, ElementTerra, ElementAr, ElementEletricidade, ElementLuz, ElementSombra}

// Rarity drives the max HP bonus.
type Rarity string

const (
	RarityComum    Rarity = "comum"
	RarityRaro     Rarity = "raro"
	RarityEpico    Rarity = "epico"
	RarityLendario Rarity = "lendario"
)

// StatKey names one of the four base stats.
type StatKey string

const (
	StatForca       StatKey = "forca"
	StatAgilidade   StatKey = "agilidade"
	StatResistencia StatKey = "resistencia"
	StatFoco        StatKey = "foco"
)

type Stats struct {
	Forca       int `json:"forca" yaml:"forca"`
	Agilidade   int `json:"agilidade" yaml:"agilidade"`
	Resistencia int `json:"resistencia" yaml:"resistencia"`
	Foco        int `json:"foco" yaml:"foco"`
}

// Get returns the named stat. Unknown keys read as zero.
func (s Stats) Get(k StatKey) int {
	switch k {
	case StatForca:
		return s.Forca
	case StatAgilidade:
		return s.Agilidade
	case StatResistencia:
		return s.Resistencia
	case StatFoco:
		return s.Foco
	}
	return 0
}

// Sum returns the total of all four stats.
func (s Stats) Sum() int { return s.Forca + s.Agilidade + s.Resistencia + s.Foco }

// AbilityKind selects how an ability resolves.
type AbilityKind string

const (
	AbilityOffensive AbilityKind = "offensive"
	AbilityHeal      AbilityKind = "heal"
	AbilityBuff      AbilityKind = "buff"
)

// Ability is one special move of an avatar.
type Ability struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Kind        AbilityKind `json:"kind" yaml:"kind"`
	PrimaryStat StatKey     `json:"primary_stat" yaml:"primary_stat"`
	Power       int         `json:"power" yaml:"power"`
	Cost        int         `json:"cost" yaml:"cost"`
	Cooldown    int         `json:"cooldown" yaml:"cooldown"`
}

// AvatarSnapshot is the read-only view of an avatar consumed by the battle
// core. The core never writes it back.
type AvatarSnapshot struct {
	ID          string    `json:"id"`
	OwnerUserID string    `json:"owner_user_id"`
	Name        string    `json:"name"`
	Elemento    Element   `json:"elemento"`
	Raridade    Rarity    `json:"raridade"`
	Nivel       int       `json:"nivel"`
	Vinculo     int       `json:"vinculo"`
	Exhaustion  int       `json:"exhaustion"`
	Alive       bool      `json:"alive"`
	Stats       Stats     `json:"stats"`
	Abilities   []Ability `json:"abilities"`
}

// Ability looks up an ability by id.
func (a AvatarSnapshot) Ability(id string) (Ability, bool) {
	for _, ab := range a.Abilities {
		if ab.ID == id {
			return ab, true
		}
	}
	return Ability{}, false
}

// Avatar is the avatar row read by the avatar provider. The surrounding
// collection features own it; this service only seeds and reads it.
type Avatar struct {
	ID          string `gorm:"primaryKey;size:64"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	OwnerUserID string  `gorm:"index;size:64"`
	Name        string  `gorm:"size:64"`
	Elemento    Element `gorm:"size:16"`
	Raridade    Rarity  `gorm:"size:16"`
	Nivel       int
	Vinculo     int
	Exhaustion  int
	Alive       bool
	Stats       Stats     `gorm:"embedded;embeddedPrefix:stat_"`
	Abilities   []Ability `gorm:"serializer:json"`
}

// TableName overrides the default table name so the persisted table is
// `avatar_snapshots`.
func (Avatar) TableName() string { return "avatar_snapshots" }

// Snapshot converts the row into the battle core's read model.
func (a Avatar) Snapshot() AvatarSnapshot {
	abilities := make([]Ability, len(a.Abilities))
	copy(abilities, a.Abilities)
	return AvatarSnapshot{
		ID:          a.ID,
		OwnerUserID: a.OwnerUserID,
		Name:        a.Name,
		Elemento:    a.Elemento,
		Raridade:    a.Raridade,
		Nivel:       a.Nivel,
		Vinculo:     a.Vinculo,
		Exhaustion:  a.Exhaustion,
		Alive:       a.Alive,
		Stats:       a.Stats,
		Abilities:   abilities,
	}
}

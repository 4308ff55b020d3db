package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/game"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/matchmaking"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/session"
	"gopkg.in/yaml.v3"
)

type avatarEntry struct {
	ID          string         `yaml:"id"`
	OwnerUserID string         `yaml:"owner_user_id"`
	Name        string         `yaml:"name"`
	Elemento    game.Element   `yaml:"elemento"`
	Raridade    game.Rarity    `yaml:"raridade"`
	Nivel       int            `yaml:"nivel"`
	Vinculo     int            `yaml:"vinculo"`
	Exhaustion  int            `yaml:"exhaustion"`
	Alive       *bool          `yaml:"alive"`
	Stats       game.Stats     `yaml:"stats"`
	Abilities   []game.Ability `yaml:"abilities"`
}

type rawConfig struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	LogLevel string `yaml:"log_level"`
	Battle   struct {
		TurnTimeout     time.Duration `yaml:"turn_timeout"`
		ReadyGrace      time.Duration `yaml:"ready_grace"`
		DisconnectGrace time.Duration `yaml:"disconnect_grace"`
	} `yaml:"battle"`
	Matchmaking struct {
		Tolerance       float64       `yaml:"tolerance"`
		Stake           *int          `yaml:"stake"`
		AIFallbackAfter time.Duration `yaml:"ai_fallback_after"`
		StaleAfter      time.Duration `yaml:"stale_after"`
		JanitorInterval time.Duration `yaml:"janitor_interval"`
	} `yaml:"matchmaking"`
	Avatars []avatarEntry `yaml:"avatars"`
}

// envOverrides are applied on top of the file. Empty values keep the file's.
type envOverrides struct {
	DBPath        string `env:"ARENA_DB"`
	Address       string `env:"ARENA_ADDR"`
	SessionSecret string `env:"SESSION_SECRET"`
	LogLevel      string `env:"ARENA_LOG_LEVEL"`
}

// LoadedConfig is the resolved server configuration.
type LoadedConfig struct {
	ServerAddress string
	DBPath        string
	SessionSecret string
	LogLevel      string

	Rules           session.Rules
	Tolerance       float64
	Stake           int
	AIFallbackAfter time.Duration
	QueueStaleAfter time.Duration
	JanitorInterval time.Duration

	Avatars []game.Avatar
}

const defaultStake = 100

// LoadConfig reads the YAML file at path, fills defaults and applies
// environment overrides.
func LoadConfig(path string) (*LoadedConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes and validates a YAML document without touching the
// environment.
func Parse(b []byte) (*LoadedConfig, error) {
	var rc rawConfig
	if err := yaml.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}

	rules := session.DefaultRules()
	if rc.Battle.TurnTimeout > 0 {
		rules.TurnTimeout = rc.Battle.TurnTimeout
	}
	if rc.Battle.ReadyGrace > 0 {
		rules.ReadyGrace = rc.Battle.ReadyGrace
	}
	if rc.Battle.DisconnectGrace > 0 {
		rules.DisconnectGrace = rc.Battle.DisconnectGrace
	}

	cfg := &LoadedConfig{
		ServerAddress:   orDefault(rc.Server.Address, ":8080"),
		DBPath:          orDefault(rc.Database.Path, "./data/arena.db"),
		LogLevel:        orDefault(rc.LogLevel, "info"),
		Rules:           rules,
		Tolerance:       rc.Matchmaking.Tolerance,
		Stake:           defaultStake,
		AIFallbackAfter: rc.Matchmaking.AIFallbackAfter,
		QueueStaleAfter: rc.Matchmaking.StaleAfter,
		JanitorInterval: rc.Matchmaking.JanitorInterval,
	}
	if cfg.Tolerance == 0 {
		cfg.Tolerance = matchmaking.DefaultTolerance
	}
	if cfg.Tolerance < 0 || cfg.Tolerance > 1 {
		return nil, fmt.Errorf("matchmaking.tolerance must be within (0,1], got %v", cfg.Tolerance)
	}
	if rc.Matchmaking.Stake != nil {
		if *rc.Matchmaking.Stake < 0 {
			return nil, fmt.Errorf("matchmaking.stake must not be negative")
		}
		cfg.Stake = *rc.Matchmaking.Stake
	}
	if cfg.QueueStaleAfter <= 0 {
		cfg.QueueStaleAfter = 30 * time.Second
	}
	if cfg.JanitorInterval <= 0 {
		cfg.JanitorInterval = 10 * time.Second
	}

	avatars, err := convertAvatars(rc.Avatars)
	if err != nil {
		return nil, err
	}
	cfg.Avatars = avatars
	return cfg, nil
}

func orDefault(v, def string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return def
}

func (c *LoadedConfig) applyEnv() error {
	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if ov.DBPath != "" {
		c.DBPath = ov.DBPath
	}
	if ov.Address != "" {
		c.ServerAddress = ov.Address
	}
	if ov.LogLevel != "" {
		c.LogLevel = ov.LogLevel
	}
	c.SessionSecret = ov.SessionSecret
	return nil
}

var validElements = func() map[game.Element]bool {
	m := make(map[game.Element]bool, len(game.Elements))
	for _, e := range game.Elements {
		m[e] = true
	}
	return m
}()

func convertAvatars(entries []avatarEntry) ([]game.Avatar, error) {
	out := make([]game.Avatar, 0, len(entries))
	ids := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			return nil, fmt.Errorf("avatar entry missing 'id'")
		}
		if _, dup := ids[id]; dup {
			return nil, fmt.Errorf("duplicate avatar id '%s'", id)
		}
		ids[id] = struct{}{}
		if strings.TrimSpace(e.OwnerUserID) == "" {
			return nil, fmt.Errorf("avatar '%s' missing 'owner_user_id'", id)
		}
		if !validElements[e.Elemento] {
			return nil, fmt.Errorf("avatar '%s' has unknown elemento '%s'", id, e.Elemento)
		}
		rarity := e.Raridade
		if rarity == "" {
			rarity = game.RarityComum
		}
		abilityIDs := make(map[string]struct{}, len(e.Abilities))
		for _, ab := range e.Abilities {
			if ab.ID == "" {
				return nil, fmt.Errorf("avatar '%s' has an ability without 'id'", id)
			}
			if _, dup := abilityIDs[ab.ID]; dup {
				return nil, fmt.Errorf("avatar '%s' has duplicate ability id '%s'", id, ab.ID)
			}
			abilityIDs[ab.ID] = struct{}{}
			switch ab.Kind {
			case game.AbilityOffensive, game.AbilityHeal, game.AbilityBuff:
			default:
				return nil, fmt.Errorf("avatar '%s' ability '%s' has unknown kind '%s'", id, ab.ID, ab.Kind)
			}
		}
		alive := true
		if e.Alive != nil {
			alive = *e.Alive
		}
		out = append(out, game.Avatar{
			ID:          id,
			OwnerUserID: e.OwnerUserID,
			Name:        orDefault(e.Name, id),
			Elemento:    e.Elemento,
			Raridade:    rarity,
			Nivel:       e.Nivel,
			Vinculo:     e.Vinculo,
			Exhaustion:  e.Exhaustion,
			Alive:       alive,
			Stats:       e.Stats,
			Abilities:   e.Abilities,
		})
	}
	return out, nil
}

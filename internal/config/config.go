package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// PacingConfig holds the delays of visible table effects, in milliseconds.
// Fields marked scaled are divided by the host's animation speed.
type PacingConfig struct {
	StepMs          int `json:"step_ms"`
	ThinkMs         int `json:"think_ms"`
	SwapMs          int `json:"swap_ms"`    // scaled
	DiscardMs       int `json:"discard_ms"` // scaled
	DrawMs          int `json:"draw_ms"`    // scaled
	DrawExtraMs     int `json:"draw_extra_ms"`
	SeatSwapMs      int `json:"seat_swap_ms"` // scaled
	SeatSwapExtraMs int `json:"seat_swap_extra_ms"`
	RoundEndMs      int `json:"round_end_ms"`
	RevealPerSeatMs int `json:"reveal_per_seat_ms"`
	ScoreboardMs    int `json:"scoreboard_ms"`
	TickMs          int `json:"tick_ms"`
}

type ServerConfig struct {
	ListenAddr string `json:"listen_addr"`
	AdminAddr  string `json:"admin_addr"`
	MaxClients int    `json:"max_clients"`

	DeckSize         int `json:"deck_size"`
	EndgameScore     int `json:"endgame_score"`
	AnnouncerPenalty int `json:"announcer_penalty"`
	CountdownSeconds int `json:"countdown_seconds"`

	Pacing PacingConfig `json:"pacing"`

	// InviteSecret signs private table invites; invites are disabled when empty.
	InviteSecret     string `json:"invite_secret"`
	InviteTTLSeconds int    `json:"invite_ttl_seconds"`

	LogLevel       string `json:"log_level"`
	LogDevelopment bool   `json:"log_development"`
}

var (
	cfg      *ServerConfig
	loadOnce sync.Once
	loadErr  error
)

// Default returns the configuration used when no file or variable overrides a field.
func Default() ServerConfig {
	return ServerConfig{
		ListenAddr:       ":8080",
		AdminAddr:        ":8081",
		MaxClients:       250,
		DeckSize:         104,
		EndgameScore:     50,
		AnnouncerPenalty: 10,
		CountdownSeconds: 10,
		Pacing: PacingConfig{
			StepMs:          1000,
			ThinkMs:         3000,
			SwapMs:          6000,
			DiscardMs:       3000,
			DrawMs:          3000,
			DrawExtraMs:     500,
			SeatSwapMs:      6000,
			SeatSwapExtraMs: 750,
			RoundEndMs:      2000,
			RevealPerSeatMs: 3000,
			ScoreboardMs:    5000,
			TickMs:          1000,
		},
		InviteTTLSeconds: 3600,
		LogLevel:         "info",
	}
}

// LoadServerConfig loads the configuration once: defaults, then the JSON file at path
// (skipped when path is empty), then DUTCH_* variables from the environment and an
// optional .env file.
func LoadServerConfig(path string) error {
	loadOnce.Do(func() {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			loadErr = fmt.Errorf("failed to read .env: %w", err)
			return
		}

		var data []byte
		if path != "" {
			b, err := os.ReadFile(path)
			if err != nil {
				loadErr = fmt.Errorf("failed to read server config: %w", err)
				return
			}
			data = b
		}

		c, err := Parse(data, environ())
		if err != nil {
			loadErr = err
			return
		}
		cfg = c
	})
	return loadErr
}

// GetServerConfig returns the loaded configuration, or the defaults before a load.
func GetServerConfig() *ServerConfig {
	if cfg == nil {
		d := Default()
		return &d
	}
	return cfg
}

// Parse builds a configuration from optional JSON data and an environment map.
func Parse(data []byte, env map[string]string) (*ServerConfig, error) {
	c := Default()
	if len(data) > 0 {
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal server config: %w", err)
		}
	}
	if err := c.ApplyEnv(env); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ApplyEnv overrides fields from DUTCH_* keys. Nakama passes its runtime env map here.
func (c *ServerConfig) ApplyEnv(env map[string]string) error {
	strs := map[string]*string{
		"DUTCH_LISTEN_ADDR":   &c.ListenAddr,
		"DUTCH_ADMIN_ADDR":    &c.AdminAddr,
		"DUTCH_INVITE_SECRET": &c.InviteSecret,
		"DUTCH_LOG_LEVEL":     &c.LogLevel,
	}
	for k, p := range strs {
		if v, ok := env[k]; ok {
			*p = v
		}
	}

	ints := map[string]*int{
		"DUTCH_MAX_CLIENTS":        &c.MaxClients,
		"DUTCH_DECK_SIZE":          &c.DeckSize,
		"DUTCH_ENDGAME_SCORE":      &c.EndgameScore,
		"DUTCH_ANNOUNCER_PENALTY":  &c.AnnouncerPenalty,
		"DUTCH_COUNTDOWN_SECONDS":  &c.CountdownSeconds,
		"DUTCH_INVITE_TTL_SECONDS": &c.InviteTTLSeconds,
		"DUTCH_STEP_MS":            &c.Pacing.StepMs,
		"DUTCH_THINK_MS":           &c.Pacing.ThinkMs,
		"DUTCH_SWAP_MS":            &c.Pacing.SwapMs,
		"DUTCH_DISCARD_MS":         &c.Pacing.DiscardMs,
		"DUTCH_DRAW_MS":            &c.Pacing.DrawMs,
		"DUTCH_DRAW_EXTRA_MS":      &c.Pacing.DrawExtraMs,
		"DUTCH_SEAT_SWAP_MS":       &c.Pacing.SeatSwapMs,
		"DUTCH_SEAT_SWAP_EXTRA_MS": &c.Pacing.SeatSwapExtraMs,
		"DUTCH_ROUND_END_MS":       &c.Pacing.RoundEndMs,
		"DUTCH_REVEAL_PER_SEAT_MS": &c.Pacing.RevealPerSeatMs,
		"DUTCH_SCOREBOARD_MS":      &c.Pacing.ScoreboardMs,
		"DUTCH_TICK_MS":            &c.Pacing.TickMs,
	}
	for k, p := range ints {
		v, ok := env[k]
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", k, err)
		}
		*p = n
	}

	if v, ok := env["DUTCH_LOG_DEVELOPMENT"]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DUTCH_LOG_DEVELOPMENT: %w", err)
		}
		c.LogDevelopment = b
	}
	return nil
}

// Validate rejects values the table engine cannot run with.
func (c *ServerConfig) Validate() error {
	switch {
	case c.MaxClients <= 0 || c.MaxClients > 250:
		return fmt.Errorf("max_clients must be in 1..250, got %d", c.MaxClients)
	case c.DeckSize <= 0 || (c.DeckSize%32 != 0 && c.DeckSize%52 != 0):
		return fmt.Errorf("deck_size must be a multiple of 32 or 52, got %d", c.DeckSize)
	case c.EndgameScore <= 0:
		return fmt.Errorf("endgame_score must be positive, got %d", c.EndgameScore)
	case c.CountdownSeconds < 0:
		return fmt.Errorf("countdown_seconds must not be negative, got %d", c.CountdownSeconds)
	}
	return nil
}

func environ() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, "DUTCH_") {
			out[k] = v
		}
	}
	return out
}

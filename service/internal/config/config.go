// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jason-s-yu/stackfall/engine"
	"github.com/joho/godotenv"
)

// Config holds process-wide settings read from the environment.
type Config struct {
	Port      string // HTTP listen port.
	LogLevel  string // logrus level name.
	LogFormat string // "text" or "json".

	Tick        time.Duration     // Fixed simulation step for every match.
	Mode        engine.Mode       // Default mode for new matches.
	Difficulty  engine.Difficulty // Default difficulty for new matches.
	Competitive bool              // Exchange garbage between seats.
	TimeLimitMs uint32            // Time attack clock; 0 keeps the engine default.
	LineGoal    uint16            // Time attack line goal; 0 disables.
	ItemEvery   uint8             // Item mode cadence; 0 keeps the engine default.

	RedisAddr   string // Empty disables the match journal.
	DatabaseURL string // Empty disables result persistence.

	SeatSecret string        // HMAC key for seat tickets.
	SeatTTL    time.Duration // Lifetime of an issued seat ticket.
}

// Load reads a .env file if one exists, then the environment, and returns the
// resulting Config. Unset variables take defaults; malformed ones are errors.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	c := Config{
		Port:        envOr("PORT", "8080"),
		LogLevel:    envOr("LOG_LEVEL", "info"),
		LogFormat:   envOr("LOG_FORMAT", "text"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SeatSecret:  os.Getenv("SEAT_SECRET"),
		Difficulty:  engine.ParseDifficulty(strings.ToLower(envOr("DIFFICULTY", "normal"))),
	}

	var err error
	if c.Mode, err = engine.ParseMode(strings.ToLower(envOr("MODE", "normal"))); err != nil {
		return Config{}, fmt.Errorf("MODE: %w", err)
	}
	tickMs, err := envUint("TICK_MS", 16, 1000)
	if err != nil {
		return Config{}, err
	}
	if tickMs == 0 {
		return Config{}, errors.New("TICK_MS must be positive")
	}
	c.Tick = time.Duration(tickMs) * time.Millisecond

	if c.Competitive, err = envBool("COMPETITIVE", true); err != nil {
		return Config{}, err
	}
	limit, err := envUint("TIME_LIMIT_MS", 0, 1<<32-1)
	if err != nil {
		return Config{}, err
	}
	c.TimeLimitMs = uint32(limit)
	goal, err := envUint("LINE_GOAL", 0, 1<<16-1)
	if err != nil {
		return Config{}, err
	}
	c.LineGoal = uint16(goal)
	every, err := envUint("ITEM_EVERY", 0, 255)
	if err != nil {
		return Config{}, err
	}
	c.ItemEvery = uint8(every)

	ttlMin, err := envUint("SEAT_TTL_MIN", 30, 24*60)
	if err != nil {
		return Config{}, err
	}
	c.SeatTTL = time.Duration(ttlMin) * time.Minute

	if c.SeatSecret == "" {
		return Config{}, errors.New("SEAT_SECRET must be set")
	}
	return c, nil
}

// Rules returns the engine rules every new match starts from.
func (c Config) Rules() engine.Rules {
	r := engine.DefaultRules()
	r.Mode = c.Mode
	r.Difficulty = c.Difficulty
	r.Competitive = c.Competitive
	r.TimeLimitMs = c.TimeLimitMs
	r.LineGoal = c.LineGoal
	r.ItemEvery = c.ItemEvery
	return r
}

// TickMs returns the simulation step in whole milliseconds.
func (c Config) TickMs() uint32 { return uint32(c.Tick / time.Millisecond) }

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envUint(key string, def, max uint64) (uint64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n > max {
		return 0, fmt.Errorf("%s: %d exceeds %d", key, n, max)
	}
	return n, nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// Config holds the tunable game rules and server settings. The drink
// and layout constants are policy, not fixed facts of the ruleset.
type Config struct {
	PyramidHeight            int
	DiamondPeak              int
	DrinksPerRow             int
	BusDrinksPerMiss         int
	BusPenaltyThreshold      int
	BusGraceSeconds          int
	MinPlayers               int
	MaxLobbyPlayers          int
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
	PublicBaseURL            string
}

func Default() Config {
	return Config{
		PyramidHeight:            4,
		DiamondPeak:              3,
		DrinksPerRow:             1,
		BusDrinksPerMiss:         1,
		BusPenaltyThreshold:      15,
		BusGraceSeconds:          30,
		MinPlayers:               2,
		MaxLobbyPlayers:          10,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
		PublicBaseURL:            "http://localhost:8080",
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("PYRAMID_HEIGHT"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.PyramidHeight = value
		}
	}
	if raw := os.Getenv("DIAMOND_PEAK"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DiamondPeak = value
		}
	}
	if raw := os.Getenv("DRINKS_PER_ROW"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DrinksPerRow = value
		}
	}
	if raw := os.Getenv("BUS_DRINKS_PER_MISS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.BusDrinksPerMiss = value
		}
	}
	if raw := os.Getenv("BUS_PENALTY_THRESHOLD"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.BusPenaltyThreshold = value
		}
	}
	if raw := os.Getenv("BUS_GRACE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.BusGraceSeconds = value
		}
	}
	if raw := os.Getenv("MIN_PLAYERS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.MinPlayers = value
		}
	}
	if raw := os.Getenv("MAX_LOBBY_PLAYERS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.MaxLobbyPlayers = value
		}
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSeconds = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_IDLE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxIdleTimeSeconds = value
		}
	}
	if raw := os.Getenv("PUBLIC_BASE_URL"); raw != "" {
		cfg.PublicBaseURL = raw
	}
	return cfg
}

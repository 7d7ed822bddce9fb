package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds all configuration for the application
type Config struct {
	// Game configuration
	Game GameConfig `json:"game"`

	// Storage configuration
	Storage StorageConfig `json:"storage"`

	// Server configuration
	Server ServerConfig `json:"server"`
}

// GameConfig holds simulation specific configuration
type GameConfig struct {
	// RNG seed, 0 means seeded from the clock
	Seed int64 `json:"seed"`

	// Milliseconds between ticks
	TickIntervalMS int64 `json:"tick_interval_ms"`

	// Ticks per in-game day, used for contact daily limits
	TicksPerDay int64 `json:"ticks_per_day"`

	// Starting wallet balance
	StartingWealth float64 `json:"starting_wealth"`

	// Passive income credited each tick before multipliers
	BaseIncomePerTick float64 `json:"base_income_per_tick"`

	// Pool refills up to this many offers
	MinDealsAvailable int `json:"min_deals_available"`

	// Hard ceiling on simultaneous offers
	MaxDealsAvailable int `json:"max_deals_available"`

	// Heat meter ceiling
	MaxHeat float64 `json:"max_heat"`

	// Passive heat decay per tick
	HeatDecayPerTick float64 `json:"heat_decay_per_tick"`

	// Heat added when a deal fails
	HeatPerFailedDeal float64 `json:"heat_per_failed_deal"`

	// Heat added when a contact betrays
	HeatPerBetrayal float64 `json:"heat_per_betrayal"`

	// Heat added when an investigation catches the player
	HeatWhenCaught float64 `json:"heat_when_caught"`

	// Cap on simultaneously open investigations
	MaxActiveInvestigations int `json:"max_active_investigations"`

	// Cap on the active effects ledger
	MaxActiveEffects int `json:"max_active_effects"`

	// What to do when the effects ledger is full (drop-new, evict-oldest)
	EffectOverflowPolicy string `json:"effect_overflow_policy"`

	// Activity log retention
	MaxLogEntries int `json:"max_log_entries"`

	// Loyalty granted to a contact at first use
	StartingLoyalty int `json:"starting_loyalty"`

	// Loyalty gained per successful ability use
	LoyaltyGainPerSuccess int `json:"loyalty_gain_per_success"`
}

// StorageConfig holds persistence specific configuration
type StorageConfig struct {
	// Path of the snapshot file
	SavePath string `json:"save_path"`

	// Seconds between periodic snapshot saves
	SaveIntervalSec int `json:"save_interval_sec"`
}

// ServerConfig holds server specific configuration
type ServerConfig struct {
	// Server port
	Port string `json:"port"`

	// Log level (debug, info, warn, error)
	LogLevel string `json:"log_level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Game: GameConfig{
			Seed:                    0,
			TickIntervalMS:          100,
			TicksPerDay:             8640,
			StartingWealth:          500,
			BaseIncomePerTick:       5,
			MinDealsAvailable:       4,
			MaxDealsAvailable:       6,
			MaxHeat:                 100,
			HeatDecayPerTick:        0.05,
			HeatPerFailedDeal:       8,
			HeatPerBetrayal:         15,
			HeatWhenCaught:          10,
			MaxActiveInvestigations: 3,
			MaxActiveEffects:        8,
			EffectOverflowPolicy:    "drop-new",
			MaxLogEntries:           100,
			StartingLoyalty:         10,
			LoyaltyGainPerSuccess:   2,
		},
		Storage: StorageConfig{
			SavePath:        "./data/market_state.json",
			SaveIntervalSec: 60,
		},
		Server: ServerConfig{
			Port:     "8080",
			LogLevel: "info",
		},
	}
}

// LoadConfig loads configuration from a file
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return config, err
	}

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Create default config file
		file, err := os.Create(path)
		if err != nil {
			return config, err
		}
		defer file.Close()

		encoder := json.NewEncoder(file)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(config); err != nil {
			return config, err
		}

		return config, nil
	}

	// Read config file
	file, err := os.Open(path)
	if err != nil {
		return config, err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return config, err
	}

	return config, nil
}

// SaveConfig saves configuration to a file
func SaveConfig(config Config, path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Create or truncate file
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	// Write config to file
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(config); err != nil {
		return err
	}

	return nil
}

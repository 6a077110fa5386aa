package config

import (
	"os"
	"strconv"

	"flavortag/internal/errors"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Physics    PhysicsConfig
	Evaluation EvaluationConfig
	Database   DatabaseConfig
	Paths      PathConfig
}

// PhysicsConfig holds external calibration constants of the source dataset.
// TotalBEvents is the sum of sWeights in the initial ntuple; EffectiveBEvents
// is the effective statistics variant used for error estimates.
type PhysicsConfig struct {
	TotalBEvents     float64
	EffectiveBEvents float64
}

// EvaluationConfig holds defaults for calibration and bootstrap runs
type EvaluationConfig struct {
	Calibrations int   // bootstrap trials
	Seed         int64 // base random seed for fold splits
	MaxWorkers   int   // concurrent bootstrap trials (0 = serial)
}

// DatabaseConfig holds the run-ledger connection settings
type DatabaseConfig struct {
	URL string
}

// PathConfig holds file system paths
type PathConfig struct {
	DatasetFile string
}

const (
	// Sum of sWeights over all B decays in the source ntuple.
	defaultTotalBEvents = 7.42867714256286621e5
	// Effective number of events given the sWeight distribution.
	defaultEffectiveBEvents = 8.17154485682e5

	defaultCalibrations = 30
	defaultSeed         = 11
	defaultMaxWorkers   = 4
)

// Load reads configuration from the environment, honoring a local .env file
func Load() (*Config, error) {
	// .env is optional; real deployments configure via environment
	_ = godotenv.Load()

	cfg := &Config{
		Physics: PhysicsConfig{
			TotalBEvents:     defaultTotalBEvents,
			EffectiveBEvents: defaultEffectiveBEvents,
		},
		Evaluation: EvaluationConfig{
			Calibrations: defaultCalibrations,
			Seed:         defaultSeed,
			MaxWorkers:   defaultMaxWorkers,
		},
		Database: DatabaseConfig{
			URL: os.Getenv("FLAVORTAG_DATABASE_URL"),
		},
		Paths: PathConfig{
			DatasetFile: os.Getenv("FLAVORTAG_DATASET_FILE"),
		},
	}

	var err error
	if cfg.Physics.TotalBEvents, err = envFloat("FLAVORTAG_N_B_EVENTS", cfg.Physics.TotalBEvents); err != nil {
		return nil, err
	}
	if cfg.Physics.EffectiveBEvents, err = envFloat("FLAVORTAG_N_B_STATEVENTS", cfg.Physics.EffectiveBEvents); err != nil {
		return nil, err
	}
	if cfg.Evaluation.Calibrations, err = envInt("FLAVORTAG_CALIBRATIONS", cfg.Evaluation.Calibrations); err != nil {
		return nil, err
	}
	seed, err := envInt("FLAVORTAG_SEED", int(cfg.Evaluation.Seed))
	if err != nil {
		return nil, err
	}
	cfg.Evaluation.Seed = int64(seed)
	if cfg.Evaluation.MaxWorkers, err = envInt("FLAVORTAG_MAX_WORKERS", cfg.Evaluation.MaxWorkers); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration consistency
func (c *Config) Validate() error {
	if c.Physics.TotalBEvents <= 0 {
		return errors.ConfigInvalid("total B event count must be positive")
	}
	if c.Physics.EffectiveBEvents <= 0 {
		return errors.ConfigInvalid("effective B event count must be positive")
	}
	if c.Evaluation.Calibrations < 1 {
		return errors.ConfigInvalid("bootstrap calibration count must be at least 1")
	}
	if c.Evaluation.MaxWorkers < 0 {
		return errors.ConfigInvalid("max workers cannot be negative")
	}
	return nil
}

func envFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid float for %s", key)
	}
	return v, nil
}

func envInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid integer for %s", key)
	}
	return v, nil
}

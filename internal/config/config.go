package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"battleship-ai/internal/game"
	"battleship-ai/internal/targeting"
)

const envPrefix = "BATTLESHIP_"

// Config carries every tunable of the engine and the binaries around it.
type Config struct {
	Strategy          string
	Depth             int
	TopK              int
	Gamma             float64
	Samples           int
	MaxAttempts       int
	PlacementAttempts int
	Parity            bool
	Size              int

	LogLevel string
	Addr     string
	KeysDir  string
	Workers  int
}

func Default() Config {
	return Config{
		Strategy:          string(targeting.KindExpectimax),
		Depth:             targeting.DefaultDepth,
		TopK:              targeting.DefaultTopK,
		Gamma:             targeting.DefaultGamma,
		Samples:           targeting.DefaultSamples,
		MaxAttempts:       targeting.DefaultMaxAttempts,
		PlacementAttempts: game.PlacementAttempts,
		Size:              game.DefaultSize,
		LogLevel:          "info",
		Addr:              ":8080",
		KeysDir:           "./keys",
		Workers:           runtime.NumCPU(),
	}
}

// Load starts from the defaults, reads envFile when it exists and then the
// BATTLESHIP_* variables. Variables already in the environment win over
// the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	c := Default()
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	str("STRATEGY", &c.Strategy)
	num("DEPTH", &c.Depth)
	num("TOP_K", &c.TopK)
	if v, ok := os.LookupEnv(envPrefix + "GAMMA"); ok {
		g, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sGAMMA: %w", envPrefix, err))
		} else {
			c.Gamma = g
		}
	}
	num("SAMPLES", &c.Samples)
	num("MAX_ATTEMPTS", &c.MaxAttempts)
	num("PLACEMENT_ATTEMPTS", &c.PlacementAttempts)
	if v, ok := os.LookupEnv(envPrefix + "PARITY"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%sPARITY: %w", envPrefix, err))
		} else {
			c.Parity = b
		}
	}
	num("SIZE", &c.Size)
	str("LOG_LEVEL", &c.LogLevel)
	str("ADDR", &c.Addr)
	str("KEYS_DIR", &c.KeysDir)
	num("WORKERS", &c.Workers)
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return c, nil
}

// RegisterStrategyFlags binds the targeting knobs to fs, defaulting to
// the loaded values.
func (c *Config) RegisterStrategyFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Strategy, "strategy", c.Strategy, "hunt strategy: density, montecarlo or expectimax")
	fs.IntVar(&c.Depth, "depth", c.Depth, "expectimax depth")
	fs.IntVar(&c.TopK, "topk", c.TopK, "expectimax candidates per node")
	fs.Float64Var(&c.Gamma, "gamma", c.Gamma, "expectimax discount")
	fs.IntVar(&c.Samples, "samples", c.Samples, "monte carlo samples per decision")
	fs.IntVar(&c.MaxAttempts, "attempts", c.MaxAttempts, "monte carlo attempts per sample")
	fs.BoolVar(&c.Parity, "parity", c.Parity, "density hunts checkerboard cells first")
}

func (c *Config) RegisterLogFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "trace, debug, info, warn or error")
}

func (c Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	switch {
	case c.PlacementAttempts < 1:
		return fmt.Errorf("placement attempts must be positive, got %d", c.PlacementAttempts)
	case c.Size < 1 || c.Size > game.MaxSize:
		return fmt.Errorf("size must be in 1..%d, got %d", game.MaxSize, c.Size)
	case c.Workers < 1:
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

func (c Config) Params() targeting.Params {
	return targeting.Params{
		Kind:        targeting.Kind(c.Strategy),
		Depth:       c.Depth,
		TopK:        c.TopK,
		Gamma:       c.Gamma,
		Samples:     c.Samples,
		MaxAttempts: c.MaxAttempts,
		Parity:      c.Parity,
	}
}

func (c Config) Level() (zerolog.Level, error) {
	return zerolog.ParseLevel(strings.ToLower(c.LogLevel))
}

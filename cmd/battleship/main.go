package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/consensys/gnark/logger"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"battleship-ai/internal/app"
	"battleship-ai/internal/codec"
	"battleship-ai/internal/config"
	"battleship-ai/internal/game"
	"battleship-ai/internal/selfplay"
	"battleship-ai/internal/server"
	"battleship-ai/internal/zk"
)

var log zerolog.Logger

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	switch os.Args[1] {
	case "init":
		cmdInit(cfg)
	case "commit":
		cmdCommit(cfg)
	case "shoot":
		cmdShoot(cfg)
	case "verify":
		cmdVerify(cfg)
	case "advise":
		cmdAdvise(cfg)
	case "selfplay":
		cmdSelfplay(cfg)
	case "serve":
		cmdServe(cfg)
	default:
		usage()
	}
}

func usage() {
	fmt.Println(`Battleship AI CLI

Commands:
  init     --out fleet.json [--seed N]
  commit   --fleet fleet.json --secret secret.json --keys ./keys
  shoot    --secret secret.json --keys ./keys --cell B7 --out proof.json
  verify   --vk ./keys/shot.vk --root ROOT_HEX --proof proof.json --cell B7
  advise   --state state.json [--strategy expectimax|montecarlo|density ...]
  selfplay --games 100 [--workers N] [--seed N] [--record games.cbor] [--prove]
  serve    --addr :8080

Every command reads .env and BATTLESHIP_* variables first; flags win.`)
}

// parse registers the shared flags, parses the command line and sets up
// logging. Configuration errors are fatal.
func parse(fs *flag.FlagSet, cfg *config.Config) {
	cfg.RegisterLogFlags(fs)
	_ = fs.Parse(os.Args[2:])
	lvl, err := cfg.Level()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log = newLogger(os.Stderr, lvl)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
}

// newLogger writes human-readable output to terminals and JSON otherwise.
// gnark logs through the same logger.
func newLogger(w *os.File, lvl zerolog.Level) zerolog.Logger {
	var out io.Writer = w
	if isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd()) {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	l := zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	logger.Set(l)
	return l
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func cellFlag(fs *flag.FlagSet) *string {
	return fs.String("cell", "", `target cell, e.g. "B7" (row B, column 7)`)
}

func parseCell(s string) game.Coord {
	c, err := game.ParseCoord(s)
	if err != nil {
		log.Fatal().Err(err).Msg("--cell")
	}
	return c
}

func cmdInit(cfg config.Config) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	out := fs.String("out", "fleet.json", "output fleet file")
	seed := fs.Uint64("seed", 0, "generator seed, 0 for random")
	parse(fs, &cfg)

	f, err := game.GenerateFleetWithin(newRand(*seed), game.DefaultSize, game.CanonicalLengths, cfg.PlacementAttempts)
	if err != nil {
		log.Fatal().Err(err).Msg("generate fleet")
	}
	if err := codec.SaveJSON(*out, f); err != nil {
		log.Fatal().Err(err).Msg("write fleet")
	}
	fmt.Println("✓ wrote", *out)
}

func cmdCommit(cfg config.Config) {
	fs := flag.NewFlagSet("commit", flag.ExitOnError)
	fleetPath := fs.String("fleet", "fleet.json", "fleet file")
	secretPath := fs.String("secret", "secret.json", "defender secret state")
	fs.StringVar(&cfg.KeysDir, "keys", cfg.KeysDir, "keys directory")
	parse(fs, &cfg)

	var f game.Fleet
	if err := codec.LoadJSON(*fleetPath, &f); err != nil {
		log.Fatal().Err(err).Msg("read fleet")
	}
	res, err := app.Commit(f, cfg.KeysDir)
	if err != nil {
		log.Fatal().Err(err).Msg("commit")
	}
	fmt.Println("ROOT:", res.RootHex)
	if err := codec.SaveJSON(*secretPath, &res.Secret); err != nil {
		log.Fatal().Err(err).Msg("write secret")
	}
	fmt.Println("✓ wrote", *secretPath)
}

func cmdShoot(cfg config.Config) {
	fs := flag.NewFlagSet("shoot", flag.ExitOnError)
	secretPath := fs.String("secret", "secret.json", "defender secret state")
	fs.StringVar(&cfg.KeysDir, "keys", cfg.KeysDir, "keys directory")
	cell := cellFlag(fs)
	out := fs.String("out", "proof.json", "proof output")
	parse(fs, &cfg)

	var sec codec.Secret
	if err := codec.LoadJSON(*secretPath, &sec); err != nil {
		log.Fatal().Err(err).Msg("read secret")
	}
	res, err := app.Shoot(sec, cfg.KeysDir, parseCell(*cell))
	if err != nil {
		log.Fatal().Err(err).Msg("prove shot")
	}
	if err := codec.SaveJSON(*out, &res.Payload); err != nil {
		log.Fatal().Err(err).Msg("write proof")
	}
	fmt.Printf("✓ wrote %s (result: %s)\n", *out, answer(res.Bit))
}

func cmdVerify(cfg config.Config) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	vkPath := fs.String("vk", zk.VKPath(cfg.KeysDir), "verifying key file")
	rootHex := fs.String("root", "", "root hex prefixed 0x")
	proofPath := fs.String("proof", "proof.json", "proof payload json")
	cell := cellFlag(fs)
	parse(fs, &cfg)

	if *rootHex == "" {
		log.Fatal().Msg("--root required")
	}
	root, err := codec.ParseHex(*rootHex)
	if err != nil {
		log.Fatal().Err(err).Msg("--root")
	}
	var payload codec.ShotProofPayload
	if err := codec.LoadJSON(*proofPath, &payload); err != nil {
		log.Fatal().Err(err).Msg("read proof")
	}
	res, err := app.Verify(*vkPath, root, payload, parseCell(*cell))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid proof")
	}
	fmt.Println(answer(res.Hit))
}

func answer(bit uint8) string {
	if bit == 1 {
		return "HIT"
	}
	return "MISS"
}

func cmdAdvise(cfg config.Config) {
	fs := flag.NewFlagSet("advise", flag.ExitOnError)
	statePath := fs.String("state", "state.json", "attacker knowledge: hits, misses, run, sunk ships")
	seed := fs.Uint64("seed", 0, "generator seed, 0 for random")
	cfg.RegisterStrategyFlags(fs)
	parse(fs, &cfg)

	var req app.AdviseRequest
	if err := codec.LoadJSON(*statePath, &req); err != nil {
		log.Fatal().Err(err).Msg("read state")
	}
	adv, err := app.Advise(req, cfg.Params(), newRand(*seed), log)
	if err != nil {
		log.Fatal().Err(err).Msg("advise")
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(adv)
	if adv.Found {
		fmt.Fprintf(os.Stderr, "fire at %s (%s)\n", adv.Cell, adv.Mode)
	}
}

func cmdSelfplay(cfg config.Config) {
	fs := flag.NewFlagSet("selfplay", flag.ExitOnError)
	games := fs.Int("games", 100, "games to play")
	seed := fs.Uint64("seed", 0, "batch seed, 0 for random")
	record := fs.String("record", "", "write game records here (.cbor or .json)")
	prove := fs.Bool("prove", false, "back every answer with a groth16 proof")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "games played in parallel")
	fs.IntVar(&cfg.Size, "size", cfg.Size, "board size")
	cfg.RegisterStrategyFlags(fs)
	parse(fs, &cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *seed == 0 {
		*seed = rand.Uint64()
	}
	b := selfplay.Batch{
		Games:             *games,
		Workers:           cfg.Workers,
		Seed:              *seed,
		Size:              cfg.Size,
		Params:            cfg.Params(),
		PlacementAttempts: cfg.PlacementAttempts,
		Log:               log,
	}
	if *prove {
		log.Info().Msg("running groth16 setup")
		keys, err := zk.Setup()
		if err != nil {
			log.Fatal().Err(err).Msg("setup")
		}
		b.Keys = keys
	}
	log.Info().Str("strategy", string(b.Params.Kind)).Int("games", b.Games).Uint64("seed", b.Seed).Msg("self-play")

	stats, recs, err := selfplay.Run(ctx, b)
	if err != nil {
		log.Fatal().Err(err).Msg("self-play")
	}
	stats.Print(os.Stdout)
	if *record != "" {
		if err := codec.SaveRecords(*record, recs); err != nil {
			log.Fatal().Err(err).Msg("write records")
		}
		fmt.Println("✓ wrote", *record)
	}
}

func cmdServe(cfg config.Config) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	seed := fs.Uint64("seed", 0, "generator seed, 0 for random")
	cfg.RegisterStrategyFlags(fs)
	parse(fs, &cfg)

	if *seed == 0 {
		*seed = rand.Uint64()
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(cfg.Params(), *seed, log).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	log.Info().Str("addr", cfg.Addr).Str("strategy", cfg.Strategy).Msg("serving")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("serve")
	}
}

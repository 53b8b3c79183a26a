package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/theapemachine/qbench"
)

func main() {
	godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	experiments := flag.String("experiments", "all", "which experiments to run: all, ql, ph, frqi or shots")
	shots := flag.Int("shots", 50000, "sampling budget per execution")
	dist := flag.String("dist", qbench.DistReversing, "input distribution: linear, random or reversing")
	mode := flag.String("mode", "run", "execution mode: run, submit or resolve")
	seed := flag.Int64("seed", 0, "random seed, 0 derives one from the clock")
	dataDir := flag.String("data", "experiment_data", "directory for records, artifacts and the job ledger")
	workers := flag.Int("workers", 3, "trial pool size")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg := qbench.NewConfig()
	cfg.Shots = *shots
	cfg.Distribution = *dist
	cfg.Seed = *seed
	cfg.DataDir = *dataDir
	cfg.Workers = *workers

	ids, shotsSweep, ok := selectSchemes(*experiments)
	if !ok {
		log.Fatal().Str("experiments", *experiments).Msg("unknown experiment selection")
	}

	var ledger *qbench.JobLedger
	if *mode == "submit" || *mode == "resolve" {
		var err error
		ledger, err = qbench.OpenJobLedger(filepath.Join(cfg.DataDir, "ledger.db"))
		if err != nil {
			log.Fatal().Err(err).Msg("open job ledger")
		}
		defer ledger.Close()
	}

	runner := qbench.NewRunner(cfg, ledger)

	switch *mode {
	case "run":
		if shotsSweep {
			if _, err := runner.RunShotsSweep(qbench.SchemeFRQI, 256); err != nil {
				log.Fatal().Err(err).Msg("shots sweep failed")
			}
			return
		}
		if _, err := runner.RunAll(context.Background(), ids); err != nil {
			log.Fatal().Err(err).Msg("benchmark run failed")
		}

	case "submit":
		for _, id := range ids {
			scheme, err := qbench.NewScheme(id)
			if err != nil {
				log.Fatal().Err(err).Msg("unknown scheme")
			}
			size := scheme.Sizes[len(scheme.Sizes)-1]
			if _, err := runner.SubmitAsync(id, size); err != nil {
				log.Error().Err(err).Str("scheme", scheme.Name).Msg("submission failed")
			}
		}

	case "resolve":
		if _, err := runner.ResolveAsync(); err != nil {
			log.Fatal().Err(err).Msg("resolve pass failed")
		}

	default:
		log.Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}

// selectSchemes maps the -experiments flag to scheme identifiers. The
// shots selection is its own experiment, not a scheme set.
func selectSchemes(sel string) (ids []qbench.SchemeID, shotsSweep, ok bool) {
	switch strings.ToLower(sel) {
	case "all":
		return []qbench.SchemeID{qbench.SchemeQubitLattice, qbench.SchemePhase, qbench.SchemeFRQI}, false, true
	case "ql":
		return []qbench.SchemeID{qbench.SchemeQubitLattice}, false, true
	case "ph", "phase":
		return []qbench.SchemeID{qbench.SchemePhase}, false, true
	case "frqi":
		return []qbench.SchemeID{qbench.SchemeFRQI}, false, true
	case "shots":
		return nil, true, true
	}
	return nil, false, false
}

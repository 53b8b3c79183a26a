package qbench

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ShotLadder is the sampling budget sweep used by the shots experiment.
var ShotLadder = []int{5000, 10000, 25000, 50000, 75000, 100000}

/*
Runner drives the benchmark pipeline. It owns every collaborator
explicitly: the two local backends (pure and noisy), the compiler, the
remote backend and the ledger for the async path. Nothing here reads
process-wide state; two Runners with different configs coexist in one
process without interference.
*/
type Runner struct {
	cfg      *Config
	compiler *Compiler
	pure     SyncBackend
	noisy    SyncBackend
	remote   AsyncBackend
	ledger   *JobLedger
	log      zerolog.Logger
}

// NewRunner wires a runner from its config. The ledger may be nil when
// only the synchronous path is used.
func NewRunner(cfg *Config, ledger *JobLedger) *Runner {
	return &Runner{
		cfg:      cfg,
		compiler: NewCompiler(cfg.Seed),
		pure:     NewLocalBackend("local", cfg.Seed, 0),
		noisy:    NewLocalBackend("local-noisy", cfg.Seed, cfg.NoiseProbability),
		remote:   NewRemoteBackend(cfg),
		ledger:   ledger,
		log:      log.With().Str("component", "runner").Logger(),
	}
}

// baseSeed resolves the effective seed once per call site. Zero in the
// config means the run is deliberately non-reproducible.
func (r *Runner) baseSeed() int64 {
	if r.cfg.Seed != 0 {
		return r.cfg.Seed
	}
	return time.Now().UnixNano()
}

func schemeRNG(seed int64, id SchemeID) *rand.Rand {
	var tag uint64
	for _, b := range []byte(id) {
		tag = tag*131 + uint64(b)
	}
	return rand.New(rand.NewPCG(uint64(seed), tag))
}

// RunTrial executes the full stage sequence for one scheme at one size on
// one backend, appending everything it measures to rec. Structural stats
// (width, op counts) are only recorded on the pure pass so the record
// holds one entry per trial, not two.
func (r *Runner) RunTrial(scheme *Scheme, n, shots int, backend SyncBackend, noisy bool, rec *ExperimentRecord, rng *rand.Rand) error {
	original, angles, err := GenerateInput(n, PixelRange, scheme.AngleRange, r.cfg.Distribution, rng)
	if err != nil {
		return err
	}

	start := time.Now()
	circuit, err := scheme.Encoder.Encode(angles)
	if err != nil {
		return err
	}
	r.recordStage(rec, StageEncoder, noisy, time.Since(start), circuit.Depth(), scheme, n)

	start = time.Now()
	scheme.Encoder.InvertPixels(circuit)
	scheme.Encoder.AddMeasurements(circuit)
	r.recordStage(rec, StageInvert, noisy, time.Since(start), circuit.Depth(), scheme, n)

	profile := ProfileIdeal
	if noisy {
		profile = ProfileNoisy
	}
	start = time.Now()
	compiled, err := r.compiler.Compile(circuit, profile)
	if err != nil {
		return err
	}
	r.recordStage(rec, StageTranspile, noisy, time.Since(start), compiled.BasisDepth(), scheme, n)

	if !noisy {
		rec.AppendWidth(compiled.Width())
		rec.AppendCountOps(compiled.BasisOps())
		rec.AppendFeatures(circuit.Features())
	}

	start = time.Now()
	counts, err := backend.Run(compiled, shots)
	if err != nil {
		return err
	}
	r.recordStage(rec, StageSimulate, noisy, time.Since(start), 0, scheme, n)

	start = time.Now()
	reconstructed, err := scheme.Decoder.Decode(counts, n, shots)
	if err != nil {
		return err
	}
	r.recordStage(rec, StageDecoder, noisy, time.Since(start), 0, scheme, n)

	score, err := Accuracy(original, reconstructed, PixelRange)
	if err != nil {
		return err
	}
	rec.AppendAccuracy(score, noisy)
	rec.AppendDataPoint(original, reconstructed, noisy)

	r.log.Info().
		Str("scheme", scheme.Name).
		Int("n", n).
		Int("shots", shots).
		Bool("noisy", noisy).
		Float64("accuracy", score).
		Msg("trial complete")
	return nil
}

// recordStage appends a stage runtime (and depth where structural) and
// emits the stage event.
func (r *Runner) recordStage(rec *ExperimentRecord, stage string, noisy bool, elapsed time.Duration, depth int, scheme *Scheme, n int) {
	key := StageKey(stage, noisy)
	rec.AppendRuntime(key, elapsed.Seconds())
	if depth > 0 {
		rec.AppendDepth(key, depth)
	}

	ev := r.log.Debug().
		Str("stage", key).
		Str("scheme", scheme.Name).
		Int("n", n).
		Float64("runtime", elapsed.Seconds())
	if depth > 0 {
		ev = ev.Int("depth", depth)
	}
	ev.Msg("stage complete")
}

// RunScheme walks a scheme's size ladder, running the pure and noisy trial
// at every size. A failed trial is logged and skipped; the remaining
// trials still run and the record keeps whatever succeeded.
func (r *Runner) RunScheme(id SchemeID) (*ExperimentRecord, error) {
	scheme, err := NewScheme(id)
	if err != nil {
		return nil, err
	}

	rec := NewExperimentRecord(scheme.Name)
	rng := schemeRNG(r.baseSeed(), id)

	for _, n := range scheme.Sizes {
		rec.AppendTrial(n, r.cfg.Shots)

		if err := r.RunTrial(scheme, n, r.cfg.Shots, r.pure, false, rec, rng); err != nil {
			r.log.Error().Err(err).Str("scheme", scheme.Name).Int("n", n).Msg("pure trial failed")
			continue
		}
		if err := r.RunTrial(scheme, n, r.cfg.Shots, r.noisy, true, rec, rng); err != nil {
			r.log.Error().Err(err).Str("scheme", scheme.Name).Int("n", n).Msg("noisy trial failed")
		}
	}
	return rec, nil
}

// RunAll benchmarks the given schemes in parallel on the trial pool and
// writes the per-scheme artifacts plus the combined comparison artifact.
func (r *Runner) RunAll(ctx context.Context, ids []SchemeID) ([]*ExperimentRecord, error) {
	pool := NewQ(ctx, r.cfg.Workers, r.cfg)
	defer pool.Close()

	channels := make([]chan QuantumValue, len(ids))
	for i, id := range ids {
		id := id
		channels[i] = pool.Schedule("scheme-"+string(id), func() (any, error) {
			return r.RunScheme(id)
		})
	}

	var records []*ExperimentRecord
	for i, ch := range channels {
		qv := <-ch
		if qv.Error != nil {
			r.log.Error().Err(qv.Error).Str("scheme", string(ids[i])).Msg("scheme batch failed")
			continue
		}
		rec := qv.Value.(*ExperimentRecord)
		records = append(records, rec)

		path, err := rec.Save(r.cfg.DataDir, time.Now())
		if err != nil {
			return nil, err
		}
		r.log.Info().Str("path", path).Str("scheme", rec.Name).Msg("record saved")
	}

	if len(records) > 1 {
		path, err := SaveRecordList(r.cfg.DataDir, time.Now(), records)
		if err != nil {
			return nil, err
		}
		r.log.Info().Str("path", path).Msg("comparison artifact saved")
	}
	return records, nil
}

// RunShotsSweep measures accuracy against the sampling budget for one
// scheme at a fixed size, on the pure backend.
func (r *Runner) RunShotsSweep(id SchemeID, n int) (*ShotsRecord, error) {
	scheme, err := NewScheme(id)
	if err != nil {
		return nil, err
	}

	sweep := &ShotsRecord{Scheme: scheme.Name, Size: n}
	rng := schemeRNG(r.baseSeed(), id)

	for _, shots := range ShotLadder {
		rec := NewExperimentRecord(scheme.Name)
		rec.AppendTrial(n, shots)

		start := time.Now()
		if err := r.RunTrial(scheme, n, shots, r.pure, false, rec, rng); err != nil {
			r.log.Error().Err(err).Int("shots", shots).Msg("sweep trial failed")
			continue
		}
		elapsed := time.Since(start).Seconds()

		sweep.Shots = append(sweep.Shots, shots)
		sweep.Accuracy = append(sweep.Accuracy, rec.Accuracy[0])
		sweep.Runtimes = append(sweep.Runtimes, elapsed)
	}

	path, err := sweep.Save(r.cfg.DataDir, time.Now())
	if err != nil {
		return nil, err
	}
	r.log.Info().Str("path", path).Msg("shots sweep saved")
	return sweep, nil
}

// SubmitAsync encodes one trial, compiles it for hardware and submits it
// to the remote backend. The ticket is durable before the call returns;
// a crash after SubmitAsync never strands the job.
func (r *Runner) SubmitAsync(id SchemeID, n int) (*Ticket, error) {
	if r.ledger == nil {
		return nil, fmt.Errorf("async submission requires a job ledger")
	}

	scheme, err := NewScheme(id)
	if err != nil {
		return nil, err
	}

	// The ticket seed pins the input vector so the resolving process can
	// regenerate it bit for bit.
	seed := r.baseSeed()
	rng := schemeRNG(seed, id)

	_, angles, err := GenerateInput(n, PixelRange, scheme.AngleRange, r.cfg.Distribution, rng)
	if err != nil {
		return nil, err
	}

	circuit, err := scheme.Encoder.Encode(angles)
	if err != nil {
		return nil, err
	}
	scheme.Encoder.InvertPixels(circuit)
	scheme.Encoder.AddMeasurements(circuit)

	compiled, err := r.compiler.Compile(circuit, ProfileHardware)
	if err != nil {
		return nil, err
	}

	handle, err := r.remote.Submit(compiled, r.cfg.Shots)
	if err != nil {
		return nil, err
	}

	ticket := Ticket{
		ID:           uuid.NewString(),
		Scheme:       id,
		Size:         n,
		Shots:        r.cfg.Shots,
		Distribution: r.cfg.Distribution,
		Seed:         seed,
		Handle:       handle,
		SubmittedAt:  time.Now(),
	}
	if err := r.ledger.RecordSubmission(ticket); err != nil {
		return nil, err
	}

	r.log.Info().
		Str("ticket", ticket.ID).
		Str("handle", handle).
		Str("scheme", scheme.Name).
		Int("n", n).
		Msg("async job submitted")
	return &ticket, nil
}

// ResolveSummary reports what one resolving pass achieved.
type ResolveSummary struct {
	Resolved int
	Pending  int
	Failed   int
	Records  []*ExperimentRecord
}

/*
ResolveAsync makes a single pass over the pending tickets: each one is
polled exactly once and either resolved, marked failed, or left pending
for a later invocation. The pass is idempotent; running it twice never
scores a ticket twice, because resolution transitions the ticket out of
the pending set before the next pass sees it.
*/
func (r *Runner) ResolveAsync() (*ResolveSummary, error) {
	if r.ledger == nil {
		return nil, fmt.Errorf("async resolution requires a job ledger")
	}

	pending, err := r.ledger.Pending()
	if err != nil {
		return nil, err
	}

	summary := &ResolveSummary{}
	records := make(map[SchemeID]*ExperimentRecord)

	for _, t := range pending {
		counts, err := r.remote.Poll(t.Handle)
		if errors.Is(err, ErrNotReady) {
			r.log.Info().Str("ticket", t.ID).Msg("job still queued")
			summary.Pending++
			continue
		}
		if err != nil {
			r.log.Error().Err(err).Str("ticket", t.ID).Msg("job failed")
			if err := r.ledger.MarkFailed(t.ID, err); err != nil {
				return nil, err
			}
			summary.Failed++
			continue
		}

		if err := r.resolveTicket(t, counts, records); err != nil {
			r.log.Error().Err(err).Str("ticket", t.ID).Msg("ticket resolution failed")
			if err := r.ledger.MarkFailed(t.ID, err); err != nil {
				return nil, err
			}
			summary.Failed++
			continue
		}
		if err := r.ledger.MarkResolved(t.ID); err != nil {
			return nil, err
		}
		summary.Resolved++
	}

	for _, rec := range records {
		summary.Records = append(summary.Records, rec)
		path, err := rec.Save(r.cfg.DataDir, time.Now())
		if err != nil {
			return nil, err
		}
		r.log.Info().Str("path", path).Str("scheme", rec.Name).Msg("async record saved")
	}

	r.log.Info().
		Int("resolved", summary.Resolved).
		Int("pending", summary.Pending).
		Int("failed", summary.Failed).
		Msg("resolve pass complete")
	return summary, nil
}

// resolveTicket regenerates the trial's input from the ticket, decodes the
// polled counts and scores the reconstruction.
func (r *Runner) resolveTicket(t Ticket, counts FrequencyCounts, records map[SchemeID]*ExperimentRecord) error {
	scheme, err := NewScheme(t.Scheme)
	if err != nil {
		return err
	}

	rng := schemeRNG(t.Seed, t.Scheme)
	original, _, err := GenerateInput(t.Size, PixelRange, scheme.AngleRange, t.Distribution, rng)
	if err != nil {
		return err
	}

	reconstructed, err := scheme.Decoder.Decode(counts, t.Size, t.Shots)
	if err != nil {
		return err
	}
	score, err := Accuracy(original, reconstructed, PixelRange)
	if err != nil {
		return err
	}

	rec, ok := records[t.Scheme]
	if !ok {
		// Earlier resolve passes may have already written today's
		// artifact; extend it instead of starting over.
		rec = LoadOrNewExperimentRecord(r.cfg.DataDir, scheme.Name+" Hardware", time.Now())
		records[t.Scheme] = rec
	}
	rec.AppendTrial(t.Size, t.Shots)
	rec.AppendAccuracy(score, false)
	rec.AppendDataPoint(original, reconstructed, false)

	r.log.Info().
		Str("ticket", t.ID).
		Str("scheme", scheme.Name).
		Int("n", t.Size).
		Float64("accuracy", score).
		Msg("ticket resolved")
	return nil
}

package qbench

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Pipeline stage names. Noisy trials record under the "Noisy " prefixed
// variants of the same keys.
const (
	StageEncoder   = "Encoder"
	StageInvert    = "Invert + Measurement"
	StageTranspile = "Transpile"
	StageSimulate  = "Simulate"
	StageDecoder   = "Decoder"

	noisyPrefix = "Noisy "
)

// StageKey returns the record key for a stage, switching to the noisy
// variant when asked.
func StageKey(stage string, noisy bool) string {
	if noisy {
		return noisyPrefix + stage
	}
	return stage
}

// runtimeStages is the subset summed into the total algorithm runtime.
var runtimeStages = []string{StageEncoder, StageTranspile, StageSimulate, StageDecoder}

// DataPoint pairs an original vector with its reconstruction.
type DataPoint struct {
	Original      []int `msgpack:"original"`
	Reconstructed []int `msgpack:"reconstructed"`
}

/*
ExperimentRecord accumulates everything one scheme produces across its
trials: per-stage runtimes, structural statistics, accuracy scores and the
raw data points. One record is shared by all trials of a scheme, pure and
noisy runs writing to parallel stage keys. Appends happen in call order
and are never retracted.
*/
type ExperimentRecord struct {
	mu sync.Mutex

	Name            string             `msgpack:"name"`
	Sizes           []int              `msgpack:"sizes"`
	Shots           []int              `msgpack:"shots"`
	Runtimes        map[string][]float64 `msgpack:"runtimes"`
	Depths          map[string][]int   `msgpack:"depths"`
	Widths          []int              `msgpack:"widths"`
	CountOps        []map[string]int   `msgpack:"count_ops"`
	Features        []CircuitFeatures  `msgpack:"features"`
	Accuracy        []float64          `msgpack:"accuracy"`
	NoisyAccuracy   []float64          `msgpack:"noisy_accuracy"`
	DataPoints      []DataPoint        `msgpack:"data_points"`
	NoisyDataPoints []DataPoint        `msgpack:"noisy_data_points"`
}

func NewExperimentRecord(name string) *ExperimentRecord {
	return &ExperimentRecord{
		Name:     name,
		Runtimes: make(map[string][]float64),
		Depths:   make(map[string][]int),
	}
}

// AppendTrial registers the identity of the next trial.
func (r *ExperimentRecord) AppendTrial(size, shots int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sizes = append(r.Sizes, size)
	r.Shots = append(r.Shots, shots)
}

func (r *ExperimentRecord) AppendRuntime(stage string, seconds float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Runtimes[stage] = append(r.Runtimes[stage], seconds)
}

func (r *ExperimentRecord) AppendDepth(stage string, depth int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Depths[stage] = append(r.Depths[stage], depth)
}

func (r *ExperimentRecord) AppendWidth(width int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Widths = append(r.Widths, width)
}

func (r *ExperimentRecord) AppendCountOps(ops map[string]int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CountOps = append(r.CountOps, ops)
}

func (r *ExperimentRecord) AppendFeatures(f CircuitFeatures) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Features = append(r.Features, f)
}

func (r *ExperimentRecord) AppendAccuracy(score float64, noisy bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if noisy {
		r.NoisyAccuracy = append(r.NoisyAccuracy, score)
	} else {
		r.Accuracy = append(r.Accuracy, score)
	}
}

func (r *ExperimentRecord) AppendDataPoint(original, reconstructed []int, noisy bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dp := DataPoint{Original: original, Reconstructed: reconstructed}
	if noisy {
		r.NoisyDataPoints = append(r.NoisyDataPoints, dp)
	} else {
		r.DataPoints = append(r.DataPoints, dp)
	}
}

// TotalAlgorithmRuntime sums the designated stage runtimes per trial. The
// result has one entry per trial that completed every summed stage.
func (r *ExperimentRecord) TotalAlgorithmRuntime() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	trials := -1
	for _, stage := range runtimeStages {
		n := len(r.Runtimes[stage])
		if trials < 0 || n < trials {
			trials = n
		}
	}
	if trials <= 0 {
		return nil
	}

	totals := make([]float64, trials)
	for _, stage := range runtimeStages {
		for i := 0; i < trials; i++ {
			totals[i] += r.Runtimes[stage][i]
		}
	}
	return totals
}

func recordPath(dir, name string, date time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.mpk", slug(name), date.Format("2006-01-02")))
}

// Save writes the record as a msgpack artifact keyed by scheme and date.
func (r *ExperimentRecord) Save(dir string, date time.Time) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := recordPath(dir, r.Name, date)
	if err := writeMsgpack(path, r); err != nil {
		return "", err
	}
	return path, nil
}

// LoadOrNewExperimentRecord reopens the persisted record for name and date
// so later appends extend it, or starts a fresh one when no artifact
// exists yet. Saving through the reloaded record never retracts trials an
// earlier pass already recorded.
func LoadOrNewExperimentRecord(dir, name string, date time.Time) *ExperimentRecord {
	rec, err := LoadExperimentRecord(recordPath(dir, name, date))
	if err != nil {
		return NewExperimentRecord(name)
	}
	return rec
}

func LoadExperimentRecord(path string) (*ExperimentRecord, error) {
	var rec ExperimentRecord
	if err := readMsgpack(path, &rec); err != nil {
		return nil, err
	}
	if rec.Runtimes == nil {
		rec.Runtimes = make(map[string][]float64)
	}
	if rec.Depths == nil {
		rec.Depths = make(map[string][]int)
	}
	return &rec, nil
}

// SaveRecordList writes the cross-scheme comparison artifact.
func SaveRecordList(dir string, date time.Time, records []*ExperimentRecord) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("exp_%s.mpk", date.Format("2006-01-02")))
	if err := writeMsgpack(path, records); err != nil {
		return "", err
	}
	return path, nil
}

func LoadRecordList(path string) ([]*ExperimentRecord, error) {
	var records []*ExperimentRecord
	if err := readMsgpack(path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ShotsRecord holds the shots-sweep experiment: accuracy and runtime as a
// function of the sampling budget for a fixed input size.
type ShotsRecord struct {
	Scheme   string    `msgpack:"scheme"`
	Size     int       `msgpack:"size"`
	Shots    []int     `msgpack:"shots"`
	Accuracy []float64 `msgpack:"accuracy"`
	Runtimes []float64 `msgpack:"runtimes"`
}

func (r *ShotsRecord) Save(dir string, date time.Time) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("%s_shots_%s.mpk", slug(r.Scheme), date.Format("2006-01-02")))
	if err := writeMsgpack(path, r); err != nil {
		return "", err
	}
	return path, nil
}

func writeMsgpack(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	data, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

func readMsgpack(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}
	if err := msgpack.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal artifact: %w", err)
	}
	return nil
}

func slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

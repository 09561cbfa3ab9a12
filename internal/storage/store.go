package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"

	"github.com/san-kum/systree/internal/config"
	"github.com/san-kum/systree/internal/systree"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	metadataFile = "metadata.json"
	reportsFile  = "reports.csv.zst"
	scenarioFile = "scenario.yaml.sz"
)

var ErrRunNotFound = errors.New("storage: run not found")

var reportHeader = []string{"time", "owner", "x", "y", "vx", "vy", "mass"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID         string             `json:"id"`
	Scenario   string             `json:"scenario"`
	Timestamp  time.Time          `json:"timestamp"`
	Integrator string             `json:"integrator"`
	Steps      int                `json:"steps"`
	FinalTime  int64              `json:"final_time"`
	Bodies     int                `json:"bodies"`
	Reports    int                `json:"reports"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

// Save writes one run: metadata, the zstd-compressed report stream and a
// snappy-compressed copy of the scenario. An empty meta.ID is generated.
func (s *Store) Save(meta RunMetadata, reports []systree.Report, sc *config.Scenario) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s_%d", meta.Scenario, meta.Timestamp.UnixNano())
	}
	meta.Reports = len(reports)

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDir, metadataFile), data, 0644); err != nil {
		return "", err
	}

	if err := writeReports(filepath.Join(runDir, reportsFile), reports); err != nil {
		return "", fmt.Errorf("storage: reports: %w", err)
	}

	if sc != nil {
		if err := writeScenario(filepath.Join(runDir, scenarioFile), sc); err != nil {
			return "", fmt.Errorf("storage: scenario: %w", err)
		}
	}

	return meta.ID, nil
}

func writeReports(path string, reports []systree.Report) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc, err := zstd.NewWriter(file)
	if err != nil {
		return err
	}

	w := csv.NewWriter(enc)
	if err := w.Write(reportHeader); err != nil {
		enc.Close()
		return err
	}
	for _, r := range reports {
		if err := w.Write(encodeReport(r)); err != nil {
			enc.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

func writeScenario(path string, sc *config.Scenario) error {
	data, err := config.Marshal(sc, config.YAML)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := snappy.NewBufferedWriter(file)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func encodeReport(r systree.Report) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	b := r.Body
	return []string{
		strconv.FormatInt(r.Time, 10),
		b.Owner,
		f(b.Position.X), f(b.Position.Y),
		f(b.Velocity.X), f(b.Velocity.Y),
		f(b.Mass),
	}
}

func decodeReport(record []string) (systree.Report, error) {
	if len(record) != len(reportHeader) {
		return systree.Report{}, fmt.Errorf("expected %d fields, got %d", len(reportHeader), len(record))
	}
	t, err := strconv.ParseInt(record[0], 10, 64)
	if err != nil {
		return systree.Report{}, err
	}
	var v [5]float64
	for i := range v {
		if v[i], err = strconv.ParseFloat(record[i+2], 64); err != nil {
			return systree.Report{}, err
		}
	}
	return systree.Report{
		Time: t,
		Body: systree.Snapshot{
			Owner:    record[1],
			Position: r2.Vec{X: v[0], Y: v[1]},
			Velocity: r2.Vec{X: v[2], Y: v[3]},
			Mass:     v[4],
		},
	}, nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadReports(runID string) ([]systree.Report, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, reportsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	dec, err := zstd.NewReader(file)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	r := csv.NewReader(dec)
	r.FieldsPerRecord = -1

	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return []systree.Report{}, nil
		}
		return nil, err
	}

	reports := make([]systree.Report, 0)
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rep, err := decodeReport(record)
		if err != nil {
			return nil, fmt.Errorf("storage: line %d: %w", len(reports)+2, err)
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

func (s *Store) LoadScenario(runID string) (*config.Scenario, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, scenarioFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(snappy.NewReader(file))
	if err != nil {
		return nil, err
	}
	return config.Unmarshal(data, config.YAML)
}

// Trajectory filters reports down to one owner, in time order.
func Trajectory(reports []systree.Report, owner string) []systree.Report {
	out := make([]systree.Report, 0)
	for _, r := range reports {
		if r.Body.Owner == owner {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

// Owners lists the distinct owners in reports, in order of first appearance.
func Owners(reports []systree.Report) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range reports {
		if !seen[r.Body.Owner] {
			seen[r.Body.Owner] = true
			out = append(out, r.Body.Owner)
		}
	}
	return out
}

// Package storage keeps headless run recordings on disk: one directory per
// run holding metadata.json and states.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/physlab/internal/sim"
)

var ErrNoColumn = errors.New("storage: no such column")

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID            string             `json:"id"`
	Demo          string             `json:"demo"`
	Regime        string             `json:"regime"`
	Tag           string             `json:"tag,omitempty"`
	Timestamp     time.Time          `json:"timestamp"`
	Seed          int64              `json:"seed"`
	FrameDt       float64            `json:"frame_dt"`
	Duration      float64            `json:"duration"`
	FixedTimestep float64            `json:"fixed_timestep"`
	Integrator    string             `json:"integrator"`
	Frames        int                `json:"frames"`
	Steps         int                `json:"steps"`
	EnergyDrift   float64            `json:"energy_drift"`
	Warnings      int                `json:"warnings"`
	Metrics       map[string]float64 `json:"metrics"`
}

// Save writes result under a new run directory and returns the run ID. The
// ID, timestamp and counters in meta are filled from the store and result.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	now := s.now()
	base := fmt.Sprintf("%s_%d", result.Demo, now.UnixMilli())
	runID := base
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return "", err
	}
	// runs saved within the same millisecond get a numeric suffix
	for n := 1; ; n++ {
		err := os.Mkdir(filepath.Join(s.baseDir, runID), 0755)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
		runID = fmt.Sprintf("%s-%d", base, n)
	}
	runDir := filepath.Join(s.baseDir, runID)

	meta.ID = runID
	meta.Demo = result.Demo
	meta.Timestamp = now
	meta.Frames = result.Frames
	meta.Steps = result.StepsTaken
	meta.EnergyDrift = result.EnergyDrift
	meta.Warnings = result.Diagnostics.Warnings
	meta.Metrics = result.Metrics

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, result); err != nil {
		return "", err
	}
	return runID, nil
}

var bodyColumns = []string{"x", "y", "z", "vx", "vy", "vz"}

// WriteCSV writes one row per snapshot: time, energy, then position and
// velocity for every body of the first snapshot.
func WriteCSV(out io.Writer, result *sim.Result) error {
	w := csv.NewWriter(out)
	if len(result.Snapshots) == 0 {
		w.Flush()
		return w.Error()
	}

	names := result.BodyNames()
	header := []string{"time", "energy"}
	for _, name := range names {
		for _, c := range bodyColumns {
			header = append(header, name+"."+c)
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, snap := range result.Snapshots {
		row := []string{format(snap.Time), format(snap.Energy)}
		for _, name := range names {
			b, ok := snap.Body(name)
			for i := range bodyColumns {
				switch {
				case !ok:
					row = append(row, "")
				case i < 3:
					row = append(row, format(b.Position[i]))
				default:
					row = append(row, format(b.Velocity[i-3]))
				}
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

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
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Recording is a states.csv read back as columns.
type Recording struct {
	Header []string
	Rows   [][]float64
}

func (s *Store) LoadStates(runID string) (*Recording, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadCSV(file)
}

// ReadCSV parses a states.csv. Empty cells read as NaN.
func ReadCSV(in io.Reader) (*Recording, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Recording{}, nil
	}

	rec := &Recording{Header: records[0], Rows: make([][]float64, 0, len(records)-1)}
	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		row := make([]float64, len(rec.Header))
		for j := range row {
			if j >= len(record) || record[j] == "" {
				row[j] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", len(rec.Rows)+1, rec.Header[j], err)
			}
			row[j] = v
		}
		rec.Rows = append(rec.Rows, row)
	}
	return rec, nil
}

func (r *Recording) Column(name string) ([]float64, error) {
	idx := -1
	for i, h := range r.Header {
		if h == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoColumn, name)
	}
	out := make([]float64, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Times is the time column.
func (r *Recording) Times() []float64 {
	t, _ := r.Column("time")
	return t
}

// ExportJSON writes metadata and the full result as one JSON document.
func ExportJSON(out io.Writer, meta RunMetadata, result *sim.Result) error {
	doc := struct {
		Meta      RunMetadata    `json:"meta"`
		Times     []float64      `json:"times"`
		Energies  []float64      `json:"energies"`
		Snapshots []sim.Snapshot `json:"snapshots"`
	}{meta, result.Times(), result.Energies(), result.Snapshots}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// ExportRun writes a saved run's metadata and recorded columns as JSON.
// Missing samples are null.
func (s *Store) ExportRun(out io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	rec, err := s.LoadStates(runID)
	if err != nil {
		return err
	}

	columns := make(map[string][]*float64, len(rec.Header))
	for j, name := range rec.Header {
		col := make([]*float64, len(rec.Rows))
		for i, row := range rec.Rows {
			if v := row[j]; !math.IsNaN(v) {
				col[i] = &v
			}
		}
		columns[name] = col
	}

	doc := struct {
		Meta    *RunMetadata          `json:"meta"`
		Columns map[string][]*float64 `json:"columns"`
	}{meta, columns}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

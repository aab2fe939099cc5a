// Package export records processed kinematic output to CSV files and
// reads recordings back for offline analysis.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/TranDung6129/real-time-displacement/internal/pipeline"
)

// Header is the canonical column layout: one row per processed sample.
var Header = []string{
	"time_s",
	"acc_x", "acc_y", "acc_z",
	"vel_x", "vel_y", "vel_z",
	"disp_x", "disp_y", "disp_z",
}

// SessionFilename returns a timestamped recording filename inside dir.
func SessionFilename(dir string) string {
	return filepath.Join(dir, fmt.Sprintf("session_%s.csv", time.Now().Format("20060102_150405")))
}

// Recorder appends processed segments to a CSV file.
type Recorder struct {
	f *os.File
	w *csv.Writer
}

// NewRecorder creates the file (and its directory if needed) and
// writes the header row.
func NewRecorder(path string) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("export: create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("export: create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		f.Close()
		return nil, fmt.Errorf("export: write header: %w", err)
	}
	return &Recorder{f: f, w: w}, nil
}

// WriteResult appends one row per sample of the segment.
func (r *Recorder) WriteResult(res *pipeline.Result) error {
	for i := range res.Time {
		row := make([]string, 0, len(Header))
		row = append(row, formatFloat(res.Time[i]))
		for _, series := range [][3][]float64{
			{res.Axes[0].Acc, res.Axes[1].Acc, res.Axes[2].Acc},
			{res.Axes[0].Vel, res.Axes[1].Vel, res.Axes[2].Vel},
			{res.Axes[0].Disp, res.Axes[1].Disp, res.Axes[2].Disp},
		} {
			for _, s := range series {
				row = append(row, formatFloat(s[i]))
			}
		}
		if err := r.w.Write(row); err != nil {
			return fmt.Errorf("export: write row: %w", err)
		}
	}
	r.w.Flush()
	return r.w.Error()
}

// Close flushes buffered rows and closes the file.
func (r *Recorder) Close() error {
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		r.f.Close()
		return fmt.Errorf("export: flush: %w", err)
	}
	return r.f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Dataset is a recording read back into memory, one slice per column
// group, indexed by pipeline axis.
type Dataset struct {
	Time []float64
	Acc  [3][]float64
	Vel  [3][]float64
	Disp [3][]float64
}

// Read loads a recording written by Recorder.
func Read(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("export: open %s: %w", path, err)
	}
	defer f.Close()

	rd := csv.NewReader(f)
	rows, err := rd.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("export: read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("export: %s is empty", path)
	}
	if len(rows[0]) != len(Header) {
		return nil, fmt.Errorf("export: %s has %d columns, want %d", path, len(rows[0]), len(Header))
	}

	ds := &Dataset{}
	for lineNo, row := range rows[1:] {
		vals := make([]float64, len(Header))
		for i, cell := range row {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("export: %s row %d column %q: %w", path, lineNo+2, Header[i], err)
			}
			vals[i] = v
		}
		ds.Time = append(ds.Time, vals[0])
		for a := 0; a < 3; a++ {
			ds.Acc[a] = append(ds.Acc[a], vals[1+a])
			ds.Vel[a] = append(ds.Vel[a], vals[4+a])
			ds.Disp[a] = append(ds.Disp[a], vals[7+a])
		}
	}
	return ds, nil
}

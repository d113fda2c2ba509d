package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Table is the content of a run's states.csv.
type Table struct {
	Columns []string
	Rows    [][]float64
}

// Column returns the named column, or nil if the run has none.
func (t *Table) Column(name string) []float64 {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	col := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			col[i] = row[idx]
		}
	}
	return col
}

// States returns the x columns of each row.
func (t *Table) States() [][]float64 {
	var idx []int
	for i, c := range t.Columns {
		if strings.HasPrefix(c, "x") {
			if _, err := strconv.Atoi(c[1:]); err == nil {
				idx = append(idx, i)
			}
		}
	}
	states := make([][]float64, len(t.Rows))
	for r, row := range t.Rows {
		states[r] = make([]float64, len(idx))
		for k, i := range idx {
			states[r][k] = row[i]
		}
	}
	return states
}

func (s *Store) LoadTable(runID string) (*Table, error) {
	csvPath := filepath.Join(s.baseDir, runID, "states.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	t := &Table{}
	if len(records) == 0 {
		return t, nil
	}
	t.Columns = records[0]
	t.Rows = make([][]float64, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 {
			continue
		}
		row := make([]float64, len(record))
		for j, field := range record {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d column %s: %w", csvPath, i+1, t.Columns[j], err)
			}
			row[j] = val
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// LoadStates returns the state vectors and times of a run.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	t, err := s.LoadTable(runID)
	if err != nil {
		return nil, nil, err
	}
	return t.States(), t.Column("time"), nil
}

// WriteCSV writes the table as CSV.
func (t *Table) WriteCSV(out io.Writer) error {
	w := csv.NewWriter(out)
	if err := w.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = formatFloat(v)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

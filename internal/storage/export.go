package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	RunMetadata
	Steps   int                  `json:"steps"`
	Columns []string             `json:"columns"`
	Series  map[string][]float64 `json:"series"`
}

func NewExportData(meta *RunMetadata, t *Table) ExportData {
	data := ExportData{
		RunMetadata: *meta,
		Steps:       len(t.Rows),
		Columns:     t.Columns,
		Series:      make(map[string][]float64, len(t.Columns)),
	}
	for _, c := range t.Columns {
		data.Series[c] = t.Column(c)
	}
	return data
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportJSON writes a stored run with its metadata to path.
func (s *Store) ExportJSON(runID, path string) error {
	data, err := s.exportData(runID)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, data)
}

func (s *Store) ExportJSONTo(runID string, w io.Writer) error {
	data, err := s.exportData(runID)
	if err != nil {
		return err
	}
	return WriteJSON(w, data)
}

func (s *Store) exportData(runID string) (ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return ExportData{}, err
	}
	t, err := s.LoadTable(runID)
	if err != nil {
		return ExportData{}, err
	}
	return NewExportData(meta, t), nil
}

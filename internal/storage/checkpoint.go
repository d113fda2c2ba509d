package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/san-kum/musclesim/internal/muscle"
)

var ErrCheckpointName = errors.New("storage: invalid checkpoint name")

// Checkpoint is everything needed to resume a run: the system state, the
// time it was taken at and one state buffer per actuator, in the order the
// model lists them.
type Checkpoint struct {
	Name      string               `json:"name"`
	Model     string               `json:"model"`
	Preset    string               `json:"preset,omitempty"`
	Created   time.Time            `json:"created"`
	Time      float64              `json:"time"`
	State     []float64            `json:"state"`
	Actuators []*muscle.DataBuffer `json:"actuators"`
}

func (s *Store) checkpointPath(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrCheckpointName, name)
	}
	return filepath.Join(s.baseDir, "checkpoints", name+".json"), nil
}

func (s *Store) SaveCheckpoint(cp *Checkpoint) error {
	path, err := s.checkpointPath(cp.Name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if cp.Created.IsZero() {
		cp.Created = time.Now()
	}

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode checkpoint %s: %w", cp.Name, err)
	}
	return os.WriteFile(path, data, 0644)
}

func (s *Store) LoadCheckpoint(name string) (*Checkpoint, error) {
	path, err := s.checkpointPath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("decode checkpoint %s: %w", name, err)
	}
	return &cp, nil
}

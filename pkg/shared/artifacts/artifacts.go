package artifacts

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/zap-sensor/internal/risk"
)

const artifactSuffix = "zapsensor-artifact"

// MeasuresArtifact is the JSON document saved for one run.
type MeasuresArtifact struct {
	RunID       string             `json:"run_id"`
	Project     string             `json:"project"`
	Branch      string             `json:"branch,omitempty"`
	Commit      string             `json:"commit,omitempty"`
	GeneratedAt time.Time          `json:"generated_at"`
	Measures    risk.Measures      `json:"measures"`
	Metrics     map[string]float64 `json:"metrics"`
}

// GetArtifactName returns the artifact base name.
// Example: process_zap_2025-09-15T08:28:46Z.zapsensor-artifact.
func GetArtifactName(command, source string, t time.Time) string {
	ts := t.UTC().Format(time.RFC3339)
	return fmt.Sprintf("%s_%s_%s.%s", command, source, ts, artifactSuffix)
}

// SaveArtifactJSON writes v to <dir>/<base>.json and returns the full path.
func SaveArtifactJSON(dir, base string, v interface{}) (string, error) {
	path := filepath.Join(dir, base+".json")

	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return path, fmt.Errorf("error marshaling the artifact data: %w", err)
	}

	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return path, fmt.Errorf("unable to create folder %q: %w", dir, err)
	}
	if err := writeFile(path, data); err != nil {
		return path, fmt.Errorf("error writing artifact to file: %w", err)
	}
	return path, nil
}

func writeFile(path string, data []byte) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed creating file: %w", err)
	}

	w := bufio.NewWriter(file)
	if _, err := w.Write(data); err != nil {
		_ = file.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// MeasuresSink saves the measures of each run as a JSON artifact.
type MeasuresSink struct {
	Dir     string
	Command string
	Project string
	Branch  string
	Commit  string

	logger hclog.Logger
	now    func() time.Time
	last   string
}

// NewMeasuresSink creates a sink saving artifacts under dir.
func NewMeasuresSink(dir, command, project string, logger hclog.Logger) *MeasuresSink {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &MeasuresSink{
		Dir:     dir,
		Command: command,
		Project: project,
		logger:  logger,
		now:     time.Now,
	}
}

// SaveMeasures writes one artifact with a fresh run id.
func (s *MeasuresSink) SaveMeasures(measures risk.Measures) error {
	generated := s.now()
	artifact := MeasuresArtifact{
		RunID:       uuid.New().String(),
		Project:     s.Project,
		Branch:      s.Branch,
		Commit:      s.Commit,
		GeneratedAt: generated.UTC(),
		Measures:    measures,
		Metrics:     measures.Values(),
	}

	path, err := SaveArtifactJSON(s.Dir, GetArtifactName(s.Command, "zap", generated), artifact)
	if err != nil {
		return err
	}
	s.last = path
	s.logger.Info("artifact saved to file", "path", path, "run_id", artifact.RunID)
	return nil
}

// LastPath returns the path of the most recently saved artifact.
func (s *MeasuresSink) LastPath() string {
	return s.last
}

package run

import (
	"time"

	"goetl/domain/core"
	"goetl/domain/dataset"
)

// Status is the terminal state of a run
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Manifest records what a single invocation read, decided and wrote.
// Two runs with equal fingerprints must produce equal output hashes.
type Manifest struct {
	RunID        core.RunID     `json:"run_id"`
	Command      string         `json:"command"`
	InputPath    string         `json:"input_path"`
	OutputPath   string         `json:"output_path,omitempty"`
	InputHash    core.Hash      `json:"input_hash,omitempty"`
	OutputHash   core.Hash      `json:"output_hash,omitempty"`
	SettingsHash core.Hash      `json:"settings_hash"`
	InputShape   dataset.Shape  `json:"input_shape"`
	OutputShape  dataset.Shape  `json:"output_shape"`
	Numerical    []string       `json:"numerical,omitempty"`
	Categorical  []string       `json:"categorical,omitempty"`
	Excluded     []string       `json:"excluded,omitempty"`
	Status       Status         `json:"status"`
	Error        string         `json:"error,omitempty"`
	StartedAt    core.Timestamp `json:"started_at"`
	DurationMs   int64          `json:"duration_ms"`
}

// NewManifest opens a manifest for a command about to run
func NewManifest(command, inputPath, outputPath string, settings map[string]string) *Manifest {
	return &Manifest{
		RunID:        core.NewRunID(),
		Command:      command,
		InputPath:    inputPath,
		OutputPath:   outputPath,
		SettingsHash: core.ComputeSettingsHash(settings),
		Status:       StatusRunning,
		StartedAt:    core.Now(),
	}
}

// Fingerprint identifies the deterministic inputs of the run
func (m *Manifest) Fingerprint() core.Hash {
	return core.NewHash([]byte(m.Command + "|" + m.InputHash.String() + "|" + m.SettingsHash.String()))
}

// Complete marks the run successful
func (m *Manifest) Complete() {
	m.Status = StatusCompleted
	m.DurationMs = m.elapsed()
}

// Fail marks the run failed with the given cause
func (m *Manifest) Fail(err error) {
	m.Status = StatusFailed
	if err != nil {
		m.Error = err.Error()
	}
	m.DurationMs = m.elapsed()
}

func (m *Manifest) elapsed() int64 {
	return m.StartedAt.Since().Round(time.Millisecond).Milliseconds()
}

// Validate checks if the manifest is complete
func (m *Manifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return core.NewConfigError("run_manifest", "run_id cannot be empty")
	}
	if m.Command == "" {
		return core.NewConfigError("run_manifest", "command cannot be empty")
	}
	if m.SettingsHash.IsEmpty() {
		return core.NewConfigError("run_manifest", "settings_hash cannot be empty")
	}
	if m.Status == StatusCompleted && m.OutputPath != "" && m.OutputHash.IsEmpty() {
		return core.NewConfigError("run_manifest", "completed run must record output_hash")
	}
	return nil
}

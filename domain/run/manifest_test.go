package run

import (
	"errors"
	"testing"

	"goetl/domain/core"
)

func TestManifestFingerprint_Deterministic(t *testing.T) {
	settings := map[string]string{"numeric_impute_strategy": "mean", "excluded_columns": "host_name,name"}

	m1 := NewManifest("run", "in.csv", "out.csv", settings)
	m2 := NewManifest("run", "in.csv", "out.csv", settings)
	m1.InputHash = core.NewHash([]byte("a,b\n1,2\n"))
	m2.InputHash = core.NewHash([]byte("a,b\n1,2\n"))

	if m1.RunID == m2.RunID {
		t.Errorf("Expected distinct run IDs, got %s twice", m1.RunID)
	}
	if m1.Fingerprint() != m2.Fingerprint() {
		t.Errorf("Fingerprints not identical: %s vs %s", m1.Fingerprint(), m2.Fingerprint())
	}

	m2.InputHash = core.NewHash([]byte("a,b\n1,3\n"))
	if m1.Fingerprint() == m2.Fingerprint() {
		t.Error("Expected fingerprint to change with input hash")
	}
}

func TestManifestLifecycle(t *testing.T) {
	m := NewManifest("run", "in.csv", "out.csv", map[string]string{})
	if m.Status != StatusRunning {
		t.Fatalf("Expected running status, got %s", m.Status)
	}

	m.Complete()
	if err := m.Validate(); err == nil {
		t.Error("Expected validation error for completed run without output hash")
	}

	m.OutputHash = core.NewHash([]byte("out"))
	if err := m.Validate(); err != nil {
		t.Errorf("Unexpected validation error: %v", err)
	}

	m.Fail(errors.New("disk full"))
	if m.Status != StatusFailed || m.Error != "disk full" {
		t.Errorf("Expected failed status with error, got %s %q", m.Status, m.Error)
	}
}

// Package workspace manages the ephemeral staging directories used by
// build and documentation runs.
//
// Each run gets a fresh directory (e.g. relkit-20260829-142233-1a2b3c4d)
// under the configured base directory. The directory is exclusively owned by
// that run and removed on cleanup, so stale artifacts from an earlier or
// interrupted run can never leak into the next one.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/rusocsci/relkit/internal/logfields"
)

// Manager handles staging workspace operations
type Manager struct {
	baseDir string
	dir     string
}

// NewManager creates a workspace manager rooted at baseDir. An empty baseDir
// falls back to the system temp directory.
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir}
}

// Create makes a fresh uniquely named workspace directory.
func (m *Manager) Create() error {
	stamp := time.Now().Format("20060102-150405")
	suffix := uuid.NewString()[:8]
	dir := filepath.Join(m.baseDir, fmt.Sprintf("relkit-%s-%s", stamp, suffix))

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}

	m.dir = dir
	slog.Debug("Created workspace", logfields.Path(dir))
	return nil
}

// Path returns the path to the workspace directory.
func (m *Manager) Path() string {
	return m.dir
}

// Cleanup removes the workspace directory. Calling it on an uncreated or
// already cleaned manager is a no-op.
func (m *Manager) Cleanup() error {
	if m.dir == "" {
		return nil
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("failed to cleanup workspace: %w", err)
	}
	slog.Debug("Cleaned up workspace", logfields.Path(m.dir))
	m.dir = ""
	return nil
}

// Subdir creates a subdirectory within the workspace and returns its path.
func (m *Manager) Subdir(name string) (string, error) {
	if m.dir == "" {
		return "", fmt.Errorf("workspace not created")
	}
	subdir := filepath.Join(m.dir, name)
	if err := os.MkdirAll(subdir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}
	return subdir, nil
}

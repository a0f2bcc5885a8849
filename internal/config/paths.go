package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds the resolved absolute locations the application works with.
// Artifact directories are inputs and may be absent; the loader degrades to
// synthetic data when they are. Only the logs directory is ever created.
type Paths struct {
	BaseDir    string
	DataDir    string
	ResultsDir string
	LogsDir    string
	LogFile    string
}

// NewPaths resolves the configured directories against the working directory.
func NewPaths(cfg *Config) (*Paths, error) {
	base, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}

	p := &Paths{
		BaseDir:    base,
		DataDir:    resolveDir(base, cfg.Data.Dir),
		ResultsDir: resolveDir(base, cfg.Data.ResultsDir),
		LogFile:    resolveDir(base, cfg.Logging.FilePath),
	}
	p.LogsDir = filepath.Dir(p.LogFile)

	return p, nil
}

// EnsureDirectories creates the directories the application writes to.
func (p *Paths) EnsureDirectories() error {
	if err := os.MkdirAll(p.LogsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory %s: %w", p.LogsDir, err)
	}
	return nil
}

// DataFile returns the absolute path of a file inside the data directory.
func (p *Paths) DataFile(name string) string {
	return filepath.Join(p.DataDir, name)
}

// ResultsFile returns the absolute path of a file inside the results directory.
func (p *Paths) ResultsFile(name string) string {
	return filepath.Join(p.ResultsDir, name)
}

func resolveDir(base, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, dir)
}

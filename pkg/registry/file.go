package registry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStore loads deployment records from a YAML file and serves them from
// an in-memory snapshot. Reload replaces the snapshot atomically; a file
// that fails to parse leaves the previous snapshot in place.
//
// File format:
//
//	deployments:
//	  - id: "11111111-1111-1111-1111-111111111111"
//	    name: "agents-prod"
//	    base_url: "http://agents-prod.internal:8123"
type FileStore struct {
	path   string
	logger *slog.Logger

	// mu protects the snapshot.
	mu          sync.RWMutex
	deployments []Deployment
}

// deploymentsFile is the YAML shape of the deployments file.
type deploymentsFile struct {
	Deployments []Deployment `yaml:"deployments"`
}

// NewFileStore creates a file-backed registry store and performs the
// initial load. A missing or malformed file is an error at construction:
// the proxy should not start routing against an empty registry by accident.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		logger: slog.Default().With("component", "registry.file"),
	}

	if err := s.Reload(); err != nil {
		return nil, err
	}

	return s, nil
}

// Deployments returns the current snapshot of deployment records.
func (s *FileStore) Deployments(_ context.Context) ([]Deployment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Deployment, len(s.deployments))
	copy(out, s.deployments)
	return out, nil
}

// Reload re-reads the deployments file and replaces the snapshot.
// On failure the previous snapshot is kept and the error is returned.
func (s *FileStore) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return NewStorageError("file", "read", err)
	}

	var f deploymentsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return NewStorageError("file", "parse", err)
	}

	for i, d := range f.Deployments {
		if d.ID == "" {
			return NewStorageError("file", "validate",
				fmt.Errorf("deployment %d: id is required", i))
		}
		if d.BaseURL == "" {
			return NewStorageError("file", "validate",
				fmt.Errorf("deployment %q: base_url is required", d.ID))
		}
	}

	s.mu.Lock()
	s.deployments = f.Deployments
	s.mu.Unlock()

	s.logger.Info("deployment registry loaded",
		"path", s.path,
		"deployments", len(f.Deployments),
	)

	return nil
}

// Close releases resources. The file store holds none.
func (s *FileStore) Close() error {
	return nil
}

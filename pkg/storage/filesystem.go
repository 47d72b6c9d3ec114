package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
)

const IntakeDir = ".intake"
const PolicyFile = "policy.yaml"
const EventsFile = "events.jsonl"

const (
	intakePrefix    = "intake-"
	specPrefix      = "spec-"
	routingPrefix   = "routing-"
	approvalsPrefix = "approvals-"
)

type FilesystemRepository struct {
	root        string
	retryConfig retry.Config
	eventsMu    sync.Mutex
}

func NewFilesystemRepository(root string) *FilesystemRepository {
	return &FilesystemRepository{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Root returns the workspace root directory.
func (r *FilesystemRepository) Root() string {
	return r.root
}

// ResolvePath ensures the path is a direct child of the .intake directory.
func (r *FilesystemRepository) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := filepath.Join(r.root, IntakeDir)
	cleanPath := filepath.Clean(filepath.Join(baseDir, filename))

	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return cleanPath, nil
}

func (r *FilesystemRepository) Initialize() error {
	path := filepath.Join(r.root, IntakeDir)
	// G301: Use 0700 for directories
	if err := os.MkdirAll(path, 0700); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", IntakeDir, err)
	}
	return nil
}

func (r *FilesystemRepository) IsInitialized() bool {
	_, err := os.Stat(filepath.Join(r.root, IntakeDir))
	return err == nil
}

// readFile reads a workspace file with retry. Missing files are returned
// immediately as os.ErrNotExist.
func (r *FilesystemRepository) readFile(filename string) ([]byte, error) {
	path, err := r.ResolvePath(filename)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, err
	}

	retryer := retry.New[[]byte](r.retryConfig)
	return retryer.Do(context.Background(), func(ctx context.Context) ([]byte, error) {
		// #nosec G304 -- Path is resolved and validated via ResolvePath
		return os.ReadFile(path)
	})
}

// writeFile replaces a workspace file atomically.
func (r *FilesystemRepository) writeFile(filename string, data []byte) error {
	path, err := r.ResolvePath(filename)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	// G306: Use 0600 for files
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", filename, err)
	}
	return nil
}

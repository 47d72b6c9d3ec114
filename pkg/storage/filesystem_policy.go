package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/felixgeelhaar/intakerouter/pkg/domain"
	"gopkg.in/yaml.v3"
)

// DecodePolicy parses policy.yaml content over the defaults. Unknown keys
// are rejected so typos do not silently fall back to defaults.
func DecodePolicy(data []byte) (*domain.PolicyConfig, error) {
	cfg := domain.DefaultPolicyConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to unmarshal policy: %w", err)
	}
	return cfg, nil
}

// ReadPolicyFile loads a policy file from an arbitrary path.
func ReadPolicyFile(path string) (*domain.PolicyConfig, error) {
	// #nosec G304 -- Path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return DecodePolicy(data)
}

// PolicyPath returns the location of policy.yaml in the workspace.
func (r *FilesystemRepository) PolicyPath() string {
	path, _ := r.ResolvePath(PolicyFile)
	return path
}

func (r *FilesystemRepository) LoadPolicy() (*domain.PolicyConfig, error) {
	data, err := r.readFile(PolicyFile)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.DefaultPolicyConfig(), nil
		}
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return DecodePolicy(data)
}

func (r *FilesystemRepository) SavePolicy(cfg *domain.PolicyConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal policy: %w", err)
	}
	return r.writeFile(PolicyFile, data)
}

package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/felixgeelhaar/intakerouter/pkg/domain"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/approval"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
	"gopkg.in/yaml.v3"
)

var _ domain.WorkspaceRepository = (*FilesystemRepository)(nil)

func fileFor(prefix, id, ext string) (string, error) {
	if _, err := domain.NewIntakeID(id); err != nil {
		return "", err
	}
	return prefix + id + ext, nil
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
}

func (r *FilesystemRepository) SaveIntake(in *intake.Intake) error {
	name, err := fileFor(intakePrefix, in.ID, ".json")
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal intake: %w", err)
	}
	return r.writeFile(name, data)
}

func (r *FilesystemRepository) LoadIntake(id string) (*intake.Intake, error) {
	name, err := fileFor(intakePrefix, id, ".json")
	if err != nil {
		return nil, err
	}
	data, err := r.readFile(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound("intake", id)
		}
		return nil, fmt.Errorf("failed to read intake file: %w", err)
	}

	var in intake.Intake
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to unmarshal intake: %w", err)
	}
	return &in, nil
}

// ListIntakes returns every stored intake, oldest first.
func (r *FilesystemRepository) ListIntakes() ([]*intake.Intake, error) {
	matches, err := filepath.Glob(filepath.Join(r.root, IntakeDir, intakePrefix+"*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list intakes: %w", err)
	}

	intakes := make([]*intake.Intake, 0, len(matches))
	for _, m := range matches {
		id := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), intakePrefix), ".json")
		in, err := r.LoadIntake(id)
		if err != nil {
			return nil, err
		}
		intakes = append(intakes, in)
	}

	sort.SliceStable(intakes, func(i, j int) bool {
		if intakes[i].CreatedAt.Equal(intakes[j].CreatedAt) {
			return intakes[i].ID < intakes[j].ID
		}
		return intakes[i].CreatedAt.Before(intakes[j].CreatedAt)
	})
	return intakes, nil
}

func (r *FilesystemRepository) SaveSpec(intakeID string, s *intake.StructuredSpec) error {
	name, err := fileFor(specPrefix, intakeID, ".yaml")
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal spec: %w", err)
	}
	return r.writeFile(name, data)
}

func (r *FilesystemRepository) LoadSpec(intakeID string) (*intake.StructuredSpec, error) {
	name, err := fileFor(specPrefix, intakeID, ".yaml")
	if err != nil {
		return nil, err
	}
	data, err := r.readFile(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound("spec for intake", intakeID)
		}
		return nil, fmt.Errorf("failed to read spec file: %w", err)
	}

	var s intake.StructuredSpec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal spec: %w", err)
	}
	return &s, nil
}

func (r *FilesystemRepository) SaveRouting(rec *domain.RoutingRecord) error {
	name, err := fileFor(routingPrefix, rec.IntakeID, ".json")
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal routing record: %w", err)
	}
	return r.writeFile(name, data)
}

func (r *FilesystemRepository) LoadRouting(intakeID string) (*domain.RoutingRecord, error) {
	name, err := fileFor(routingPrefix, intakeID, ".json")
	if err != nil {
		return nil, err
	}
	data, err := r.readFile(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound("routing for intake", intakeID)
		}
		return nil, fmt.Errorf("failed to read routing file: %w", err)
	}

	var rec domain.RoutingRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal routing record: %w", err)
	}
	return &rec, nil
}

func (r *FilesystemRepository) SaveApprovals(intakeID string, approvals []approval.Approval) error {
	name, err := fileFor(approvalsPrefix, intakeID, ".json")
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(approvals, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal approvals: %w", err)
	}
	return r.writeFile(name, data)
}

// LoadApprovals returns an empty list when nothing was recorded yet.
func (r *FilesystemRepository) LoadApprovals(intakeID string) ([]approval.Approval, error) {
	name, err := fileFor(approvalsPrefix, intakeID, ".json")
	if err != nil {
		return nil, err
	}
	data, err := r.readFile(name)
	if err != nil {
		if os.IsNotExist(err) {
			return []approval.Approval{}, nil
		}
		return nil, fmt.Errorf("failed to read approvals file: %w", err)
	}

	var approvals []approval.Approval
	if err := json.Unmarshal(data, &approvals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal approvals: %w", err)
	}
	return approvals, nil
}

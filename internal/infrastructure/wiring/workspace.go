package wiring

import (
	"fmt"
	"os"

	"github.com/felixgeelhaar/intakerouter/pkg/application"
	"github.com/felixgeelhaar/intakerouter/pkg/domain"
	"github.com/felixgeelhaar/intakerouter/pkg/storage"
)

// Workspace is the .intake directory of one project and its audit trail.
type Workspace struct {
	Root  string
	Repo  *storage.FilesystemRepository
	Audit *application.AuditService
}

func NewWorkspace(root string) *Workspace {
	repo := storage.NewFilesystemRepository(root)
	return &Workspace{
		Root:  root,
		Repo:  repo,
		Audit: application.NewAuditService(repo),
	}
}

// Init creates the workspace directory and writes the default policy.yaml.
// An existing policy is kept, so Init is safe to run again.
func (w *Workspace) Init() (createdPolicy bool, err error) {
	if err := w.Repo.Initialize(); err != nil {
		return false, err
	}
	if _, err := os.Stat(w.Repo.PolicyPath()); !os.IsNotExist(err) {
		return false, err
	}
	if err := w.Repo.SavePolicy(domain.DefaultPolicyConfig()); err != nil {
		return false, fmt.Errorf("failed to write default policy: %w", err)
	}
	return true, nil
}

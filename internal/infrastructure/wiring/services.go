package wiring

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/felixgeelhaar/intakerouter/internal/infrastructure/config"
	"github.com/felixgeelhaar/intakerouter/internal/infrastructure/jira"
	"github.com/felixgeelhaar/intakerouter/pkg/application"
	"github.com/felixgeelhaar/intakerouter/pkg/domain"
	"github.com/felixgeelhaar/intakerouter/pkg/storage/postgres"
)

// AppServices exposes the application layer services wired together with a workspace.
type AppServices struct {
	Workspace *Workspace
	Config    *config.ServerConfig
	Policy    *application.PolicyService
	Routing   *application.RoutingService
	Intakes   *application.IntakeService
	Export    *application.ExportService
	Audit     *application.AuditService
}

// BuildAppServices constructs the services for a workspace root. When the
// server config cannot be read the services are still returned, running on
// defaults, together with the load error.
func BuildAppServices(root string) (*AppServices, error) {
	workspace := NewWorkspace(root)

	var loadErr error
	cfg, err := config.LoadServerConfig(root)
	if err != nil {
		loadErr = fmt.Errorf("server config fallback: %w", err)
		cfg = &config.ServerConfig{}
	}

	policySvc, err := application.NewPolicyService(workspace.Repo, workspace.Audit)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}

	routingSvc := application.NewRoutingService(workspace.Repo, policySvc, workspace.Audit)
	intakeSvc := application.NewIntakeService(workspace.Repo, workspace.Audit, policySvc)

	services := &AppServices{
		Workspace: workspace,
		Config:    cfg,
		Policy:    policySvc,
		Routing:   routingSvc,
		Intakes:   intakeSvc,
		Export:    application.NewExportService(intakeSvc, routingSvc, NewExporter(cfg.Jira, nil), workspace.Audit),
		Audit:     workspace.Audit,
	}
	return services, loadErr
}

// NewExporter returns the Jira exporter for cfg, or nil when Jira is not configured.
func NewExporter(cfg config.JiraConfig, logger *slog.Logger) domain.Exporter {
	if !cfg.Enabled() {
		return nil
	}
	var opts []jira.Option
	if logger != nil {
		opts = append(opts, jira.WithLogger(logger))
	}
	client := jira.NewClient(cfg.BaseURL, cfg.Email, cfg.APIToken, opts...)
	return jira.NewExporter(client, cfg.ProjectKey)
}

// AttachHistory connects to Postgres, applies migrations and mirrors every
// routing decision into the routing_records table. The returned closer
// releases the connection pool.
func (s *AppServices) AttachHistory(ctx context.Context, databaseURL string) (io.Closer, error) {
	db, err := postgres.Connect(ctx, databaseURL, postgres.DefaultOptions())
	if err != nil {
		return nil, err
	}
	if err := postgres.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.Routing.WithHistory(postgres.NewRoutingStore(db))
	return db, nil
}

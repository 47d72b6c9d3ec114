package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/intakerouter/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/intakerouter/pkg/storage"
	"github.com/spf13/cobra"
)

// loadServices wires the services of root. A broken server.yaml is reported
// on stderr and the command continues on defaults; a broken policy is fatal.
func loadServices(cmd *cobra.Command, root string) (*wiring.AppServices, error) {
	services, err := wiring.BuildAppServices(root)
	if services == nil {
		return nil, MapError(fmt.Errorf("failed to build services: %w", err))
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}
	return services, nil
}

// getProjectRoot returns --project when set. Otherwise it walks up from the
// working directory to the nearest directory holding a workspace, falling
// back to the working directory itself.
func getProjectRoot() (string, error) {
	if projectPath != "" {
		abs, err := filepath.Abs(projectPath)
		if err != nil {
			return "", fmt.Errorf("invalid project path %q: %w", projectPath, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", fmt.Errorf("project path %q: %w", abs, err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("project path %q is not a directory", abs)
		}
		return abs, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return findWorkspaceRoot(cwd), nil
}

func findWorkspaceRoot(start string) string {
	for dir := start; ; {
		if info, err := os.Stat(filepath.Join(dir, storage.IntakeDir)); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

func workspaceServices(cmd *cobra.Command) (*wiring.AppServices, error) {
	root, err := getProjectRoot()
	if err != nil {
		return nil, err
	}
	return loadServices(cmd, root)
}

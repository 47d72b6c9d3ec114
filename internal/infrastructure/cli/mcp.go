package cli

import (
	"fmt"
	"os"
	"strings"

	inframcp "github.com/felixgeelhaar/intakerouter/internal/infrastructure/mcp"
	"github.com/spf13/cobra"
)

var (
	mcpTransport string
	mcpAddr      string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the intakerouter MCP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("INTAKE_SKIP_MCP_START") == "true" {
			return nil
		}
		root, err := getProjectRoot()
		if err != nil {
			return fmt.Errorf("resolve project path: %w", err)
		}
		server, err := inframcp.NewServer(root)
		if err != nil {
			return MapError(fmt.Errorf("failed to initialize server: %w", err))
		}
		switch strings.ToLower(mcpTransport) {
		case "stdio", "":
			return server.ServeStdio(cmd.Context())
		case "http":
			return server.ServeHTTP(cmd.Context(), mcpAddr)
		default:
			return NewCLIError(fmt.Sprintf("unsupported transport: %s", mcpTransport), "Use stdio or http", nil)
		}
	},
}

var mcpOpenAPICmd = &cobra.Command{
	Use:   "openapi",
	Short: "Print an OpenAPI document describing the MCP tools",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return fmt.Errorf("resolve project path: %w", err)
		}
		server, err := inframcp.NewServer(root)
		if err != nil {
			return MapError(fmt.Errorf("failed to initialize server: %w", err))
		}
		data, err := server.OpenAPI()
		if err != nil {
			return fmt.Errorf("failed to generate OpenAPI document: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpTransport, "transport", "stdio", "Transport to use (stdio, http)")
	mcpCmd.Flags().StringVar(&mcpAddr, "addr", ":8090", "Address for the http transport")
	mcpCmd.AddCommand(mcpOpenAPICmd)
	RootCmd.AddCommand(mcpCmd)
}

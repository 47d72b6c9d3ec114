package cli

import (
	"fmt"

	"github.com/felixgeelhaar/intakerouter/pkg/domain/routing"
	"github.com/spf13/cobra"
)

var (
	routeJSON         bool
	routeTimeToMarket int
	routeSave         string
	routeActor        string
)

var routeCmd = &cobra.Command{
	Use:   "route [file]",
	Short: "Score a structured spec and recommend a delivery path",
	Long: `Score a structured spec (JSON or YAML, "-" for stdin) and print the
recommended delivery path. With --save the spec is stored on the intake and
the decision is recorded.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file := ""
		if len(args) > 0 {
			file = args[0]
		}
		spec, err := readSpecFile(file, cmd.InOrStdin())
		if err != nil {
			return MapError(err)
		}

		services, err := workspaceServices(cmd)
		if err != nil {
			return err
		}

		var opts []routing.RouteOption
		if cmd.Flags().Changed("time-to-market") {
			opts = append(opts, routing.WithTimeToMarket(routeTimeToMarket))
		}

		var res *routing.Result
		if routeSave != "" {
			if err := services.Routing.SaveSpec(routeSave, spec, routeActor); err != nil {
				return MapError(fmt.Errorf("failed to save spec: %w", err))
			}
			rec, err := services.Routing.RouteIntake(cmd.Context(), routeSave, routeActor, opts...)
			if err != nil {
				return MapError(fmt.Errorf("failed to route intake: %w", err))
			}
			if routeJSON {
				return printJSON(cmd.OutOrStdout(), rec)
			}
			res = &rec.Result
		} else {
			res, err = services.Routing.RouteSpec(spec, opts...)
			if err != nil {
				return MapError(err)
			}
			if routeJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
		}

		renderResult(cmd.OutOrStdout(), res)
		if routeSave != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "\nRouting saved for intake %s\n", routeSave)
		}
		return nil
	},
}

var explainCmd = &cobra.Command{
	Use:   "explain [file]",
	Short: "Print the Markdown explanation of a routing decision",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file := ""
		if len(args) > 0 {
			file = args[0]
		}
		spec, err := readSpecFile(file, cmd.InOrStdin())
		if err != nil {
			return MapError(err)
		}
		services, err := workspaceServices(cmd)
		if err != nil {
			return err
		}
		var opts []routing.RouteOption
		if cmd.Flags().Changed("time-to-market") {
			opts = append(opts, routing.WithTimeToMarket(routeTimeToMarket))
		}
		res, err := services.Routing.RouteSpec(spec, opts...)
		if err != nil {
			return MapError(err)
		}
		fmt.Fprint(cmd.OutOrStdout(), res.Explanation)
		return nil
	},
}

func init() {
	routeCmd.Flags().BoolVar(&routeJSON, "json", false, "Print the result as JSON")
	routeCmd.Flags().IntVar(&routeTimeToMarket, "time-to-market", 0, "Time-to-market urgency (0-100), overrides the spec")
	routeCmd.Flags().StringVar(&routeSave, "save", "", "Store the spec on this intake and record the decision")
	routeCmd.Flags().StringVar(&routeActor, "actor", "cli", "Actor recorded in the audit trail")
	explainCmd.Flags().IntVar(&routeTimeToMarket, "time-to-market", 0, "Time-to-market urgency (0-100), overrides the spec")
	RootCmd.AddCommand(routeCmd)
	RootCmd.AddCommand(explainCmd)
}

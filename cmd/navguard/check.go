package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/navguard-dev/navguard/internal/config"
	"github.com/navguard-dev/navguard/pkg/guard"
	"github.com/navguard-dev/navguard/pkg/nav"
)

func checkCmd() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "check <location>",
		Short: "Evaluate the configured guards against a location",
		Long: `Run a one-shot guard evaluation for a location without changing
any state, and print the verdict. Exits non-zero when the
navigation would be rejected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configDir)
			if err != nil {
				return err
			}
			location := args[0]

			machine := nav.New(cfg.InitialLocation, nav.WithRoutes(nav.Routes(cfg.Routes)))
			for _, g := range cfg.BuildGuards() {
				machine.AddGuard(g)
			}

			routeName, pathParams := machine.Resolve(location)
			result := machine.Orchestrator().Evaluate(cmd.Context(), guard.Request{
				Destination: location,
				RouteName:   routeName,
				PathParams:  pathParams,
			})

			switch result.Kind() {
			case guard.KindAllow:
				success("%s is allowed", location)
				if routeName != "" {
					info("route: %s, params: %v", routeName, pathParams)
				}
			case guard.KindRedirect:
				r, _ := result.Redirect()
				warn("%s redirects to %s", location, r.Path)
			case guard.KindReject:
				r, _ := result.Reject()
				if r.Reason != "" {
					return fmt.Errorf("%s is rejected: %s", location, r.Reason)
				}
				return fmt.Errorf("%s is rejected", location)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configDir, "config-dir", "c", ".", "Directory containing navguard.toml")

	return cmd
}

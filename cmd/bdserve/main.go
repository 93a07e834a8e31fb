// Command bdserve runs the example dispatch service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/advdv/bdispatch"
	"github.com/advdv/bdispatch/bdapp"
	"github.com/advdv/bdispatch/internal/example"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bdserve",
		Short: "Serve the example controllers with the bdispatch engine",
		Long: `bdserve runs an HTTP server that routes requests by exact verb and path to the
example controllers. Configuration is read from BD_* environment variables.`,
		Version:      version,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.AddCommand(newServeCommand(), newRoutesCommand())

	return rootCmd
}

// appOptions is the configuration shared by serving and listing routes.
func appOptions() []bdapp.Option {
	return []bdapp.Option{
		bdapp.WithController(example.NewHelloController),
		bdapp.WithFilter("/api", example.AccessLog()),
	}
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := bdapp.NewApp[bdapp.BaseEnvironment](func(*bdispatch.Engine) {}, appOptions()...)
			if err := app.Err(); err != nil {
				return err
			}

			return app.Start(cmd.Context())
		},
	}
}

func newRoutesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the route table without starting the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine := bdispatch.NewEngine()
			engine.Mount(example.NewHelloController())

			return printRoutes(cmd, engine.Routes())
		},
	}
}

func printRoutes(cmd *cobra.Command, routes []bdispatch.Route) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERB\tPATH\tHANDLER\tPARAMS")

	for _, r := range routes {
		params := make([]string, len(r.Handler.Params))
		for i, p := range r.Handler.Params {
			params[i] = p.String()
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			strings.ToUpper(r.Key.Verb()), r.Key.Path(), r.Handler.Identity(), strings.Join(params, ", "))
	}

	return tw.Flush()
}

// Command ansiterm-demo spawns a child process under a pty and feeds
// its output through a lineterm.Adapter, exposing the reconstructed
// lines over stdout, a WebSocket feed, and a chunked HTTP stream.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := defaultOptions()

	cmd := &cobra.Command{
		Use:   "ansiterm-demo -- <command> [args...]",
		Short: "Reconstruct a child process's terminal output line by line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "ansiterm.toml", "path to strategy config TOML")
	flags.StringVar(&opts.listenAddr, "listen", ":8088", "HTTP/WebSocket listen address")
	flags.BoolVar(&opts.serve, "serve", false, "expose the session over HTTP/WebSocket")
	flags.BoolVar(&opts.pretty, "pretty-log", false, "use human-readable console logging")

	return cmd
}

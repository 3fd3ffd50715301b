package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// globalFlags are shared by every command.
type globalFlags struct {
	logLevel  string
	labelFont string
}

func main() {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:          "floodsim",
		Short:        "Hat Yai flood-risk 3D scene",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error); defaults to LOG_LEVEL")
	rootCmd.PersistentFlags().StringVar(&flags.labelFont, "label-font", "", "TTF/OTF font for building labels, e.g. one with Thai glyphs")

	rootCmd.AddCommand(serveCmd(&flags))
	rootCmd.AddCommand(viewCmd(&flags))
	rootCmd.AddCommand(snapshotCmd(&flags))
	rootCmd.AddCommand(summaryCmd(&flags))
	rootCmd.AddCommand(validateCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// projectArg returns the optional project directory or config file.
func projectArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func serveCmd(flags *globalFlags) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve [project-path]",
		Short: "Build the scene in the background and serve it over HTTP",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), projectArg(args), *flags, port)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP server port (overrides config)")
	return cmd
}

func viewCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "view [project-path]",
		Short: "Open the interactive 3D window",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd.Context(), projectArg(args), *flags)
		},
	}
}

func snapshotCmd(flags *globalFlags) *cobra.Command {
	var (
		out   string
		level float64
	)

	cmd := &cobra.Command{
		Use:   "snapshot [project-path]",
		Short: "Fetch every source once and print the scene graph as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(cmd.Context(), projectArg(args), *flags, level, out)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write JSON to this file instead of stdout")
	cmd.Flags().Float64Var(&level, "water-level", 0, "water plane elevation in meters")
	return cmd
}

func summaryCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "summary [project-path]",
		Short: "Fetch every source once and print the dashboard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd.Context(), projectArg(args), *flags)
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [project-path]",
		Short: "Validate a project config without fetching anything",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(projectArg(args))
		},
	}
}

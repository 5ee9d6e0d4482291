package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yourorg/relnotes/internal/notes"
)

// Version is the release version, set at build time with
// -ldflags "-X main.Version=..."
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describe(err))
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "relnotes",
		Short:         "Generate categorized release notes from merged pull requests",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to a YAML config file (default $RELNOTES_CONFIG or ./relnotes.yaml)")

	cmd.AddCommand(generateCmd())
	cmd.AddCommand(watchCmd())
	cmd.AddCommand(historyCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "relnotes", Version)
		},
	}
}

// describe adds a hint to errors a user can fix by changing the tags
func describe(err error) string {
	var tagErr *notes.TagNotFoundError
	if errors.As(err, &tagErr) {
		switch tagErr.Role {
		case notes.RoleEnd:
			return err.Error() + "; check the end tag or END_VERSION"
		case notes.RoleStart:
			return err.Error() + "; check the start tag or START_VERSION"
		}
	}
	return err.Error()
}

package cmd

import (
	"fmt"
	"log/slog"

	"github.com/gophertribe/devtool/test"
	"github.com/spf13/cobra"
)

// QualityCmds returns the test, lint and integration-test commands.
func QualityCmds() []*cobra.Command {
	return []*cobra.Command{
		qualityCmd("test", "Run unit tests", "tests", func() error { return test.Test() }),
		qualityCmd("lint", "Run linters", "linting", func() error { return test.Lint() }),
		// integration tests need an MCP9808 on the configured bus
		qualityCmd("integration-test", "Run hardware integration tests", "integration testing", func() error { return test.Integ() }),
	}
}

func qualityCmd(use, short, what string, run func() error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.Info("running " + what)
			if err := run(); err != nil {
				return fmt.Errorf("failed to run %s: %w", what, err)
			}
			return nil
		},
	}
}

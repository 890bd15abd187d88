package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/maliboot/colaup/internal/cli"
	"github.com/maliboot/colaup/internal/errors"
	"github.com/maliboot/colaup/internal/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCommand(out, errOut io.Writer) *cobra.Command {
	v := viper.New()
	var configFile string

	cmd := &cobra.Command{
		Use:   "colaup",
		Short: "Migrate COLA data classes to the attribute-driven model",
		Long: `Rewrites the PHP classes of a COLA module in place: DataObject becomes
Database, Column and Field attributes become ORM and Of, descriptions move to
doc comments, and the WeakSetterInterface contract replaces the old base classes.

Only files under the role directories are touched:
  Client/Dto/Command, Client/Dto/Query, Client/ViewObject, Domain/Model, Infra/DataObject

Examples:
  colaup                          # migrate ./module
  colaup --dir app --base ../shop # migrate ../shop/app
  colaup --dry-run                # print the diff, write nothing
  colaup --keep-going --log-json  # migrate what can be, report the rest`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Unset flags fall through to the environment, the config file and defaults.
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return errors.WrapConfigurationError("flags", "bind", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), v, configFile, out, errOut)
		},
	}

	flags := cmd.Flags()
	flags.String("dir", "module", "Directory to migrate, relative to --base")
	flags.String("base", ".", "Project root; colaup.yml is read from here")
	flags.StringSlice("paths", cli.DefaultPaths, "Role directories whose files are migrated")
	flags.Bool("dry-run", false, "Print a unified diff instead of writing files")
	flags.Bool("keep-going", false, "Continue past failing files and report them at the end")
	flags.Bool("respect-gitignore", false, "Skip files matched by the directory's .gitignore")
	flags.BoolP("verbose", "v", false, "Enable verbose output")
	flags.BoolP("quiet", "q", false, "Only show errors")
	flags.Bool("log-json", false, "Emit per-file events as JSON lines")
	flags.StringVarP(&configFile, "config", "c", "", "Config file (default: <base>/colaup.yml)")

	return cmd
}

func run(ctx context.Context, v *viper.Viper, configFile string, out, errOut io.Writer) error {
	cfg, err := cli.LoadConfig(v, configFile)
	if err != nil {
		cli.NewDiagnosticReporter(false).WithOutput(errOut).ReportError(err)
		return err
	}

	level := cfg.DiagnosticLevel()
	diagnostics := utils.NewDiagnosticSystem(level)
	if out != os.Stdout || errOut != os.Stderr {
		diagnostics.WithOutput(out, errOut)
	}
	logger := utils.NewLogger(errOut, utils.LoggerOptions{
		JSON:  cfg.LogJSON,
		Level: level,
	})

	diagnostics.Section("colaup")
	diagnostics.Verbose("paths: %v", cfg.Paths)
	if cfg.DryRun {
		diagnostics.Info("dry run: no file will be written")
	}

	runner := cli.NewRunner(cfg, diagnostics, logger)
	summary, err := runner.Run(ctx)
	runner.PrintSummary(summary)
	reporter := cli.NewDiagnosticReporter(cfg.Verbose).WithOutput(errOut)
	if errors.Is(err, context.Canceled) {
		reporter.ReportWarning(fmt.Sprintf("interrupted after %d of %d files", len(summary.Files), summary.Scanned))
		return err
	}
	if err != nil {
		reporter.ReportError(err)
		return err
	}

	diagnostics.Success("%d of %d files migrated", summary.Rewritten, summary.Scanned)
	return nil
}

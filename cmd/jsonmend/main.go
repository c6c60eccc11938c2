// Command jsonmend repairs JSON payloads corrupted by upstream generators.
package main

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"charm.land/jsonmend"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "jsonmend",
		Short:   "Repair malformed JSON payloads",
		Long:    `jsonmend applies a bounded set of textual repairs to JSON payloads so they parse, or reports where they still fail.`,
		Version: jsonmend.Version,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "path to a YAML config file")
	flags.StringSlice("protect", nil, "protected field names (repeatable)")
	flags.StringSlice("string-field", nil, "fields the payload schema types as strings (repeatable)")
	flags.String("schema", "", "path to a JSON Schema to derive string fields from")
	flags.Bool("verbose", false, "log debug output")

	root.AddCommand(newRepairCmd())
	root.AddCommand(newCheckCmd())
	return root
}

// newLogger returns the stderr logger for one invocation, tagged with a run
// id so records from parallel inputs can be correlated.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return newLoggerTo(cmd.ErrOrStderr(), level).With("run_id", uuid.NewString())
}

func newLoggerTo(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

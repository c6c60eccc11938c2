package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"charm.land/jsonmend"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newRepairCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair [flags] [file...]",
		Short: "Repair JSON payloads from files or stdin",
		RunE:  runRepair,
	}
	cmd.Flags().String("format", "json", "output format (json|text)")
	cmd.Flags().Int("jobs", 0, "number of inputs repaired in parallel (0 means GOMAXPROCS)")
	return cmd
}

type fileOutcome struct {
	Path    string           `json:"path"`
	Outcome jsonmend.Outcome `json:"outcome"`
}

func runRepair(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if format != "json" && format != "text" {
		return fmt.Errorf("repair: unknown format %q", format)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	cfg, err := resolveConfig(cmd, os.Getenv)
	if err != nil {
		return err
	}
	opts, err := cfg.options()
	if err != nil {
		return err
	}
	engine := jsonmend.NewEngine(opts...)
	logger := newLogger(cmd)

	inputs := args
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	source := newInputSource(cmd.InOrStdin())

	// Indices are unique per goroutine, so results needs no locking.
	results := make([]fileOutcome, len(inputs))
	g, gctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(min(jobs, len(inputs)))
	for i, path := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := source.read(path)
			if err != nil {
				return err
			}
			results[i] = fileOutcome{Path: path, Outcome: engine.Repair(string(data))}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	stdout := cmd.OutOrStdout()
	enc := json.NewEncoder(stdout)
	for _, r := range results {
		logger.Debug("Repair finished",
			"path", r.Path,
			"state", r.Outcome.State,
			"trace", r.Outcome.Trace)
		printStatus(cmd.ErrOrStderr(), r.Path, r.Outcome)
		if !r.Outcome.OK() {
			failed++
			logger.Warn("Payload unrepairable",
				"path", r.Path,
				"error", r.Outcome.Err,
				"context", r.Outcome.Position)
		}

		switch format {
		case "json":
			if err := enc.Encode(r); err != nil {
				return fmt.Errorf("failed to write outcome: %w", err)
			}
		case "text":
			if r.Outcome.OK() {
				if _, err := fmt.Fprintln(stdout, r.Outcome.Text); err != nil {
					return err
				}
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d inputs unrepairable", failed, len(results))
	}
	return nil
}

// inputSource reads inputs by path. Stdin ("-") is read at most once and
// shared by every "-" argument; read is safe for concurrent use.
type inputSource struct {
	stdin io.Reader

	once      sync.Once
	stdinData []byte
	stdinErr  error
}

func newInputSource(stdin io.Reader) *inputSource {
	return &inputSource{stdin: stdin}
}

// read returns the contents of path, or of stdin when path is "-".
func (s *inputSource) read(path string) ([]byte, error) {
	if path == "-" {
		s.once.Do(func() {
			s.stdinData, s.stdinErr = io.ReadAll(s.stdin)
		})
		if s.stdinErr != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", s.stdinErr)
		}
		return s.stdinData, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

package main

import (
	"fmt"

	xjson "github.com/charmbracelet/x/json"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [file...]",
		Short: "Report whether inputs are already valid JSON, without repairing",
		RunE:  runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	inputs := args
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	source := newInputSource(cmd.InOrStdin())
	invalid := 0
	for _, path := range inputs {
		data, err := source.read(path)
		if err != nil {
			return err
		}
		valid := xjson.IsValid(data)
		if !valid {
			invalid++
		}
		printValidity(cmd.OutOrStdout(), path, valid)
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d inputs are not valid JSON", invalid, len(inputs))
	}
	return nil
}

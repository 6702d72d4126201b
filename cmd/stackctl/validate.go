package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	cdk "github.com/cbroompearson/cdk"
	"github.com/cbroompearson/cdk/internal/validation"
)

var errValidationFailed = errors.New("validation failed")

// newValidateCmd creates the "validate" subcommand.
func newValidateCmd(opts *rootOptions) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Synthesize and lint the template",
		Long: `Validate synthesizes the stack and checks it.

Checks performed:
  - Configuration: required parameters, CIDRs, microservice entries
  - Topology: routing priorities, role names, hosted zone, references
  - cfn-lint rules on the rendered template

Examples:
    stackctl validate
    stackctl validate --stage prod --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stacks, err := opts.synthesize(cmd.Context())
			if err != nil {
				result := cdk.ValidateResult{Success: false, Errors: []string{err.Error()}}
				if werr := writeValidateResult(cmd.OutOrStdout(), "", result, outputFormat); werr != nil {
					return werr
				}
				return errValidationFailed
			}

			failed := false
			for _, s := range stacks {
				lint, err := validation.ValidateTemplate(s.template, s.stack.Name)
				if err != nil {
					return err
				}
				result := lint.Summary(len(s.template.Resources))
				if err := writeValidateResult(cmd.OutOrStdout(), s.stack.Name, result, outputFormat); err != nil {
					return err
				}
				failed = failed || !result.Success
			}
			if failed {
				return errValidationFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func writeValidateResult(w io.Writer, stack string, result cdk.ValidateResult, format string) error {
	switch format {
	case "json":
		return writeJSON(w, result)
	case "text":
		prefix := ""
		if stack != "" {
			prefix = stack + ": "
		}
		if result.Success {
			fmt.Fprintf(w, "%sValidation passed: %d resources OK\n", prefix, result.Resources)
		} else {
			fmt.Fprintf(w, "%sValidation FAILED:\n", prefix)
		}
		for _, msg := range result.Errors {
			fmt.Fprintf(w, "  ERROR: %s\n", msg)
		}
		for _, msg := range result.Warnings {
			fmt.Fprintf(w, "  WARNING: %s\n", msg)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

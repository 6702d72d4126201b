package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/cbroompearson/cdk/internal/provision"
)

func newDeployCmd(opts *rootOptions) *cobra.Command {
	var (
		outputFormat string
		pollInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the stack through a CloudFormation change set",
		Long: `Deploy synthesizes every requested stage and applies each stack through a
change set. Stacks are applied one after another; the first failure stops
the run and nothing is retried.

Examples:
    stackctl deploy --stage dev
    stackctl deploy --stage prod --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			stacks, err := opts.synthesize(ctx)
			if err != nil {
				return err
			}

			for _, s := range stacks {
				cfg, err := opts.stackConfig(ctx, s)
				if err != nil {
					return err
				}
				backend := provision.NewCloudFormationBackend(cfg, opts.log())
				backend.PollInterval = pollInterval

				outcome, applyErr := backend.Apply(ctx, provision.Target{
					StackName: s.stack.Name,
					Template:  s.template,
					Tags:      s.stack.Tags.Map(),
				})
				if err := writeOutcome(cmd.OutOrStdout(), outcome, outputFormat); err != nil {
					return err
				}
				if applyErr != nil {
					return fmt.Errorf("deploying %s: %w", s.stack.Name, applyErr)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", provision.DefaultPollInterval, "Wait between status checks")

	return cmd
}

func writeOutcome(w io.Writer, o provision.Outcome, format string) error {
	switch format {
	case "json":
		return writeJSON(w, o)
	case "text":
		fmt.Fprintf(w, "%s: %s\n", o.StackName, o.Status)
		if o.Reason != "" {
			fmt.Fprintf(w, "  reason: %s\n", o.Reason)
		}
		keys := make([]string, 0, len(o.Outputs))
		for k := range o.Outputs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s = %s\n", k, o.Outputs[k])
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

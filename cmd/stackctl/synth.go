package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	cdk "github.com/cbroompearson/cdk"
	"github.com/cbroompearson/cdk/internal/provision"
	"github.com/cbroompearson/cdk/internal/template"
)

func newSynthCmd(opts *rootOptions) *cobra.Command {
	var (
		outDir       string
		toStdout     bool
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Synthesize the CloudFormation template",
		Long: `Synth resolves the stage, runs the lookups and writes the template of each
stack to <out>/<stack>.template.json, or <stack>.template.yaml with
--format yaml.

Examples:
    stackctl synth
    stackctl synth --stage dev --stage prod
    stackctl synth --stdout --format yaml
    stackctl synth --format result        # JSON summary for tooling`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stacks, err := opts.synthesize(cmd.Context())
			if err != nil {
				if outputFormat == "result" {
					_ = writeJSON(cmd.OutOrStdout(), cdk.SynthResult{Success: false, Errors: []string{err.Error()}})
				}
				return err
			}

			switch {
			case outputFormat == "result":
				for _, s := range stacks {
					if err := writeJSON(cmd.OutOrStdout(), synthResult(s)); err != nil {
						return err
					}
				}
				return nil
			case toStdout:
				for _, s := range stacks {
					if err := writeTemplate(cmd.OutOrStdout(), s.template, outputFormat); err != nil {
						return err
					}
				}
				return nil
			}

			backend := &provision.FileBackend{Dir: outDir, Format: outputFormat, Logger: opts.log()}
			for _, s := range stacks {
				outcome, err := backend.Apply(cmd.Context(), provision.Target{
					StackName: s.stack.Name,
					Template:  s.template,
					Tags:      s.stack.Tags.Map(),
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d resources written to %s\n", s.stack.Name, len(s.template.Resources), outcome.Location)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "output", "o", provision.DefaultOutDir, "Output directory")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print the template instead of writing files")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format: json, yaml or result")

	return cmd
}

func synthResult(s synthesized) cdk.SynthResult {
	names := make([]string, 0, len(s.template.Resources))
	for name := range s.template.Resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return cdk.SynthResult{
		Success:   true,
		Stack:     s.stack.Name,
		Template:  s.template,
		Resources: names,
	}
}

func writeTemplate(w io.Writer, t *cdk.Template, format string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "json":
		data, err = template.ToJSON(t)
	case "yaml":
		data, err = template.ToYAML(t)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

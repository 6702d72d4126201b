package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	cdk "github.com/cbroompearson/cdk"
	"github.com/cbroompearson/cdk/internal/differ"
	"github.com/cbroompearson/cdk/internal/provision"
)

func newDiffCmd(opts *rootOptions) *cobra.Command {
	var (
		outputFormat string
		ignoreOrder  bool
	)

	cmd := &cobra.Command{
		Use:   "diff [old-template] [new-template]",
		Short: "Compare templates",
		Long: `Diff compares two CloudFormation templates by resource.

With no arguments the synthesized stack is compared against the deployed
stack. With one argument it is compared against that template file. With
two arguments the two files are compared.

Examples:
    stackctl diff
    stackctl diff cdk.out/oculus-dev.template.json
    stackctl diff old.json new.yaml --ignore-order`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			diffOpts := differ.Options{IgnoreOrder: ignoreOrder}

			if len(args) == 2 {
				result, err := differ.CompareFiles(args[0], args[1], diffOpts)
				if err != nil {
					return err
				}
				return writeDiff(cmd.OutOrStdout(), args[0], result, outputFormat)
			}

			stacks, err := opts.synthesize(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range stacks {
				old, label, err := baseline(cmd, opts, s, args)
				if err != nil {
					return err
				}
				result, err := differ.Compare(old, s.template, diffOpts)
				if err != nil {
					return err
				}
				if err := writeDiff(cmd.OutOrStdout(), label, result, outputFormat); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&ignoreOrder, "ignore-order", false, "Ignore array element order")

	return cmd
}

// baseline returns the template a synthesized stack is compared against. A
// stack that is not deployed yet compares against an empty template.
func baseline(cmd *cobra.Command, opts *rootOptions, s synthesized, args []string) (*cdk.Template, string, error) {
	if len(args) == 1 {
		t, err := differ.LoadTemplate(args[0])
		return t, args[0], err
	}

	cfg, err := opts.stackConfig(cmd.Context(), s)
	if err != nil {
		return nil, "", err
	}
	backend := provision.NewCloudFormationBackend(cfg, opts.log())
	body, ok, err := backend.DeployedTemplate(cmd.Context(), s.stack.Name)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return &cdk.Template{}, s.stack.Name + " (not deployed)", nil
	}
	t, err := differ.ParseTemplate([]byte(body))
	return t, s.stack.Name, err
}

func writeDiff(w io.Writer, label string, result *differ.Result, format string) error {
	switch format {
	case "json":
		return writeJSON(w, struct {
			Stack   string           `json:"stack"`
			Diff    cdk.TemplateDiff `json:"diff"`
			Summary cdk.DiffSummary  `json:"summary"`
		}{label, result.Diff, result.Summary})
	case "text":
		if result.Empty() {
			fmt.Fprintf(w, "%s: no differences\n", label)
			return nil
		}
		fmt.Fprintf(w, "%s:\n", label)
		for _, e := range result.Diff.Added {
			fmt.Fprintf(w, "  + %s (%s)\n", e.Resource, e.Type)
		}
		for _, e := range result.Diff.Removed {
			fmt.Fprintf(w, "  - %s (%s)\n", e.Resource, e.Type)
		}
		for _, e := range result.Diff.Modified {
			fmt.Fprintf(w, "  ~ %s (%s)\n", e.Resource, e.Type)
			for _, c := range e.Changes {
				fmt.Fprintf(w, "      %s\n", c)
			}
		}
		for _, o := range result.Diff.Outputs {
			fmt.Fprintf(w, "  output %s\n", o)
		}
		fmt.Fprintf(w, "%d added, %d removed, %d modified\n", result.Summary.Added, result.Summary.Removed, result.Summary.Modified)
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

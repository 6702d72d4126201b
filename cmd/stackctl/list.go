package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	cdk "github.com/cbroompearson/cdk"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the resources of the stack",
		Long: `List synthesizes the stack and prints its resources in deployment order,
with the component that produced each one.

Examples:
    stackctl list
    stackctl list --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stacks, err := opts.synthesize(cmd.Context())
			if err != nil {
				return err
			}

			for _, s := range stacks {
				nodes, err := s.stack.Nodes()
				if err != nil {
					return err
				}
				result := cdk.ListResult{
					Stack:     s.stack.Name,
					Resources: make([]cdk.ListResource, 0, len(nodes)),
				}
				for _, n := range nodes {
					result.Resources = append(result.Resources, cdk.ListResource{
						Name:  n.LogicalID,
						Type:  n.Type,
						Group: n.Group,
					})
				}
				if err := writeListResult(cmd.OutOrStdout(), result, outputFormat); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func writeListResult(w io.Writer, result cdk.ListResult, format string) error {
	switch format {
	case "json":
		return writeJSON(w, result)
	case "text":
		if len(result.Resources) == 0 {
			fmt.Fprintf(w, "%s: no resources.\n", result.Stack)
			return nil
		}
		fmt.Fprintf(w, "%s resources (%d):\n\n", result.Stack, len(result.Resources))
		for _, res := range result.Resources {
			fmt.Fprintf(w, "  %-12s %s: %s\n", res.Group, res.Name, res.Type)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

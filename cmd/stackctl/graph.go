package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cbroompearson/cdk/internal/graph"
)

func newGraphCmd(opts *rootOptions) *cobra.Command {
	var (
		outputFormat string
		cluster      bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Generate DOT graph of resource dependencies",
		Long: `Generate a DOT or Mermaid format graph showing resource dependencies.
Blue edges are Fn::GetAtt references.

The output can be rendered with Graphviz:
    stackctl graph | dot -Tpng -o deps.png

Or used in GitHub markdown (Mermaid format):
    stackctl graph -f mermaid

Examples:
    stackctl graph --stage dev
    stackctl graph --cluster          # one box per component`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, ok := graph.ParseFormat(outputFormat)
			if !ok {
				return fmt.Errorf("unknown format: %s (use 'dot' or 'mermaid')", outputFormat)
			}

			stacks, err := opts.synthesize(cmd.Context())
			if err != nil {
				return err
			}

			gen := &graph.Generator{Format: format, ClusterByGroup: cluster}
			for _, s := range stacks {
				nodes, err := s.stack.Nodes()
				if err != nil {
					return err
				}
				stats := graph.Summarize(nodes)
				opts.log().Debug("graph", "stack", s.stack.Name, "resources", stats.Resources, "edges", stats.Edges, "groups", stats.GroupNames())
				if err := gen.Generate(nodes, cmd.OutOrStdout()); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "dot", "Output format: dot or mermaid")
	cmd.Flags().BoolVar(&cluster, "cluster", false, "Cluster resources by component")

	return cmd
}

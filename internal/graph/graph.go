// Package graph renders the synthesized resource dependency graph in DOT and
// Mermaid formats.
package graph

import (
	"io"
	"sort"
	"strings"

	"github.com/emicklei/dot"

	cdk "github.com/cbroompearson/cdk"
)

// Format specifies the output format for the graph.
type Format string

const (
	// FormatDOT outputs Graphviz DOT format.
	FormatDOT Format = "dot"
	// FormatMermaid outputs Mermaid format for GitHub/markdown rendering.
	FormatMermaid Format = "mermaid"
)

// ParseFormat maps a flag value to a Format. Unknown values report false.
func ParseFormat(s string) (Format, bool) {
	switch Format(strings.ToLower(s)) {
	case FormatDOT, "":
		return FormatDOT, true
	case FormatMermaid:
		return FormatMermaid, true
	}
	return "", false
}

// Generator creates dependency graphs from resource nodes.
type Generator struct {
	// Format specifies the output format (dot or mermaid). Defaults to dot.
	Format Format

	// ClusterByGroup draws the resources of each component inside a subgraph.
	ClusterByGroup bool
}

// Generate creates a dependency graph and writes it to w.
func (g *Generator) Generate(nodes []cdk.ResourceNode, w io.Writer) error {
	graph := g.buildGraph(nodes)

	var output string
	if g.Format == FormatMermaid {
		output = dot.MermaidGraph(graph, dot.MermaidTopToBottom)
	} else {
		output = graph.String()
	}

	_, err := io.WriteString(w, output)
	return err
}

// GenerateString is a convenience method that returns the graph as a string.
func (g *Generator) GenerateString(nodes []cdk.ResourceNode) (string, error) {
	var sb strings.Builder
	if err := g.Generate(nodes, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (g *Generator) buildGraph(nodes []cdk.ResourceNode) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "TB")

	graph.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "box")
		n.Attr("fontname", "Arial")
	})
	graph.EdgeInitializer(func(e dot.Edge) {
		e.Attr("fontname", "Arial")
		e.Attr("fontsize", "10")
	})

	vertices := make(map[string]dot.Node, len(nodes))
	if g.ClusterByGroup {
		for _, group := range groups(nodes) {
			cluster := graph.Subgraph(group, dot.ClusterOption{})
			cluster.Attr("style", "rounded")
			cluster.Attr("bgcolor", "lightyellow")
			for _, n := range nodes {
				if n.Group == group {
					vertices[n.LogicalID] = addNode(cluster, n)
				}
			}
		}
	}
	for _, n := range nodes {
		if _, ok := vertices[n.LogicalID]; !ok {
			vertices[n.LogicalID] = addNode(graph, n)
		}
	}

	for _, n := range nodes {
		attrs := make(map[string]bool, len(n.AttrDependencies))
		for _, dep := range n.AttrDependencies {
			attrs[dep] = true
		}
		for _, dep := range n.Dependencies {
			to, ok := vertices[dep]
			if !ok {
				continue
			}
			e := graph.Edge(vertices[n.LogicalID], to)
			if attrs[dep] {
				e.Attr("color", "blue")
			}
		}
	}

	return graph
}

func addNode(graph *dot.Graph, n cdk.ResourceNode) dot.Node {
	node := graph.Node(n.LogicalID)
	node.Label(n.LogicalID + "\\n[" + n.Type + "]")
	return node
}

// groups returns the non-empty groups in first-seen order.
func groups(nodes []cdk.ResourceNode) []string {
	seen := make(map[string]bool)
	var out []string
	for _, n := range nodes {
		if n.Group == "" || seen[n.Group] {
			continue
		}
		seen[n.Group] = true
		out = append(out, n.Group)
	}
	return out
}

// Stats summarizes a node list for the graph command's header.
type Stats struct {
	Resources int
	Edges     int
	Groups    map[string]int
}

// Summarize counts the resources, edges and per-group sizes of nodes.
func Summarize(nodes []cdk.ResourceNode) Stats {
	s := Stats{Resources: len(nodes), Groups: make(map[string]int)}
	for _, n := range nodes {
		s.Edges += len(n.Dependencies)
		s.Groups[n.Group]++
	}
	return s
}

// GroupNames returns the group names of s in sorted order.
func (s Stats) GroupNames() []string {
	names := make([]string, 0, len(s.Groups))
	for name := range s.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

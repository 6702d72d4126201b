// Package template renders stack resources into a CloudFormation template.
package template

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	cdk "github.com/cbroompearson/cdk"
	"github.com/cbroompearson/cdk/internal/serialize"
)

// FormatVersion is the template format version written to every template.
const FormatVersion = "2010-09-09"

// Resource is one resource handed to the Builder.
type Resource struct {
	LogicalID string
	Group     string
	Value     cdk.Resource
	// DependsOn lists explicit ordering constraints; references through Ref
	// and Fn::GetAtt are discovered from the properties.
	DependsOn      []string
	DeletionPolicy string
}

type entry struct {
	resourceType   string
	group          string
	properties     map[string]any
	dependsOn      []string
	refs           []string
	atts           []string
	deletionPolicy string
}

// Builder constructs CloudFormation templates from typed resources.
type Builder struct {
	description string
	resources   map[string]*entry
	outputs     map[string]cdk.Output
}

// NewBuilder creates an empty template builder.
func NewBuilder(description string) *Builder {
	return &Builder{
		description: description,
		resources:   make(map[string]*entry),
		outputs:     make(map[string]cdk.Output),
	}
}

// Add serializes r into the builder. Logical IDs must be unique.
func (b *Builder) Add(r Resource) error {
	if r.LogicalID == "" {
		return errors.New("resource without logical ID")
	}
	if _, exists := b.resources[r.LogicalID]; exists {
		return fmt.Errorf("duplicate logical ID %s", r.LogicalID)
	}
	if r.Value == nil {
		return fmt.Errorf("resource %s has no value", r.LogicalID)
	}

	props, err := serialize.Resource(r.Value)
	if err != nil {
		return fmt.Errorf("serializing %s: %w", r.LogicalID, err)
	}
	// Round trip through JSON so the template holds the same value types as
	// one read back from disk.
	props, err = serialize.Normalize(props)
	if err != nil {
		return fmt.Errorf("serializing %s: %w", r.LogicalID, err)
	}

	refs, atts := serialize.References(props)
	b.resources[r.LogicalID] = &entry{
		resourceType:   r.Value.ResourceType(),
		group:          r.Group,
		properties:     props,
		dependsOn:      dedupe(r.DependsOn),
		refs:           refs,
		atts:           atts,
		deletionPolicy: r.DeletionPolicy,
	}
	return nil
}

// AddOutput adds a template output.
func (b *Builder) AddOutput(name string, out cdk.Output) error {
	if _, exists := b.outputs[name]; exists {
		return fmt.Errorf("duplicate output %s", name)
	}
	value, err := normalizeValue(out.Value)
	if err != nil {
		return fmt.Errorf("serializing output %s: %w", name, err)
	}
	out.Value = value
	b.outputs[name] = out
	return nil
}

// Build constructs the CloudFormation template. Every Ref, Fn::GetAtt and
// DependsOn target must be a resource of the builder.
func (b *Builder) Build() (*cdk.Template, error) {
	if err := b.checkReferences(); err != nil {
		return nil, err
	}
	order, err := b.topologicalSort()
	if err != nil {
		return nil, err
	}

	template := &cdk.Template{
		AWSTemplateFormatVersion: FormatVersion,
		Description:              b.description,
		Resources:                make(map[string]cdk.ResourceDef, len(order)),
	}

	for _, name := range order {
		res := b.resources[name]
		template.Resources[name] = cdk.ResourceDef{
			Type:                res.resourceType,
			Properties:          res.properties,
			DependsOn:           res.dependsOn,
			DeletionPolicy:      res.deletionPolicy,
			UpdateReplacePolicy: res.deletionPolicy,
		}
	}

	if len(b.outputs) > 0 {
		template.Outputs = make(map[string]cdk.Output, len(b.outputs))
		for name, out := range b.outputs {
			template.Outputs[name] = out
		}
	}

	return template, nil
}

// Nodes returns the dependency graph in dependency order.
func (b *Builder) Nodes() ([]cdk.ResourceNode, error) {
	order, err := b.topologicalSort()
	if err != nil {
		return nil, err
	}
	nodes := make([]cdk.ResourceNode, 0, len(order))
	for _, name := range order {
		res := b.resources[name]
		nodes = append(nodes, cdk.ResourceNode{
			LogicalID:        name,
			Type:             res.resourceType,
			Group:            res.group,
			Dependencies:     b.dependencies(name),
			AttrDependencies: b.known(res.atts),
		})
	}
	return nodes, nil
}

// dependencies returns the known resources name depends on, sorted.
func (b *Builder) dependencies(name string) []string {
	res := b.resources[name]
	all := append(append(append([]string{}, res.dependsOn...), res.refs...), res.atts...)
	return b.known(dedupe(all))
}

func (b *Builder) known(names []string) []string {
	var out []string
	for _, n := range names {
		if _, ok := b.resources[n]; ok {
			out = append(out, n)
		}
	}
	return out
}

func (b *Builder) checkReferences() error {
	names := make([]string, 0, len(b.resources))
	for name := range b.resources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		res := b.resources[name]
		for _, target := range dedupe(append(append(append([]string{}, res.dependsOn...), res.refs...), res.atts...)) {
			if _, ok := b.resources[target]; !ok {
				return fmt.Errorf("resource %s references unknown resource %s", name, target)
			}
		}
	}
	return nil
}

// topologicalSort returns resources in dependency order.
func (b *Builder) topologicalSort() ([]string, error) {
	graph := make(map[string][]string)
	inDegree := make(map[string]int)

	for name := range b.resources {
		graph[name] = nil
		inDegree[name] = 0
	}

	for name := range b.resources {
		for _, dep := range b.dependencies(name) {
			graph[dep] = append(graph[dep], name)
			inDegree[name]++
		}
	}

	// Kahn's algorithm
	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range graph[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
				sort.Strings(queue)
			}
		}
	}

	if len(result) != len(b.resources) {
		return nil, b.detectCycle()
	}

	return result, nil
}

// detectCycle finds and reports a cycle in the dependency graph.
func (b *Builder) detectCycle() error {
	visited := make(map[string]bool)
	path := make(map[string]bool)

	var cycle []string
	var findCycle func(node string) bool
	findCycle = func(node string) bool {
		visited[node] = true
		path[node] = true

		for _, dep := range b.dependencies(node) {
			if !visited[dep] {
				if findCycle(dep) {
					cycle = append([]string{node}, cycle...)
					return true
				}
			} else if path[dep] {
				cycle = append([]string{dep, node}, cycle...)
				return true
			}
		}

		path[node] = false
		return false
	}

	names := make([]string, 0, len(b.resources))
	for name := range b.resources {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !visited[name] && findCycle(name) {
			break
		}
	}

	if len(cycle) > 0 {
		msg := "circular dependency detected:\n"
		for i, name := range cycle {
			msg += fmt.Sprintf("  %s (%s)", name, b.resources[name].resourceType)
			if i < len(cycle)-1 {
				msg += "\n    → "
			}
		}
		return errors.New(msg)
	}

	return errors.New("circular dependency detected")
}

func normalizeValue(v any) (any, error) {
	wrapped, err := serialize.Normalize(map[string]any{"v": v})
	if err != nil {
		return nil, err
	}
	return wrapped["v"], nil
}

func dedupe(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// ToJSON serializes the template to JSON.
func ToJSON(t *cdk.Template) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// ToYAML serializes the template to YAML.
func ToYAML(t *cdk.Template) ([]byte, error) {
	return yaml.Marshal(t)
}

// ToCompactJSON serializes the template without indentation, the form sent
// to CloudFormation as a template body.
func ToCompactJSON(t *cdk.Template) ([]byte, error) {
	return json.Marshal(t)
}

// WriteFile writes t as indented JSON to dir/<name>.template.json, creating
// dir if needed, and returns the path.
func WriteFile(t *cdk.Template, dir, name string) (string, error) {
	return writeFile(t, dir, name+".template.json", ToJSON)
}

// WriteYAMLFile writes t as YAML to dir/<name>.template.yaml, creating dir if
// needed, and returns the path.
func WriteYAMLFile(t *cdk.Template, dir, name string) (string, error) {
	return writeFile(t, dir, name+".template.yaml", ToYAML)
}

func writeFile(t *cdk.Template, dir, file string, encode func(*cdk.Template) ([]byte, error)) (string, error) {
	data, err := encode(t)
	if err != nil {
		return "", fmt.Errorf("encoding template: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	if !bytes.HasSuffix(data, []byte("\n")) {
		data = append(data, '\n')
	}
	path := filepath.Join(dir, file)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing template: %w", err)
	}
	return path, nil
}

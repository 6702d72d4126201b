// Package cdk holds the shared contract types of the stack synthesizer.
//
// The topology builders in internal/topology produce typed CloudFormation
// resources (see the resources/ packages); the template builder renders them
// into a Template, which the provisioning backends hand to CloudFormation:
//
//	props, _ := config.Resolve(src, "dev")
//	stack, _ := topology.Assemble(props, inputs)
//	tmpl, _ := stack.Template()
//
// Nothing in this package performs I/O.
package cdk

// Resource represents a CloudFormation resource.
// All resource types (ec2.VPC, iam.Role, etc.) implement this interface.
type Resource interface {
	// ResourceType returns the CloudFormation type (e.g., "AWS::EC2::VPC")
	ResourceType() string
}

// Template represents a CloudFormation template.
type Template struct {
	AWSTemplateFormatVersion string                 `json:"AWSTemplateFormatVersion" yaml:"AWSTemplateFormatVersion"`
	Description              string                 `json:"Description,omitempty" yaml:"Description,omitempty"`
	Resources                map[string]ResourceDef `json:"Resources" yaml:"Resources"`
	Outputs                  map[string]Output      `json:"Outputs,omitempty" yaml:"Outputs,omitempty"`
}

// ResourceDef is a single resource in the CloudFormation template.
type ResourceDef struct {
	Type                string         `json:"Type" yaml:"Type"`
	Properties          map[string]any `json:"Properties,omitempty" yaml:"Properties,omitempty"`
	DependsOn           []string       `json:"DependsOn,omitempty" yaml:"DependsOn,omitempty"`
	DeletionPolicy      string         `json:"DeletionPolicy,omitempty" yaml:"DeletionPolicy,omitempty"`
	UpdateReplacePolicy string         `json:"UpdateReplacePolicy,omitempty" yaml:"UpdateReplacePolicy,omitempty"`
}

// Output is a CloudFormation template output.
type Output struct {
	Description string  `json:"Description,omitempty" yaml:"Description,omitempty"`
	Value       any     `json:"Value" yaml:"Value"`
	Export      *Export `json:"Export,omitempty" yaml:"Export,omitempty"`
}

// Export names an output for cross-stack references.
type Export struct {
	Name string `json:"Name" yaml:"Name"`
}

// ResourceNode is one vertex of the synthesized dependency graph.
type ResourceNode struct {
	// LogicalID is the CloudFormation logical ID
	LogicalID string
	// Type is the CloudFormation type
	Type string
	// Group names the component that produced the resource
	// (network, identity, service/<id>, routing, dns)
	Group string
	// Dependencies are logical IDs this resource references or depends on
	Dependencies []string
	// AttrDependencies is the subset of Dependencies reached through Fn::GetAtt
	AttrDependencies []string
}

// SynthResult is the JSON output from `stackctl synth`.
type SynthResult struct {
	Success   bool      `json:"success"`
	Stack     string    `json:"stack,omitempty"`
	Template  *Template `json:"template,omitempty"`
	Resources []string  `json:"resources,omitempty"`
	Errors    []string  `json:"errors,omitempty"`
}

// ValidateResult is the JSON output from `stackctl validate`.
type ValidateResult struct {
	Success   bool     `json:"success"`
	Resources int      `json:"resources"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// ListResult is the JSON output from `stackctl list`.
type ListResult struct {
	Stack     string         `json:"stack"`
	Resources []ListResource `json:"resources"`
}

// ListResource is a single resource in the list output.
type ListResource struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Group string `json:"group"`
}

// TemplateDiff holds the per-resource differences between two templates.
type TemplateDiff struct {
	Added    []DiffEntry `json:"added,omitempty"`
	Removed  []DiffEntry `json:"removed,omitempty"`
	Modified []DiffEntry `json:"modified,omitempty"`
	Outputs  []string    `json:"outputs,omitempty"`
}

// DiffEntry describes one changed resource.
type DiffEntry struct {
	Resource string   `json:"resource"`
	Type     string   `json:"type"`
	Changes  []string `json:"changes,omitempty"`
}

// DiffSummary counts the entries of a TemplateDiff.
type DiffSummary struct {
	Added    int `json:"added"`
	Removed  int `json:"removed"`
	Modified int `json:"modified"`
	Total    int `json:"total"`
}

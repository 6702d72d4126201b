// Package intrinsics provides CloudFormation intrinsic functions.
// This file contains IAM policy document types and helpers.
package intrinsics

import (
	"encoding/json"
)

// Json is a shorthand for map[string]any.
type Json = map[string]any

// List creates a typed slice from the given items.
//
//	Actions: List(ActionForward),
func List[T any](items ...T) []T {
	return items
}

// Any creates a []any slice from the given items.
//
//	SecurityGroups: Any(Ref{"EdgeSg"}),
func Any(items ...any) []any {
	return items
}

// Strings converts a string slice to []any.
func Strings(items []string) []any {
	out := make([]any, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out
}

// PolicyDocument represents an IAM policy document.
type PolicyDocument struct {
	Version   string `json:"Version,omitempty"`
	Statement []any  `json:"Statement"`
}

// NewPolicyDocument creates a PolicyDocument with the default version.
func NewPolicyDocument(statements ...any) PolicyDocument {
	return PolicyDocument{Version: "2012-10-17", Statement: statements}
}

// PolicyStatement represents an IAM policy statement.
//
//	PolicyStatement{
//	    Effect:    "Allow",
//	    Principal: ServicePrincipal{"ecs-tasks.amazonaws.com"},
//	    Action:    "sts:AssumeRole",
//	}
type PolicyStatement struct {
	Sid       string `json:"Sid,omitempty"`
	Effect    string `json:"Effect"`
	Principal any    `json:"Principal,omitempty"`
	Action    any    `json:"Action,omitempty"`
	Resource  any    `json:"Resource,omitempty"`
	Condition Json   `json:"Condition,omitempty"`
}

// ServicePrincipal represents a service principal (e.g., ecs-tasks.amazonaws.com).
// Serializes to {"Service": ...} format.
type ServicePrincipal []any

// MarshalJSON serializes to {"Service": ...} format.
func (p ServicePrincipal) MarshalJSON() ([]byte, error) {
	if len(p) == 1 {
		return json.Marshal(map[string]any{"Service": p[0]})
	}
	return json.Marshal(map[string]any{"Service": []any(p)})
}

// AssumeRolePolicy returns the trust policy allowing service to assume a role.
func AssumeRolePolicy(service string) PolicyDocument {
	return NewPolicyDocument(PolicyStatement{
		Effect:    "Allow",
		Principal: ServicePrincipal{service},
		Action:    "sts:AssumeRole",
	})
}

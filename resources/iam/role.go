// Package iam provides CloudFormation resource types for AWS IAM.
package iam

// Role represents AWS::IAM::Role.
type Role struct {
	AssumeRolePolicyDocument any           `json:"AssumeRolePolicyDocument,omitempty"`
	Description              any           `json:"Description,omitempty"`
	ManagedPolicyArns        []any         `json:"ManagedPolicyArns,omitempty"`
	MaxSessionDuration       any           `json:"MaxSessionDuration,omitempty"`
	Path                     any           `json:"Path,omitempty"`
	Policies                 []Role_Policy `json:"Policies,omitempty"`
	RoleName                 any           `json:"RoleName,omitempty"`
	Tags                     []any         `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Role) ResourceType() string {
	return "AWS::IAM::Role"
}

// Role_Policy is an inline policy embedded in a role.
type Role_Policy struct {
	PolicyDocument any `json:"PolicyDocument,omitempty"`
	PolicyName     any `json:"PolicyName,omitempty"`
}

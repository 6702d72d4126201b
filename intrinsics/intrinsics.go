// Package intrinsics provides CloudFormation intrinsic functions.
//
// This package re-exports the intrinsic types of cloudformation-schema-go used
// by the topology builders and adds IAM policy document types.
//
//	Ref{"OculusDevVpc"} → {"Ref": "OculusDevVpc"}
//	GetAtt{"OculusDevAlb", "DNSName"} → {"Fn::GetAtt": ["OculusDevAlb", "DNSName"]}
//	Select{0, GetAZs{""}} → {"Fn::Select": [0, {"Fn::GetAZs": ""}]}
package intrinsics

import (
	"github.com/lex00/cloudformation-schema-go/intrinsics"
)

type (
	// Ref represents a CloudFormation Ref intrinsic function.
	Ref = intrinsics.Ref

	// GetAtt represents a CloudFormation Fn::GetAtt intrinsic function.
	GetAtt = intrinsics.GetAtt

	// Sub represents a CloudFormation Fn::Sub intrinsic function.
	Sub = intrinsics.Sub

	// Join represents a CloudFormation Fn::Join intrinsic function.
	Join = intrinsics.Join

	// Select represents a CloudFormation Fn::Select intrinsic function.
	Select = intrinsics.Select

	// GetAZs represents a CloudFormation Fn::GetAZs intrinsic function.
	GetAZs = intrinsics.GetAZs

	// Cidr represents a CloudFormation Fn::Cidr intrinsic function.
	Cidr = intrinsics.Cidr

	// Tag represents a CloudFormation resource tag.
	Tag = intrinsics.Tag
)

// RefOf returns a Ref to the given logical ID.
func RefOf(logicalID string) Ref {
	return Ref{LogicalName: logicalID}
}

// AttOf returns a GetAtt for attribute attr of the given logical ID.
func AttOf(logicalID, attr string) GetAtt {
	return GetAtt{LogicalName: logicalID, Attribute: attr}
}

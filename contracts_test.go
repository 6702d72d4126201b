package cdk

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestTemplate_MarshalJSON(t *testing.T) {
	tmpl := Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Resources: map[string]ResourceDef{
			"OculusDevVpc": {
				Type:       "AWS::EC2::VPC",
				Properties: map[string]any{"CidrBlock": "10.0.0.0/16"},
			},
		},
		Outputs: map[string]Output{
			"LoadBalancerDNS": {Value: map[string]any{"Fn::GetAtt": []any{"OculusDevAlb", "DNSName"}}},
		},
	}

	data, err := json.Marshal(tmpl)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"AWSTemplateFormatVersion": "2010-09-09",
		"Resources": {"OculusDevVpc": {"Type": "AWS::EC2::VPC", "Properties": {"CidrBlock": "10.0.0.0/16"}}},
		"Outputs": {"LoadBalancerDNS": {"Value": {"Fn::GetAtt": ["OculusDevAlb", "DNSName"]}}}
	}`, string(data))
}

func TestResourceDef_OmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(ResourceDef{Type: "AWS::ECS::Cluster"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Type": "AWS::ECS::Cluster"}`, string(data))
}

func TestResourceDef_Policies(t *testing.T) {
	def := ResourceDef{
		Type:                "AWS::Logs::LogGroup",
		DeletionPolicy:      "Delete",
		UpdateReplacePolicy: "Delete",
		DependsOn:           []string{"A", "B"},
	}

	data, err := json.Marshal(def)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, "Delete", parsed["DeletionPolicy"])
	assert.Equal(t, "Delete", parsed["UpdateReplacePolicy"])
	assert.Equal(t, []any{"A", "B"}, parsed["DependsOn"])
}

func TestTemplate_YAMLKeys(t *testing.T) {
	tmpl := Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Resources: map[string]ResourceDef{
			"Cluster": {Type: "AWS::ECS::Cluster"},
		},
	}

	data, err := yaml.Marshal(tmpl)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "AWSTemplateFormatVersion:")
	assert.Contains(t, out, "Resources:")
	assert.Contains(t, out, "Type: AWS::ECS::Cluster")
	assert.NotContains(t, out, "Outputs:")
}

func TestOutput_Export(t *testing.T) {
	out := Output{Value: "x", Export: &Export{Name: "oculus-dev-dns"}}

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Value": "x", "Export": {"Name": "oculus-dev-dns"}}`, string(data))
}

func TestSynthResult_JSON(t *testing.T) {
	tests := []struct {
		name     string
		result   SynthResult
		expected string
	}{
		{
			name:     "failure",
			result:   SynthResult{Success: false, Errors: []string{"missing required parameter \"cidr\""}},
			expected: `{"success": false, "errors": ["missing required parameter \"cidr\""]}`,
		},
		{
			name:     "success",
			result:   SynthResult{Success: true, Stack: "oculus-dev", Resources: []string{"Vpc"}},
			expected: `{"success": true, "stack": "oculus-dev", "resources": ["Vpc"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.result)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
		})
	}
}

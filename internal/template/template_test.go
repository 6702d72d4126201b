package template

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	cdk "github.com/cbroompearson/cdk"
	"github.com/cbroompearson/cdk/intrinsics"
	"github.com/cbroompearson/cdk/resources/ec2"
	"github.com/cbroompearson/cdk/resources/logs"
)

func networkBuilder(t *testing.T) *Builder {
	t.Helper()
	b := NewBuilder("oculus dev")
	require.NoError(t, b.Add(Resource{LogicalID: "Vpc", Group: "network", Value: ec2.VPC{CidrBlock: "10.0.0.0/16"}}))
	require.NoError(t, b.Add(Resource{LogicalID: "Subnet", Group: "network", Value: ec2.Subnet{
		CidrBlock: "10.0.0.0/18",
		VpcId:     intrinsics.RefOf("Vpc"),
	}}))
	require.NoError(t, b.Add(Resource{LogicalID: "EdgeSg", Group: "network", Value: ec2.SecurityGroup{
		GroupDescription: "edge",
		VpcId:            intrinsics.RefOf("Vpc"),
	}}))
	require.NoError(t, b.Add(Resource{LogicalID: "ToApi", Group: "service/api", Value: ec2.SecurityGroupEgress{
		GroupId:    intrinsics.AttOf("EdgeSg", "GroupId"),
		IpProtocol: "tcp",
		FromPort:   8080,
		ToPort:     8080,
	}, DependsOn: []string{"Subnet"}}))
	return b
}

func TestBuilder_Build_SimpleResource(t *testing.T) {
	b := NewBuilder("")
	require.NoError(t, b.Add(Resource{LogicalID: "Vpc", Value: ec2.VPC{CidrBlock: "10.0.0.0/16"}}))

	template, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, "2010-09-09", template.AWSTemplateFormatVersion)
	assert.Empty(t, template.Description)
	require.Len(t, template.Resources, 1)

	vpc := template.Resources["Vpc"]
	assert.Equal(t, "AWS::EC2::VPC", vpc.Type)
	assert.Equal(t, "10.0.0.0/16", vpc.Properties["CidrBlock"])
	assert.Empty(t, vpc.DependsOn)
}

func TestBuilder_Build_NormalizesNumbers(t *testing.T) {
	template, err := networkBuilder(t).Build()
	require.NoError(t, err)

	egress := template.Resources["ToApi"]
	assert.Equal(t, float64(8080), egress.Properties["FromPort"])
	assert.Equal(t, map[string]any{"Fn::GetAtt": []any{"EdgeSg", "GroupId"}}, egress.Properties["GroupId"])
}

func TestBuilder_Build_ExplicitDependsOn(t *testing.T) {
	template, err := networkBuilder(t).Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"Subnet"}, template.Resources["ToApi"].DependsOn)
	assert.Empty(t, template.Resources["Subnet"].DependsOn, "Ref dependencies stay implicit")
}

func TestBuilder_Build_DeletionPolicy(t *testing.T) {
	b := NewBuilder("")
	require.NoError(t, b.Add(Resource{
		LogicalID:      "LogGroup",
		Value:          logs.LogGroup{LogGroupName: "oculus-dev", RetentionInDays: logs.RetentionOneYear},
		DeletionPolicy: "Delete",
	}))

	template, err := b.Build()
	require.NoError(t, err)

	lg := template.Resources["LogGroup"]
	assert.Equal(t, "Delete", lg.DeletionPolicy)
	assert.Equal(t, "Delete", lg.UpdateReplacePolicy)
	assert.Equal(t, float64(365), lg.Properties["RetentionInDays"])
}

func TestBuilder_Build_Outputs(t *testing.T) {
	b := networkBuilder(t)
	require.NoError(t, b.AddOutput("VpcId", cdk.Output{
		Description: "VPC",
		Value:       intrinsics.RefOf("Vpc"),
	}))

	template, err := b.Build()
	require.NoError(t, err)

	require.Contains(t, template.Outputs, "VpcId")
	assert.Equal(t, map[string]any{"Ref": "Vpc"}, template.Outputs["VpcId"].Value)
}

func TestBuilder_AddOutput_Duplicate(t *testing.T) {
	b := NewBuilder("")
	require.NoError(t, b.AddOutput("Dns", cdk.Output{Value: "a"}))
	assert.Error(t, b.AddOutput("Dns", cdk.Output{Value: "b"}))
}

func TestBuilder_Add_Errors(t *testing.T) {
	b := NewBuilder("")
	require.NoError(t, b.Add(Resource{LogicalID: "Vpc", Value: ec2.VPC{}}))

	err := b.Add(Resource{LogicalID: "Vpc", Value: ec2.VPC{}})
	assert.ErrorContains(t, err, "duplicate logical ID Vpc")

	assert.Error(t, b.Add(Resource{Value: ec2.VPC{}}))
	assert.Error(t, b.Add(Resource{LogicalID: "Empty"}))
}

func TestBuilder_Build_UnknownReference(t *testing.T) {
	b := NewBuilder("")
	require.NoError(t, b.Add(Resource{LogicalID: "Subnet", Value: ec2.Subnet{VpcId: intrinsics.RefOf("Missing")}}))

	_, err := b.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "references unknown resource Missing")
}

func TestBuilder_Build_PseudoParametersIgnored(t *testing.T) {
	b := NewBuilder("")
	require.NoError(t, b.Add(Resource{LogicalID: "Subnet", Value: ec2.Subnet{
		AvailabilityZone: intrinsics.RefOf(intrinsics.Region),
	}}))

	_, err := b.Build()
	assert.NoError(t, err)
}

func TestBuilder_Build_CircularDependency(t *testing.T) {
	b := NewBuilder("")
	require.NoError(t, b.Add(Resource{LogicalID: "A", Value: ec2.Subnet{VpcId: intrinsics.RefOf("B")}}))
	require.NoError(t, b.Add(Resource{LogicalID: "B", Value: ec2.Subnet{VpcId: intrinsics.RefOf("A")}}))

	_, err := b.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular dependency")
	assert.Contains(t, err.Error(), "AWS::EC2::Subnet")
}

func TestBuilder_Nodes(t *testing.T) {
	nodes, err := networkBuilder(t).Nodes()
	require.NoError(t, err)
	require.Len(t, nodes, 4)

	assert.Equal(t, "Vpc", nodes[0].LogicalID)
	position := make(map[string]int)
	for i, n := range nodes {
		position[n.LogicalID] = i
	}
	assert.Less(t, position["EdgeSg"], position["ToApi"])
	assert.Less(t, position["Subnet"], position["ToApi"])

	last := nodes[position["ToApi"]]
	assert.Equal(t, "service/api", last.Group)
	assert.Equal(t, "AWS::EC2::SecurityGroupEgress", last.Type)
	assert.Equal(t, []string{"EdgeSg", "Subnet"}, last.Dependencies)
	assert.Equal(t, []string{"EdgeSg"}, last.AttrDependencies)
}

func TestBuilder_Build_Deterministic(t *testing.T) {
	first, err := networkBuilder(t).Build()
	require.NoError(t, err)
	second, err := networkBuilder(t).Build()
	require.NoError(t, err)

	a, err := ToJSON(first)
	require.NoError(t, err)
	b, err := ToJSON(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestToJSON(t *testing.T) {
	template, err := networkBuilder(t).Build()
	require.NoError(t, err)

	data, err := ToJSON(template)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, "2010-09-09", parsed["AWSTemplateFormatVersion"])
	assert.Equal(t, "oculus dev", parsed["Description"])
	assert.Len(t, parsed["Resources"], 4)
}

func TestToYAML(t *testing.T) {
	template, err := networkBuilder(t).Build()
	require.NoError(t, err)

	data, err := ToYAML(template)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal(data, &parsed))
	assert.Equal(t, "2010-09-09", parsed["AWSTemplateFormatVersion"])
	resources := parsed["Resources"].(map[string]any)
	subnet := resources["Subnet"].(map[string]any)
	assert.Equal(t, "AWS::EC2::Subnet", subnet["Type"])
}

func TestToCompactJSON(t *testing.T) {
	template, err := networkBuilder(t).Build()
	require.NoError(t, err)

	compact, err := ToCompactJSON(template)
	require.NoError(t, err)
	indented, err := ToJSON(template)
	require.NoError(t, err)

	assert.Less(t, len(compact), len(indented))
	assert.False(t, bytes.Contains(compact, []byte("\n")))
}

func TestWriteFile(t *testing.T) {
	template, err := networkBuilder(t).Build()
	require.NoError(t, err)
	dir := filepath.Join(t.TempDir(), "cdk.out")

	path, err := WriteFile(template, dir, "oculus-dev")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "oculus-dev.template.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded cdk.Template
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "AWS::EC2::VPC", decoded.Resources["Vpc"].Type)
}

package ec2

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cdk "github.com/cbroompearson/cdk"
)

func TestResourceTypes(t *testing.T) {
	tests := []struct {
		name     string
		resource cdk.Resource
		expected string
	}{
		{"VPC", VPC{}, "AWS::EC2::VPC"},
		{"Subnet", Subnet{}, "AWS::EC2::Subnet"},
		{"InternetGateway", InternetGateway{}, "AWS::EC2::InternetGateway"},
		{"VPCGatewayAttachment", VPCGatewayAttachment{}, "AWS::EC2::VPCGatewayAttachment"},
		{"RouteTable", RouteTable{}, "AWS::EC2::RouteTable"},
		{"Route", Route{}, "AWS::EC2::Route"},
		{"SubnetRouteTableAssociation", SubnetRouteTableAssociation{}, "AWS::EC2::SubnetRouteTableAssociation"},
		{"EIP", EIP{}, "AWS::EC2::EIP"},
		{"NatGateway", NatGateway{}, "AWS::EC2::NatGateway"},
		{"SecurityGroup", SecurityGroup{}, "AWS::EC2::SecurityGroup"},
		{"SecurityGroupIngress", SecurityGroupIngress{}, "AWS::EC2::SecurityGroupIngress"},
		{"SecurityGroupEgress", SecurityGroupEgress{}, "AWS::EC2::SecurityGroupEgress"},
		{"FlowLog", FlowLog{}, "AWS::EC2::FlowLog"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.resource.ResourceType())
		})
	}
}

func TestSecurityGroupSerialization(t *testing.T) {
	sg := SecurityGroup{
		GroupDescription: "Security group for oculus ALB",
		GroupName:        "oculus-dev-alb-sg",
		SecurityGroupIngress: []SecurityGroup_Ingress{{
			CidrIp:     "159.182.0.0/16",
			IpProtocol: "tcp",
			FromPort:   443,
			ToPort:     443,
		}},
	}

	data, err := json.Marshal(sg)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	assert.Equal(t, "oculus-dev-alb-sg", parsed["GroupName"])
	ingress := parsed["SecurityGroupIngress"].([]any)
	require.Len(t, ingress, 1)
	rule := ingress[0].(map[string]any)
	assert.Equal(t, "159.182.0.0/16", rule["CidrIp"])
	assert.Equal(t, float64(443), rule["FromPort"])
	assert.NotContains(t, parsed, "SecurityGroupEgress")
}

func TestFlowLogResourceTypeProperty(t *testing.T) {
	data, err := json.Marshal(FlowLog{ResourceType_: "VPC", TrafficType: "ALL"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ResourceType": "VPC", "TrafficType": "ALL"}`, string(data))
}

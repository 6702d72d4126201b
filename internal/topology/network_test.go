package topology

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbroompearson/cdk/internal/config"
	"github.com/cbroompearson/cdk/intrinsics"
	"github.com/cbroompearson/cdk/resources/ec2"
	"github.com/cbroompearson/cdk/resources/iam"
	"github.com/cbroompearson/cdk/resources/logs"
)

func TestBuildNetwork(t *testing.T) {
	net, err := BuildNetwork(oculusProps(), []string{"us-east-1a", "us-east-1b", "us-east-1c"})
	require.NoError(t, err)

	assert.Equal(t, "oculus-dev-vpc", net.VPCName)
	assert.Equal(t, "OculusDevVpc", net.VPC)
	assert.Equal(t, 2, net.AvailabilityZones)

	vpc := resourceOf[ec2.VPC](t, net.Entities(), net.VPC)
	assert.Equal(t, "10.0.0.0/16", vpc.CidrBlock)
	assert.Equal(t, []any{intrinsics.Tag{Key: TagName, Value: "oculus-dev-vpc"}}, vpc.Tags)

	require.Len(t, net.PublicSubnets, 2)
	require.Len(t, net.PrivateSubnets, 2)
	assert.Equal(t, "10.0.0.0/18", net.PublicSubnets[0].CIDR)
	assert.Equal(t, "10.0.64.0/18", net.PublicSubnets[1].CIDR)
	assert.Equal(t, "10.0.128.0/18", net.PrivateSubnets[0].CIDR)
	assert.Equal(t, "10.0.192.0/18", net.PrivateSubnets[1].CIDR)

	subnet := resourceOf[ec2.Subnet](t, net.Entities(), net.PrivateSubnets[1].LogicalID)
	assert.Equal(t, "us-east-1b", subnet.AvailabilityZone)
	assert.Equal(t, false, subnet.MapPublicIpOnLaunch)
	assert.Equal(t, intrinsics.RefOf(net.VPC), subnet.VpcId)
}

func TestBuildNetwork_NatPerAZ(t *testing.T) {
	net, err := BuildNetwork(oculusProps(), nil)
	require.NoError(t, err)

	for i, s := range net.PublicSubnets {
		nat := resourceOf[ec2.NatGateway](t, net.Entities(), s.LogicalID+"NatGateway")
		assert.Equal(t, intrinsics.RefOf(s.LogicalID), nat.SubnetId)
		assert.Equal(t, intrinsics.AttOf(s.LogicalID+"Eip", "AllocationId"), nat.AllocationId)

		private := net.PrivateSubnets[i]
		route := resourceOf[ec2.Route](t, net.Entities(), private.LogicalID+"DefaultRoute")
		assert.Equal(t, intrinsics.RefOf(s.LogicalID+"NatGateway"), route.NatGatewayId)
	}

	route, ok := net.Find(net.PublicSubnets[0].LogicalID + "DefaultRoute")
	require.True(t, ok)
	assert.Equal(t, []string{"OculusDevVpcIgwAttachment"}, route.DependsOn)
	assert.Equal(t, []string{"OculusDevVpcPublicSubnet1DefaultRoute", "OculusDevVpcPublicSubnet2DefaultRoute"}, net.InternetRoutes())
}

func TestBuildNetwork_GetAZsWithoutLookup(t *testing.T) {
	net, err := BuildNetwork(oculusProps(), nil)
	require.NoError(t, err)

	subnet := resourceOf[ec2.Subnet](t, net.Entities(), net.PublicSubnets[1].LogicalID)
	assert.Equal(t, intrinsics.Select{Index: 1, List: intrinsics.GetAZs{}}, subnet.AvailabilityZone)
}

func TestBuildNetwork_CapsAZCount(t *testing.T) {
	props := oculusProps()
	props.VpcAzCount = 3

	net, err := BuildNetwork(props, []string{"eu-west-1a", "eu-west-1b"})
	require.NoError(t, err)

	assert.Equal(t, 2, net.AvailabilityZones)
	assert.Len(t, net.PublicSubnets, 2)
}

func TestBuildNetwork_ThreeAZs(t *testing.T) {
	props := oculusProps()
	props.VpcAzCount = 3

	net, err := BuildNetwork(props, nil)
	require.NoError(t, err)

	var cidrs []string
	for _, s := range append(net.PublicSubnets, net.PrivateSubnets...) {
		cidrs = append(cidrs, s.CIDR)
	}
	assert.Equal(t, []string{
		"10.0.0.0/19", "10.0.32.0/19", "10.0.64.0/19",
		"10.0.96.0/19", "10.0.128.0/19", "10.0.160.0/19",
	}, cidrs)
}

func TestBuildNetwork_SecurityGroups(t *testing.T) {
	net, err := BuildNetwork(oculusProps(), nil)
	require.NoError(t, err)

	tests := []struct {
		ref  SecurityGroupRef
		name string
		port int
	}{
		{net.AdminSecurityGroup, "oculus-dev-vpc-sg", 22},
		{net.EdgeSecurityGroup, "oculus-dev-alb-sg", 443},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.ref.Name)
			sg := resourceOf[ec2.SecurityGroup](t, net.Entities(), tt.ref.LogicalID)

			require.Len(t, sg.SecurityGroupIngress, 1)
			ingress := sg.SecurityGroupIngress[0]
			assert.Equal(t, "159.182.0.0/16", ingress.CidrIp)
			assert.Equal(t, "tcp", ingress.IpProtocol)
			assert.Equal(t, tt.port, ingress.FromPort)
			assert.Equal(t, tt.port, ingress.ToPort)

			require.Len(t, sg.SecurityGroupEgress, 1)
			assert.Equal(t, "255.255.255.255/32", sg.SecurityGroupEgress[0].CidrIp)
			assert.Equal(t, "Disallow all traffic", sg.SecurityGroupEgress[0].Description)
		})
	}
}

func TestBuildNetwork_FlowLog(t *testing.T) {
	net, err := BuildNetwork(oculusProps(), nil)
	require.NoError(t, err)

	role := resourceOf[iam.Role](t, net.Entities(), net.FlowLogRole)
	assert.Equal(t, "oculus-dev-flow-log-role", role.RoleName)
	assert.Equal(t, intrinsics.AssumeRolePolicy(FlowLogsPrincipal), role.AssumeRolePolicyDocument)

	lg := resourceOf[logs.LogGroup](t, net.Entities(), net.LogGroup)
	assert.Equal(t, "oculus-dev", lg.LogGroupName)
	assert.Equal(t, 365, lg.RetentionInDays)
	entity, _ := net.Find(net.LogGroup)
	assert.Equal(t, "Delete", entity.DeletionPolicy)

	flowLog := resourceOf[ec2.FlowLog](t, net.Entities(), net.FlowLog)
	assert.Equal(t, intrinsics.AttOf(net.FlowLogRole, "Arn"), flowLog.DeliverLogsPermissionArn)
	assert.Equal(t, intrinsics.RefOf(net.LogGroup), flowLog.LogGroupName)
	assert.Equal(t, intrinsics.RefOf(net.VPC), flowLog.ResourceId)
	assert.Equal(t, "ALL", flowLog.TrafficType)

	ids := logicalIDs(net.Entities())
	assert.Less(t, indexOf(ids, net.FlowLogRole), indexOf(ids, net.FlowLog))
	assert.Less(t, indexOf(ids, net.LogGroup), indexOf(ids, net.FlowLog))
}

func TestBuildNetwork_Deterministic(t *testing.T) {
	a, err := BuildNetwork(oculusProps(), nil)
	require.NoError(t, err)
	b, err := BuildNetwork(oculusProps(), nil)
	require.NoError(t, err)

	assert.Equal(t, logicalIDs(a.Entities()), logicalIDs(b.Entities()))
	assert.Equal(t, a.Entities(), b.Entities())
}

func TestBuildNetwork_CIDRTooSmall(t *testing.T) {
	props := oculusProps()
	props.CIDR = "10.0.0.0/27"
	props.VpcAzCount = 6

	_, err := BuildNetwork(props, nil)
	var invalid *config.InvalidParameterError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "cidr", invalid.Key)
}

func TestSplitCIDR(t *testing.T) {
	tests := []struct {
		block string
		count int
		want  []string
	}{
		{"10.0.0.0/16", 2, []string{"10.0.0.0/17", "10.0.128.0/17"}},
		{"10.0.0.0/16", 1, []string{"10.0.0.0/16"}},
		{"10.1.0.0/16", 4, []string{"10.1.0.0/18", "10.1.64.0/18", "10.1.128.0/18", "10.1.192.0/18"}},
		{"192.168.0.0/24", 2, []string{"192.168.0.0/25", "192.168.0.128/25"}},
	}

	for _, tt := range tests {
		t.Run(tt.block, func(t *testing.T) {
			got, err := splitCIDR(tt.block, tt.count)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := splitCIDR("not-a-cidr", 2)
	assert.Error(t, err)
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

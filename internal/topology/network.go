package topology

import (
	"fmt"
	"math/bits"
	"net/netip"

	"github.com/cbroompearson/cdk/internal/config"
	"github.com/cbroompearson/cdk/intrinsics"
	"github.com/cbroompearson/cdk/resources/ec2"
	"github.com/cbroompearson/cdk/resources/iam"
	"github.com/cbroompearson/cdk/resources/logs"
)

// Network constants.
const (
	AdminPort             = 22
	EdgePort              = 443
	FlowLogRetentionDays  = logs.RetentionOneYear
	FlowLogsPrincipal     = "vpc-flow-logs.amazonaws.com"
	maxSubnetPrefixLength = 28
)

// flowLogActions is the allow-list of the flow-log delivery role.
var flowLogActions = []string{
	"iam:PassRole",
	"logs:CreateLogGroup",
	"logs:DescribeLogGroups",
	"logs:CreateLogStream",
	"logs:PutLogEvents",
}

// closedEgress replaces the implicit allow-all egress rule CloudFormation
// adds to a security group created without one. The rule matches no traffic.
var closedEgress = ec2.SecurityGroup_Egress{
	CidrIp:      "255.255.255.255/32",
	Description: "Disallow all traffic",
	IpProtocol:  "icmp",
	FromPort:    252,
	ToPort:      86,
}

// SecurityGroupRef identifies a security group of the stack.
type SecurityGroupRef struct {
	LogicalID string
	Name      string
	Port      int
}

// GroupID returns the security group id attribute.
func (s SecurityGroupRef) GroupID() intrinsics.GetAtt {
	return intrinsics.AttOf(s.LogicalID, "GroupId")
}

// Subnet is one subnet of the VPC.
type Subnet struct {
	LogicalID string
	CIDR      string
	AZIndex   int
	Public    bool
}

// NetworkTopology is the VPC with its subnets, the admin and edge security
// groups, and flow-log delivery into the stack log group.
type NetworkTopology struct {
	component

	VPCName           string
	VPC               string
	AvailabilityZones int
	PublicSubnets     []Subnet
	PrivateSubnets    []Subnet

	AdminSecurityGroup SecurityGroupRef
	EdgeSecurityGroup  SecurityGroupRef

	FlowLogRole     string
	FlowLogRoleName string
	LogGroup        string
	LogGroupName    string
	FlowLog         string
}

// VPCRef returns a Ref to the VPC.
func (n *NetworkTopology) VPCRef() intrinsics.Ref {
	return intrinsics.RefOf(n.VPC)
}

// SubnetRefs returns Refs to the public or private subnets.
func (n *NetworkTopology) SubnetRefs(public bool) []any {
	subnets := n.PrivateSubnets
	if public {
		subnets = n.PublicSubnets
	}
	out := make([]any, len(subnets))
	for i, s := range subnets {
		out[i] = intrinsics.RefOf(s.LogicalID)
	}
	return out
}

// InternetRoutes returns the default routes of the public subnets. Internet
// facing resources depend on them.
func (n *NetworkTopology) InternetRoutes() []string {
	out := make([]string, len(n.PublicSubnets))
	for i, s := range n.PublicSubnets {
		out[i] = s.LogicalID + "DefaultRoute"
	}
	return out
}

// BuildNetwork derives the network of the stack. azNames, when non-empty,
// are the availability zones offered by the target region; the AZ count is
// capped at their number. Without them the zones are selected with
// Fn::GetAZs at deploy time.
func BuildNetwork(props config.StageProperties, azNames []string) (*NetworkTopology, error) {
	n := NewNamer(props)

	azCount := props.VpcAzCount
	if len(azNames) > 0 && len(azNames) < azCount {
		azCount = len(azNames)
	}

	cidrs, err := splitCIDR(props.CIDR, 2*azCount)
	if err != nil {
		return nil, &config.InvalidParameterError{Key: "cidr", Value: props.CIDR, Reason: err.Error()}
	}

	net := &NetworkTopology{
		VPCName:           n.Name("vpc"),
		VPC:               n.LogicalID("vpc"),
		AvailabilityZones: azCount,
	}
	net.add(GroupNetwork, net.VPC, ec2.VPC{
		CidrBlock:          props.CIDR,
		EnableDnsHostnames: true,
		EnableDnsSupport:   true,
		InstanceTenancy:    "default",
		Tags:               []any{intrinsics.Tag{Key: TagName, Value: net.VPCName}},
	})

	igw := n.LogicalID("vpc", "igw")
	attachment := n.LogicalID("vpc", "igw", "attachment")
	net.add(GroupNetwork, igw, ec2.InternetGateway{})
	net.add(GroupNetwork, attachment, ec2.VPCGatewayAttachment{
		InternetGatewayId: intrinsics.RefOf(igw),
		VpcId:             net.VPCRef(),
	})

	az := func(i int) any {
		if len(azNames) > 0 {
			return azNames[i]
		}
		return intrinsics.Select{Index: i, List: intrinsics.GetAZs{}}
	}

	natGateways := make([]string, azCount)
	for i := 0; i < azCount; i++ {
		subnet := Subnet{LogicalID: n.LogicalID("vpc", Indexed("public-subnet", i)), CIDR: cidrs[i], AZIndex: i, Public: true}
		net.PublicSubnets = append(net.PublicSubnets, subnet)
		net.add(GroupNetwork, subnet.LogicalID, ec2.Subnet{
			AvailabilityZone:    az(i),
			CidrBlock:           subnet.CIDR,
			MapPublicIpOnLaunch: true,
			VpcId:               net.VPCRef(),
		})
		routeTable, association := net.addRouteTable(subnet.LogicalID)

		route := subnet.LogicalID + "DefaultRoute"
		net.add(GroupNetwork, route, ec2.Route{
			DestinationCidrBlock: "0.0.0.0/0",
			GatewayId:            intrinsics.RefOf(igw),
			RouteTableId:         intrinsics.RefOf(routeTable),
		}, attachment)

		eip := subnet.LogicalID + "Eip"
		natGateways[i] = subnet.LogicalID + "NatGateway"
		net.add(GroupNetwork, eip, ec2.EIP{Domain: "vpc"})
		net.add(GroupNetwork, natGateways[i], ec2.NatGateway{
			AllocationId: intrinsics.AttOf(eip, "AllocationId"),
			SubnetId:     intrinsics.RefOf(subnet.LogicalID),
		}, route, association)
	}

	for i := 0; i < azCount; i++ {
		subnet := Subnet{LogicalID: n.LogicalID("vpc", Indexed("private-subnet", i)), CIDR: cidrs[azCount+i], AZIndex: i}
		net.PrivateSubnets = append(net.PrivateSubnets, subnet)
		net.add(GroupNetwork, subnet.LogicalID, ec2.Subnet{
			AvailabilityZone:    az(i),
			CidrBlock:           subnet.CIDR,
			MapPublicIpOnLaunch: false,
			VpcId:               net.VPCRef(),
		})
		routeTable, _ := net.addRouteTable(subnet.LogicalID)
		net.add(GroupNetwork, subnet.LogicalID+"DefaultRoute", ec2.Route{
			DestinationCidrBlock: "0.0.0.0/0",
			NatGatewayId:         intrinsics.RefOf(natGateways[i]),
			RouteTableId:         intrinsics.RefOf(routeTable),
		})
	}

	net.AdminSecurityGroup = net.addTrustedGroup(n, props, "vpc-sg",
		fmt.Sprintf("Security Group for %s vpc", props.ServiceName), AdminPort)
	net.EdgeSecurityGroup = net.addTrustedGroup(n, props, "alb-sg",
		fmt.Sprintf("Security group for %s ALB", props.ServiceName), EdgePort)

	net.FlowLogRoleName = n.Name("flow-log-role")
	net.FlowLogRole = n.LogicalID("flow-log-role")
	net.add(GroupNetwork, net.FlowLogRole, iam.Role{
		RoleName:                 net.FlowLogRoleName,
		AssumeRolePolicyDocument: intrinsics.AssumeRolePolicy(FlowLogsPrincipal),
		Policies: []iam.Role_Policy{{
			PolicyName:     n.Name("flow-log-policy"),
			PolicyDocument: allowPolicy(flowLogActions),
		}},
	})

	net.LogGroupName = n.Prefix()
	net.LogGroup = n.LogicalID("log-group")
	net.add(GroupNetwork, net.LogGroup, logs.LogGroup{
		LogGroupName:    net.LogGroupName,
		RetentionInDays: FlowLogRetentionDays,
	})
	net.setDeletionPolicy(net.LogGroup, "Delete")

	net.FlowLog = n.LogicalID("vpc", "flow-log")
	net.add(GroupNetwork, net.FlowLog, ec2.FlowLog{
		DeliverLogsPermissionArn: intrinsics.AttOf(net.FlowLogRole, "Arn"),
		LogDestinationType:       "cloud-watch-logs",
		LogGroupName:             intrinsics.RefOf(net.LogGroup),
		ResourceId:               net.VPCRef(),
		ResourceType_:            "VPC",
		TrafficType:              "ALL",
	})

	return net, nil
}

func (net *NetworkTopology) addRouteTable(subnet string) (routeTable, association string) {
	routeTable = subnet + "RouteTable"
	association = subnet + "RouteTableAssociation"
	net.add(GroupNetwork, routeTable, ec2.RouteTable{VpcId: net.VPCRef()})
	net.add(GroupNetwork, association, ec2.SubnetRouteTableAssociation{
		RouteTableId: intrinsics.RefOf(routeTable),
		SubnetId:     intrinsics.RefOf(subnet),
	})
	return routeTable, association
}

// addTrustedGroup adds a security group whose single ingress rule admits the
// trusted CIDR on port. Egress is closed.
func (net *NetworkTopology) addTrustedGroup(n Namer, props config.StageProperties, suffix, description string, port int) SecurityGroupRef {
	ref := SecurityGroupRef{
		LogicalID: n.LogicalID(suffix),
		Name:      n.Name(suffix),
		Port:      port,
	}
	net.add(GroupNetwork, ref.LogicalID, ec2.SecurityGroup{
		GroupName:        ref.Name,
		GroupDescription: description,
		VpcId:            net.VPCRef(),
		SecurityGroupIngress: []ec2.SecurityGroup_Ingress{{
			CidrIp:      props.TrustedCIDR,
			Description: fmt.Sprintf("from %s:%d", props.TrustedCIDR, port),
			IpProtocol:  "tcp",
			FromPort:    port,
			ToPort:      port,
		}},
		SecurityGroupEgress: []ec2.SecurityGroup_Egress{closedEgress},
	})
	return ref
}

// splitCIDR carves block into count equally sized subnets, in address order.
func splitCIDR(block string, count int) ([]string, error) {
	prefix, err := netip.ParsePrefix(block)
	if err != nil {
		return nil, err
	}
	newBits := bits.Len(uint(count - 1))
	size := prefix.Bits() + newBits
	if size > maxSubnetPrefixLength {
		return nil, fmt.Errorf("cannot fit %d subnets of at least /%d", count, maxSubnetPrefixLength)
	}

	base := prefix.Masked().Addr().As4()
	start := uint32(base[0])<<24 | uint32(base[1])<<16 | uint32(base[2])<<8 | uint32(base[3])
	step := uint32(1) << (32 - size)

	out := make([]string, count)
	for i := range out {
		a := start + uint32(i)*step
		addr := netip.AddrFrom4([4]byte{byte(a >> 24), byte(a >> 16), byte(a >> 8), byte(a)})
		out[i] = netip.PrefixFrom(addr, size).String()
	}
	return out, nil
}

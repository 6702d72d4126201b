// Package ec2 provides CloudFormation resource types for Amazon EC2 networking.
//
// Property fields are typed any so that literal values and intrinsic
// functions (Ref, GetAtt, Select) can be assigned interchangeably.
package ec2

// VPC represents AWS::EC2::VPC.
type VPC struct {
	CidrBlock          any   `json:"CidrBlock,omitempty"`
	EnableDnsHostnames any   `json:"EnableDnsHostnames,omitempty"`
	EnableDnsSupport   any   `json:"EnableDnsSupport,omitempty"`
	InstanceTenancy    any   `json:"InstanceTenancy,omitempty"`
	Tags               []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r VPC) ResourceType() string {
	return "AWS::EC2::VPC"
}

// Subnet represents AWS::EC2::Subnet.
type Subnet struct {
	AvailabilityZone    any   `json:"AvailabilityZone,omitempty"`
	CidrBlock           any   `json:"CidrBlock,omitempty"`
	MapPublicIpOnLaunch any   `json:"MapPublicIpOnLaunch,omitempty"`
	VpcId               any   `json:"VpcId,omitempty"`
	Tags                []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Subnet) ResourceType() string {
	return "AWS::EC2::Subnet"
}

// InternetGateway represents AWS::EC2::InternetGateway.
type InternetGateway struct {
	Tags []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r InternetGateway) ResourceType() string {
	return "AWS::EC2::InternetGateway"
}

// VPCGatewayAttachment represents AWS::EC2::VPCGatewayAttachment.
type VPCGatewayAttachment struct {
	InternetGatewayId any `json:"InternetGatewayId,omitempty"`
	VpcId             any `json:"VpcId,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r VPCGatewayAttachment) ResourceType() string {
	return "AWS::EC2::VPCGatewayAttachment"
}

// RouteTable represents AWS::EC2::RouteTable.
type RouteTable struct {
	VpcId any   `json:"VpcId,omitempty"`
	Tags  []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r RouteTable) ResourceType() string {
	return "AWS::EC2::RouteTable"
}

// Route represents AWS::EC2::Route.
type Route struct {
	DestinationCidrBlock any `json:"DestinationCidrBlock,omitempty"`
	GatewayId            any `json:"GatewayId,omitempty"`
	NatGatewayId         any `json:"NatGatewayId,omitempty"`
	RouteTableId         any `json:"RouteTableId,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Route) ResourceType() string {
	return "AWS::EC2::Route"
}

// SubnetRouteTableAssociation represents AWS::EC2::SubnetRouteTableAssociation.
type SubnetRouteTableAssociation struct {
	RouteTableId any `json:"RouteTableId,omitempty"`
	SubnetId     any `json:"SubnetId,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r SubnetRouteTableAssociation) ResourceType() string {
	return "AWS::EC2::SubnetRouteTableAssociation"
}

// EIP represents AWS::EC2::EIP.
type EIP struct {
	Domain any   `json:"Domain,omitempty"`
	Tags   []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r EIP) ResourceType() string {
	return "AWS::EC2::EIP"
}

// NatGateway represents AWS::EC2::NatGateway.
type NatGateway struct {
	AllocationId any   `json:"AllocationId,omitempty"`
	SubnetId     any   `json:"SubnetId,omitempty"`
	Tags         []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r NatGateway) ResourceType() string {
	return "AWS::EC2::NatGateway"
}

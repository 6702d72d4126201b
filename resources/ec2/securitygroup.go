package ec2

// SecurityGroup represents AWS::EC2::SecurityGroup.
type SecurityGroup struct {
	GroupDescription     any                     `json:"GroupDescription,omitempty"`
	GroupName            any                     `json:"GroupName,omitempty"`
	SecurityGroupEgress  []SecurityGroup_Egress  `json:"SecurityGroupEgress,omitempty"`
	SecurityGroupIngress []SecurityGroup_Ingress `json:"SecurityGroupIngress,omitempty"`
	VpcId                any                     `json:"VpcId,omitempty"`
	Tags                 []any                   `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r SecurityGroup) ResourceType() string {
	return "AWS::EC2::SecurityGroup"
}

// SecurityGroup_Ingress is an inline inbound rule.
type SecurityGroup_Ingress struct {
	CidrIp                any `json:"CidrIp,omitempty"`
	Description           any `json:"Description,omitempty"`
	FromPort              any `json:"FromPort,omitempty"`
	IpProtocol            any `json:"IpProtocol,omitempty"`
	SourceSecurityGroupId any `json:"SourceSecurityGroupId,omitempty"`
	ToPort                any `json:"ToPort,omitempty"`
}

// SecurityGroup_Egress is an inline outbound rule.
type SecurityGroup_Egress struct {
	CidrIp                     any `json:"CidrIp,omitempty"`
	Description                any `json:"Description,omitempty"`
	DestinationSecurityGroupId any `json:"DestinationSecurityGroupId,omitempty"`
	FromPort                   any `json:"FromPort,omitempty"`
	IpProtocol                 any `json:"IpProtocol,omitempty"`
	ToPort                     any `json:"ToPort,omitempty"`
}

// SecurityGroupIngress represents AWS::EC2::SecurityGroupIngress.
type SecurityGroupIngress struct {
	CidrIp                any `json:"CidrIp,omitempty"`
	Description           any `json:"Description,omitempty"`
	FromPort              any `json:"FromPort,omitempty"`
	GroupId               any `json:"GroupId,omitempty"`
	IpProtocol            any `json:"IpProtocol,omitempty"`
	SourceSecurityGroupId any `json:"SourceSecurityGroupId,omitempty"`
	ToPort                any `json:"ToPort,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r SecurityGroupIngress) ResourceType() string {
	return "AWS::EC2::SecurityGroupIngress"
}

// SecurityGroupEgress represents AWS::EC2::SecurityGroupEgress.
type SecurityGroupEgress struct {
	CidrIp                     any `json:"CidrIp,omitempty"`
	Description                any `json:"Description,omitempty"`
	DestinationSecurityGroupId any `json:"DestinationSecurityGroupId,omitempty"`
	FromPort                   any `json:"FromPort,omitempty"`
	GroupId                    any `json:"GroupId,omitempty"`
	IpProtocol                 any `json:"IpProtocol,omitempty"`
	ToPort                     any `json:"ToPort,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r SecurityGroupEgress) ResourceType() string {
	return "AWS::EC2::SecurityGroupEgress"
}

// FlowLog represents AWS::EC2::FlowLog.
type FlowLog struct {
	DeliverLogsPermissionArn any   `json:"DeliverLogsPermissionArn,omitempty"`
	LogDestinationType       any   `json:"LogDestinationType,omitempty"`
	LogGroupName             any   `json:"LogGroupName,omitempty"`
	ResourceId               any   `json:"ResourceId,omitempty"`
	ResourceType_            any   `json:"ResourceType,omitempty"`
	TrafficType              any   `json:"TrafficType,omitempty"`
	Tags                     []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r FlowLog) ResourceType() string {
	return "AWS::EC2::FlowLog"
}

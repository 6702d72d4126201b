// Package elasticloadbalancingv2 provides CloudFormation resource types for
// Application Load Balancers.
package elasticloadbalancingv2

// LoadBalancer represents AWS::ElasticLoadBalancingV2::LoadBalancer.
type LoadBalancer struct {
	IpAddressType          any                                  `json:"IpAddressType,omitempty"`
	LoadBalancerAttributes []LoadBalancer_LoadBalancerAttribute `json:"LoadBalancerAttributes,omitempty"`
	Name                   any                                  `json:"Name,omitempty"`
	Scheme                 any                                  `json:"Scheme,omitempty"`
	SecurityGroups         []any                                `json:"SecurityGroups,omitempty"`
	Subnets                []any                                `json:"Subnets,omitempty"`
	Type                   any                                  `json:"Type,omitempty"`
	Tags                   []any                                `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r LoadBalancer) ResourceType() string {
	return "AWS::ElasticLoadBalancingV2::LoadBalancer"
}

// LoadBalancer_LoadBalancerAttribute is a key/value load balancer attribute.
type LoadBalancer_LoadBalancerAttribute struct {
	Key   any `json:"Key,omitempty"`
	Value any `json:"Value,omitempty"`
}

// Listener represents AWS::ElasticLoadBalancingV2::Listener.
type Listener struct {
	Certificates    []Listener_Certificate `json:"Certificates,omitempty"`
	DefaultActions  []Listener_Action      `json:"DefaultActions,omitempty"`
	LoadBalancerArn any                    `json:"LoadBalancerArn,omitempty"`
	Port            any                    `json:"Port,omitempty"`
	Protocol        any                    `json:"Protocol,omitempty"`
	SslPolicy       any                    `json:"SslPolicy,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Listener) ResourceType() string {
	return "AWS::ElasticLoadBalancingV2::Listener"
}

// Listener_Certificate references an ACM certificate.
type Listener_Certificate struct {
	CertificateArn any `json:"CertificateArn,omitempty"`
}

// Listener_Action is a listener default action.
type Listener_Action struct {
	FixedResponseConfig *Listener_FixedResponseConfig `json:"FixedResponseConfig,omitempty"`
	TargetGroupArn      any                           `json:"TargetGroupArn,omitempty"`
	Type                any                           `json:"Type,omitempty"`
}

// Listener_FixedResponseConfig returns a static response.
type Listener_FixedResponseConfig struct {
	ContentType any `json:"ContentType,omitempty"`
	MessageBody any `json:"MessageBody,omitempty"`
	StatusCode  any `json:"StatusCode,omitempty"`
}

// ListenerRule represents AWS::ElasticLoadBalancingV2::ListenerRule.
type ListenerRule struct {
	Actions     []ListenerRule_Action        `json:"Actions,omitempty"`
	Conditions  []ListenerRule_RuleCondition `json:"Conditions,omitempty"`
	ListenerArn any                          `json:"ListenerArn,omitempty"`
	Priority    any                          `json:"Priority,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r ListenerRule) ResourceType() string {
	return "AWS::ElasticLoadBalancingV2::ListenerRule"
}

// ListenerRule_Action is the action taken when a rule matches.
type ListenerRule_Action struct {
	TargetGroupArn any `json:"TargetGroupArn,omitempty"`
	Type           any `json:"Type,omitempty"`
}

// ListenerRule_RuleCondition is a single match condition.
type ListenerRule_RuleCondition struct {
	Field             any                             `json:"Field,omitempty"`
	PathPatternConfig *ListenerRule_PathPatternConfig `json:"PathPatternConfig,omitempty"`
}

// ListenerRule_PathPatternConfig lists the path patterns of a condition.
type ListenerRule_PathPatternConfig struct {
	Values []any `json:"Values,omitempty"`
}

// TargetGroup represents AWS::ElasticLoadBalancingV2::TargetGroup.
type TargetGroup struct {
	HealthCheckIntervalSeconds any                                `json:"HealthCheckIntervalSeconds,omitempty"`
	HealthCheckPath            any                                `json:"HealthCheckPath,omitempty"`
	HealthCheckProtocol        any                                `json:"HealthCheckProtocol,omitempty"`
	HealthyThresholdCount      any                                `json:"HealthyThresholdCount,omitempty"`
	Matcher                    *TargetGroup_Matcher               `json:"Matcher,omitempty"`
	Name                       any                                `json:"Name,omitempty"`
	Port                       any                                `json:"Port,omitempty"`
	Protocol                   any                                `json:"Protocol,omitempty"`
	TargetGroupAttributes      []TargetGroup_TargetGroupAttribute `json:"TargetGroupAttributes,omitempty"`
	TargetType                 any                                `json:"TargetType,omitempty"`
	UnhealthyThresholdCount    any                                `json:"UnhealthyThresholdCount,omitempty"`
	VpcId                      any                                `json:"VpcId,omitempty"`
	Tags                       []any                              `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r TargetGroup) ResourceType() string {
	return "AWS::ElasticLoadBalancingV2::TargetGroup"
}

// TargetGroup_Matcher lists the HTTP codes treated as healthy.
type TargetGroup_Matcher struct {
	HttpCode any `json:"HttpCode,omitempty"`
}

// TargetGroup_TargetGroupAttribute is a key/value target group attribute.
type TargetGroup_TargetGroupAttribute struct {
	Key   any `json:"Key,omitempty"`
	Value any `json:"Value,omitempty"`
}

// Package applicationautoscaling provides CloudFormation resource types for
// Application Auto Scaling.
package applicationautoscaling

// ScalableTarget represents AWS::ApplicationAutoScaling::ScalableTarget.
type ScalableTarget struct {
	MaxCapacity       any `json:"MaxCapacity,omitempty"`
	MinCapacity       any `json:"MinCapacity,omitempty"`
	ResourceId        any `json:"ResourceId,omitempty"`
	RoleARN           any `json:"RoleARN,omitempty"`
	ScalableDimension any `json:"ScalableDimension,omitempty"`
	ServiceNamespace  any `json:"ServiceNamespace,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r ScalableTarget) ResourceType() string {
	return "AWS::ApplicationAutoScaling::ScalableTarget"
}

// ScalingPolicy represents AWS::ApplicationAutoScaling::ScalingPolicy.
type ScalingPolicy struct {
	PolicyName                               any                                                    `json:"PolicyName,omitempty"`
	PolicyType                               any                                                    `json:"PolicyType,omitempty"`
	ScalingTargetId                          any                                                    `json:"ScalingTargetId,omitempty"`
	TargetTrackingScalingPolicyConfiguration *ScalingPolicy_TargetTrackingScalingPolicyConfiguration `json:"TargetTrackingScalingPolicyConfiguration,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r ScalingPolicy) ResourceType() string {
	return "AWS::ApplicationAutoScaling::ScalingPolicy"
}

// ScalingPolicy_TargetTrackingScalingPolicyConfiguration keeps a metric at a target value.
type ScalingPolicy_TargetTrackingScalingPolicyConfiguration struct {
	DisableScaleIn                any                                          `json:"DisableScaleIn,omitempty"`
	PredefinedMetricSpecification *ScalingPolicy_PredefinedMetricSpecification `json:"PredefinedMetricSpecification,omitempty"`
	ScaleInCooldown               any                                          `json:"ScaleInCooldown,omitempty"`
	ScaleOutCooldown              any                                          `json:"ScaleOutCooldown,omitempty"`
	TargetValue                   any                                          `json:"TargetValue,omitempty"`
}

// ScalingPolicy_PredefinedMetricSpecification names a predefined metric.
type ScalingPolicy_PredefinedMetricSpecification struct {
	PredefinedMetricType any `json:"PredefinedMetricType,omitempty"`
	ResourceLabel        any `json:"ResourceLabel,omitempty"`
}

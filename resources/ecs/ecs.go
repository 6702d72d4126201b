// Package ecs provides CloudFormation resource types for Amazon ECS.
package ecs

// Cluster represents AWS::ECS::Cluster.
type Cluster struct {
	ClusterName     any                       `json:"ClusterName,omitempty"`
	ClusterSettings []Cluster_ClusterSettings `json:"ClusterSettings,omitempty"`
	Tags            []any                     `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Cluster) ResourceType() string {
	return "AWS::ECS::Cluster"
}

// Cluster_ClusterSettings is a cluster-level setting such as containerInsights.
type Cluster_ClusterSettings struct {
	Name  any `json:"Name,omitempty"`
	Value any `json:"Value,omitempty"`
}

// TaskDefinition represents AWS::ECS::TaskDefinition.
type TaskDefinition struct {
	ContainerDefinitions    []TaskDefinition_ContainerDefinition `json:"ContainerDefinitions,omitempty"`
	Cpu                     any                                  `json:"Cpu,omitempty"`
	ExecutionRoleArn        any                                  `json:"ExecutionRoleArn,omitempty"`
	Family                  any                                  `json:"Family,omitempty"`
	Memory                  any                                  `json:"Memory,omitempty"`
	NetworkMode             any                                  `json:"NetworkMode,omitempty"`
	RequiresCompatibilities []any                                `json:"RequiresCompatibilities,omitempty"`
	TaskRoleArn             any                                  `json:"TaskRoleArn,omitempty"`
	Tags                    []any                                `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r TaskDefinition) ResourceType() string {
	return "AWS::ECS::TaskDefinition"
}

// TaskDefinition_ContainerDefinition describes one container of a task.
type TaskDefinition_ContainerDefinition struct {
	Essential        any                              `json:"Essential,omitempty"`
	Image            any                              `json:"Image,omitempty"`
	LogConfiguration *TaskDefinition_LogConfiguration `json:"LogConfiguration,omitempty"`
	Name             any                              `json:"Name,omitempty"`
	PortMappings     []TaskDefinition_PortMapping     `json:"PortMappings,omitempty"`
}

// TaskDefinition_PortMapping maps a container port to the host.
type TaskDefinition_PortMapping struct {
	ContainerPort any `json:"ContainerPort,omitempty"`
	HostPort      any `json:"HostPort,omitempty"`
	Protocol      any `json:"Protocol,omitempty"`
}

// TaskDefinition_LogConfiguration selects the container log driver.
type TaskDefinition_LogConfiguration struct {
	LogDriver any            `json:"LogDriver,omitempty"`
	Options   map[string]any `json:"Options,omitempty"`
}

// Service represents AWS::ECS::Service.
type Service struct {
	Cluster                       any                              `json:"Cluster,omitempty"`
	DeploymentConfiguration       *Service_DeploymentConfiguration `json:"DeploymentConfiguration,omitempty"`
	DesiredCount                  any                              `json:"DesiredCount,omitempty"`
	EnableECSManagedTags          any                              `json:"EnableECSManagedTags,omitempty"`
	HealthCheckGracePeriodSeconds any                              `json:"HealthCheckGracePeriodSeconds,omitempty"`
	LaunchType                    any                              `json:"LaunchType,omitempty"`
	LoadBalancers                 []Service_LoadBalancer           `json:"LoadBalancers,omitempty"`
	NetworkConfiguration          *Service_NetworkConfiguration    `json:"NetworkConfiguration,omitempty"`
	PropagateTags                 any                              `json:"PropagateTags,omitempty"`
	ServiceName                   any                              `json:"ServiceName,omitempty"`
	TaskDefinition                any                              `json:"TaskDefinition,omitempty"`
	Tags                          []any                            `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Service) ResourceType() string {
	return "AWS::ECS::Service"
}

// Service_DeploymentConfiguration bounds task counts during deployments.
type Service_DeploymentConfiguration struct {
	MaximumPercent        any `json:"MaximumPercent,omitempty"`
	MinimumHealthyPercent any `json:"MinimumHealthyPercent,omitempty"`
}

// Service_LoadBalancer registers a container port with a target group.
type Service_LoadBalancer struct {
	ContainerName  any `json:"ContainerName,omitempty"`
	ContainerPort  any `json:"ContainerPort,omitempty"`
	TargetGroupArn any `json:"TargetGroupArn,omitempty"`
}

// Service_NetworkConfiguration wraps the awsvpc settings.
type Service_NetworkConfiguration struct {
	AwsvpcConfiguration *Service_AwsVpcConfiguration `json:"AwsvpcConfiguration,omitempty"`
}

// Service_AwsVpcConfiguration places tasks into subnets and security groups.
type Service_AwsVpcConfiguration struct {
	AssignPublicIp any   `json:"AssignPublicIp,omitempty"`
	SecurityGroups []any `json:"SecurityGroups,omitempty"`
	Subnets        []any `json:"Subnets,omitempty"`
}

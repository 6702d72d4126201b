package topology

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cbroompearson/cdk/internal/config"
	"github.com/cbroompearson/cdk/intrinsics"
	"github.com/cbroompearson/cdk/resources/applicationautoscaling"
	"github.com/cbroompearson/cdk/resources/ec2"
	"github.com/cbroompearson/cdk/resources/ecs"
	"github.com/cbroompearson/cdk/resources/elasticloadbalancingv2"
)

// Service constants.
const (
	MaxTargetGroupNameLength = 32
	MinScalingCapacity       = 1
	HealthCheckGracePeriod   = 60

	// scalingRoleARN is the service-linked role Application Auto Scaling
	// uses for ECS services.
	scalingRoleARN = "arn:${AWS::Partition}:iam::${AWS::AccountId}:role/aws-service-role/" +
		"ecs.application-autoscaling.amazonaws.com/AWSServiceRoleForApplicationAutoScaling_ECSService"
)

// ServiceTopology is one microservice: task definition, container, target
// group, security group, Fargate service and CPU target tracking.
type ServiceTopology struct {
	component

	Spec config.MicroserviceSpec
	// Name is "{service}-{stage}-{id}"; family, container, service and
	// target group all carry it.
	Name string

	TaskDefinition  string
	Container       string
	TargetGroup     string
	Service         string
	SecurityGroup   SecurityGroupRef
	EdgeEgress      string
	ScalableTarget  string
	ScalingPolicy   string
	TargetGroupName string
}

// TargetGroupArn returns a Ref to the target group.
func (s *ServiceTopology) TargetGroupArn() intrinsics.Ref {
	return intrinsics.RefOf(s.TargetGroup)
}

// ServiceSet is the shared cluster plus one ServiceTopology per microservice,
// in the order of the input specs.
type ServiceSet struct {
	component

	Cluster     string
	ClusterName string
	Services    []*ServiceTopology
}

// Entities returns the cluster followed by the entities of every service.
func (s *ServiceSet) Entities() []Entity {
	out := append([]Entity{}, s.component.Entities()...)
	for _, svc := range s.Services {
		out = append(out, svc.Entities()...)
	}
	return out
}

// Lookup returns the service with the given microservice id.
func (s *ServiceSet) Lookup(id string) (*ServiceTopology, bool) {
	for _, svc := range s.Services {
		if svc.Spec.ID == id {
			return svc, true
		}
	}
	return nil, false
}

// BuildServices derives the cluster and one service per spec.
func BuildServices(props config.StageProperties, net *NetworkTopology, perms *PermissionSet, specs []config.MicroserviceSpec) (*ServiceSet, error) {
	if len(specs) == 0 {
		return nil, &config.MissingParameterError{Key: "microservices", Stage: props.Stage}
	}
	n := NewNamer(props)

	set := &ServiceSet{
		Cluster:     n.LogicalID("cluster"),
		ClusterName: n.Prefix(),
	}
	set.add(GroupCluster, set.Cluster, ecs.Cluster{
		ClusterName: set.ClusterName,
		ClusterSettings: []ecs.Cluster_ClusterSettings{
			{Name: "containerInsights", Value: "enabled"},
		},
	})

	owners := reservedIDs(n, net, perms, set)
	seen := make(map[string]bool, len(specs))
	for i, spec := range specs {
		key := fmt.Sprintf("microservices[%d].id", i)
		if seen[strings.ToLower(spec.ID)] {
			return nil, &config.InvalidParameterError{Key: key, Value: spec.ID, Reason: "duplicate microservice id"}
		}
		seen[strings.ToLower(spec.ID)] = true

		svc, err := buildService(n, net, perms, set, spec, i)
		if err != nil {
			return nil, err
		}

		var ids []string
		for _, e := range svc.Entities() {
			ids = append(ids, e.LogicalID)
		}
		ids = append(ids, listenerRuleID(n, spec.ID))
		for _, id := range ids {
			if owner, taken := owners[id]; taken {
				return nil, &config.InvalidParameterError{
					Key:    key,
					Value:  spec.ID,
					Reason: fmt.Sprintf("logical ID %s is already used by %s", id, owner),
				}
			}
			owners[id] = ServiceGroup(spec.ID)
		}
		set.Services = append(set.Services, svc)
	}
	return set, nil
}

// reservedIDs maps the logical IDs produced outside the services to the
// group that owns them. Routing and DNS are built later, so their fixed IDs
// are derived here.
func reservedIDs(n Namer, net *NetworkTopology, perms *PermissionSet, set *ServiceSet) map[string]string {
	owners := map[string]string{
		loadBalancerID(n): GroupRouting,
		listenerID(n):     GroupRouting,
		aliasRecordID(n):  GroupDNS,
	}
	for _, entities := range [][]Entity{net.Entities(), perms.Entities(), set.component.Entities()} {
		for _, e := range entities {
			owners[e.LogicalID] = e.Group
		}
	}
	return owners
}

func buildService(n Namer, net *NetworkTopology, perms *PermissionSet, set *ServiceSet, spec config.MicroserviceSpec, i int) (*ServiceTopology, error) {
	name := n.Name(spec.ID)
	if len(name) > MaxTargetGroupNameLength {
		return nil, &config.InvalidParameterError{
			Key:    fmt.Sprintf("microservices[%d].id", i),
			Value:  spec.ID,
			Reason: fmt.Sprintf("target group name %q exceeds %d characters", name, MaxTargetGroupNameLength),
		}
	}

	group := ServiceGroup(spec.ID)
	svc := &ServiceTopology{
		Spec:            spec,
		Name:            name,
		TaskDefinition:  n.LogicalID(spec.ID, "task-definition"),
		Container:       name,
		TargetGroup:     n.LogicalID(spec.ID, "target-group"),
		TargetGroupName: name,
		Service:         n.LogicalID(spec.ID, "service"),
		SecurityGroup: SecurityGroupRef{
			LogicalID: n.LogicalID(spec.ID, "sg"),
			Name:      n.Name(spec.ID, "sg"),
			Port:      spec.ContainerPort,
		},
		EdgeEgress:     n.LogicalID("alb-sg", "to", spec.ID),
		ScalableTarget: n.LogicalID(spec.ID, "scalable-target"),
		ScalingPolicy:  n.LogicalID(spec.ID, "cpu-scaling"),
	}

	svc.add(group, svc.TaskDefinition, ecs.TaskDefinition{
		Family:                  name,
		Cpu:                     strconv.Itoa(spec.CPU),
		Memory:                  strconv.Itoa(spec.MemoryMiB),
		NetworkMode:             "awsvpc",
		RequiresCompatibilities: intrinsics.Any("FARGATE"),
		ExecutionRoleArn:        perms.ExecutionRole.Arn(),
		TaskRoleArn:             perms.TaskRole.Arn(),
		ContainerDefinitions: []ecs.TaskDefinition_ContainerDefinition{{
			Name:      svc.Container,
			Image:     ImageURI(spec.ImageRepository, spec.ImageTag),
			Essential: true,
			PortMappings: []ecs.TaskDefinition_PortMapping{{
				ContainerPort: spec.ContainerPort,
				Protocol:      "tcp",
			}},
			LogConfiguration: &ecs.TaskDefinition_LogConfiguration{
				LogDriver: "awslogs",
				Options: map[string]any{
					"awslogs-group":         intrinsics.RefOf(net.LogGroup),
					"awslogs-region":        intrinsics.RefOf(intrinsics.Region),
					"awslogs-stream-prefix": name,
				},
			},
		}},
	})

	svc.add(group, svc.TargetGroup, elasticloadbalancingv2.TargetGroup{
		Name:                svc.TargetGroupName,
		Port:                spec.ContainerPort,
		Protocol:            "HTTP",
		TargetType:          "ip",
		VpcId:               net.VPCRef(),
		HealthCheckPath:     spec.HealthCheckPath,
		HealthCheckProtocol: "HTTP",
		Matcher:             &elasticloadbalancingv2.TargetGroup_Matcher{HttpCode: "200"},
	})

	edge := net.EdgeSecurityGroup
	svc.add(group, svc.SecurityGroup.LogicalID, ec2.SecurityGroup{
		GroupName:        svc.SecurityGroup.Name,
		GroupDescription: fmt.Sprintf("Security group for %s", name),
		VpcId:            net.VPCRef(),
		SecurityGroupIngress: []ec2.SecurityGroup_Ingress{{
			SourceSecurityGroupId: edge.GroupID(),
			Description:           fmt.Sprintf("Load balancer to target on port %d", spec.ContainerPort),
			IpProtocol:            "tcp",
			FromPort:              spec.ContainerPort,
			ToPort:                spec.ContainerPort,
		}},
		SecurityGroupEgress: []ec2.SecurityGroup_Egress{{
			CidrIp:      "0.0.0.0/0",
			Description: "Allow all outbound traffic by default",
			IpProtocol:  "-1",
		}},
	})
	svc.add(group, svc.EdgeEgress, ec2.SecurityGroupEgress{
		GroupId:                    edge.GroupID(),
		DestinationSecurityGroupId: svc.SecurityGroup.GroupID(),
		Description:                fmt.Sprintf("Load balancer to target on port %d", spec.ContainerPort),
		IpProtocol:                 "tcp",
		FromPort:                   spec.ContainerPort,
		ToPort:                     spec.ContainerPort,
	})

	svc.add(group, svc.Service, ecs.Service{
		ServiceName:    name,
		Cluster:        intrinsics.RefOf(set.Cluster),
		TaskDefinition: intrinsics.RefOf(svc.TaskDefinition),
		LaunchType:     "FARGATE",
		DesiredCount:   spec.DesiredCount,
		DeploymentConfiguration: &ecs.Service_DeploymentConfiguration{
			MaximumPercent:        200,
			MinimumHealthyPercent: 50,
		},
		HealthCheckGracePeriodSeconds: HealthCheckGracePeriod,
		PropagateTags:                 "SERVICE",
		LoadBalancers: []ecs.Service_LoadBalancer{{
			ContainerName:  svc.Container,
			ContainerPort:  spec.ContainerPort,
			TargetGroupArn: svc.TargetGroupArn(),
		}},
		NetworkConfiguration: &ecs.Service_NetworkConfiguration{
			AwsvpcConfiguration: &ecs.Service_AwsVpcConfiguration{
				AssignPublicIp: "DISABLED",
				SecurityGroups: intrinsics.Any(svc.SecurityGroup.GroupID()),
				Subnets:        net.SubnetRefs(false),
			},
		},
	})

	svc.add(group, svc.ScalableTarget, applicationautoscaling.ScalableTarget{
		MinCapacity: MinScalingCapacity,
		MaxCapacity: spec.MaxCapacity,
		ResourceId: intrinsics.Join{Delimiter: "/", Values: []any{
			"service",
			intrinsics.RefOf(set.Cluster),
			intrinsics.AttOf(svc.Service, "Name"),
		}},
		RoleARN:           intrinsics.Sub{String: scalingRoleARN},
		ScalableDimension: "ecs:service:DesiredCount",
		ServiceNamespace:  "ecs",
	})
	svc.add(group, svc.ScalingPolicy, applicationautoscaling.ScalingPolicy{
		PolicyName:      n.Name(spec.ID, "cpu-scaling"),
		PolicyType:      "TargetTrackingScaling",
		ScalingTargetId: intrinsics.RefOf(svc.ScalableTarget),
		TargetTrackingScalingPolicyConfiguration: &applicationautoscaling.ScalingPolicy_TargetTrackingScalingPolicyConfiguration{
			TargetValue: spec.TargetCPUPercent,
			PredefinedMetricSpecification: &applicationautoscaling.ScalingPolicy_PredefinedMetricSpecification{
				PredefinedMetricType: "ECSServiceAverageCPUUtilization",
			},
		},
	})

	return svc, nil
}

// ImageURI returns the container image reference for repository at tag.
// An ECR repository ARN is converted to its registry URI. A repository that
// already carries a tag or digest is returned as is.
func ImageURI(repository, tag string) string {
	uri := repository
	if u, ok := ecrRepositoryURI(repository); ok {
		uri = u
	}
	last := uri[strings.LastIndex(uri, "/")+1:]
	if tag == "" || strings.ContainsAny(last, ":@") {
		return uri
	}
	return uri + ":" + tag
}

// ecrRepositoryURI converts arn:{partition}:ecr:{region}:{account}:repository/{name}.
func ecrRepositoryURI(arn string) (string, bool) {
	parts := strings.SplitN(arn, ":", 6)
	if len(parts) != 6 || parts[0] != "arn" || parts[2] != "ecr" {
		return "", false
	}
	name, ok := strings.CutPrefix(parts[5], "repository/")
	if !ok || name == "" || parts[3] == "" || parts[4] == "" {
		return "", false
	}
	suffix := "amazonaws.com"
	if parts[1] == "aws-cn" {
		suffix = "amazonaws.com.cn"
	}
	return fmt.Sprintf("%s.dkr.ecr.%s.%s/%s", parts[4], parts[3], suffix, name), true
}

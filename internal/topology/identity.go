package topology

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cbroompearson/cdk/internal/config"
	"github.com/cbroompearson/cdk/intrinsics"
	"github.com/cbroompearson/cdk/resources/iam"
)

// ECSTasksPrincipal is the only principal trusted by the service roles.
const ECSTasksPrincipal = "ecs-tasks.amazonaws.com"

// executionActions lets the ECS agent pull images, ship logs and keep the
// load balancer and autoscaling registrations in sync.
var executionActions = []string{
	"elasticloadbalancing:DeregisterInstancesFromLoadBalancer",
	"elasticloadbalancing:DeregisterTargets",
	"elasticloadbalancing:DescribeLoadBalancers",
	"elasticloadbalancing:DescribeTargetGroups",
	"elasticloadbalancing:DescribeTargetHealth",
	"elasticloadbalancing:DescribeListeners",
	"elasticloadbalancing:DescribeRules",
	"elasticloadbalancing:RegisterInstancesWithLoadBalancer",
	"elasticloadbalancing:RegisterTargets",
	"ec2:DescribeInstances",
	"ec2:DescribeNetworkInterfaces",
	"ec2:DescribeSecurityGroups",
	"ec2:DescribeSubnets",
	"ec2:DescribeVpcs",
	"ec2:AuthorizeSecurityGroupIngress",
	"sts:AssumeRole",
	"ssm:GetParameters",
	"secretsmanager:GetSecretValue",
	"ecr:GetAuthorizationToken",
	"ecr:BatchCheckLayerAvailability",
	"ecr:GetDownloadUrlForLayer",
	"ecr:BatchGetImage",
	"logs:CreateLogStream",
	"logs:PutLogEvents",
	"application-autoscaling:RegisterScalableTarget",
	"application-autoscaling:DescribeScalableTargets",
	"application-autoscaling:PutScalingPolicy",
	"application-autoscaling:DescribeScalingPolicies",
	"application-autoscaling:DescribeScalingActivities",
	"application-autoscaling:DeregisterScalableTarget",
	"cloudwatch:DescribeAlarms",
	"cloudwatch:PutMetricAlarm",
}

// taskActions is the data-plane access granted to application code.
var taskActions = []string{
	"logs:CreateLogStream",
	"logs:PutLogEvents",
	"dynamodb:Query",
	"dynamodb:ListTables",
	"secretsmanager:GetSecretValue",
	"kms:Decrypt",
}

// RoleRegistry records the role names derived during one synthesis run.
// It is shared by every stack of the run and is not safe for concurrent use.
type RoleRegistry struct {
	owners map[string]string
}

// NewRoleRegistry returns an empty registry.
func NewRoleRegistry() *RoleRegistry {
	return &RoleRegistry{owners: make(map[string]string)}
}

// Claim registers name for owner. A name can be claimed once.
func (r *RoleRegistry) Claim(name, owner string) error {
	if prev, ok := r.owners[name]; ok {
		return &IdentityCollisionError{RoleName: name, Owner: prev}
	}
	r.owners[name] = owner
	return nil
}

// Names returns the claimed role names in sorted order.
func (r *RoleRegistry) Names() []string {
	names := make([]string, 0, len(r.owners))
	for name := range r.owners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RoleRef identifies an IAM role of the stack.
type RoleRef struct {
	LogicalID string
	Name      string
}

// Arn returns the role ARN attribute.
func (r RoleRef) Arn() intrinsics.GetAtt {
	return intrinsics.AttOf(r.LogicalID, "Arn")
}

// PermissionSet holds the execution and task roles shared by all services
// of a stack.
type PermissionSet struct {
	component

	ExecutionRole RoleRef
	TaskRole      RoleRef
}

// BuildPermissions derives the two service roles and claims their names,
// together with the flow-log role of net, in roles. A nil registry is
// replaced with a fresh one.
func BuildPermissions(props config.StageProperties, net *NetworkTopology, roles *RoleRegistry) (*PermissionSet, error) {
	if roles == nil {
		roles = NewRoleRegistry()
	}
	n := NewNamer(props)
	owner := n.Prefix()

	if err := roles.Claim(net.FlowLogRoleName, owner+"/"+net.FlowLogRole); err != nil {
		return nil, err
	}

	perms := &PermissionSet{
		ExecutionRole: RoleRef{LogicalID: n.LogicalID("execution-role"), Name: n.Name("execution-role")},
		TaskRole:      RoleRef{LogicalID: n.LogicalID("task-role"), Name: n.Name("task-role")},
	}

	for _, role := range []struct {
		ref     RoleRef
		policy  string
		actions []string
	}{
		{perms.ExecutionRole, n.Name("execution-policy"), executionActions},
		{perms.TaskRole, n.Name("task-policy"), taskActions},
	} {
		if err := checkActions(role.ref.Name, role.actions); err != nil {
			return nil, err
		}
		if err := roles.Claim(role.ref.Name, owner+"/"+role.ref.LogicalID); err != nil {
			return nil, err
		}
		perms.add(GroupIdentity, role.ref.LogicalID, iam.Role{
			RoleName:                 role.ref.Name,
			AssumeRolePolicyDocument: intrinsics.AssumeRolePolicy(ECSTasksPrincipal),
			Policies: []iam.Role_Policy{{
				PolicyName:     role.policy,
				PolicyDocument: allowPolicy(role.actions),
			}},
		})
	}
	return perms, nil
}

// allowPolicy returns a single-statement policy allowing actions on all
// resources.
func allowPolicy(actions []string) intrinsics.PolicyDocument {
	return intrinsics.NewPolicyDocument(intrinsics.PolicyStatement{
		Effect:   "Allow",
		Action:   intrinsics.Strings(actions),
		Resource: "*",
	})
}

func checkActions(role string, actions []string) error {
	for _, action := range actions {
		if strings.Contains(action, "*") {
			return fmt.Errorf("role %q: wildcard action %q is not allowed", role, action)
		}
	}
	return nil
}

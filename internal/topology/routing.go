package topology

import (
	"fmt"
	"sort"
	"strings"

	cdk "github.com/cbroompearson/cdk"
	"github.com/cbroompearson/cdk/internal/config"
	"github.com/cbroompearson/cdk/intrinsics"
	"github.com/cbroompearson/cdk/resources/elasticloadbalancingv2"
)

// Routing constants.
const (
	ListenerPort          = 443
	MinListenerPriority   = 1
	MaxListenerPriority   = 50000
	MaxLoadBalancerName   = 32
	LoadBalancerDNSOutput = "LoadBalancerDNS"
)

// RoutingRule binds a path pattern, or the listener default, to a service.
type RoutingRule struct {
	ServiceID       string
	LogicalID       string
	Priority        int
	PathPattern     string
	HealthCheckPath string
	TargetPort      int
	Default         bool
}

// Routing is the internet-facing load balancer with its HTTPS listener and
// rules.
type Routing struct {
	component

	LoadBalancer     string
	LoadBalancerName string
	Listener         string
	// Rules holds the path rules in priority order followed by the default
	// rule, if any.
	Rules []RoutingRule
}

// DNSName returns the load balancer DNS name attribute.
func (r *Routing) DNSName() intrinsics.GetAtt {
	return intrinsics.AttOf(r.LoadBalancer, "DNSName")
}

// CanonicalHostedZoneID returns the hosted zone id of the load balancer.
func (r *Routing) CanonicalHostedZoneID() intrinsics.GetAtt {
	return intrinsics.AttOf(r.LoadBalancer, "CanonicalHostedZoneID")
}

// Default returns the default rule.
func (r *Routing) Default() (RoutingRule, bool) {
	for _, rule := range r.Rules {
		if rule.Default {
			return rule, true
		}
	}
	return RoutingRule{}, false
}

// RuleFor returns the rule routing to the service with the given id.
func (r *Routing) RuleFor(serviceID string) (RoutingRule, bool) {
	for _, rule := range r.Rules {
		if rule.ServiceID == serviceID {
			return rule, true
		}
	}
	return RoutingRule{}, false
}

// Outputs returns the stack outputs owned by routing.
func (r *Routing) Outputs() map[string]cdk.Output {
	return map[string]cdk.Output{
		LoadBalancerDNSOutput: {
			Description: "DNS name of the load balancer",
			Value:       r.DNSName(),
		},
	}
}

// PlanRules orders the listener rules of specs: path rules by ascending
// priority, then the default rule. It fails with *RoutingConflictError when
// the ordering would be ambiguous.
func PlanRules(specs []config.MicroserviceSpec) ([]RoutingRule, error) {
	var (
		rules       []RoutingRule
		defaultRule *RoutingRule
		byPriority  = make(map[int]string)
		byPath      = make(map[string]string)
	)

	for _, spec := range specs {
		rule := RoutingRule{
			ServiceID:       spec.ID,
			Priority:        spec.ListenerPriority,
			PathPattern:     spec.PathPattern,
			HealthCheckPath: spec.HealthCheckPath,
			TargetPort:      spec.ContainerPort,
			Default:         spec.IsDefault(),
		}

		if rule.Default {
			if rule.Priority != 0 {
				return nil, &RoutingConflictError{Services: []string{spec.ID}, Priority: rule.Priority, Reason: "default rule must not declare a priority"}
			}
			if defaultRule != nil {
				return nil, &RoutingConflictError{Services: []string{defaultRule.ServiceID, spec.ID}, Reason: "more than one default rule"}
			}
			defaultRule = &rule
			continue
		}

		if rule.Priority == 0 {
			return nil, &RoutingConflictError{Services: []string{spec.ID}, Reason: fmt.Sprintf("path %q has no priority", rule.PathPattern)}
		}
		if rule.Priority < MinListenerPriority || rule.Priority > MaxListenerPriority {
			return nil, &RoutingConflictError{
				Services: []string{spec.ID},
				Priority: rule.Priority,
				Reason:   fmt.Sprintf("priority outside %d..%d", MinListenerPriority, MaxListenerPriority),
			}
		}
		if other, ok := byPriority[rule.Priority]; ok {
			return nil, &RoutingConflictError{Services: []string{other, spec.ID}, Priority: rule.Priority, Reason: "duplicate priority"}
		}
		if other, ok := byPath[rule.PathPattern]; ok {
			return nil, &RoutingConflictError{Services: []string{other, spec.ID}, Reason: fmt.Sprintf("duplicate path pattern %q", rule.PathPattern)}
		}
		for _, prev := range rules {
			if pathsOverlap(prev.PathPattern, rule.PathPattern) {
				return nil, &RoutingConflictError{
					Services: []string{prev.ServiceID, spec.ID},
					Reason:   fmt.Sprintf("path pattern %q overlaps %q", rule.PathPattern, prev.PathPattern),
				}
			}
		}
		byPriority[rule.Priority] = spec.ID
		byPath[rule.PathPattern] = spec.ID
		rules = append(rules, rule)
	}

	sort.Slice(rules, func(i, j int) bool { return rules[i].Priority < rules[j].Priority })
	if defaultRule != nil {
		rules = append(rules, *defaultRule)
	}
	return rules, nil
}

func loadBalancerID(n Namer) string { return n.LogicalID("alb") }

func listenerID(n Namer) string { return n.LogicalID("alb", "https-listener") }

func listenerRuleID(n Namer, serviceID string) string {
	return n.LogicalID(serviceID, "listener-rule")
}

// pathsOverlap reports whether the literal prefixes of two path patterns,
// the text before the first wildcard, are equal or nested.
func pathsOverlap(a, b string) bool {
	pa, pb := literalPrefix(a), literalPrefix(b)
	return strings.HasPrefix(pa, pb) || strings.HasPrefix(pb, pa)
}

func literalPrefix(pattern string) string {
	if i := strings.IndexAny(pattern, "*?"); i >= 0 {
		return pattern[:i]
	}
	return pattern
}

// BuildRouting derives the load balancer, its HTTPS listener and one rule
// per service. The listener adds no ingress of its own; access is governed
// by the edge security group.
func BuildRouting(props config.StageProperties, net *NetworkTopology, services *ServiceSet) (*Routing, error) {
	specs := make([]config.MicroserviceSpec, len(services.Services))
	for i, svc := range services.Services {
		specs[i] = svc.Spec
	}
	rules, err := PlanRules(specs)
	if err != nil {
		return nil, err
	}

	n := NewNamer(props)
	r := &Routing{
		LoadBalancer:     loadBalancerID(n),
		LoadBalancerName: n.Name("alb"),
		Listener:         listenerID(n),
	}
	if len(r.LoadBalancerName) > MaxLoadBalancerName {
		return nil, &config.InvalidParameterError{
			Key:    "serviceName",
			Value:  props.ServiceName,
			Reason: fmt.Sprintf("load balancer name %q exceeds %d characters", r.LoadBalancerName, MaxLoadBalancerName),
		}
	}

	r.add(GroupRouting, r.LoadBalancer, elasticloadbalancingv2.LoadBalancer{
		Name:           r.LoadBalancerName,
		Type:           "application",
		Scheme:         "internet-facing",
		IpAddressType:  "ipv4",
		SecurityGroups: intrinsics.Any(net.EdgeSecurityGroup.GroupID()),
		Subnets:        net.SubnetRefs(true),
		LoadBalancerAttributes: []elasticloadbalancingv2.LoadBalancer_LoadBalancerAttribute{
			{Key: "deletion_protection.enabled", Value: "false"},
		},
	}, net.InternetRoutes()...)

	defaultAction := elasticloadbalancingv2.Listener_Action{
		Type: "fixed-response",
		FixedResponseConfig: &elasticloadbalancingv2.Listener_FixedResponseConfig{
			StatusCode:  "404",
			ContentType: "text/plain",
			MessageBody: "Not Found",
		},
	}

	if rule, ok := lastDefault(rules); ok {
		svc, _ := services.Lookup(rule.ServiceID)
		defaultAction = elasticloadbalancingv2.Listener_Action{
			Type:           "forward",
			TargetGroupArn: svc.TargetGroupArn(),
		}
	}
	r.add(GroupRouting, r.Listener, elasticloadbalancingv2.Listener{
		LoadBalancerArn: intrinsics.RefOf(r.LoadBalancer),
		Port:            ListenerPort,
		Protocol:        "HTTPS",
		Certificates: []elasticloadbalancingv2.Listener_Certificate{
			{CertificateArn: props.CertificateARN},
		},
		DefaultActions: []elasticloadbalancingv2.Listener_Action{defaultAction},
	})

	for i, rule := range rules {
		if rule.Default {
			continue
		}
		svc, _ := services.Lookup(rule.ServiceID)
		rules[i].LogicalID = listenerRuleID(n, rule.ServiceID)
		r.add(GroupRouting, rules[i].LogicalID, elasticloadbalancingv2.ListenerRule{
			ListenerArn: intrinsics.RefOf(r.Listener),
			Priority:    rule.Priority,
			Actions: []elasticloadbalancingv2.ListenerRule_Action{{
				Type:           "forward",
				TargetGroupArn: svc.TargetGroupArn(),
			}},
			Conditions: []elasticloadbalancingv2.ListenerRule_RuleCondition{{
				Field: "path-pattern",
				PathPatternConfig: &elasticloadbalancingv2.ListenerRule_PathPatternConfig{
					Values: intrinsics.Any(rule.PathPattern),
				},
			}},
		})
	}

	r.Rules = rules
	return r, nil
}

func lastDefault(rules []RoutingRule) (RoutingRule, bool) {
	if len(rules) > 0 && rules[len(rules)-1].Default {
		return rules[len(rules)-1], true
	}
	return RoutingRule{}, false
}

// ServiceDependency returns the resource the ECS service of serviceID must
// wait for so its target group is attached to the listener first.
func (r *Routing) ServiceDependency(serviceID string) string {
	rule, ok := r.RuleFor(serviceID)
	if !ok || rule.Default {
		return r.Listener
	}
	return rule.LogicalID
}

package topology

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbroompearson/cdk/internal/config"
	"github.com/cbroompearson/cdk/intrinsics"
	"github.com/cbroompearson/cdk/resources/elasticloadbalancingv2"
)

func buildRouting(t *testing.T, specs []config.MicroserviceSpec) (*NetworkTopology, *ServiceSet, *Routing, error) {
	t.Helper()
	net, services, err := buildServices(t, specs)
	require.NoError(t, err)
	routing, err := BuildRouting(oculusProps(), net, services)
	return net, services, routing, err
}

func TestBuildRouting_OculusScenario(t *testing.T) {
	_, services, routing, err := buildRouting(t, oculusSpecs())
	require.NoError(t, err)

	require.Len(t, routing.Rules, 3)
	assert.Equal(t, "api", routing.Rules[0].ServiceID)
	assert.Equal(t, 1, routing.Rules[0].Priority)
	assert.Equal(t, "tca", routing.Rules[1].ServiceID)
	assert.Equal(t, 2, routing.Rules[1].Priority)
	assert.Equal(t, "web", routing.Rules[2].ServiceID)
	assert.True(t, routing.Rules[2].Default)

	def, ok := routing.Default()
	require.True(t, ok)
	assert.Equal(t, "web", def.ServiceID)
	assert.Equal(t, 3030, def.TargetPort)

	assert.Equal(t, "OculusDevAlbHttpsListener", routing.Listener)
	listener := resourceOf[elasticloadbalancingv2.Listener](t, routing.Entities(), routing.Listener)
	assert.Equal(t, 443, listener.Port)
	assert.Equal(t, "HTTPS", listener.Protocol)
	assert.Equal(t, oculusProps().CertificateARN, listener.Certificates[0].CertificateArn)
	require.Len(t, listener.DefaultActions, 1)
	web, _ := services.Lookup("web")
	assert.Equal(t, "forward", listener.DefaultActions[0].Type)
	assert.Equal(t, web.TargetGroupArn(), listener.DefaultActions[0].TargetGroupArn)

	rule := resourceOf[elasticloadbalancingv2.ListenerRule](t, routing.Entities(), routing.Rules[0].LogicalID)
	assert.Equal(t, 1, rule.Priority)
	assert.Equal(t, intrinsics.RefOf(routing.Listener), rule.ListenerArn)
	assert.Equal(t, []any{"/oculus-api/*"}, rule.Conditions[0].PathPatternConfig.Values)
}

func TestBuildRouting_LoadBalancer(t *testing.T) {
	net, _, routing, err := buildRouting(t, oculusSpecs())
	require.NoError(t, err)

	assert.Equal(t, "oculus-dev-alb", routing.LoadBalancerName)
	lb := resourceOf[elasticloadbalancingv2.LoadBalancer](t, routing.Entities(), routing.LoadBalancer)
	assert.Equal(t, "internet-facing", lb.Scheme)
	assert.Equal(t, []any{net.EdgeSecurityGroup.GroupID()}, lb.SecurityGroups)
	assert.Equal(t, net.SubnetRefs(true), lb.Subnets)

	entity, ok := routing.Find(routing.LoadBalancer)
	require.True(t, ok)
	assert.Equal(t, net.InternetRoutes(), entity.DependsOn)
}

func TestBuildRouting_Output(t *testing.T) {
	_, _, routing, err := buildRouting(t, oculusSpecs())
	require.NoError(t, err)

	outputs := routing.Outputs()
	require.Contains(t, outputs, LoadBalancerDNSOutput)
	assert.Equal(t, intrinsics.AttOf("OculusDevAlb", "DNSName"), outputs[LoadBalancerDNSOutput].Value)
}

func TestBuildRouting_NoDefaultRule(t *testing.T) {
	specs := oculusSpecs()[:2]
	_, _, routing, err := buildRouting(t, specs)
	require.NoError(t, err)

	_, ok := routing.Default()
	assert.False(t, ok)
	listener := resourceOf[elasticloadbalancingv2.Listener](t, routing.Entities(), routing.Listener)
	action := listener.DefaultActions[0]
	assert.Equal(t, "fixed-response", action.Type)
	assert.Equal(t, "404", action.FixedResponseConfig.StatusCode)
}

func TestBuildRouting_ServiceDependency(t *testing.T) {
	_, _, routing, err := buildRouting(t, oculusSpecs())
	require.NoError(t, err)

	assert.Equal(t, "OculusDevApiListenerRule", routing.ServiceDependency("api"))
	assert.Equal(t, "OculusDevTcaListenerRule", routing.ServiceDependency("tca"))
	assert.Equal(t, routing.Listener, routing.ServiceDependency("web"))
}

func TestBuildRouting_DuplicatePriority(t *testing.T) {
	specs := oculusSpecs()
	specs[1].ListenerPriority = 1

	_, _, _, err := buildRouting(t, specs)
	var conflict *RoutingConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, []string{"api", "tca"}, conflict.Services)
	assert.Equal(t, 1, conflict.Priority)
}

func TestPlanRules_Conflicts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(specs []config.MicroserviceSpec) []config.MicroserviceSpec
		reason string
	}{
		{"duplicate priority", func(s []config.MicroserviceSpec) []config.MicroserviceSpec {
			s[1].ListenerPriority = 1
			return s
		}, "duplicate priority"},
		{"second default", func(s []config.MicroserviceSpec) []config.MicroserviceSpec {
			s[1].PathPattern, s[1].ListenerPriority = "", 0
			return s
		}, "more than one default rule"},
		{"default with priority", func(s []config.MicroserviceSpec) []config.MicroserviceSpec {
			s[2].ListenerPriority = 3
			return s
		}, "default rule must not declare a priority"},
		{"path without priority", func(s []config.MicroserviceSpec) []config.MicroserviceSpec {
			s[0].ListenerPriority = 0
			return s
		}, "has no priority"},
		{"duplicate path", func(s []config.MicroserviceSpec) []config.MicroserviceSpec {
			s[1].PathPattern = s[0].PathPattern
			return s
		}, "duplicate path pattern"},
		{"nested path", func(s []config.MicroserviceSpec) []config.MicroserviceSpec {
			s[1].PathPattern = "/oculus-api/v2/*"
			return s
		}, `path pattern "/oculus-api/v2/*" overlaps "/oculus-api/*"`},
		{"enclosing path", func(s []config.MicroserviceSpec) []config.MicroserviceSpec {
			s[1].PathPattern = "/oculus*"
			return s
		}, `path pattern "/oculus*" overlaps "/oculus-api/*"`},
		{"priority too large", func(s []config.MicroserviceSpec) []config.MicroserviceSpec {
			s[0].ListenerPriority = 50001
			return s
		}, "priority outside"},
		{"negative priority", func(s []config.MicroserviceSpec) []config.MicroserviceSpec {
			s[0].ListenerPriority = -1
			return s
		}, "priority outside"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PlanRules(tt.mutate(oculusSpecs()))
			var conflict *RoutingConflictError
			require.True(t, errors.As(err, &conflict), "got %v", err)
			assert.Contains(t, conflict.Reason, tt.reason)
		})
	}
}

func TestPathsOverlap(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"/oculus-api/*", "/tca/*", false},
		{"/api/*", "/api-v2/*", false},
		{"/api/*", "/api/v2/*", true},
		{"/api/v2/*", "/api/*", true},
		{"/api/health", "/api/health", true},
		{"/api/h?alth", "/api/status", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pathsOverlap(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
	}
}

func TestPlanRules_OrdersByPriority(t *testing.T) {
	var specs []config.MicroserviceSpec
	priorities := []int{40, 7, 19, 3, 25}
	for i, p := range priorities {
		specs = append(specs, config.MicroserviceSpec{
			ID:               fmt.Sprintf("svc%d", i),
			ContainerPort:    8080,
			PathPattern:      fmt.Sprintf("/svc%d/*", i),
			ListenerPriority: p,
		})
	}

	rules, err := PlanRules(specs)
	require.NoError(t, err)
	require.Len(t, rules, len(priorities))
	for i := 1; i < len(rules); i++ {
		assert.Less(t, rules[i-1].Priority, rules[i].Priority)
	}
	assert.Equal(t, "svc3", rules[0].ServiceID)
}

func TestPlanRules_DefaultLast(t *testing.T) {
	specs := oculusSpecs()
	specs[0], specs[2] = specs[2], specs[0]

	rules, err := PlanRules(specs)
	require.NoError(t, err)
	assert.Equal(t, []string{"api", "tca", "web"}, []string{rules[0].ServiceID, rules[1].ServiceID, rules[2].ServiceID})
	assert.True(t, rules[2].Default)
}

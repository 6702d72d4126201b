package elasticloadbalancingv2

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cdk "github.com/cbroompearson/cdk"
)

func TestResourceTypes(t *testing.T) {
	tests := []struct {
		name     string
		resource cdk.Resource
		expected string
	}{
		{"LoadBalancer", LoadBalancer{}, "AWS::ElasticLoadBalancingV2::LoadBalancer"},
		{"Listener", Listener{}, "AWS::ElasticLoadBalancingV2::Listener"},
		{"ListenerRule", ListenerRule{}, "AWS::ElasticLoadBalancingV2::ListenerRule"},
		{"TargetGroup", TargetGroup{}, "AWS::ElasticLoadBalancingV2::TargetGroup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.resource.ResourceType())
		})
	}
}

func TestListenerRuleSerialization(t *testing.T) {
	rule := ListenerRule{
		Priority: 1,
		Conditions: []ListenerRule_RuleCondition{{
			Field:             "path-pattern",
			PathPatternConfig: &ListenerRule_PathPatternConfig{Values: []any{"/oculus-api/*"}},
		}},
		Actions: []ListenerRule_Action{{Type: "forward", TargetGroupArn: "tg"}},
	}

	data, err := json.Marshal(rule)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"Priority": 1,
		"Conditions": [{"Field": "path-pattern", "PathPatternConfig": {"Values": ["/oculus-api/*"]}}],
		"Actions": [{"Type": "forward", "TargetGroupArn": "tg"}]
	}`, string(data))
}

package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbroompearson/cdk/intrinsics"
	"github.com/cbroompearson/cdk/resources/ec2"
)

func TestNewTagSet(t *testing.T) {
	tags := NewTagSet(oculusProps())

	require.Len(t, tags, 6)
	assert.Equal(t, map[string]string{
		"t_environment": "DEV",
		"t_AppID":       "APP-1234",
		"t_cost_centre": "CC-42",
		"t_dcl":         "dcl-internal",
		"Application":   "oculus",
		"Name":          "oculus",
	}, tags.Map())
	assert.Equal(t, intrinsics.Tag{Key: TagEnvironment, Value: "DEV"}, tags[0])
}

func TestTagSet_Apply(t *testing.T) {
	tags := NewTagSet(oculusProps())
	sg := ec2.SecurityGroup{GroupName: "oculus-dev-alb-sg"}

	tagged, ok := tags.Apply(sg)
	require.True(t, ok)

	out := tagged.(ec2.SecurityGroup)
	assert.Equal(t, "oculus-dev-alb-sg", out.GroupName)
	assert.Equal(t, tags.Tags(), out.Tags)
	assert.Nil(t, sg.Tags, "input is not modified")
}

func TestTagSet_Apply_Untaggable(t *testing.T) {
	tags := NewTagSet(oculusProps())
	route := ec2.Route{DestinationCidrBlock: "0.0.0.0/0"}

	res, ok := tags.Apply(route)
	assert.False(t, ok)
	assert.Equal(t, route, res)
}

func TestTagSet_Apply_ResourceTagWins(t *testing.T) {
	tags := NewTagSet(oculusProps())
	vpc := ec2.VPC{Tags: []any{
		intrinsics.Tag{Key: TagName, Value: "oculus-dev-vpc"},
		intrinsics.Tag{Key: "team", Value: "platform"},
	}}

	tagged, ok := tags.Apply(vpc)
	require.True(t, ok)

	out := tagged.(ec2.VPC).Tags
	require.Len(t, out, 7)
	assert.Equal(t, intrinsics.Tag{Key: TagEnvironment, Value: "DEV"}, out[0])
	assert.Equal(t, intrinsics.Tag{Key: TagName, Value: "oculus-dev-vpc"}, out[5])
	assert.Equal(t, intrinsics.Tag{Key: "team", Value: "platform"}, out[6])
}

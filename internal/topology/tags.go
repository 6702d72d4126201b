package topology

import (
	"fmt"
	"reflect"
	"strings"

	cdk "github.com/cbroompearson/cdk"
	"github.com/cbroompearson/cdk/internal/config"
	"github.com/cbroompearson/cdk/intrinsics"
)

// Tag keys applied to every taggable resource.
const (
	TagEnvironment = "t_environment"
	TagAppID       = "t_AppID"
	TagCostCentre  = "t_cost_centre"
	TagDCL         = "t_dcl"
	TagApplication = "Application"
	TagName        = "Name"
)

// TagSet is the fixed, ordered tag set of a stack.
type TagSet []intrinsics.Tag

// NewTagSet derives the tag set from props. The environment tag is the
// upper-cased stage.
func NewTagSet(props config.StageProperties) TagSet {
	return TagSet{
		{Key: TagEnvironment, Value: strings.ToUpper(props.Stage)},
		{Key: TagAppID, Value: props.AppID},
		{Key: TagCostCentre, Value: props.CostCentre},
		{Key: TagDCL, Value: props.DCL},
		{Key: TagApplication, Value: props.ServiceName},
		{Key: TagName, Value: props.Name},
	}
}

// Tags returns the set in the []any form used by resource Tags fields.
func (t TagSet) Tags() []any {
	out := make([]any, len(t))
	for i, tag := range t {
		out[i] = tag
	}
	return out
}

// Map returns the tags keyed by name, as used for stack-level tags.
func (t TagSet) Map() map[string]string {
	out := make(map[string]string, len(t))
	for _, tag := range t {
		out[fmt.Sprint(tag.Key)] = fmt.Sprint(tag.Value)
	}
	return out
}

var tagsType = reflect.TypeOf([]any(nil))

// Apply returns a copy of res carrying the tag set. A tag already set on the
// resource wins over the stack tag with the same key; its other tags are kept
// after the stack tags. Resource types without a Tags property are returned
// unchanged with ok=false.
func (t TagSet) Apply(res cdk.Resource) (tagged cdk.Resource, ok bool) {
	v := reflect.ValueOf(res)
	if v.Kind() != reflect.Struct {
		return res, false
	}
	cp := reflect.New(v.Type()).Elem()
	cp.Set(v)

	field := cp.FieldByName("Tags")
	if !field.IsValid() || field.Type() != tagsType {
		return res, false
	}
	field.Set(reflect.ValueOf(t.merge(field.Interface().([]any))))
	return cp.Interface().(cdk.Resource), true
}

func (t TagSet) merge(own []any) []any {
	stackKeys := t.Map()
	overrides := make(map[string]any)
	var extra []any
	for _, v := range own {
		if tag, isTag := v.(intrinsics.Tag); isTag {
			key := fmt.Sprint(tag.Key)
			if _, shared := stackKeys[key]; shared {
				overrides[key] = v
				continue
			}
		}
		extra = append(extra, v)
	}

	out := make([]any, 0, len(t)+len(extra))
	for _, tag := range t {
		if v, ok := overrides[fmt.Sprint(tag.Key)]; ok {
			out = append(out, v)
			continue
		}
		out = append(out, tag)
	}
	return append(out, extra...)
}

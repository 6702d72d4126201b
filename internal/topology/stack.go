package topology

import (
	"fmt"

	cdk "github.com/cbroompearson/cdk"
	"github.com/cbroompearson/cdk/internal/config"
	"github.com/cbroompearson/cdk/internal/template"
)

// Inputs are the values resolved at the boundary before assembly.
type Inputs struct {
	Microservices []config.MicroserviceSpec
	// Zone is the hosted zone of the zone domain; nil when the lookup found
	// nothing.
	Zone *HostedZone
	// AvailabilityZones are the zone names offered by the target region.
	// Empty selects zones with Fn::GetAZs.
	AvailabilityZones []string
	// Roles is shared by every stack of one synthesis run. Nil means the
	// stack is synthesized alone.
	Roles *RoleRegistry
}

// Stack is the complete target state of one service and stage.
type Stack struct {
	Name  string
	Props config.StageProperties
	Tags  TagSet

	Network     *NetworkTopology
	Permissions *PermissionSet
	Services    *ServiceSet
	Routing     *Routing
	DNS         *DNSBinding

	entities []Entity
}

// Assemble runs the builders in dependency order. Any builder error aborts
// the assembly and no stack is returned.
func Assemble(props config.StageProperties, in Inputs) (*Stack, error) {
	net, err := BuildNetwork(props, in.AvailabilityZones)
	if err != nil {
		return nil, fmt.Errorf("network: %w", err)
	}
	perms, err := BuildPermissions(props, net, in.Roles)
	if err != nil {
		return nil, fmt.Errorf("identity: %w", err)
	}
	services, err := BuildServices(props, net, perms, in.Microservices)
	if err != nil {
		return nil, fmt.Errorf("services: %w", err)
	}
	routing, err := BuildRouting(props, net, services)
	if err != nil {
		return nil, fmt.Errorf("routing: %w", err)
	}
	dns, err := PublishDNS(props, in.Zone, routing)
	if err != nil {
		return nil, fmt.Errorf("dns: %w", err)
	}

	s := &Stack{
		Name:        NewNamer(props).Prefix(),
		Props:       props,
		Tags:        NewTagSet(props),
		Network:     net,
		Permissions: perms,
		Services:    services,
		Routing:     routing,
		DNS:         dns,
	}
	s.entities = s.collect()
	return s, nil
}

func (s *Stack) collect() []Entity {
	var all []Entity
	all = append(all, s.Network.Entities()...)
	all = append(all, s.Permissions.Entities()...)
	all = append(all, s.Services.Entities()...)
	all = append(all, s.Routing.Entities()...)
	all = append(all, s.DNS.Entities()...)

	waitFor := make(map[string]string, len(s.Services.Services))
	for _, svc := range s.Services.Services {
		waitFor[svc.Service] = s.Routing.ServiceDependency(svc.Spec.ID)
	}

	out := make([]Entity, len(all))
	for i, e := range all {
		e.DependsOn = append([]string{}, e.DependsOn...)
		if dep, ok := waitFor[e.LogicalID]; ok {
			e.DependsOn = append(e.DependsOn, dep)
		}
		if tagged, ok := s.Tags.Apply(e.Resource); ok {
			e.Resource = tagged
		}
		out[i] = e
	}
	return out
}

// Entities returns every resource of the stack in builder order.
func (s *Stack) Entities() []Entity {
	return s.entities
}

// Find returns the entity with the given logical ID.
func (s *Stack) Find(logicalID string) (Entity, bool) {
	for _, e := range s.entities {
		if e.LogicalID == logicalID {
			return e, true
		}
	}
	return Entity{}, false
}

// Description is the template description.
func (s *Stack) Description() string {
	return fmt.Sprintf("%s service stack, stage %s", s.Props.ServiceName, s.Props.Stage)
}

// Outputs returns the stack outputs.
func (s *Stack) Outputs() map[string]cdk.Output {
	return s.Routing.Outputs()
}

// Template renders the stack as a CloudFormation template.
func (s *Stack) Template() (*cdk.Template, error) {
	b, err := s.builder()
	if err != nil {
		return nil, err
	}
	return b.Build()
}

// Nodes returns the dependency graph of the stack in dependency order.
func (s *Stack) Nodes() ([]cdk.ResourceNode, error) {
	b, err := s.builder()
	if err != nil {
		return nil, err
	}
	return b.Nodes()
}

func (s *Stack) builder() (*template.Builder, error) {
	b := template.NewBuilder(s.Description())
	for _, e := range s.entities {
		if err := b.Add(template.Resource{
			LogicalID:      e.LogicalID,
			Group:          e.Group,
			Value:          e.Resource,
			DependsOn:      e.DependsOn,
			DeletionPolicy: e.DeletionPolicy,
		}); err != nil {
			return nil, err
		}
	}
	for name, out := range s.Outputs() {
		if err := b.AddOutput(name, out); err != nil {
			return nil, err
		}
	}
	return b, nil
}

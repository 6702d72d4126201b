package topology

import (
	cdk "github.com/cbroompearson/cdk"
)

// Component groups reported by Entity.Group.
const (
	GroupNetwork  = "network"
	GroupIdentity = "identity"
	GroupCluster  = "cluster"
	GroupRouting  = "routing"
	GroupDNS      = "dns"
)

// ServiceGroup returns the group name of the microservice with the given id.
func ServiceGroup(id string) string {
	return "service/" + id
}

// Entity is one logical resource of the stack.
type Entity struct {
	LogicalID string
	Group     string
	Resource  cdk.Resource
	// DependsOn lists ordering constraints that are not expressed through
	// Ref or GetAtt.
	DependsOn []string
	// DeletionPolicy is left empty for the CloudFormation default.
	DeletionPolicy string
}

type component struct {
	entities []Entity
}

func (c *component) add(group, logicalID string, res cdk.Resource, dependsOn ...string) {
	c.entities = append(c.entities, Entity{
		LogicalID: logicalID,
		Group:     group,
		Resource:  res,
		DependsOn: dependsOn,
	})
}

// Entities returns the resources produced by the builder, in creation order.
func (c *component) Entities() []Entity {
	return c.entities
}

// Find returns the entity with the given logical ID.
func (c *component) Find(logicalID string) (Entity, bool) {
	for _, e := range c.entities {
		if e.LogicalID == logicalID {
			return e, true
		}
	}
	return Entity{}, false
}

func (c *component) setDeletionPolicy(logicalID, policy string) {
	for i := range c.entities {
		if c.entities[i].LogicalID == logicalID {
			c.entities[i].DeletionPolicy = policy
		}
	}
}

func (c *component) addDependency(logicalID string, deps ...string) {
	for i := range c.entities {
		if c.entities[i].LogicalID == logicalID {
			c.entities[i].DependsOn = append(c.entities[i].DependsOn, deps...)
		}
	}
}

package topology

import (
	"strings"

	"github.com/cbroompearson/cdk/internal/config"
	"github.com/cbroompearson/cdk/intrinsics"
	"github.com/cbroompearson/cdk/resources/route53"
)

// HostedZone is an existing Route 53 hosted zone, as resolved by a lookup.
type HostedZone struct {
	ID   string
	Name string
}

// DNSBinding is the alias record pointing the site domain at the load
// balancer.
type DNSBinding struct {
	component

	ZoneDomain string
	ZoneID     string
	// SiteDomain is fully qualified, without the trailing dot.
	SiteDomain string
	Record     string
	// TargetLoadBalancerDNS is the alias target, "dualstack." + DNSName.
	TargetLoadBalancerDNS any
}

func aliasRecordID(n Namer) string { return n.LogicalID("alias-record") }

// PublishDNS derives the A alias record for the site domain. A nil zone
// fails with *ZoneNotFoundError and produces no record.
func PublishDNS(props config.StageProperties, zone *HostedZone, routing *Routing) (*DNSBinding, error) {
	if zone == nil {
		return nil, &ZoneNotFoundError{Domain: props.ZoneDomain}
	}

	zoneName := zone.Name
	if zoneName == "" {
		zoneName = props.ZoneDomain
	}

	d := &DNSBinding{
		ZoneDomain: strings.TrimSuffix(zoneName, "."),
		ZoneID:     strings.TrimPrefix(zone.ID, "/hostedzone/"),
		SiteDomain: QualifyRecordName(props.SiteDomain, zoneName),
		Record:     aliasRecordID(NewNamer(props)),
		TargetLoadBalancerDNS: intrinsics.Join{Delimiter: "", Values: []any{
			"dualstack.",
			routing.DNSName(),
		}},
	}

	d.add(GroupDNS, d.Record, route53.RecordSet{
		HostedZoneId: d.ZoneID,
		Name:         d.SiteDomain + ".",
		Type:         "A",
		AliasTarget: &route53.RecordSet_AliasTarget{
			DNSName:              d.TargetLoadBalancerDNS,
			HostedZoneId:         routing.CanonicalHostedZoneID(),
			EvaluateTargetHealth: false,
		},
	})
	return d, nil
}

// QualifyRecordName returns the fully qualified form of name within zone,
// without a trailing dot. A name ending in a dot is already qualified; a
// name not ending in the zone gets the zone appended.
func QualifyRecordName(name, zone string) string {
	if strings.HasSuffix(name, ".") {
		return strings.TrimSuffix(name, ".")
	}
	zone = strings.TrimSuffix(zone, ".")
	if name == zone || strings.HasSuffix(name, "."+zone) {
		return name
	}
	return name + "." + zone
}

package lookup

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/cbroompearson/cdk/internal/config"
	"github.com/cbroompearson/cdk/internal/topology"
)

// SectionKey is the config key holding cached lookup results.
const SectionKey = "lookups"

// Static answers lookups from the "lookups" section of the config file:
//
//	"lookups": {
//	  "hostedZones": [{"domain": "example.com", "id": "Z0123456789ABC"}],
//	  "availabilityZones": ["us-east-1a", "us-east-1b"]
//	}
//
// Hosted zones are a list because viper splits dotted map keys.
type Static struct {
	HostedZones           []StaticZone `mapstructure:"hostedZones"`
	AvailabilityZoneNames []string     `mapstructure:"availabilityZones"`
}

// StaticZone is one cached hosted zone.
type StaticZone struct {
	Domain string `mapstructure:"domain"`
	ID     string `mapstructure:"id"`
}

// NewStatic decodes the lookups section of src. ok is false when src has
// no such section.
func NewStatic(src config.Source) (s *Static, ok bool, err error) {
	raw, found := src.Get(SectionKey)
	if !found || raw == nil {
		return nil, false, nil
	}
	s = &Static{}
	if err := mapstructure.WeakDecode(raw, s); err != nil {
		return nil, true, fmt.Errorf("decoding %s: %w", SectionKey, err)
	}
	for i, z := range s.HostedZones {
		if z.Domain == "" || z.ID == "" {
			return nil, true, &config.InvalidParameterError{
				Key:    fmt.Sprintf("%s.hostedZones[%d]", SectionKey, i),
				Value:  z,
				Reason: "domain and id are required",
			}
		}
	}
	return s, true, nil
}

// LookupZone implements ZoneLookup.
func (s *Static) LookupZone(_ context.Context, domain string) (*topology.HostedZone, error) {
	want := strings.TrimSuffix(domain, ".")
	for _, z := range s.HostedZones {
		if strings.EqualFold(strings.TrimSuffix(z.Domain, "."), want) {
			return &topology.HostedZone{
				ID:   strings.TrimPrefix(z.ID, "/hostedzone/"),
				Name: fqdn(z.Domain),
			}, nil
		}
	}
	return nil, &topology.ZoneNotFoundError{Domain: domain}
}

// AvailabilityZones implements AZLookup.
func (s *Static) AvailabilityZones(context.Context) ([]string, error) {
	return append([]string(nil), s.AvailabilityZoneNames...), nil
}

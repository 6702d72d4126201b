package topology

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbroompearson/cdk/intrinsics"
	"github.com/cbroompearson/cdk/resources/route53"
)

func TestPublishDNS(t *testing.T) {
	_, _, routing, err := buildRouting(t, oculusSpecs())
	require.NoError(t, err)

	dns, err := PublishDNS(oculusProps(), oculusZone(), routing)
	require.NoError(t, err)

	assert.Equal(t, "example.com", dns.ZoneDomain)
	assert.Equal(t, "Z0123456789ABC", dns.ZoneID)
	assert.Equal(t, "oculus-dev.example.com", dns.SiteDomain)

	record := resourceOf[route53.RecordSet](t, dns.Entities(), dns.Record)
	assert.Equal(t, "A", record.Type)
	assert.Equal(t, "oculus-dev.example.com.", record.Name)
	assert.Equal(t, "Z0123456789ABC", record.HostedZoneId)
	require.NotNil(t, record.AliasTarget)
	assert.Equal(t, intrinsics.Join{Delimiter: "", Values: []any{"dualstack.", routing.DNSName()}}, record.AliasTarget.DNSName)
	assert.Equal(t, routing.CanonicalHostedZoneID(), record.AliasTarget.HostedZoneId)
}

func TestPublishDNS_ZoneNotFound(t *testing.T) {
	_, _, routing, err := buildRouting(t, oculusSpecs())
	require.NoError(t, err)

	dns, err := PublishDNS(oculusProps(), nil, routing)
	assert.Nil(t, dns)

	var notFound *ZoneNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "example.com", notFound.Domain)
}

func TestPublishDNS_RelativeSiteDomain(t *testing.T) {
	_, _, routing, err := buildRouting(t, oculusSpecs())
	require.NoError(t, err)

	props := oculusProps()
	props.SiteDomain = "oculus-dev"
	dns, err := PublishDNS(props, &HostedZone{ID: "Z1"}, routing)
	require.NoError(t, err)

	assert.Equal(t, "oculus-dev.example.com", dns.SiteDomain)
	assert.Equal(t, "Z1", dns.ZoneID)
}

func TestQualifyRecordName(t *testing.T) {
	tests := []struct {
		name, zone, want string
	}{
		{"oculus-dev.example.com", "example.com", "oculus-dev.example.com"},
		{"oculus-dev.example.com", "example.com.", "oculus-dev.example.com"},
		{"oculus-dev", "example.com", "oculus-dev.example.com"},
		{"example.com", "example.com", "example.com"},
		{"www.other.org.", "example.com", "www.other.org"},
		{"notexample.com", "example.com", "notexample.com.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.zone, func(t *testing.T) {
			assert.Equal(t, tt.want, QualifyRecordName(tt.name, tt.zone))
		})
	}
}

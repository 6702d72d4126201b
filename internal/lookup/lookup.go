// Package lookup resolves the environment facts a stack needs before it can
// be synthesized: the hosted zone of the site domain and the availability
// zones of the target region.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	smithy "github.com/aws/smithy-go"

	"github.com/cbroompearson/cdk/internal/topology"
)

// ZoneLookup finds the public hosted zone for a domain. A missing zone is
// reported as *topology.ZoneNotFoundError.
type ZoneLookup interface {
	LookupZone(ctx context.Context, domain string) (*topology.HostedZone, error)
}

// AZLookup lists the availability zone names of the configured region.
type AZLookup interface {
	AvailabilityZones(ctx context.Context) ([]string, error)
}

// Route53API is the subset of the Route 53 client used here.
type Route53API interface {
	ListHostedZonesByName(ctx context.Context, in *route53.ListHostedZonesByNameInput, optFns ...func(*route53.Options)) (*route53.ListHostedZonesByNameOutput, error)
}

// EC2API is the subset of the EC2 client used here.
type EC2API interface {
	DescribeAvailabilityZones(ctx context.Context, in *ec2.DescribeAvailabilityZonesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeAvailabilityZonesOutput, error)
}

// AWS implements ZoneLookup and AZLookup against the AWS APIs.
type AWS struct {
	route53 Route53API
	ec2     EC2API
	logger  *slog.Logger
}

// NewAWS creates lookups from a loaded SDK config.
func NewAWS(cfg aws.Config, logger *slog.Logger) *AWS {
	return NewAWSWithClients(route53.NewFromConfig(cfg), ec2.NewFromConfig(cfg), logger)
}

// NewAWSWithClients creates lookups over the given clients.
func NewAWSWithClients(r53 Route53API, ec2Client EC2API, logger *slog.Logger) *AWS {
	if logger == nil {
		logger = slog.Default()
	}
	return &AWS{route53: r53, ec2: ec2Client, logger: logger.With("component", "lookup")}
}

// LookupZone returns the public hosted zone named domain. Private zones with
// the same name are skipped.
func (a *AWS) LookupZone(ctx context.Context, domain string) (*topology.HostedZone, error) {
	want := fqdn(domain)
	in := &route53.ListHostedZonesByNameInput{DNSName: aws.String(want)}

	for {
		out, err := a.route53.ListHostedZonesByName(ctx, in)
		if err != nil {
			var apiErr smithy.APIError
			if errors.As(err, &apiErr) && apiErr.ErrorCode() == "InvalidDomainName" {
				return nil, &topology.ZoneNotFoundError{Domain: domain}
			}
			return nil, fmt.Errorf("listing hosted zones for %s: %w", domain, err)
		}

		for _, z := range out.HostedZones {
			name := aws.ToString(z.Name)
			if !strings.EqualFold(name, want) {
				// Results are sorted by name; anything else means the zone is absent.
				return nil, &topology.ZoneNotFoundError{Domain: domain}
			}
			if z.Config != nil && z.Config.PrivateZone {
				continue
			}
			zone := &topology.HostedZone{
				ID:   strings.TrimPrefix(aws.ToString(z.Id), "/hostedzone/"),
				Name: name,
			}
			a.logger.Debug("hosted zone found", "domain", domain, "zone_id", zone.ID)
			return zone, nil
		}

		if !out.IsTruncated {
			return nil, &topology.ZoneNotFoundError{Domain: domain}
		}
		in.DNSName = out.NextDNSName
		in.HostedZoneId = out.NextHostedZoneId
	}
}

// AvailabilityZones returns the available standard zones of the client's
// region in name order.
func (a *AWS) AvailabilityZones(ctx context.Context) ([]string, error) {
	out, err := a.ec2.DescribeAvailabilityZones(ctx, &ec2.DescribeAvailabilityZonesInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("state"), Values: []string{"available"}},
			{Name: aws.String("zone-type"), Values: []string{"availability-zone"}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("describing availability zones: %w", err)
	}

	names := make([]string, 0, len(out.AvailabilityZones))
	for _, az := range out.AvailabilityZones {
		if name := aws.ToString(az.ZoneName); name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	a.logger.Debug("availability zones resolved", "count", len(names))
	return names, nil
}

func fqdn(domain string) string {
	return strings.TrimSuffix(strings.TrimSpace(domain), ".") + "."
}

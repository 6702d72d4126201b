// Package route53 provides CloudFormation resource types for Amazon Route 53.
package route53

// RecordSet represents AWS::Route53::RecordSet.
type RecordSet struct {
	AliasTarget     *RecordSet_AliasTarget `json:"AliasTarget,omitempty"`
	Comment         any                    `json:"Comment,omitempty"`
	HostedZoneId    any                    `json:"HostedZoneId,omitempty"`
	Name            any                    `json:"Name,omitempty"`
	ResourceRecords []any                  `json:"ResourceRecords,omitempty"`
	TTL             any                    `json:"TTL,omitempty"`
	Type            any                    `json:"Type,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r RecordSet) ResourceType() string {
	return "AWS::Route53::RecordSet"
}

// RecordSet_AliasTarget points an alias record at another AWS resource.
type RecordSet_AliasTarget struct {
	DNSName              any `json:"DNSName,omitempty"`
	EvaluateTargetHealth any `json:"EvaluateTargetHealth,omitempty"`
	HostedZoneId         any `json:"HostedZoneId,omitempty"`
}

// Package logs provides CloudFormation resource types for Amazon CloudWatch Logs.
package logs

// LogGroup represents AWS::Logs::LogGroup.
type LogGroup struct {
	KmsKeyId        any   `json:"KmsKeyId,omitempty"`
	LogGroupName    any   `json:"LogGroupName,omitempty"`
	RetentionInDays any   `json:"RetentionInDays,omitempty"`
	Tags            []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r LogGroup) ResourceType() string {
	return "AWS::Logs::LogGroup"
}

// Retention periods accepted by RetentionInDays.
const (
	RetentionOneWeek   = 7
	RetentionOneMonth  = 30
	RetentionSixMonths = 180
	RetentionOneYear   = 365
)
